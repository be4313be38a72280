package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/study_space/database"
	"github.com/anjiri1684/study_space/events"
	"github.com/anjiri1684/study_space/logger"
	"github.com/anjiri1684/study_space/models"
	"github.com/anjiri1684/study_space/payments"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testSecret   = "gateway-test-secret"
	testCurrency = "INR"
	holdWindow   = 5 * time.Minute
)

type fakeGateway struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (g *fakeGateway) CreateOrder(_ context.Context, req payments.OrderRequest) (*payments.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &payments.Order{
		ID:       fmt.Sprintf("order_%d", g.calls),
		Amount:   payments.ToMinorUnits(req.Amount),
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

// testClock is a settable time source. Times carry no sub-second part so
// SQLite's text comparison of timestamps stays exact.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	t        *testing.T
	db       *gorm.DB
	clock    *testClock
	recorder *events.Recorder
	gateway  *fakeGateway

	bookings *BookingService
	payments *PaymentService
	reports  *ReportService
	receipts *ReceiptService

	student models.User
	other   models.User
	vendor  models.User
	admin   models.User
	partner models.Partner
	cabin   models.Cabin
	seat    models.Seat
	hostel  models.Hostel
	bed     models.HostelBed
}

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)

	f := &fixture{
		t:        t,
		db:       db,
		clock:    &testClock{t: time.Date(2024, 12, 20, 10, 0, 0, 0, time.UTC)},
		recorder: &events.Recorder{},
		gateway:  &fakeGateway{},
	}
	log := logger.Discard()
	dispatcher := events.NewDispatcher(log, f.recorder)
	cfg := BookingConfig{HoldWindow: holdWindow, PriceTolerance: 0.5, Currency: testCurrency}

	f.bookings = NewBookingService(db, log, dispatcher, cfg)
	f.bookings.SetClock(f.clock.Now)
	f.payments = NewPaymentService(db, log, dispatcher, f.gateway, testSecret, cfg)
	f.payments.SetClock(f.clock.Now)
	f.reports = NewReportService(db)
	f.receipts = NewReceiptService(db, "Study Space")

	f.student = f.user("Asha Student", "asha@example.com", models.RoleStudent)
	f.other = f.user("Ravi Student", "ravi@example.com", models.RoleStudent)
	f.vendor = f.user("Meera Vendor", "meera@example.com", models.RoleVendor)
	f.admin = f.user("Ops Admin", "admin@example.com", models.RoleAdmin)

	f.partner = models.Partner{UserID: f.vendor.ID, BusinessName: "Quiet Corner", Status: models.PartnerApproved}
	require.NoError(t, f.partner.SetCommission(models.CommissionSettings{Type: models.CommissionPercentage, Value: 10}))
	require.NoError(t, db.Create(&f.partner).Error)

	f.cabin = models.Cabin{PartnerID: f.partner.ID, Name: "Reading Hall A", Address: "MG Road", IsActive: true, IsBookingActive: true}
	require.NoError(t, db.Create(&f.cabin).Error)
	f.seat = f.addSeat(1, 1000)

	f.hostel = models.Hostel{PartnerID: f.partner.ID, Name: "Green Hostel", Address: "Ring Road", Gender: "female", IsActive: true, IsBookingActive: true}
	require.NoError(t, db.Create(&f.hostel).Error)
	room := models.HostelRoom{HostelID: f.hostel.ID, RoomNumber: "101", Sharing: 2, IsActive: true}
	require.NoError(t, db.Create(&room).Error)
	f.bed = models.HostelBed{RoomID: room.ID, BedNumber: 1, Price: 6000, IsAvailable: true, IsActive: true}
	require.NoError(t, db.Create(&f.bed).Error)

	return f
}

func (f *fixture) user(name, email, role string) models.User {
	u := models.User{FullName: name, Email: email, Password: "x", Role: role, IsActive: true}
	require.NoError(f.t, f.db.Create(&u).Error)
	return u
}

func (f *fixture) addSeat(number int, price float64) models.Seat {
	s := models.Seat{CabinID: f.cabin.ID, Number: number, Price: price, IsAvailable: true, IsActive: true}
	require.NoError(f.t, f.db.Create(&s).Error)
	return s
}

func (f *fixture) actor(u models.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

// book places a monthly booking of count months on seat for u.
func (f *fixture) book(u models.User, seat uuid.UUID, start string, count int, total float64) (*models.Booking, error) {
	return f.bookings.CreateBooking(context.Background(), f.actor(u), CreateBookingInput{
		UnitType:   models.UnitSeat,
		UnitID:     seat,
		Start:      day(start),
		Duration:   models.DurationMonthly,
		Count:      count,
		TotalPrice: total,
	})
}

// pay opens an order for b and verifies a correctly signed callback.
func (f *fixture) pay(b *models.Booking, paymentID string) (*models.Booking, error) {
	ctx := context.Background()
	order, err := f.payments.CreateOrder(ctx, Actor{UserID: b.UserID, Role: models.RoleStudent}, CreateOrderInput{
		Amount: b.TotalPrice, Currency: testCurrency, BookingID: b.ID, BookingType: b.UnitType,
	})
	if err != nil {
		return nil, err
	}
	return f.payments.Verify(ctx, VerifyInput{
		PaymentID: paymentID,
		OrderID:   order.OrderID,
		Signature: payments.Sign(testSecret, order.OrderID, paymentID),
		BookingID: b.ID,
	})
}

// seatRow reads the seat into a fresh struct; scanning into a reused one
// would keep a stale UnavailableUntil when the column is NULL.
func (f *fixture) seatRow(id uuid.UUID) models.Seat {
	var s models.Seat
	require.NoError(f.t, f.db.First(&s, "id = ?", id).Error)
	return s
}

func (f *fixture) reload(id uuid.UUID) models.Booking {
	var b models.Booking
	require.NoError(f.t, f.db.First(&b, "id = ?", id).Error)
	return b
}
