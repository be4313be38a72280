package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anjiri1684/study_space/apperror"
	"github.com/anjiri1684/study_space/events"
	"github.com/anjiri1684/study_space/models"
	"github.com/anjiri1684/study_space/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) order(b *models.Booking) *OrderResult {
	f.t.Helper()
	res, err := f.payments.CreateOrder(context.Background(), f.actorFor(b), CreateOrderInput{
		Amount: b.TotalPrice, Currency: testCurrency, BookingID: b.ID, BookingType: b.UnitType,
	})
	require.NoError(f.t, err)
	return res
}

func (f *fixture) actorFor(b *models.Booking) Actor {
	return Actor{UserID: b.UserID, Role: models.RoleStudent}
}

func signed(b *models.Booking, orderID, paymentID string) VerifyInput {
	return VerifyInput{
		PaymentID: paymentID,
		OrderID:   orderID,
		Signature: payments.Sign(testSecret, orderID, paymentID),
		BookingID: b.ID,
	}
}

func TestCreateOrderIsIdempotentPerBooking(t *testing.T) {
	f := newFixture(t)
	b, err := f.book(f.student, f.seat.ID, "2025-01-01", 1, 1000)
	require.NoError(t, err)

	first := f.order(b)
	assert.Equal(t, "order_1", first.OrderID)
	assert.Equal(t, 1000.0, first.Amount)
	assert.Equal(t, testCurrency, first.Currency)

	second := f.order(b)
	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, 1, f.gateway.calls)

	stored := f.reload(b.ID)
	require.NotNil(t, stored.GatewayOrderID)
	assert.Equal(t, "order_1", *stored.GatewayOrderID)
}

func TestCreateOrderChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.book(f.student, f.seat.ID, "2025-01-01", 1, 1000)
	require.NoError(t, err)
	valid := CreateOrderInput{Amount: 1000, Currency: testCurrency, BookingID: b.ID, BookingType: models.UnitSeat}

	cases := []struct {
		name   string
		actor  Actor
		mutate func(*CreateOrderInput)
		kind   apperror.Kind
	}{
		{"other user", f.actor(f.other), func(*CreateOrderInput) {}, apperror.KindForbidden},
		{"wrong currency", f.actor(f.student), func(in *CreateOrderInput) { in.Currency = "USD" }, apperror.KindValidation},
		{"wrong booking type", f.actor(f.student), func(in *CreateOrderInput) { in.BookingType = models.UnitBed }, apperror.KindValidation},
		{"amount off", f.actor(f.student), func(in *CreateOrderInput) { in.Amount = 990 }, apperror.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := f.payments.CreateOrder(ctx, tc.actor, in)
			assert.Equal(t, tc.kind, apperror.KindOf(err))
		})
	}
	assert.Zero(t, f.gateway.calls)

	f.clock.Advance(holdWindow + time.Second)
	_, err = f.payments.CreateOrder(ctx, f.actor(f.student), valid)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestCreateOrderGatewayFailureLeavesBookingPending(t *testing.T) {
	f := newFixture(t)
	f.gateway.err = errors.New("gateway down")
	b, err := f.book(f.student, f.seat.ID, "2025-01-01", 1, 1000)
	require.NoError(t, err)

	_, err = f.payments.CreateOrder(context.Background(), f.actor(f.student), CreateOrderInput{
		Amount: 1000, Currency: testCurrency, BookingID: b.ID, BookingType: models.UnitSeat,
	})
	assert.True(t, apperror.Is(err, apperror.KindInternal))

	stored := f.reload(b.ID)
	assert.Equal(t, models.StatusPending, stored.PaymentStatus)
	assert.Nil(t, stored.GatewayOrderID)
}

func TestVerifyCompletesBookingAndRecordsReceipt(t *testing.T) {
	f := newFixture(t)
	b, err := f.book(f.student, f.seat.ID, "2025-01-01", 1, 1000)
	require.NoError(t, err)
	order := f.order(b)

	paid, err := f.payments.Verify(context.Background(), signed(b, order.OrderID, "pay_A"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, paid.PaymentStatus)
	require.NotNil(t, paid.GatewayPaymentID)
	assert.Equal(t, "pay_A", *paid.GatewayPaymentID)
	require.NotNil(t, paid.CompletedAt)

	var txns []models.Transaction
	require.NoError(t, f.db.Where("booking_id = ?", b.ID).Find(&txns).Error)
	require.Len(t, txns, 1)
	assert.Equal(t, models.TransactionPayment, txns[0].Kind)
	assert.Equal(t, 1000.0, txns[0].Amount)
	assert.Equal(t, f.partner.ID, txns[0].PartnerID)
	assert.Regexp(t, `^RCP-20241220-[A-Z0-9]{6}$`, txns[0].ReceiptNumber)
}

func TestVerifyIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.book(f.student, f.seat.ID, "2025-01-01", 1, 1000)
	require.NoError(t, err)
	order := f.order(b)
	in := signed(b, order.OrderID, "pay_A")

	first, err := f.payments.Verify(ctx, in)
	require.NoError(t, err)
	second, err := f.payments.Verify(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first.PaymentStatus, second.PaymentStatus)
	assert.Equal(t, *first.GatewayPaymentID, *second.GatewayPaymentID)

	var n int64
	f.db.Model(&models.Transaction{}).Where("booking_id = ?", b.ID).Count(&n)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, []string{events.BookingCreated, events.BookingCompleted}, f.recorder.Types())

	_, err = f.payments.Verify(ctx, signed(b, order.OrderID, "pay_B"))
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Equal(t, "pay_A", *f.reload(b.ID).GatewayPaymentID)
}

func TestVerifyRejectsTamperedSignatureWithoutMutation(t *testing.T) {
	f := newFixture(t)
	b, err := f.book(f.student, f.seat.ID, "2025-01-01", 1, 1000)
	require.NoError(t, err)
	order := f.order(b)
	before := f.reload(b.ID)

	in := signed(b, order.OrderID, "pay_A")
	sig := []byte(in.Signature)
	if sig[0] == 'a' {
		sig[0] = 'b'
	} else {
		sig[0] = 'a'
	}
	in.Signature = string(sig)

	_, err = f.payments.Verify(context.Background(), in)
	assert.True(t, apperror.Is(err, apperror.KindSignatureMismatch))

	after := f.reload(b.ID)
	assert.Equal(t, before.PaymentStatus, after.PaymentStatus)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
	assert.Nil(t, after.GatewayPaymentID)

	var n int64
	f.db.Model(&models.Transaction{}).Count(&n)
	assert.Zero(t, n)
	assert.Equal(t, []string{events.BookingCreated}, f.recorder.Types())
}

func TestVerifyRequiresMatchingBooking(t *testing.T) {
	f := newFixture(t)
	second := f.addSeat(2, 1000)
	a, err := f.book(f.student, f.seat.ID, "2025-01-01", 1, 1000)
	require.NoError(t, err)
	b, err := f.book(f.student, second.ID, "2025-01-01", 1, 1000)
	require.NoError(t, err)
	orderA := f.order(a)

	in := signed(b, orderA.OrderID, "pay_A")
	_, err = f.payments.Verify(context.Background(), in)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Equal(t, models.StatusPending, f.reload(a.ID).PaymentStatus)
	assert.Equal(t, models.StatusPending, f.reload(b.ID).PaymentStatus)
}

func TestVerifyAfterHoldExpiryCompletesWhenSlotStillFree(t *testing.T) {
	f := newFixture(t)
	b, err := f.book(f.student, f.seat.ID, "2025-01-01", 1, 1000)
	require.NoError(t, err)
	order := f.order(b)

	f.clock.Advance(holdWindow + time.Minute)
	paid, err := f.payments.Verify(context.Background(), signed(b, order.OrderID, "pay_late"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, paid.PaymentStatus)
}

func TestVerifyAfterHoldExpiryFailsWhenSlotTaken(t *testing.T) {
	f := newFixture(t)
	b, err := f.book(f.student, f.seat.ID, "2025-01-01", 1, 1000)
	require.NoError(t, err)
	order := f.order(b)

	f.clock.Advance(holdWindow + time.Minute)
	taken := models.Booking{
		UserID: f.other.ID, PartnerID: f.partner.ID, UnitType: models.UnitSeat, InventoryUnitID: f.seat.ID,
		StartDate: day("2025-01-10"), EndDate: day("2025-01-20"),
		BookingDuration: models.DurationDaily, DurationCount: 11, TotalPrice: 366.67, Currency: testCurrency,
		PaymentStatus: models.StatusCompleted, PaymentMethod: "offline",
	}
	require.NoError(t, f.db.Create(&taken).Error)

	_, err = f.payments.Verify(context.Background(), signed(b, order.OrderID, "pay_late"))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	lost := f.reload(b.ID)
	assert.Equal(t, models.StatusFailed, lost.PaymentStatus)
	require.NotNil(t, lost.FailureReason)
	assert.Equal(t, "slot_taken_after_hold_expiry", *lost.FailureReason)

	last := f.recorder.Events[len(f.recorder.Events)-1]
	assert.Equal(t, events.BookingFailed, last.Type)
	assert.True(t, last.RefundDue)
}

func TestVerifyOnSweptHoldIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.book(f.student, f.seat.ID, "2025-01-01", 1, 1000)
	require.NoError(t, err)
	order := f.order(b)

	f.clock.Advance(holdWindow)
	n, err := f.bookings.ExpireStaleHolds(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = f.payments.Verify(ctx, signed(b, order.OrderID, "pay_late"))
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	stored := f.reload(b.ID)
	assert.Equal(t, models.StatusFailed, stored.PaymentStatus)
	require.NotNil(t, stored.GatewayPaymentID)
	assert.Equal(t, "pay_late", *stored.GatewayPaymentID)

	require.Equal(t, []string{events.BookingCreated, events.BookingFailed, events.BookingFailed}, f.recorder.Types())
	assert.False(t, f.recorder.Events[1].RefundDue)
	assert.True(t, f.recorder.Events[2].RefundDue)

	// a replayed callback is refused again without a second refund event
	_, err = f.payments.Verify(ctx, signed(b, order.OrderID, "pay_late"))
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Len(t, f.recorder.Events, 3)
}

func TestVerifyOnBookingCancelledWhilePendingFlagsRefund(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.book(f.student, f.seat.ID, "2025-01-01", 1, 1000)
	require.NoError(t, err)
	order := f.order(b)

	_, err = f.bookings.CancelBooking(ctx, f.actor(f.student), b.ID, "changed plans")
	require.NoError(t, err)

	_, err = f.payments.Verify(ctx, signed(b, order.OrderID, "pay_after_cancel"))
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	stored := f.reload(b.ID)
	assert.Equal(t, models.StatusCancelled, stored.PaymentStatus)
	require.NotNil(t, stored.GatewayPaymentID)
	assert.Equal(t, "pay_after_cancel", *stored.GatewayPaymentID)

	last := f.recorder.Events[len(f.recorder.Events)-1]
	assert.Equal(t, events.BookingFailed, last.Type)
	assert.True(t, last.RefundDue)

	var n int64
	require.NoError(t, f.db.Model(&models.Transaction{}).Where("booking_id = ?", b.ID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestFailMarksPendingBookingFailed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.book(f.student, f.seat.ID, "2025-01-01", 1, 1000)
	require.NoError(t, err)
	order := f.order(b)

	_, err = f.payments.Fail(ctx, f.actor(f.other), FailInput{BookingID: b.ID, OrderID: order.OrderID})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	failed, err := f.payments.Fail(ctx, f.actor(f.student), FailInput{BookingID: b.ID, OrderID: order.OrderID, Reason: "card_declined"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, failed.PaymentStatus)
	assert.Equal(t, "card_declined", *failed.FailureReason)

	_, err = f.payments.Fail(ctx, f.actor(f.student), FailInput{BookingID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{events.BookingCreated, events.BookingFailed}, f.recorder.Types())

	_, err = f.book(f.other, f.seat.ID, "2025-01-01", 1, 1000)
	assert.NoError(t, err, "a failed booking releases its range")
}

func TestFailCannotUndoCompletedBooking(t *testing.T) {
	f := newFixture(t)
	b, err := f.book(f.student, f.seat.ID, "2025-01-01", 1, 1000)
	require.NoError(t, err)
	_, err = f.pay(b, "pay_A")
	require.NoError(t, err)

	_, err = f.payments.Fail(context.Background(), f.actor(f.student), FailInput{BookingID: b.ID})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Equal(t, models.StatusCompleted, f.reload(b.ID).PaymentStatus)
}
