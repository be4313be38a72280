package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/anjiri1684/study_space/apperror"
	"github.com/anjiri1684/study_space/models"
	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

type ReceiptService struct {
	db      *gorm.DB
	appName string
}

func NewReceiptService(db *gorm.DB, appName string) *ReceiptService {
	return &ReceiptService{db: db, appName: appName}
}

type receiptData struct {
	Booking   models.Booking
	Txn       models.Transaction
	UnitLabel string
	Property  string
}

// Receipt renders the payment receipt of a completed booking as a PDF. The
// second return value is a suggested file name.
func (s *ReceiptService) Receipt(ctx context.Context, actor Actor, bookingID uuid.UUID) ([]byte, string, error) {
	db := s.db.WithContext(ctx)
	data, err := s.load(db, actor, bookingID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.render(data)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	return pdf, data.Txn.ReceiptNumber + ".pdf", nil
}

func (s *ReceiptService) load(db *gorm.DB, actor Actor, bookingID uuid.UUID) (*receiptData, error) {
	var d receiptData
	if err := db.Preload("User").First(&d.Booking, "id = ?", bookingID).Error; err != nil {
		return nil, notFoundOr(err, "booking not found")
	}
	if err := authorizeBookingRead(db, actor, &d.Booking); err != nil {
		return nil, err
	}
	if d.Booking.PaymentStatus != models.StatusCompleted && d.Booking.PaymentStatus != models.StatusCancelled {
		return nil, apperror.Validation("a receipt is only issued for paid bookings")
	}
	err := db.Where("booking_id = ? AND kind = ?", bookingID, models.TransactionPayment).First(&d.Txn).Error
	if err != nil {
		return nil, notFoundOr(err, "no payment recorded for this booking")
	}

	switch d.Booking.UnitType {
	case models.UnitSeat:
		var seat models.Seat
		var cabin models.Cabin
		if err := db.First(&seat, "id = ?", d.Booking.InventoryUnitID).Error; err != nil {
			return nil, notFoundOr(err, "seat not found")
		}
		if err := db.First(&cabin, "id = ?", seat.CabinID).Error; err != nil {
			return nil, notFoundOr(err, "cabin not found")
		}
		d.UnitLabel, d.Property = fmt.Sprintf("Seat %d", seat.Number), cabin.Name
	case models.UnitBed:
		var bed models.HostelBed
		var room models.HostelRoom
		var hostel models.Hostel
		if err := db.First(&bed, "id = ?", d.Booking.InventoryUnitID).Error; err != nil {
			return nil, notFoundOr(err, "bed not found")
		}
		if err := db.First(&room, "id = ?", bed.RoomID).Error; err != nil {
			return nil, notFoundOr(err, "room not found")
		}
		if err := db.First(&hostel, "id = ?", room.HostelID).Error; err != nil {
			return nil, notFoundOr(err, "hostel not found")
		}
		d.UnitLabel, d.Property = fmt.Sprintf("Room %s, Bed %d", room.RoomNumber, bed.BedNumber), hostel.Name
	}
	return &d, nil
}

func (s *ReceiptService) render(d *receiptData) ([]byte, error) {
	b := d.Booking
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(0, 12, s.appName+" - Payment Receipt")
	pdf.Ln(16)
	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(6)

	yStart := pdf.GetY()
	pdf.SetFillColor(245, 245, 245)
	pdf.Rect(15, yStart, 120, 78, "F")
	pdf.SetXY(20, yStart+6)

	lines := []string{
		fmt.Sprintf("Receipt No: %s", d.Txn.ReceiptNumber),
		fmt.Sprintf("Booking ID: %s", b.ID),
		fmt.Sprintf("Name: %s", b.User.FullName),
		fmt.Sprintf("Property: %s", d.Property),
		fmt.Sprintf("Unit: %s", d.UnitLabel),
		fmt.Sprintf("Period: %s to %s", b.StartDate.Format(dateLayout), b.EndDate.Format(dateLayout)),
		fmt.Sprintf("Plan: %d x %s", b.DurationCount, b.BookingDuration),
		fmt.Sprintf("Amount Paid: %.2f %s", d.Txn.Amount, d.Txn.Currency),
		fmt.Sprintf("Payment Ref: %s", d.Txn.GatewayPaymentID),
		fmt.Sprintf("Paid On: %s", d.Txn.CreatedAt.Format("02 Jan 2006 15:04 MST")),
	}
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range lines {
		pdf.SetX(20)
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}
	if b.PaymentStatus == models.StatusCancelled {
		pdf.SetX(20)
		pdf.SetTextColor(200, 30, 30)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "CANCELLED")
		pdf.SetTextColor(0, 0, 0)
	}

	qrBytes, err := qrcode.Encode(fmt.Sprintf("%s|%s", d.Txn.ReceiptNumber, b.ID), qrcode.Medium, 256)
	if err != nil {
		return nil, err
	}
	pdf.RegisterImageOptionsReader("qr", gofpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(qrBytes))
	pdf.ImageOptions("qr", 145, yStart+5, 45, 0, false, gofpdf.ImageOptions{ImageType: "png"}, 0, "")

	pdf.SetXY(15, 280)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.Cell(0, 5, "This is a computer generated receipt and does not require a signature.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
