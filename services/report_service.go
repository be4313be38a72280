package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/anjiri1684/study_space/apperror"
	"github.com/anjiri1684/study_space/models"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ReportService computes read-only aggregations over bookings and receipts.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

type OccupancyRow struct {
	PropertyID    uuid.UUID `json:"property_id"`
	PropertyName  string    `json:"property_name"`
	PropertyType  string    `json:"property_type"`
	PartnerID     uuid.UUID `json:"partner_id"`
	TotalUnits    int64     `json:"total_units"`
	OccupiedUnits int64     `json:"occupied_units"`
	Rate          float64   `json:"occupancy_rate"`
}

type RevenueRow struct {
	PartnerID    uuid.UUID `json:"partner_id"`
	BusinessName string    `json:"business_name"`
	Bookings     int64     `json:"bookings"`
	Gross        float64   `json:"gross"`
}

type PayoutRow struct {
	RevenueRow
	Commission float64 `json:"commission"`
	Net        float64 `json:"net"`
}

// scope returns the partner a report is limited to, or nil for admins.
func (s *ReportService) scope(db *gorm.DB, actor Actor) (*uuid.UUID, error) {
	switch {
	case actor.IsAdmin():
		return nil, nil
	case actor.IsVendor():
		id, err := partnerIDForUser(db, actor.UserID)
		if err != nil {
			return nil, err
		}
		return &id, nil
	}
	return nil, apperror.Forbidden("reports are available to vendors and admins")
}

// Occupancy counts, per cabin and hostel, active units and those held by a
// completed booking on day.
func (s *ReportService) Occupancy(ctx context.Context, actor Actor, day time.Time) ([]OccupancyRow, error) {
	db := s.db.WithContext(ctx)
	partnerID, err := s.scope(db, actor)
	if err != nil {
		return nil, err
	}
	d := truncateDay(day)

	var seats []OccupancyRow
	q := db.Table("cabins").
		Select("cabins.id AS property_id, cabins.name AS property_name, 'cabin' AS property_type, cabins.partner_id AS partner_id, "+
			"COUNT(DISTINCT seats.id) AS total_units, COUNT(DISTINCT bookings.inventory_unit_id) AS occupied_units").
		Joins("JOIN seats ON seats.cabin_id = cabins.id AND seats.is_active = ?", true).
		Joins("LEFT JOIN bookings ON bookings.inventory_unit_id = seats.id AND bookings.unit_type = ? AND bookings.payment_status = ? AND bookings.start_date <= ? AND bookings.end_date >= ?",
			models.UnitSeat, models.StatusCompleted, d, d).
		Where("cabins.is_active = ?", true).
		Group("cabins.id, cabins.name, cabins.partner_id")
	if partnerID != nil {
		q = q.Where("cabins.partner_id = ?", *partnerID)
	}
	if err := q.Scan(&seats).Error; err != nil {
		return nil, apperror.Internal(err)
	}

	var beds []OccupancyRow
	q = db.Table("hostels").
		Select("hostels.id AS property_id, hostels.name AS property_name, 'hostel' AS property_type, hostels.partner_id AS partner_id, "+
			"COUNT(DISTINCT hostel_beds.id) AS total_units, COUNT(DISTINCT bookings.inventory_unit_id) AS occupied_units").
		Joins("JOIN hostel_rooms ON hostel_rooms.hostel_id = hostels.id AND hostel_rooms.is_active = ?", true).
		Joins("JOIN hostel_beds ON hostel_beds.room_id = hostel_rooms.id AND hostel_beds.is_active = ?", true).
		Joins("LEFT JOIN bookings ON bookings.inventory_unit_id = hostel_beds.id AND bookings.unit_type = ? AND bookings.payment_status = ? AND bookings.start_date <= ? AND bookings.end_date >= ?",
			models.UnitBed, models.StatusCompleted, d, d).
		Where("hostels.is_active = ?", true).
		Group("hostels.id, hostels.name, hostels.partner_id")
	if partnerID != nil {
		q = q.Where("hostels.partner_id = ?", *partnerID)
	}
	if err := q.Scan(&beds).Error; err != nil {
		return nil, apperror.Internal(err)
	}

	rows := append(seats, beds...)
	for i := range rows {
		if rows[i].TotalUnits > 0 {
			rows[i].Rate = round2(float64(rows[i].OccupiedUnits) / float64(rows[i].TotalUnits) * 100)
		}
	}
	return rows, nil
}

// Revenue sums payment receipts issued between from and to, inclusive.
func (s *ReportService) Revenue(ctx context.Context, actor Actor, from, to time.Time) ([]RevenueRow, error) {
	db := s.db.WithContext(ctx)
	partnerID, err := s.scope(db, actor)
	if err != nil {
		return nil, err
	}
	start, end := truncateDay(from), truncateDay(to).AddDate(0, 0, 1)
	if !end.After(start) {
		return nil, apperror.Validation("to must not be before from")
	}

	var rows []RevenueRow
	q := db.Table("transactions").
		Select("transactions.partner_id AS partner_id, partners.business_name AS business_name, COUNT(*) AS bookings, SUM(transactions.amount) AS gross").
		Joins("JOIN partners ON partners.id = transactions.partner_id").
		Where("transactions.kind = ? AND transactions.created_at >= ? AND transactions.created_at < ?", models.TransactionPayment, start, end).
		Group("transactions.partner_id, partners.business_name").
		Order("gross DESC")
	if partnerID != nil {
		q = q.Where("transactions.partner_id = ?", *partnerID)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	for i := range rows {
		rows[i].Gross = round2(rows[i].Gross)
	}
	return rows, nil
}

// Payouts is revenue net of each partner's commission. A flat commission is
// charged per booking.
func (s *ReportService) Payouts(ctx context.Context, actor Actor, from, to time.Time) ([]PayoutRow, error) {
	revenue, err := s.Revenue(ctx, actor, from, to)
	if err != nil {
		return nil, err
	}
	if len(revenue) == 0 {
		return []PayoutRow{}, nil
	}

	ids := make([]uuid.UUID, 0, len(revenue))
	for _, r := range revenue {
		ids = append(ids, r.PartnerID)
	}
	var partners []models.Partner
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&partners).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	settings := make(map[uuid.UUID]models.CommissionSettings, len(partners))
	for i := range partners {
		cs, err := partners[i].Commission()
		if err != nil {
			return nil, apperror.Internal(err)
		}
		settings[partners[i].ID] = cs
	}

	out := make([]PayoutRow, 0, len(revenue))
	for _, r := range revenue {
		cs := settings[r.PartnerID]
		var commission float64
		if cs.Type == models.CommissionFlat {
			commission = round2(cs.Value * float64(r.Bookings))
			if commission > r.Gross {
				commission = r.Gross
			}
		} else {
			commission = cs.Amount(r.Gross)
		}
		out = append(out, PayoutRow{RevenueRow: r, Commission: commission, Net: round2(r.Gross - commission)})
	}
	return out, nil
}

// PayoutsXLSX renders Payouts as a single-sheet workbook.
func (s *ReportService) PayoutsXLSX(ctx context.Context, actor Actor, from, to time.Time) ([]byte, error) {
	rows, err := s.Payouts(ctx, actor, from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Payouts"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, apperror.Internal(err)
	}

	headers := []interface{}{"Partner ID", "Business", "Bookings", "Gross", "Commission", "Net"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, apperror.Internal(err)
	}
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		values := []interface{}{row.PartnerID.String(), row.BusinessName, row.Bookings, row.Gross, row.Commission, row.Net}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, apperror.Internal(err)
		}
	}
	period := []interface{}{"Period", fmt.Sprintf("%s to %s", from.Format(dateLayout), to.Format(dateLayout))}
	if err := f.SetSheetRow(sheet, "H1", &period); err != nil {
		return nil, apperror.Internal(err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, apperror.Internal(err)
	}
	return buf.Bytes(), nil
}
