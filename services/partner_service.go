package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anjiri1684/study_space/apperror"
	"github.com/anjiri1684/study_space/database"
	"github.com/anjiri1684/study_space/models"
	"github.com/anjiri1684/study_space/notifications"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PartnerService struct {
	db     *gorm.DB
	log    *logrus.Logger
	mailer notifications.Mailer
}

func NewPartnerService(db *gorm.DB, log *logrus.Logger, mailer notifications.Mailer) *PartnerService {
	return &PartnerService{db: db, log: log, mailer: mailer}
}

var partnerTransitions = map[string][]string{
	models.PartnerPending:   {models.PartnerApproved, models.PartnerRejected},
	models.PartnerApproved:  {models.PartnerSuspended},
	models.PartnerSuspended: {models.PartnerApproved},
	models.PartnerRejected:  {models.PartnerApproved},
}

type PartnerApplication struct {
	BusinessName string
	ContactPhone string
}

func (s *PartnerService) Apply(ctx context.Context, actor Actor, in PartnerApplication) (*models.Partner, error) {
	p := models.Partner{
		UserID:       actor.UserID,
		BusinessName: in.BusinessName,
		ContactPhone: in.ContactPhone,
		Status:       models.PartnerPending,
	}
	if err := p.SetCommission(models.CommissionSettings{Type: models.CommissionPercentage, Value: 10}); err != nil {
		return nil, apperror.Internal(err)
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Terminal("you have already applied as a partner")
		}
		return nil, apperror.Internal(err)
	}
	return &p, nil
}

func (s *PartnerService) Mine(ctx context.Context, actor Actor) (*models.Partner, error) {
	var p models.Partner
	if err := s.db.WithContext(ctx).First(&p, "user_id = ?", actor.UserID).Error; err != nil {
		return nil, notFoundOr(err, "no partner application found")
	}
	return &p, nil
}

func (s *PartnerService) List(ctx context.Context, status string) ([]models.Partner, error) {
	q := s.db.WithContext(ctx).Preload("User").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var partners []models.Partner
	if err := q.Find(&partners).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return partners, nil
}

// SetStatus moves a partner through review. Approval promotes the applicant
// to the vendor role; the role is kept on suspension so history stays visible.
func (s *PartnerService) SetStatus(ctx context.Context, id uuid.UUID, status, reason string) (*models.Partner, error) {
	var p models.Partner
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").First(&p, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "partner not found")
		}
		allowed := false
		for _, next := range partnerTransitions[p.Status] {
			if next == status {
				allowed = true
			}
		}
		if !allowed {
			return apperror.Validation(fmt.Sprintf("cannot move partner from %s to %s", p.Status, status))
		}

		updates := map[string]interface{}{"status": status}
		if reason != "" {
			updates["rejection_reason"] = reason
		}
		if err := tx.Model(&models.Partner{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
			return err
		}
		p.Status = status
		if status == models.PartnerApproved && p.User.Role == models.RoleStudent {
			if err := tx.Model(&models.User{}).Where("id = ?", p.UserID).Update("role", models.RoleVendor).Error; err != nil {
				return err
			}
			p.User.Role = models.RoleVendor
		}
		return nil
	})
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.Internal(err)
	}

	s.notifyStatus(&p)
	return &p, nil
}

func (s *PartnerService) notifyStatus(p *models.Partner) {
	if s.mailer == nil {
		return
	}
	var subject, body string
	switch p.Status {
	case models.PartnerApproved:
		subject, body = "Your Partner Application has been Approved!", "<h1>Congratulations!</h1><p>Your property can now accept bookings. Sign in again to open the vendor dashboard.</p>"
	case models.PartnerRejected:
		subject, body = "Update on your Partner Application", "<h1>Application Update</h1><p>We are unable to approve your application at this time.</p>"
	case models.PartnerSuspended:
		subject, body = "Your Partner Account is Suspended", "<h1>Account Suspended</h1><p>Your properties are hidden from booking until the suspension is lifted.</p>"
	default:
		return
	}
	go func() {
		if err := s.mailer.SendEmail(p.User.FullName, p.User.Email, subject, body); err != nil {
			s.log.WithError(err).WithField("partner_id", p.ID).Error("🔥 Failed to send partner status email")
		}
	}()
}

func (s *PartnerService) UpdateCommission(ctx context.Context, id uuid.UUID, cs models.CommissionSettings) (*models.Partner, error) {
	if cs.Type != models.CommissionPercentage && cs.Type != models.CommissionFlat {
		return nil, apperror.Validation("commission type must be percentage or flat")
	}
	if cs.Value < 0 || (cs.Type == models.CommissionPercentage && cs.Value > 100) {
		return nil, apperror.Validation("commission value out of range")
	}
	db := s.db.WithContext(ctx)
	var p models.Partner
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "partner not found")
	}
	if err := p.SetCommission(cs); err != nil {
		return nil, apperror.Internal(err)
	}
	if err := db.Model(&models.Partner{}).Where("id = ?", p.ID).Update("commission_settings", p.CommissionSettings).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return &p, nil
}
