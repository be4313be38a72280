package services

import (
	"context"
	"sync"
	"testing"

	"github.com/anjiri1684/study_space/apperror"
	"github.com/anjiri1684/study_space/logger"
	"github.com/anjiri1684/study_space/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to, subject string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	done chan struct{}
}

func newFakeMailer() *fakeMailer { return &fakeMailer{done: make(chan struct{}, 8)} }

func (m *fakeMailer) SendEmail(_, toEmail, subject, _ string) error {
	m.mu.Lock()
	m.sent = append(m.sent, sentMail{to: toEmail, subject: subject})
	m.mu.Unlock()
	m.done <- struct{}{}
	return nil
}

func TestPartnerApplicationLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mailer := newFakeMailer()
	svc := NewPartnerService(f.db, logger.Discard(), mailer)

	applicant := f.user("Nila Owner", "nila@example.com", models.RoleStudent)
	p, err := svc.Apply(ctx, f.actor(applicant), PartnerApplication{BusinessName: "Nila Study Rooms", ContactPhone: "9000000000"})
	require.NoError(t, err)
	assert.Equal(t, models.PartnerPending, p.Status)
	cs, err := p.Commission()
	require.NoError(t, err)
	assert.Equal(t, models.CommissionSettings{Type: models.CommissionPercentage, Value: 10}, cs)

	_, err = svc.Apply(ctx, f.actor(applicant), PartnerApplication{BusinessName: "Again"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	pending, err := svc.List(ctx, models.PartnerPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, p.ID, pending[0].ID)

	_, err = svc.SetStatus(ctx, p.ID, models.PartnerSuspended, "")
	assert.True(t, apperror.Is(err, apperror.KindValidation), "pending partners cannot be suspended")

	approved, err := svc.SetStatus(ctx, p.ID, models.PartnerApproved, "")
	require.NoError(t, err)
	assert.Equal(t, models.PartnerApproved, approved.Status)
	<-mailer.done

	var u models.User
	require.NoError(t, f.db.First(&u, "id = ?", applicant.ID).Error)
	assert.Equal(t, models.RoleVendor, u.Role)

	suspended, err := svc.SetStatus(ctx, p.ID, models.PartnerSuspended, "documents expired")
	require.NoError(t, err)
	assert.Equal(t, models.PartnerSuspended, suspended.Status)
	<-mailer.done

	mine, err := svc.Mine(ctx, Actor{UserID: applicant.ID, Role: models.RoleVendor})
	require.NoError(t, err)
	assert.Equal(t, models.PartnerSuspended, mine.Status)
	require.NotNil(t, mine.RejectionReason)
	assert.Equal(t, "documents expired", *mine.RejectionReason)

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "nila@example.com", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].subject, "Approved")
}

func TestUpdateCommission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewPartnerService(f.db, logger.Discard(), nil)

	p, err := svc.UpdateCommission(ctx, f.partner.ID, models.CommissionSettings{Type: models.CommissionFlat, Value: 50})
	require.NoError(t, err)
	cs, err := p.Commission()
	require.NoError(t, err)
	assert.Equal(t, 50.0, cs.Value)

	var stored models.Partner
	require.NoError(t, f.db.First(&stored, "id = ?", f.partner.ID).Error)
	cs, err = stored.Commission()
	require.NoError(t, err)
	assert.Equal(t, models.CommissionFlat, cs.Type)

	_, err = svc.UpdateCommission(ctx, f.partner.ID, models.CommissionSettings{Type: models.CommissionPercentage, Value: 120})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	_, err = svc.UpdateCommission(ctx, f.partner.ID, models.CommissionSettings{Type: "tiered", Value: 5})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
