package services

import (
	"context"
	"testing"
	"time"

	"github.com/anjiri1684/study_space/apperror"
	"github.com/anjiri1684/study_space/database"
	"github.com/anjiri1684/study_space/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T) *AuthService {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	return NewAuthService(db, "jwt-test-secret", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{FullName: " Asha ", Email: "Asha@Example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.NotEqual(t, "s3cret-pass", user.Password)

	_, err = svc.Register(ctx, RegisterInput{FullName: "Asha", Email: "asha@example.com", Password: "other-pass"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	_, _, err = svc.Login(ctx, "asha@example.com", "wrong")
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
	_, _, err = svc.Login(ctx, "nobody@example.com", "s3cret-pass")
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	token, logged, err := svc.Login(ctx, "ASHA@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	actor, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.UserID)
	assert.Equal(t, models.RoleStudent, actor.Role)

	me, err := svc.Me(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, "Asha", me.FullName)
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	svc := newAuth(t)
	other := NewAuthService(nil, "another-secret", time.Hour)

	token, err := other.IssueToken(&models.User{Base: models.Base{ID: uuid.New()}, Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
	_, err = svc.ParseToken("not-a-token")
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
}

func TestParseTokenRejectsExpiredToken(t *testing.T) {
	svc := newAuth(t)
	expired := NewAuthService(nil, "jwt-test-secret", -time.Minute)

	token, err := expired.IssueToken(&models.User{Base: models.Base{ID: uuid.New()}, Role: models.RoleStudent})
	require.NoError(t, err)
	_, err = svc.ParseToken(token)
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
}

func TestRegisterDeviceUpserts(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()
	a, err := svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)
	b, err := svc.Register(ctx, RegisterInput{FullName: "B", Email: "b@example.com", Password: "password1"})
	require.NoError(t, err)

	first, err := svc.RegisterDevice(ctx, Actor{UserID: a.ID, Role: a.Role}, "fcm-token-1", "android")
	require.NoError(t, err)

	moved, err := svc.RegisterDevice(ctx, Actor{UserID: b.ID, Role: b.Role}, "fcm-token-1", "android")
	require.NoError(t, err)
	assert.Equal(t, first.ID, moved.ID)
	assert.Equal(t, b.ID, moved.UserID)

	var n int64
	svc.db.Model(&models.DeviceToken{}).Count(&n)
	assert.EqualValues(t, 1, n)
}
