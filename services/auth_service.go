package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anjiri1684/study_space/apperror"
	"github.com/anjiri1684/study_space/database"
	"github.com/anjiri1684/study_space/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db     *gorm.DB
	secret []byte
	expiry time.Duration
}

func NewAuthService(db *gorm.DB, jwtSecret string, expiry time.Duration) *AuthService {
	return &AuthService{db: db, secret: []byte(jwtSecret), expiry: expiry}
}

type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Phone    string
}

// Register creates a student account. Vendors start as students and are
// promoted when their partner application is approved.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	user := models.User{
		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: string(hashed),
		Role:     models.RoleStudent,
		IsActive: true,
	}
	if in.Phone != "" {
		user.Phone = &in.Phone
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Terminal("email already exists")
		}
		return nil, apperror.Internal(err)
	}
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperror.Unauthorized("invalid email or password")
		}
		return "", nil, apperror.Internal(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, apperror.Unauthorized("invalid email or password")
	}
	if !user.IsActive {
		return "", nil, apperror.Forbidden("account is disabled")
	}

	token, err := s.IssueToken(&user)
	if err != nil {
		return "", nil, apperror.Internal(err)
	}
	return token, &user, nil
}

func (s *AuthService) IssueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(s.expiry).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken validates a raw token string, for callers outside the JWT
// middleware such as the websocket handshake.
func (s *AuthService) ParseToken(raw string) (Actor, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Actor{}, apperror.Unauthorized("invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, apperror.Unauthorized("invalid token claims")
	}
	return ActorFromClaims(claims)
}

func ActorFromClaims(claims jwt.MapClaims) (Actor, error) {
	rawID, _ := claims["user_id"].(string)
	id, err := uuid.Parse(rawID)
	if err != nil {
		return Actor{}, apperror.Unauthorized("invalid user id in token")
	}
	role, _ := claims["role"].(string)
	return Actor{UserID: id, Role: role}, nil
}

func (s *AuthService) Me(ctx context.Context, actor Actor) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", actor.UserID).Error; err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	return &user, nil
}

func (s *AuthService) RegisterDevice(ctx context.Context, actor Actor, token, platform string) (*models.DeviceToken, error) {
	db := s.db.WithContext(ctx)
	var dt models.DeviceToken
	err := db.Where("token = ?", token).First(&dt).Error
	switch {
	case err == nil:
		if dt.UserID != actor.UserID || dt.Platform != platform {
			dt.UserID, dt.Platform = actor.UserID, platform
			if err := db.Save(&dt).Error; err != nil {
				return nil, apperror.Internal(err)
			}
		}
		return &dt, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		dt = models.DeviceToken{UserID: actor.UserID, Token: token, Platform: platform}
		if err := db.Create(&dt).Error; err != nil {
			return nil, apperror.Internal(err)
		}
		return &dt, nil
	default:
		return nil, apperror.Internal(err)
	}
}
