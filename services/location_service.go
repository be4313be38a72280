package services

import (
	"context"

	"github.com/anjiri1684/study_space/apperror"
	"github.com/anjiri1684/study_space/database"
	"github.com/anjiri1684/study_space/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LocationService struct {
	db *gorm.DB
}

func NewLocationService(db *gorm.DB) *LocationService {
	return &LocationService{db: db}
}

func (s *LocationService) Tree(ctx context.Context) ([]models.State, error) {
	var states []models.State
	err := s.db.WithContext(ctx).
		Preload("Cities", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Preload("Cities.Areas", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Order("name").Find(&states).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return states, nil
}

func (s *LocationService) CreateState(ctx context.Context, name string) (*models.State, error) {
	st := models.State{Name: name}
	if err := s.db.WithContext(ctx).Create(&st).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Terminal("state already exists")
		}
		return nil, apperror.Internal(err)
	}
	return &st, nil
}

func (s *LocationService) CreateCity(ctx context.Context, stateID uuid.UUID, name string) (*models.City, error) {
	db := s.db.WithContext(ctx)
	if err := db.First(&models.State{}, "id = ?", stateID).Error; err != nil {
		return nil, notFoundOr(err, "state not found")
	}
	city := models.City{StateID: stateID, Name: name}
	if err := db.Create(&city).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return &city, nil
}

func (s *LocationService) CreateArea(ctx context.Context, cityID uuid.UUID, name string) (*models.Area, error) {
	db := s.db.WithContext(ctx)
	if err := db.First(&models.City{}, "id = ?", cityID).Error; err != nil {
		return nil, notFoundOr(err, "city not found")
	}
	area := models.Area{CityID: cityID, Name: name}
	if err := db.Create(&area).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return &area, nil
}
