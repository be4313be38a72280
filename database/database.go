package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anjiri1684/study_space/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens PostgreSQL, or SQLite when dsn starts with "sqlite:" (local dev).
func Connect(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "sqlite:") {
		dialector = sqlite.Open(strings.TrimPrefix(dsn, "sqlite:"))
	} else {
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.WithField("driver", dialector.Name()).Info("✅ Database connected successfully")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.State{},
		&models.City{},
		&models.Area{},
		&models.Partner{},
		&models.Cabin{},
		&models.Seat{},
		&models.Hostel{},
		&models.HostelRoom{},
		&models.HostelBed{},
		&models.Booking{},
		&models.Transaction{},
		&models.DeviceToken{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if db.Dialector.Name() == "postgres" {
		return ensureNoOverlapConstraint(db)
	}
	return nil
}

// ensureNoOverlapConstraint backs the per-unit row lock with a GiST exclusion
// constraint: no two live bookings may cover the same unit on the same day.
func ensureNoOverlapConstraint(db *gorm.DB) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS btree_gist`,
		`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap') THEN
		ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap EXCLUDE USING gist (
			unit_type WITH =,
			inventory_unit_id WITH =,
			daterange(start_date, end_date, '[]') WITH &&
		) WHERE (payment_status IN ('pending', 'completed'));
	END IF;
END $$`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("booking overlap constraint: %w", err)
		}
	}
	return nil
}

// IsOverlapViolation reports whether err came from the bookings_no_overlap
// exclusion constraint.
func IsOverlapViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

// IsUniqueViolation reports a duplicate key on either supported driver.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
