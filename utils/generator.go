package utils

import (
	"errors"
	"math/rand"
	"time"

	"github.com/anjiri1684/study_space/models"
	"gorm.io/gorm"
)

const receiptSuffixLength = 6
const letterBytes = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateReceiptNumber returns an unused receipt number of the form
// RCP-20250101-X7K2QF. It must run inside the transaction that inserts the
// receipt so the uniqueness check and insert see the same snapshot.
func GenerateReceiptNumber(tx *gorm.DB, at time.Time) (string, error) {
	prefix := "RCP-" + at.UTC().Format("20060102") + "-"
	for attempt := 0; attempt < 10; attempt++ {
		b := make([]byte, receiptSuffixLength)
		for i := range b {
			b[i] = letterBytes[rand.Intn(len(letterBytes))]
		}
		code := prefix + string(b)

		var count int64
		if err := tx.Model(&models.Transaction{}).Where("receipt_number = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique receipt number")
}
