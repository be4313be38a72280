package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/anjiri1684/study_space/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReceiptNumberFormat(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)

	code, err := GenerateReceiptNumber(db, time.Date(2025, 1, 15, 23, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^RCP-20250115-[A-Z2-9]{6}$`), code)
}

func TestGenerateReceiptNumberIsUnique(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateReceiptNumber(db, time.Now())
		require.NoError(t, err)
		assert.False(t, seen[code])
		seen[code] = true
	}
}
