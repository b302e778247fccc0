package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddYears(t *testing.T) {
	t.Run("plain date", func(t *testing.T) {
		start := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2036, 3, 15, 0, 0, 0, 0, time.UTC), AddYears(start, 10))
	})

	t.Run("leap day falls back to feb 28", func(t *testing.T) {
		start := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), AddYears(start, 1))
	})

	t.Run("leap day to leap year keeps feb 29", func(t *testing.T) {
		start := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC), AddYears(start, 4))
	})
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2026, 7, 1, 13, 45, 12, 99, time.Local)
	got := DateOnly(ts)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), got)
}
