package contract

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestMaxDurationYears(t *testing.T) {
	assert.Equal(t, 25, MaxDurationYears(DerechoUsoInmediato, false))
	assert.Equal(t, 25, MaxDurationYears(DerechoUsoInmediato, true))
	assert.Equal(t, 50, MaxDurationYears(DerechoConcesion, false))
	assert.Equal(t, 99, MaxDurationYears(DerechoConcesion, true))
	assert.Equal(t, 50, MaxDurationYears(DerechoArrendamiento, false))
}

func TestNewDerechoFunerarioContrato(t *testing.T) {
	tenantID := uuid.New()
	sepID := uuid.New()
	fee := decimal.NewFromFloat(42.50)

	t.Run("concession within cap", func(t *testing.T) {
		c, err := NewDerechoFunerarioContrato(tenantID, sepID, DerechoConcesion,
			date(2000, 1, 1), date(2049, 12, 31), false, fee)
		require.NoError(t, err)
		assert.Equal(t, ContratoActivo, c.Estado)
		events := c.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventContratoActivated, events[0].EventType())
	})

	t.Run("concession over 50 years is rejected", func(t *testing.T) {
		_, err := NewDerechoFunerarioContrato(tenantID, sepID, DerechoConcesion,
			date(2000, 1, 1), date(2052, 1, 1), false, fee)
		assert.Error(t, err)
	})

	t.Run("legacy flag allows 99 years", func(t *testing.T) {
		_, err := NewDerechoFunerarioContrato(tenantID, sepID, DerechoConcesion,
			date(2000, 1, 1), date(2098, 12, 31), true, fee)
		assert.NoError(t, err)
	})

	t.Run("immediate use capped at 25 years", func(t *testing.T) {
		_, err := NewDerechoFunerarioContrato(tenantID, sepID, DerechoUsoInmediato,
			date(2000, 1, 1), date(2026, 1, 2), false, fee)
		assert.Error(t, err)
	})

	t.Run("end before start is rejected", func(t *testing.T) {
		_, err := NewDerechoFunerarioContrato(tenantID, sepID, DerechoConcesion,
			date(2020, 1, 1), date(2019, 1, 1), false, fee)
		assert.Error(t, err)
	})

	t.Run("negative fee is rejected", func(t *testing.T) {
		_, err := NewDerechoFunerarioContrato(tenantID, sepID, DerechoConcesion,
			date(2020, 1, 1), date(2030, 1, 1), false, decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

func TestContratoCoversDate(t *testing.T) {
	c, err := NewDerechoFunerarioContrato(uuid.New(), uuid.New(), DerechoConcesion,
		date(2020, 6, 1), date(2040, 6, 1), false, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, c.CoversDate(date(2026, 1, 1)))
	assert.True(t, c.CoversDate(date(2020, 6, 1)))
	assert.False(t, c.CoversDate(date(2020, 5, 31)))
	assert.False(t, c.CoversDate(date(2040, 6, 2)))
}

func TestOwnershipRecord(t *testing.T) {
	t.Run("close is one-shot", func(t *testing.T) {
		r := NewOwnershipRecord(uuid.New(), uuid.New(), uuid.New(), date(2020, 1, 1))
		require.True(t, r.IsActive())
		require.NoError(t, r.Close(date(2026, 3, 1)))
		assert.False(t, r.IsActive())
		assert.Error(t, r.Close(date(2026, 3, 2)))
	})

	t.Run("pensioner defaults to today", func(t *testing.T) {
		r := NewOwnershipRecord(uuid.New(), uuid.New(), uuid.New(), date(2020, 1, 1))
		r.SetPensioner(nil)
		require.NotNil(t, r.PensionerSinceDate)
		assert.Equal(t, time.Now().Year(), r.PensionerSinceDate.Year())
	})

	t.Run("discount is not retroactive", func(t *testing.T) {
		r := NewOwnershipRecord(uuid.New(), uuid.New(), uuid.New(), date(2020, 1, 1))
		since := date(2025, 2, 10)
		r.SetPensioner(&since)
		assert.False(t, r.DiscountAppliesForYear(2024))
		assert.True(t, r.DiscountAppliesForYear(2025))
		assert.True(t, r.DiscountAppliesForYear(2026))
	})
}

func TestBeneficiario(t *testing.T) {
	b := NewBeneficiario(uuid.New(), uuid.New(), uuid.New(), date(2024, 1, 1))
	require.True(t, b.IsActive())
	require.NoError(t, b.Close(date(2026, 1, 1)))
	assert.False(t, b.IsActive())
	assert.Error(t, b.Close(date(2026, 2, 1)))
}
