package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, Date("2025-06-01"), d)

	for _, bad := range []string{"", "2025-6-1", "06/01/2025", "2025-02-30", "2025-06-01T10:00:00Z"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)

	assert.Equal(t, Date("2025-06-01"), Today(now, time.UTC))
	assert.Equal(t, Date("2025-05-31"), Today(now, time.FixedZone("UTC-7", -7*60*60)))
}

func TestDate_Before(t *testing.T) {
	assert.True(t, Date("2025-05-31").Before("2025-06-01"))
	assert.False(t, Date("2025-06-01").Before("2025-06-01"))
	assert.True(t, Date("2024-12-31").Before("2025-01-01"))
}

func TestDate_Scan(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  Date
	}{
		{"time", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "2025-06-01"},
		{"text", "2025-06-01", "2025-06-01"},
		{"text with time", "2025-06-01 00:00:00+00:00", "2025-06-01"},
		{"bytes", []byte("2025-06-01"), "2025-06-01"},
		{"null", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.value))
			assert.Equal(t, tt.want, d)
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
	assert.Error(t, d.Scan("June"))
}

func TestDate_Value(t *testing.T) {
	v, err := Date("2025-06-01").Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", v)

	v, err = Date("").Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
