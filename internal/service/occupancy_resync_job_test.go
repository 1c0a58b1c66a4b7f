package service

import (
	"context"
	"testing"

	"massage-booking/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccupancyResyncJob(t *testing.T) {
	cache, mr, db := newTestOccupancyCache(t)
	seedBooking(t, db, "2025-06-01", "10am")

	job, err := NewOccupancyResyncJob(cache, "@every 1h", testutil.Logger())
	require.NoError(t, err)

	job.Start(context.Background())
	job.Stop()
	job.Stop()

	assert.True(t, mr.Exists(OccupancyKeyPrefix+"2025-06-01"), "start runs one resync immediately")
}

func TestOccupancyResyncJob_InvalidSpec(t *testing.T) {
	cache, _, _ := newTestOccupancyCache(t)

	_, err := NewOccupancyResyncJob(cache, "every now and then", testutil.Logger())
	assert.Error(t, err)
}
