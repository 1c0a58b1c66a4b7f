package service

import (
	"context"
	"testing"

	"massage-booking/internal/domain/entity"
	repoImpl "massage-booking/internal/repository"
	"massage-booking/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_MetadataRoundTrip(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repoImpl.NewAuditLogRepository()
	audit := NewAuditService(testutil.Logger(), repo)
	ctx := context.Background()
	admin := uuid.New()

	require.NoError(t, audit.LogUpdate(ctx, db, &admin, entity.AuditActionBookingNotesUpdate, "booking", "b-1",
		map[string]string{"notes": ""}, map[string]string{"notes": "prefers firm pressure"}))
	require.NoError(t, audit.LogCreate(ctx, db, nil, entity.AuditActionUserRegister, "user", "u-1", nil))

	logs, err := repo.FindAll(ctx, db)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	var update entity.AuditLog
	for _, l := range logs {
		if l.Action == entity.AuditActionBookingNotesUpdate {
			update = l
		}
	}
	require.NotNil(t, update.UserID)
	assert.Equal(t, admin, *update.UserID)
	assert.Equal(t, "booking", update.Metadata["entity"])
	assert.Equal(t, "b-1", update.Metadata["entity_id"])
	assert.Equal(t, map[string]interface{}{"notes": ""}, update.Metadata["old_value"])
	assert.Equal(t, map[string]interface{}{"notes": "prefers firm pressure"}, update.Metadata["new_value"])
}
