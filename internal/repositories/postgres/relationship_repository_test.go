package postgres

import (
	"context"
	"testing"
	"time"

	"skab-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.FriendRequest{},
		&models.Friendship{},
		&models.Block{},
	))
	return db
}

func pendingRequest(fromID, toID uint) *models.FriendRequest {
	return &models.FriendRequest{
		FromID: fromID,
		ToID:   toID,
		Status: models.RequestStatusPending,
	}
}

func edgePair(a, b uint) [2]*models.Friendship {
	now := time.Now().UTC()
	return [2]*models.Friendship{
		{OwnerID: a, FriendID: b, FriendedAt: now},
		{OwnerID: b, FriendID: a, FriendedAt: now},
	}
}

// A pair that was friends, removed each other and reconciled must be able
// to become friends again. The edge index only covers live rows, so the
// second accept may not collide with remnants of the first friendship.
func TestFriendshipSurvivesRemoveAndReAccept(t *testing.T) {
	ctx := context.Background()
	repo := NewRelationshipRepository(openTestDB(t))

	req := pendingRequest(1, 2)
	require.NoError(t, repo.CreateRequest(ctx, req))
	require.NoError(t, repo.AcceptRequest(ctx, req, edgePair(1, 2)))

	friends, err := repo.AreFriends(ctx, 1, 2)
	require.NoError(t, err)
	require.True(t, friends)

	require.NoError(t, repo.RemoveFriendship(ctx, 1, 2))
	friends, err = repo.AreFriends(ctx, 1, 2)
	require.NoError(t, err)
	require.False(t, friends)

	req2 := pendingRequest(2, 1)
	require.NoError(t, repo.CreateRequest(ctx, req2))
	require.NoError(t, repo.AcceptRequest(ctx, req2, edgePair(2, 1)))

	friends, err = repo.AreFriends(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, friends)
	friends, err = repo.AreFriends(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, friends)
}

// Same shape for blocks: unblocking frees the pair index slot for a later
// re-block.
func TestBlockSurvivesUnblockAndReBlock(t *testing.T) {
	ctx := context.Background()
	repo := NewRelationshipRepository(openTestDB(t))

	require.NoError(t, repo.CreateBlock(ctx, &models.Block{BlockerID: 1, BlockedID: 2, BlockedName: "bob"}))
	require.NoError(t, repo.DeleteBlock(ctx, 1, 2))

	blocked, err := repo.BlockExistsBetween(ctx, 1, 2)
	require.NoError(t, err)
	require.False(t, blocked)

	require.NoError(t, repo.CreateBlock(ctx, &models.Block{BlockerID: 1, BlockedID: 2, BlockedName: "bob"}))

	block, err := repo.GetBlock(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, block)
	assert.False(t, block.BlockedAt.IsZero())
}

// Blocking wipes friendship edges and pending requests between the pair,
// and none of that residue may prevent re-friending after an unblock.
func TestCreateBlockClearsEdgesAndRequests(t *testing.T) {
	ctx := context.Background()
	repo := NewRelationshipRepository(openTestDB(t))

	req := pendingRequest(1, 2)
	require.NoError(t, repo.CreateRequest(ctx, req))
	require.NoError(t, repo.AcceptRequest(ctx, req, edgePair(1, 2)))
	require.NoError(t, repo.CreateRequest(ctx, pendingRequest(3, 1)))

	require.NoError(t, repo.CreateBlock(ctx, &models.Block{BlockerID: 1, BlockedID: 2}))

	friends, err := repo.AreFriends(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, friends)

	pending, err := repo.PendingRequest(ctx, 1, 2)
	require.NoError(t, err)
	assert.Nil(t, pending)

	// an unrelated pending request is untouched
	other, err := repo.PendingRequest(ctx, 3, 1)
	require.NoError(t, err)
	assert.NotNil(t, other)

	require.NoError(t, repo.DeleteBlock(ctx, 1, 2))

	req2 := pendingRequest(1, 2)
	require.NoError(t, repo.CreateRequest(ctx, req2))
	require.NoError(t, repo.AcceptRequest(ctx, req2, edgePair(1, 2)))
	friends, err = repo.AreFriends(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, friends)
}
