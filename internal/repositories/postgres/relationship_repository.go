package postgres

import (
	"context"
	"errors"
	"time"

	"skab-service/internal/models"

	"gorm.io/gorm"
)

// RelationshipRepository owns friend requests, friendship edges and blocks.
// Every multi-record effect (accept, remove, block) runs inside one
// transaction so readers never observe a single dangling edge.
type RelationshipRepository struct {
	db *gorm.DB
}

func NewRelationshipRepository(db *gorm.DB) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

// PendingRequest returns the pending request from -> to, or nil when none exists.
func (r *RelationshipRepository) PendingRequest(ctx context.Context, fromID, toID uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("from_id = ? AND to_id = ? AND status = ?", fromID, toID, models.RequestStatusPending).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *RelationshipRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RelationshipRepository) DeleteRequest(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.FriendRequest{}, id).Error
}

// AcceptRequest marks the request accepted and creates both directed edges
// in a single transaction.
func (r *RelationshipRepository) AcceptRequest(ctx context.Context, req *models.FriendRequest, edges [2]*models.Friendship) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.FriendRequest{}).
			Where("id = ? AND status = ?", req.ID, models.RequestStatusPending).
			Update("status", models.RequestStatusAccepted).Error; err != nil {
			return err
		}
		for _, edge := range edges {
			if err := tx.Create(edge).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *RelationshipRepository) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("owner_id = ? AND friend_id = ?", a, b).
		Count(&count).Error
	return count > 0, err
}

// RemoveFriendship deletes both directed edges in a single transaction.
func (r *RelationshipRepository) RemoveFriendship(ctx context.Context, a, b uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.
			Where("(owner_id = ? AND friend_id = ?) OR (owner_id = ? AND friend_id = ?)", a, b, b, a).
			Delete(&models.Friendship{}).Error
	})
}

// CreateBlock writes the block and cleans up friendship edges and pending
// requests in either direction, all atomically.
func (r *RelationshipRepository) CreateBlock(ctx context.Context, block *models.Block) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if block.BlockedAt.IsZero() {
			block.BlockedAt = time.Now().UTC()
		}
		if err := tx.Create(block).Error; err != nil {
			return err
		}
		if err := tx.
			Where("(owner_id = ? AND friend_id = ?) OR (owner_id = ? AND friend_id = ?)",
				block.BlockerID, block.BlockedID, block.BlockedID, block.BlockerID).
			Delete(&models.Friendship{}).Error; err != nil {
			return err
		}
		return tx.
			Where("(from_id = ? AND to_id = ?) OR (from_id = ? AND to_id = ?)",
				block.BlockerID, block.BlockedID, block.BlockedID, block.BlockerID).
			Where("status = ?", models.RequestStatusPending).
			Delete(&models.FriendRequest{}).Error
	})
}

func (r *RelationshipRepository) GetBlock(ctx context.Context, blockerID, blockedID uint) (*models.Block, error) {
	var block models.Block
	err := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		First(&block).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &block, nil
}

// BlockExistsBetween reports whether either user has blocked the other.
func (r *RelationshipRepository) BlockExistsBetween(ctx context.Context, a, b uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

func (r *RelationshipRepository) DeleteBlock(ctx context.Context, blockerID, blockedID uint) error {
	return r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{}).Error
}

func (r *RelationshipRepository) ListFriends(ctx context.Context, ownerID uint) ([]models.Friendship, error) {
	var edges []models.Friendship
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("friended_at DESC").
		Find(&edges).Error
	return edges, err
}

func (r *RelationshipRepository) ListIncomingRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("to_id = ? AND status = ?", userID, models.RequestStatusPending).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *RelationshipRepository) ListOutgoingRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("from_id = ? AND status = ?", userID, models.RequestStatusPending).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *RelationshipRepository) ListBlocks(ctx context.Context, blockerID uint) ([]models.Block, error) {
	var blocks []models.Block
	err := r.db.WithContext(ctx).
		Where("blocker_id = ?", blockerID).
		Order("blocked_at DESC").
		Find(&blocks).Error
	return blocks, err
}
