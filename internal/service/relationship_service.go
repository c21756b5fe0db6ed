package service

import (
	"context"
	"errors"
	"time"

	"skab-service/internal/events"
	"skab-service/internal/models"
	"skab-service/pkg/apperr"
	"skab-service/pkg/logger"

	"gorm.io/gorm"
)

// RequestOutcome reports what SendRequest actually did: a mutual request is
// redirected into an acceptance instead of creating a duplicate.
type RequestOutcome string

const (
	OutcomePending  RequestOutcome = "pending"
	OutcomeAccepted RequestOutcome = "accepted"
)

type RelationshipService interface {
	SendRequest(ctx context.Context, fromID, toID uint) (RequestOutcome, error)
	AcceptRequest(ctx context.Context, selfID, fromID uint) error
	DeclineRequest(ctx context.Context, selfID, fromID uint) error
	CancelRequest(ctx context.Context, selfID, toID uint) error
	RemoveFriend(ctx context.Context, selfID, friendID uint) error
	BlockUser(ctx context.Context, selfID, targetID uint) error
	UnblockUser(ctx context.Context, selfID, targetID uint) error

	Friends(ctx context.Context, selfID uint) ([]models.Friendship, error)
	IncomingRequests(ctx context.Context, selfID uint) ([]models.FriendRequest, error)
	OutgoingRequests(ctx context.Context, selfID uint) ([]models.FriendRequest, error)
	BlockedUsers(ctx context.Context, selfID uint) ([]models.Block, error)
}

type relationshipService struct {
	graph RelationshipStore
	users UserStore
	bus   *events.Bus
	log   *logger.Logger
}

func NewRelationshipService(graph RelationshipStore, users UserStore, bus *events.Bus, log *logger.Logger) RelationshipService {
	return &relationshipService{graph: graph, users: users, bus: bus, log: log}
}

func (s *relationshipService) loadUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Transport("failed to load user", err)
	}
	return user, nil
}

func (s *relationshipService) SendRequest(ctx context.Context, fromID, toID uint) (RequestOutcome, error) {
	if fromID == toID {
		return "", apperr.Validation("cannot send a friend request to yourself")
	}

	if blocked, err := s.graph.BlockExistsBetween(ctx, fromID, toID); err != nil {
		return "", apperr.Transport("failed to check blocks", err)
	} else if blocked {
		return "", apperr.Permission("cannot send a friend request to this user")
	}

	if friends, err := s.graph.AreFriends(ctx, fromID, toID); err != nil {
		return "", apperr.Transport("failed to check friendship", err)
	} else if friends {
		return "", apperr.Conflict("you are already friends with this user")
	}

	if existing, err := s.graph.PendingRequest(ctx, fromID, toID); err != nil {
		return "", apperr.Transport("failed to check pending requests", err)
	} else if existing != nil {
		return "", apperr.Conflict("friend request already sent")
	}

	// A pending counter-request means both sides want the friendship:
	// redirect into an acceptance instead of creating a duplicate.
	if counter, err := s.graph.PendingRequest(ctx, toID, fromID); err != nil {
		return "", apperr.Transport("failed to check pending requests", err)
	} else if counter != nil {
		if err := s.AcceptRequest(ctx, fromID, toID); err != nil {
			return "", err
		}
		return OutcomeAccepted, nil
	}

	from, err := s.loadUser(ctx, fromID)
	if err != nil {
		return "", err
	}
	to, err := s.loadUser(ctx, toID)
	if err != nil {
		return "", err
	}

	req := &models.FriendRequest{
		FromID:            from.ID,
		ToID:              to.ID,
		FromName:          from.Username,
		FromDiscriminator: from.Discriminator,
		FromAvatar:        from.Avatar,
		ToName:            to.Username,
		ToDiscriminator:   to.Discriminator,
		ToAvatar:          to.Avatar,
		Status:            models.RequestStatusPending,
	}
	if err := s.graph.CreateRequest(ctx, req); err != nil {
		return "", apperr.Transport("failed to create friend request", err)
	}

	s.bus.Publish(events.RequestSent{Request: *req})
	return OutcomePending, nil
}

// AcceptRequest accepts the pending request fromID -> selfID, creating both
// friendship edges atomically with the status flip.
func (s *relationshipService) AcceptRequest(ctx context.Context, selfID, fromID uint) error {
	req, err := s.graph.PendingRequest(ctx, fromID, selfID)
	if err != nil {
		return apperr.Transport("failed to look up friend request", err)
	}
	if req == nil {
		return apperr.Conflict("friend request not found or already handled")
	}

	self, err := s.loadUser(ctx, selfID)
	if err != nil {
		return err
	}
	from, err := s.loadUser(ctx, fromID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	edges := [2]*models.Friendship{
		{
			OwnerID:             self.ID,
			FriendID:            from.ID,
			FriendName:          from.Username,
			FriendDiscriminator: from.Discriminator,
			FriendAvatar:        from.Avatar,
			FriendedAt:          now,
		},
		{
			OwnerID:             from.ID,
			FriendID:            self.ID,
			FriendName:          self.Username,
			FriendDiscriminator: self.Discriminator,
			FriendAvatar:        self.Avatar,
			FriendedAt:          now,
		},
	}
	if err := s.graph.AcceptRequest(ctx, req, edges); err != nil {
		return apperr.Transport("failed to accept friend request", err)
	}

	accepted := *req
	accepted.Status = models.RequestStatusAccepted
	s.bus.Publish(events.RequestAccepted{Request: accepted})
	return nil
}

func (s *relationshipService) DeclineRequest(ctx context.Context, selfID, fromID uint) error {
	return s.deleteRequest(ctx, fromID, selfID)
}

func (s *relationshipService) CancelRequest(ctx context.Context, selfID, toID uint) error {
	return s.deleteRequest(ctx, selfID, toID)
}

func (s *relationshipService) deleteRequest(ctx context.Context, fromID, toID uint) error {
	req, err := s.graph.PendingRequest(ctx, fromID, toID)
	if err != nil {
		return apperr.Transport("failed to look up friend request", err)
	}
	if req == nil {
		return apperr.Conflict("friend request not found or already handled")
	}
	if err := s.graph.DeleteRequest(ctx, req.ID); err != nil {
		return apperr.Transport("failed to delete friend request", err)
	}
	s.bus.Publish(events.RequestDeleted{FromID: fromID, ToID: toID})
	return nil
}

func (s *relationshipService) RemoveFriend(ctx context.Context, selfID, friendID uint) error {
	friends, err := s.graph.AreFriends(ctx, selfID, friendID)
	if err != nil {
		return apperr.Transport("failed to check friendship", err)
	}
	if !friends {
		return apperr.Conflict("you are not friends with this user")
	}
	if err := s.graph.RemoveFriendship(ctx, selfID, friendID); err != nil {
		return apperr.Transport("failed to remove friend", err)
	}
	s.bus.Publish(events.FriendshipRemoved{UserID: selfID, FriendID: friendID})
	return nil
}

// BlockUser writes the block and removes any friendship edges and pending
// requests between the pair as one atomic batch. Blocking an already
// blocked user is a safe no-op.
func (s *relationshipService) BlockUser(ctx context.Context, selfID, targetID uint) error {
	if selfID == targetID {
		return apperr.Validation("cannot block yourself")
	}
	existing, err := s.graph.GetBlock(ctx, selfID, targetID)
	if err != nil {
		return apperr.Transport("failed to check blocks", err)
	}
	if existing != nil {
		return apperr.Conflict("user is already blocked")
	}

	target, err := s.loadUser(ctx, targetID)
	if err != nil {
		return err
	}
	block := &models.Block{
		BlockerID:   selfID,
		BlockedID:   targetID,
		BlockedName: target.Username,
		BlockedAt:   time.Now().UTC(),
	}
	if err := s.graph.CreateBlock(ctx, block); err != nil {
		return apperr.Transport("failed to block user", err)
	}
	s.bus.Publish(events.UserBlocked{BlockerID: selfID, BlockedID: targetID})
	return nil
}

// UnblockUser deletes the block only; a prior friendship is not restored.
func (s *relationshipService) UnblockUser(ctx context.Context, selfID, targetID uint) error {
	existing, err := s.graph.GetBlock(ctx, selfID, targetID)
	if err != nil {
		return apperr.Transport("failed to check blocks", err)
	}
	if existing == nil {
		return apperr.Conflict("user is not blocked")
	}
	if err := s.graph.DeleteBlock(ctx, selfID, targetID); err != nil {
		return apperr.Transport("failed to unblock user", err)
	}
	s.bus.Publish(events.UserUnblocked{BlockerID: selfID, BlockedID: targetID})
	return nil
}

func (s *relationshipService) Friends(ctx context.Context, selfID uint) ([]models.Friendship, error) {
	edges, err := s.graph.ListFriends(ctx, selfID)
	if err != nil {
		return nil, apperr.Transport("failed to list friends", err)
	}
	return edges, nil
}

func (s *relationshipService) IncomingRequests(ctx context.Context, selfID uint) ([]models.FriendRequest, error) {
	reqs, err := s.graph.ListIncomingRequests(ctx, selfID)
	if err != nil {
		return nil, apperr.Transport("failed to list incoming requests", err)
	}
	return reqs, nil
}

func (s *relationshipService) OutgoingRequests(ctx context.Context, selfID uint) ([]models.FriendRequest, error) {
	reqs, err := s.graph.ListOutgoingRequests(ctx, selfID)
	if err != nil {
		return nil, apperr.Transport("failed to list outgoing requests", err)
	}
	return reqs, nil
}

func (s *relationshipService) BlockedUsers(ctx context.Context, selfID uint) ([]models.Block, error) {
	blocks, err := s.graph.ListBlocks(ctx, selfID)
	if err != nil {
		return nil, apperr.Transport("failed to list blocked users", err)
	}
	return blocks, nil
}
