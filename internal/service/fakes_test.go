package service

import (
	"context"
	"strings"
	"time"

	"skab-service/internal/models"
	"skab-service/internal/repositories/mongodb"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// In-memory store fakes. They mirror the repository semantics the services
// rely on: gorm.ErrRecordNotFound from lookups, (nil, nil) for absent
// pending requests and blocks, and paired friendship edges.

type fakeUserStore struct {
	users       map[uint]*models.User
	nextID      uint
	findErr     error
	findByIDErr error
	saveErr     error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uint]*models.User{}, nextID: 1}
}

func (s *fakeUserStore) add(user *models.User) *models.User {
	if user.ID == 0 {
		user.ID = s.nextID
	}
	if user.ID >= s.nextID {
		s.nextID = user.ID + 1
	}
	if user.Badges == nil {
		user.Badges = models.BadgeSet{}
	}
	s.users[user.ID] = user
	return user
}

func (s *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.add(user)
	return nil
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeUserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.findByIDErr != nil {
		return nil, s.findByIDErr
	}
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *fakeUserStore) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for key, value := range fields {
		switch key {
		case "username":
			u.Username = value.(string)
		case "bio":
			u.Bio = value.(string)
		case "avatar":
			u.Avatar = value.(string)
		case "password":
			u.Password = value.(string)
		case "badges":
			u.Badges = value.(models.BadgeSet)
		case "last_login":
			u.LastLogin = value.(time.Time)
		}
	}
	copied := *u
	return &copied, nil
}

func (s *fakeUserStore) Save(ctx context.Context, user *models.User) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) Delete(ctx context.Context, id uint) error {
	if _, ok := s.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *fakeUserStore) SearchByUsername(ctx context.Context, selfID uint, username string) ([]models.User, error) {
	var out []models.User
	for _, u := range s.users {
		if u.ID == selfID {
			continue
		}
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(username)) {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeRelationshipStore struct {
	requests    []*models.FriendRequest
	friendships []models.Friendship
	blocks      []models.Block
	nextID      uint
	acceptErr   error
}

func newFakeRelationshipStore() *fakeRelationshipStore {
	return &fakeRelationshipStore{nextID: 1}
}

func (s *fakeRelationshipStore) PendingRequest(ctx context.Context, fromID, toID uint) (*models.FriendRequest, error) {
	for _, r := range s.requests {
		if r.FromID == fromID && r.ToID == toID && r.Status == models.RequestStatusPending {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeRelationshipStore) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	req.ID = s.nextID
	s.nextID++
	s.requests = append(s.requests, req)
	return nil
}

func (s *fakeRelationshipStore) DeleteRequest(ctx context.Context, id uint) error {
	for i, r := range s.requests {
		if r.ID == id {
			s.requests = append(s.requests[:i], s.requests[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *fakeRelationshipStore) AcceptRequest(ctx context.Context, req *models.FriendRequest, edges [2]*models.Friendship) error {
	if s.acceptErr != nil {
		return s.acceptErr
	}
	for _, r := range s.requests {
		if r.ID == req.ID {
			r.Status = models.RequestStatusAccepted
		}
	}
	s.friendships = append(s.friendships, *edges[0], *edges[1])
	return nil
}

func (s *fakeRelationshipStore) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	for _, f := range s.friendships {
		if f.OwnerID == a && f.FriendID == b {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeRelationshipStore) RemoveFriendship(ctx context.Context, a, b uint) error {
	kept := s.friendships[:0]
	for _, f := range s.friendships {
		if (f.OwnerID == a && f.FriendID == b) || (f.OwnerID == b && f.FriendID == a) {
			continue
		}
		kept = append(kept, f)
	}
	s.friendships = kept
	return nil
}

func (s *fakeRelationshipStore) CreateBlock(ctx context.Context, block *models.Block) error {
	block.ID = s.nextID
	s.nextID++
	s.blocks = append(s.blocks, *block)

	// Mirrors the transactional cleanup done by the real repository.
	if err := s.RemoveFriendship(ctx, block.BlockerID, block.BlockedID); err != nil {
		return err
	}
	kept := s.requests[:0]
	for _, r := range s.requests {
		pair := (r.FromID == block.BlockerID && r.ToID == block.BlockedID) ||
			(r.FromID == block.BlockedID && r.ToID == block.BlockerID)
		if pair && r.Status == models.RequestStatusPending {
			continue
		}
		kept = append(kept, r)
	}
	s.requests = kept
	return nil
}

func (s *fakeRelationshipStore) GetBlock(ctx context.Context, blockerID, blockedID uint) (*models.Block, error) {
	for _, b := range s.blocks {
		if b.BlockerID == blockerID && b.BlockedID == blockedID {
			copied := b
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeRelationshipStore) BlockExistsBetween(ctx context.Context, a, b uint) (bool, error) {
	for _, blk := range s.blocks {
		if (blk.BlockerID == a && blk.BlockedID == b) || (blk.BlockerID == b && blk.BlockedID == a) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeRelationshipStore) DeleteBlock(ctx context.Context, blockerID, blockedID uint) error {
	for i, b := range s.blocks {
		if b.BlockerID == blockerID && b.BlockedID == blockedID {
			s.blocks = append(s.blocks[:i], s.blocks[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *fakeRelationshipStore) ListFriends(ctx context.Context, ownerID uint) ([]models.Friendship, error) {
	var out []models.Friendship
	for _, f := range s.friendships {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *fakeRelationshipStore) ListIncomingRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	for _, r := range s.requests {
		if r.ToID == userID && r.Status == models.RequestStatusPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeRelationshipStore) ListOutgoingRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	for _, r := range s.requests {
		if r.FromID == userID && r.Status == models.RequestStatusPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeRelationshipStore) ListBlocks(ctx context.Context, blockerID uint) ([]models.Block, error) {
	var out []models.Block
	for _, b := range s.blocks {
		if b.BlockerID == blockerID {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeMessageStore struct {
	messages  []models.Message
	insertErr error
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{}
}

func (s *fakeMessageStore) Insert(ctx context.Context, msg *models.Message) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now().UTC()
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *fakeMessageStore) ListByConversation(ctx context.Context, key string) ([]models.Message, error) {
	var out []models.Message
	for _, m := range s.messages {
		if m.ConversationKey == key {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeMessageStore) FindByID(ctx context.Context, id string) (*models.Message, error) {
	for _, m := range s.messages {
		if m.ID.Hex() == id {
			copied := m
			return &copied, nil
		}
	}
	return nil, mongodb.ErrMessageNotFound
}

func (s *fakeMessageStore) Delete(ctx context.Context, id string) error {
	for i, m := range s.messages {
		if m.ID.Hex() == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return nil
		}
	}
	return mongodb.ErrMessageNotFound
}

type fakeNotificationStore struct {
	notifications []*models.Notification
	nextID        uint
	createErr     error
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{nextID: 1}
}

func (s *fakeNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	if s.createErr != nil {
		return s.createErr
	}
	n.ID = s.nextID
	s.nextID++
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *fakeNotificationStore) ListRecent(ctx context.Context, ownerID uint) ([]models.Notification, error) {
	var out []models.Notification
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].OwnerID == ownerID {
			out = append(out, *s.notifications[i])
		}
		if len(out) == models.RecentNotificationLimit {
			break
		}
	}
	return out, nil
}

func (s *fakeNotificationStore) FindByID(ctx context.Context, id uint) (*models.Notification, error) {
	for _, n := range s.notifications {
		if n.ID == id {
			copied := *n
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeNotificationStore) MarkRead(ctx context.Context, id uint) error {
	for _, n := range s.notifications {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *fakeNotificationStore) MarkAllRead(ctx context.Context, ownerID uint) error {
	for _, n := range s.notifications {
		if n.OwnerID == ownerID {
			n.IsRead = true
		}
	}
	return nil
}
