package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"skab-service/internal/models"
	"skab-service/pkg/apperr"
	"skab-service/pkg/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const maxBioLength = 200

// UpdateProfileRequest carries a partial profile edit; nil fields are left
// untouched.
type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Avatar   *string `json:"avatar"`
	Bio      *string `json:"bio"`
}

type IdentityService interface {
	// GetOrCreateProfile resolves the stored profile for a principal,
	// creating it on first appearance. When the directory lookup fails the
	// returned profile is reconstructed from the seed and flagged Ephemeral
	// so callers keep functioning without persistence.
	GetOrCreateProfile(ctx context.Context, principalID uint, seed models.SeedIdentity) (*models.UserResponse, error)
	GetProfile(ctx context.Context, principalID uint) (*models.UserResponse, error)
	UpdateProfile(ctx context.Context, principalID uint, req *UpdateProfileRequest) (*models.UserResponse, error)
	// DeleteProfile removes the profile after verifying a fresh password
	// proof. It does not cascade to messages, friendships or notifications.
	DeleteProfile(ctx context.Context, principalID uint, password string) error
	SearchUsers(ctx context.Context, selfID uint, query string) ([]models.UserResponse, error)
}

type identityService struct {
	users UserStore
	log   *logger.Logger
}

func NewIdentityService(users UserStore, log *logger.Logger) IdentityService {
	return &identityService{users: users, log: log}
}

func (s *identityService) GetOrCreateProfile(ctx context.Context, principalID uint, seed models.SeedIdentity) (*models.UserResponse, error) {
	user, err := s.users.FindByID(ctx, principalID)
	switch {
	case err == nil:
		// Reconcile provider-asserted fields only while the stored profile
		// is still missing its discriminator.
		if user.Discriminator == "" {
			user.Discriminator = models.NewDiscriminator()
			if seed.Username != "" {
				user.Username = seed.Username
			}
			if seed.Avatar != "" {
				user.Avatar = seed.Avatar
			}
			if saveErr := s.users.Save(ctx, user); saveErr != nil {
				s.log.Error("Failed to reconcile profile", "userID", principalID, "error", saveErr)
			}
		}
		return user.ToResponse(), nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		user = &models.User{
			Email:         seed.Email,
			Username:      displayNameFromSeed(seed),
			Discriminator: models.NewDiscriminator(),
			Avatar:        seed.Avatar,
			Badges:        models.BadgeSet{},
			LastLogin:     time.Now().UTC(),
		}
		user.ID = principalID
		if createErr := s.users.Create(ctx, user); createErr != nil {
			s.log.Error("Failed to create profile, serving best-effort fallback", "userID", principalID, "error", createErr)
			return s.fallbackProfile(principalID, seed), nil
		}
		return user.ToResponse(), nil

	default:
		// Directory unavailable: fall back to a minimal in-memory profile so
		// the rest of the system keeps functioning.
		s.log.Error("Profile lookup failed, serving best-effort fallback", "userID", principalID, "error", err)
		return s.fallbackProfile(principalID, seed), nil
	}
}

func (s *identityService) fallbackProfile(principalID uint, seed models.SeedIdentity) *models.UserResponse {
	return &models.UserResponse{
		ID:            principalID,
		Email:         seed.Email,
		Username:      displayNameFromSeed(seed),
		Discriminator: "0000",
		Avatar:        seed.Avatar,
		Badges:        []string{},
		Ephemeral:     true,
	}
}

func displayNameFromSeed(seed models.SeedIdentity) string {
	if seed.Username != "" {
		return seed.Username
	}
	if at := strings.Index(seed.Email, "@"); at > 0 {
		return seed.Email[:at]
	}
	return seed.Email
}

func (s *identityService) GetProfile(ctx context.Context, principalID uint) (*models.UserResponse, error) {
	user, err := s.users.FindByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Transport("failed to load profile", err)
	}
	return user.ToResponse(), nil
}

func (s *identityService) UpdateProfile(ctx context.Context, principalID uint, req *UpdateProfileRequest) (*models.UserResponse, error) {
	fields := map[string]interface{}{}
	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if name == "" {
			return nil, apperr.Validation("display name must not be empty")
		}
		fields["username"] = name
	}
	if req.Bio != nil {
		if utf8.RuneCountInString(*req.Bio) > maxBioLength {
			return nil, apperr.Validation("bio must be at most 200 characters")
		}
		fields["bio"] = *req.Bio
	}
	if req.Avatar != nil {
		fields["avatar"] = *req.Avatar
	}
	if len(fields) == 0 {
		return s.GetProfile(ctx, principalID)
	}

	user, err := s.users.UpdateFields(ctx, principalID, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Transport("failed to update profile", err)
	}
	return user.ToResponse(), nil
}

func (s *identityService) DeleteProfile(ctx context.Context, principalID uint, password string) error {
	user, err := s.users.FindByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Transport("failed to load profile", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return apperr.Permission("reauthentication failed")
	}
	if err := s.users.Delete(ctx, principalID); err != nil {
		return apperr.Transport("failed to delete profile", err)
	}
	s.log.Info("Profile deleted", "userID", principalID)
	return nil
}

func (s *identityService) SearchUsers(ctx context.Context, selfID uint, query string) ([]models.UserResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("search query must not be empty")
	}
	users, err := s.users.SearchByUsername(ctx, selfID, query)
	if err != nil {
		return nil, apperr.Transport("failed to search users", err)
	}
	responses := make([]models.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *users[i].ToResponse())
	}
	return responses, nil
}
