package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"skab-service/internal/models"
	"skab-service/pkg/apperr"
	"skab-service/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.UserResponse, error)
	Login(ctx context.Context, req *LoginRequest) (string, *models.UserResponse, error)
	// Reauthenticate verifies a fresh password proof for sensitive
	// operations (password change, account deletion).
	Reauthenticate(ctx context.Context, principalID uint, password string) error
	ChangePassword(ctx context.Context, principalID uint, current, next string) error
}

type authService struct {
	users     UserStore
	identity  IdentityService
	jwtSecret string
	jwtExpire time.Duration
	log       *logger.Logger
}

func NewAuthService(users UserStore, identity IdentityService, secret string, expire time.Duration, log *logger.Logger) AuthService {
	return &authService{
		users:     users,
		identity:  identity,
		jwtSecret: secret,
		jwtExpire: expire,
		log:       log,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.UserResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, apperr.Validation("display name must not be empty")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperr.Validation("password must be at least 6 characters")
	}

	if existing, _ := s.users.FindByEmail(ctx, req.Email); existing != nil {
		return nil, apperr.Conflict("email is already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Transport("failed to hash password", err)
	}

	user := &models.User{
		Email:         req.Email,
		Username:      username,
		Discriminator: models.NewDiscriminator(),
		Password:      string(hashed),
		Badges:        models.BadgeSet{},
		LastLogin:     time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperr.Transport("failed to create user", err)
	}

	return user.ToResponse(), nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (string, *models.UserResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperr.Permission("invalid credentials")
		}
		return "", nil, apperr.Transport("failed to look up user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return "", nil, apperr.Permission("invalid credentials")
	}

	if _, err := s.users.UpdateFields(ctx, user.ID, map[string]interface{}{"last_login": time.Now().UTC()}); err != nil {
		s.log.Warn("Failed to update last login", "userID", user.ID, "error", err)
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", nil, apperr.Transport("failed to sign token", err)
	}

	// Reconcile the stored profile against the asserted identity; serves a
	// best-effort fallback if the directory read fails mid-login.
	profile, err := s.identity.GetOrCreateProfile(ctx, user.ID, models.SeedIdentity{
		Email:    user.Email,
		Username: user.Username,
		Avatar:   user.Avatar,
	})
	if err != nil {
		return "", nil, err
	}
	return token, profile, nil
}

func (s *authService) generateJWT(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"exp":   time.Now().Add(s.jwtExpire).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) Reauthenticate(ctx context.Context, principalID uint, password string) error {
	user, err := s.users.FindByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Transport("failed to look up user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return apperr.Permission("reauthentication failed")
	}
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, principalID uint, current, next string) error {
	if len(next) < minPasswordLength {
		return apperr.Validation("password must be at least 6 characters")
	}
	if err := s.Reauthenticate(ctx, principalID, current); err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Transport("failed to hash password", err)
	}
	if _, err := s.users.UpdateFields(ctx, principalID, map[string]interface{}{"password": string(hashed)}); err != nil {
		return apperr.Transport("failed to update password", err)
	}
	s.log.Info("Password changed", "userID", principalID)
	return nil
}
