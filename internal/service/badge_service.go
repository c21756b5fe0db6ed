package service

import (
	"context"
	"errors"
	"fmt"

	"skab-service/internal/models"
	"skab-service/pkg/apperr"
	"skab-service/pkg/logger"

	"gorm.io/gorm"
)

type BadgeService interface {
	// AssignBadges replaces the assignable subset of the target's badges.
	// The actor's admin standing is read from storage, never trusted from
	// the request. Admin is preserved verbatim if the target already holds
	// it and can never be granted here.
	AssignBadges(ctx context.Context, actorID, targetID uint, badges []string) (*models.UserResponse, error)
}

type badgeService struct {
	users UserStore
	log   *logger.Logger
}

func NewBadgeService(users UserStore, log *logger.Logger) BadgeService {
	return &badgeService{users: users, log: log}
}

func (s *badgeService) AssignBadges(ctx context.Context, actorID, targetID uint, badges []string) (*models.UserResponse, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Transport("failed to load actor", err)
	}
	if !actor.IsAdmin() {
		return nil, apperr.Permission("only admins can assign badges")
	}

	assigned := make(models.BadgeSet, 0, len(badges))
	for _, badge := range badges {
		if !models.IsAssignableBadge(badge) {
			return nil, apperr.Validation(fmt.Sprintf("badge %q is not assignable", badge))
		}
		if !assigned.Contains(badge) {
			assigned = append(assigned, badge)
		}
	}

	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Transport("failed to load target", err)
	}

	if target.Badges.Contains(models.BadgeAdmin) {
		assigned = append(assigned, models.BadgeAdmin)
	}

	user, err := s.users.UpdateFields(ctx, targetID, map[string]interface{}{"badges": assigned})
	if err != nil {
		return nil, apperr.Transport("failed to assign badges", err)
	}

	s.log.Info("Badges assigned", "actorID", actorID, "targetID", targetID, "badges", []string(assigned))
	return user.ToResponse(), nil
}
