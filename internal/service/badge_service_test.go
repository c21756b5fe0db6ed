package service

import (
	"context"
	"testing"

	"skab-service/internal/models"
	"skab-service/pkg/apperr"
	"skab-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBadgeFixture(t *testing.T) (BadgeService, *fakeUserStore) {
	t.Helper()
	users := newFakeUserStore()
	users.add(&models.User{Email: "admin@skab.local", Username: "admin", Badges: models.BadgeSet{models.BadgeAdmin}})
	users.add(&models.User{Email: "bob@skab.local", Username: "bob", Badges: models.BadgeSet{models.BadgePremium}})
	return NewBadgeService(users, logger.New("test")), users
}

func TestAssignBadgesReplacesAssignableSet(t *testing.T) {
	svc, users := newBadgeFixture(t)

	profile, err := svc.AssignBadges(context.Background(), 1, 2, []string{models.BadgeDev, models.BadgeAlphaOG})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{models.BadgeDev, models.BadgeAlphaOG}, profile.Badges)

	stored, err := users.FindByID(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, stored.Badges.Contains(models.BadgePremium))
}

func TestAssignBadgesNonAdminRejected(t *testing.T) {
	svc, users := newBadgeFixture(t)

	_, err := svc.AssignBadges(context.Background(), 2, 1, []string{models.BadgeDev})
	assert.True(t, apperr.IsPermission(err))

	// Target unchanged.
	stored, _ := users.FindByID(context.Background(), 1)
	assert.Equal(t, models.BadgeSet{models.BadgeAdmin}, stored.Badges)
}

func TestAssignBadgesAdminNotAssignable(t *testing.T) {
	svc, _ := newBadgeFixture(t)

	_, err := svc.AssignBadges(context.Background(), 1, 2, []string{models.BadgeAdmin})
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.AssignBadges(context.Background(), 1, 2, []string{"Founder"})
	assert.True(t, apperr.IsValidation(err))
}

// An existing Admin badge survives reassignment of the rest of the set.
func TestAssignBadgesPreservesAdmin(t *testing.T) {
	svc, users := newBadgeFixture(t)
	users.add(&models.User{Email: "root@skab.local", Username: "root", Badges: models.BadgeSet{models.BadgeAdmin, models.BadgeDev}})

	profile, err := svc.AssignBadges(context.Background(), 1, 3, []string{models.BadgePremium})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{models.BadgePremium, models.BadgeAdmin}, profile.Badges)
	assert.True(t, profile.IsAdmin)
}

func TestAssignBadgesDeduplicates(t *testing.T) {
	svc, _ := newBadgeFixture(t)

	profile, err := svc.AssignBadges(context.Background(), 1, 2, []string{models.BadgeDev, models.BadgeDev})
	require.NoError(t, err)
	assert.Equal(t, []string{models.BadgeDev}, profile.Badges)
}

func TestAssignBadgesClearsWithEmptySet(t *testing.T) {
	svc, _ := newBadgeFixture(t)

	profile, err := svc.AssignBadges(context.Background(), 1, 2, nil)
	require.NoError(t, err)
	assert.Empty(t, profile.Badges)
}

func TestAssignBadgesUnknownTarget(t *testing.T) {
	svc, _ := newBadgeFixture(t)

	_, err := svc.AssignBadges(context.Background(), 1, 99, []string{models.BadgeDev})
	assert.True(t, apperr.IsNotFound(err))
}
