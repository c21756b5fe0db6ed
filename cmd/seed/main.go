package main

import (
	"context"
	"os"
	"time"

	"skab-service/internal/config"
	"skab-service/internal/database"
	"skab-service/internal/events"
	"skab-service/internal/models"
	"skab-service/internal/repositories/postgres"
	"skab-service/internal/service"
	"skab-service/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

// Seeds a local database with an admin account, a handful of users and a
// small friendship graph for development.
func main() {
	log := logger.New("seed")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresConnection(cfg.Database.URI, logger.New("postgres"))
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	log.Info("Database connection established")

	ctx := context.Background()
	userRepo := postgres.NewUserRepository(db)
	relationshipRepo := postgres.NewRelationshipRepository(db)

	log.Info("Creating initial users")

	adminPassword, _ := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)
	admin := &models.User{
		Username:      "admin",
		Email:         "admin@skab.local",
		Discriminator: models.NewDiscriminator(),
		Password:      string(adminPassword),
		Badges:        models.BadgeSet{models.BadgeAdmin, models.BadgeDev},
		LastLogin:     time.Now().UTC(),
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		log.Warn("Admin user might already exist", "error", err)
	} else {
		log.Info("Created admin user", "id", admin.ID)
	}

	seedUsers := []struct {
		username string
		email    string
	}{
		{"alice", "alice@skab.local"},
		{"bob", "bob@skab.local"},
		{"charlie", "charlie@skab.local"},
		{"dana", "dana@skab.local"},
	}

	for _, data := range seedUsers {
		hashed, _ := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)
		user := &models.User{
			Username:      data.username,
			Email:         data.email,
			Discriminator: models.NewDiscriminator(),
			Password:      string(hashed),
			Badges:        models.BadgeSet{},
			LastLogin:     time.Now().UTC(),
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Warn("User might already exist", "username", data.username, "error", err)
		} else {
			log.Info("Created user", "username", data.username, "id", user.ID)
		}
	}

	log.Info("Creating friendships")
	if err := seedFriendships(ctx, userRepo, relationshipRepo, log); err != nil {
		log.Warn("Failed to seed friendships", "error", err)
	}

	log.Info("Database seeding completed")
}

// seedFriendships runs the real request/accept flow so snapshots and both
// edges are written the same way production traffic writes them.
func seedFriendships(ctx context.Context, userRepo *postgres.UserRepository, relationshipRepo *postgres.RelationshipRepository, log *logger.Logger) error {
	bus := events.NewBus(logger.New("events"))
	relationships := service.NewRelationshipService(relationshipRepo, userRepo, bus, log)

	alice, err := userRepo.FindByEmail(ctx, "alice@skab.local")
	if err != nil {
		return err
	}
	bob, err := userRepo.FindByEmail(ctx, "bob@skab.local")
	if err != nil {
		return err
	}
	charlie, err := userRepo.FindByEmail(ctx, "charlie@skab.local")
	if err != nil {
		return err
	}

	pairs := [][2]uint{
		{alice.ID, bob.ID},
		{alice.ID, charlie.ID},
	}
	for _, pair := range pairs {
		if _, err := relationships.SendRequest(ctx, pair[0], pair[1]); err != nil {
			log.Warn("Request might already exist", "from", pair[0], "to", pair[1], "error", err)
			continue
		}
		if err := relationships.AcceptRequest(ctx, pair[1], pair[0]); err != nil {
			log.Warn("Failed to accept request", "from", pair[0], "to", pair[1], "error", err)
		}
	}
	return nil
}
