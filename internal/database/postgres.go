package database

import (
	"fmt"
	"strings"

	"skab-service/internal/models"
	"skab-service/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewPostgresConnection(dburi string, log *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dburi), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		AllowGlobalUpdate:                        false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.FriendRequest{},
		&models.Friendship{},
		&models.Block{},
		&models.Notification{},
	)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			log.Info("Tables already exist, continuing with existing schema")
		} else {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	if err := addIndexes(db); err != nil {
		return nil, fmt.Errorf("failed to add indexes: %w", err)
	}

	log.Info("PostgreSQL connection established")
	return db, nil
}

func addIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_requests_to_status ON friend_requests (to_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_requests_from_status ON friend_requests (from_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_owner_created ON notifications (owner_id, created_at DESC) WHERE deleted_at IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_blocks_blocked ON blocks (blocked_id)",
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
