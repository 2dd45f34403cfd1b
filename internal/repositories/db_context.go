package repositories

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"internscout/internal/entities"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

func (c *DbContext) Migrate() error {
	err := c.DB.AutoMigrate(entities.SeenListing{})
	if err != nil {
		return fmt.Errorf("failed to migrate SeenListing entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.ExtractionRun{})
	if err != nil {
		return fmt.Errorf("failed to migrate ExtractionRun entity: %w", err)
	}

	if err = c.DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_seen_listing_id ON seen_listings (listing_id);").
		Error; err != nil {
		return fmt.Errorf("failed to create seen listing index: %w", err)
	}

	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
