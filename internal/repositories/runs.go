package repositories

import (
	"context"

	"gorm.io/gorm"

	"internscout/internal/entities"
)

type Runs struct {
	db *gorm.DB
}

func NewRunsRepository(db *gorm.DB) *Runs {
	return &Runs{db: db}
}

func (r Runs) Add(ctx context.Context, run entities.ExtractionRun) error {
	return r.db.WithContext(ctx).Create(&run).Error
}
