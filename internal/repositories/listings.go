package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"internscout/internal/domain/models"
	"internscout/internal/entities"
)

type Listings struct {
	db *gorm.DB
}

func NewListingsRepository(db *gorm.DB) *Listings {
	return &Listings{db: db}
}

// WasSeen reports whether the listing is already archived and bumps its
// LastSeenAt so active listings never expire.
func (l Listings) WasSeen(ctx context.Context, listingID string) (bool, error) {
	var seen entities.SeenListing
	err := l.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		First(&seen).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	err = l.db.WithContext(ctx).
		Model(&entities.SeenListing{}).
		Where("id = ?", seen.ID).
		Update("last_seen_at", time.Now()).Error
	return true, err
}

// MarkSeen archives a listing first encountered on this run. Callers check
// WasSeen beforehand; the unique index on listing_id backstops races.
func (l Listings) MarkSeen(ctx context.Context, listing models.ListingSummary) error {
	now := time.Now()
	return l.db.WithContext(ctx).Create(&entities.SeenListing{
		ListingID:   listing.ID,
		Title:       listing.Title,
		Company:     listing.Company,
		URL:         listing.URL,
		FirstSeenAt: now,
		LastSeenAt:  now,
	}).Error
}

func (l Listings) RemoveOlderThan(ctx context.Context, expirationTime time.Time) (int64, error) {
	res := l.db.WithContext(ctx).Delete(&entities.SeenListing{}, "last_seen_at < ?", expirationTime)
	return res.RowsAffected, res.Error
}
