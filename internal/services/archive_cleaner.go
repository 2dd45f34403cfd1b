package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type ListingCleanupRepository interface {
	RemoveOlderThan(ctx context.Context, expirationTime time.Time) (int64, error)
}

// ArchiveCleaner expires archived listings that stopped appearing in search
// results. Listings seen on a recent run keep a fresh LastSeenAt and survive.
type ArchiveCleaner struct {
	listings             ListingCleanupRepository
	cron                 *cron.Cron
	expirationTimeInDays int
}

func NewArchiveCleaner(listings ListingCleanupRepository, expirationInDays int) (*ArchiveCleaner, error) {

	if expirationInDays <= 0 {
		return nil, errors.New("expiration in days must be greater than zero")
	}

	ac := &ArchiveCleaner{
		listings:             listings,
		cron:                 cron.New(),
		expirationTimeInDays: expirationInDays,
	}

	_, err := ac.cron.AddFunc("0 0 * * *", ac.cleanOldListings)
	if err != nil {
		return nil, err
	}

	ac.cron.Start()
	log.Infof("listing archive cleaner started, expiration in days: %d", ac.expirationTimeInDays)
	return ac, nil
}

func (ac *ArchiveCleaner) Stop() {
	ac.cron.Stop()
}

func (ac *ArchiveCleaner) cleanOldListings() {
	expirationTime := time.Now().Add(-time.Duration(ac.expirationTimeInDays) * 24 * time.Hour)
	rowsAffected, err := ac.listings.RemoveOlderThan(context.Background(), expirationTime)
	if err != nil {
		log.Errorf("Failed to clean old listings: %v", err)
	} else {
		log.Infof("Old listings was cleaned at %v, affected rows: %v", time.Now(), rowsAffected)
	}
}
