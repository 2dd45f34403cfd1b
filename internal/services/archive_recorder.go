package services

import (
	"context"

	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"

	"internscout/internal/domain/events"
	"internscout/internal/domain/models"
	"internscout/internal/logger"
)

type listingArchive interface {
	WasSeen(ctx context.Context, listingID string) (bool, error)
	MarkSeen(ctx context.Context, listing models.ListingSummary) error
}

// ArchiveRecorder listens for found listings and archives the ones not seen
// on earlier runs. WasSeen bumps LastSeenAt for known listings, so active
// listings survive the expiration sweep without a second write here.
type ArchiveRecorder struct {
	bus      EventBus.Bus
	listings listingArchive
}

func NewArchiveRecorder(bus EventBus.Bus, listings listingArchive) (*ArchiveRecorder, error) {
	recorder := &ArchiveRecorder{bus: bus, listings: listings}

	if err := bus.Subscribe(events.ListingFoundTopic, recorder.onListingFound); err != nil {
		return nil, err
	}
	return recorder, nil
}

func (r *ArchiveRecorder) onListingFound(event events.ListingFound) {
	ctx := context.Background()

	seen, err := r.listings.WasSeen(ctx, event.Listing.ID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to check listing %s in archive: %v", event.Listing.ID, err)
		return
	}
	if seen {
		return
	}

	if err := r.listings.MarkSeen(ctx, event.Listing); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to archive listing %s: %v", event.Listing.ID, err)
		return
	}

	logger.WithTrace(event.TraceID).Infof("archived new listing: %s at %s", event.Listing.Title, event.Listing.Company)
}
