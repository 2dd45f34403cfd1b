package tests

import (
	"context"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"

	"internscout/internal/domain/events"
	"internscout/internal/domain/models"
	"internscout/internal/entities"
	"internscout/internal/repositories"
	"internscout/internal/services"
)

var listing = models.ListingSummary{
	ID:      "golang-intern-101",
	Title:   "Golang Developer Intern",
	Company: "Acme Corp",
	URL:     "https://internshala.com/internship/detail/golang-intern-101",
}

func Test_ListingArchive_MarkAndCheckRoundTrip(t *testing.T) {
	defer clearDb()

	listings := repositories.NewListingsRepository(dbCtx.DB)

	seen, err := listings.WasSeen(context.Background(), listing.ID)
	assert.NoError(t, err)
	assert.False(t, seen)

	err = listings.MarkSeen(context.Background(), listing)
	assert.NoError(t, err)

	seen, err = listings.WasSeen(context.Background(), listing.ID)
	assert.NoError(t, err)
	assert.True(t, seen)
}

func Test_ListingArchive_WasSeenKeepsActiveListingsFresh(t *testing.T) {
	defer clearDb()

	listings := repositories.NewListingsRepository(dbCtx.DB)

	err := listings.MarkSeen(context.Background(), listing)
	assert.NoError(t, err)

	// age the row, then observe a later run bumping it back
	err = dbCtx.DB.Model(&entities.SeenListing{}).
		Where("listing_id = ?", listing.ID).
		Update("last_seen_at", time.Now().AddDate(0, 0, -40)).Error
	assert.NoError(t, err)

	_, err = listings.WasSeen(context.Background(), listing.ID)
	assert.NoError(t, err)

	removed, err := listings.RemoveOlderThan(context.Background(), time.Now().AddDate(0, 0, -30))
	assert.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}

func Test_ListingArchive_ExpiresOnlyStaleRows(t *testing.T) {
	defer clearDb()

	listings := repositories.NewListingsRepository(dbCtx.DB)

	err := listings.MarkSeen(context.Background(), models.ListingSummary{ID: "fresh-1", Title: "Fresh"})
	assert.NoError(t, err)
	err = listings.MarkSeen(context.Background(), models.ListingSummary{ID: "stale-1", Title: "Stale"})
	assert.NoError(t, err)

	err = dbCtx.DB.Model(&entities.SeenListing{}).
		Where("listing_id = ?", "stale-1").
		Update("last_seen_at", time.Now().AddDate(0, 0, -40)).Error
	assert.NoError(t, err)

	removed, err := listings.RemoveOlderThan(context.Background(), time.Now().AddDate(0, 0, -30))
	assert.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	seen, err := listings.WasSeen(context.Background(), "fresh-1")
	assert.NoError(t, err)
	assert.True(t, seen)

	seen, err = listings.WasSeen(context.Background(), "stale-1")
	assert.NoError(t, err)
	assert.False(t, seen)
}

func Test_ArchiveRecorder_ArchivesPublishedListingsOnce(t *testing.T) {
	defer clearDb()

	listings := repositories.NewListingsRepository(dbCtx.DB)
	bus := EventBus.New()

	_, err := services.NewArchiveRecorder(bus, listings)
	assert.NoError(t, err)

	event := events.ListingFound{Listing: listing, TraceID: "itest123"}
	bus.Publish(events.ListingFoundTopic, event)
	bus.Publish(events.ListingFoundTopic, event)

	var count int64
	err = dbCtx.DB.Model(&entities.SeenListing{}).
		Where("listing_id = ?", listing.ID).
		Count(&count).Error
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func Test_RunRecorder_PersistsLedgerRow(t *testing.T) {
	defer clearDb()

	runs := repositories.NewRunsRepository(dbCtx.DB)
	bus := EventBus.New()

	_, err := services.NewRunRecorder(bus, runs)
	assert.NoError(t, err)

	finished := time.Now()
	bus.Publish(events.RunFinishedTopic, events.RunFinished{
		Kind:       "search",
		Extracted:  5,
		Skipped:    1,
		StartedAt:  finished.Add(-time.Minute),
		FinishedAt: finished,
		TraceID:    "itest123",
	})

	var stored []entities.ExtractionRun
	err = dbCtx.DB.Where("trace_id = ?", "itest123").Find(&stored).Error
	assert.NoError(t, err)
	if assert.Len(t, stored, 1) {
		assert.Equal(t, "search", stored[0].Kind)
		assert.Equal(t, 5, stored[0].Extracted)
		assert.Equal(t, 1, stored[0].Skipped)
	}
}
