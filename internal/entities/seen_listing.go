package entities

import "time"

// SeenListing is the archive row behind cross-run deduplication. ListingID is
// the site's identifier, unique per row; LastSeenAt drives expiration.
type SeenListing struct {
	ID          int `gorm:"primaryKey"`
	ListingID   string
	Title       string
	Company     string
	URL         string
	FirstSeenAt time.Time
	LastSeenAt  time.Time
}
