package events

import "internscout/internal/domain/models"

var ListingFoundTopic = "ListingFoundEvent"

type ListingFound struct {
	Listing models.ListingSummary
	TraceID string
}
