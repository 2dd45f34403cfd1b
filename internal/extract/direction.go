package extract

import (
	"strings"

	"internscout/internal/domain/models"

	"github.com/PuerkitoBio/goquery"
)

var (
	sentMarkers     = []string{"sent", "outgoing", "right", "own", "user"}
	receivedMarkers = []string{"received", "incoming", "left", "other", "company"}
)

// Direction classifies a message element from its class list, then its
// parent's. An element with no recognizable marker is treated as received.
func Direction(sel *goquery.Selection) models.MessageDirection {

	if direction, ok := classifyClasses(sel.AttrOr("class", "")); ok {
		return direction
	}

	if direction, ok := classifyClasses(sel.Parent().AttrOr("class", "")); ok {
		return direction
	}

	return models.DirectionReceived
}

func classifyClasses(classAttr string) (models.MessageDirection, bool) {

	lowered := strings.ToLower(classAttr)
	if lowered == "" {
		return "", false
	}

	for _, marker := range sentMarkers {
		if strings.Contains(lowered, marker) {
			return models.DirectionSent, true
		}
	}
	for _, marker := range receivedMarkers {
		if strings.Contains(lowered, marker) {
			return models.DirectionReceived, true
		}
	}

	return "", false
}
