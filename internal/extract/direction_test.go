package extract

import (
	"testing"

	"internscout/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func Test_Direction_OwnClassSentMarkers(t *testing.T) {
	doc, err := Document(`<div class="message message-sent">hi</div>`)
	assert.NoError(t, err)

	direction := Direction(doc.Find(".message"))
	assert.Equal(t, models.DirectionSent, direction)
}

func Test_Direction_OwnClassReceivedMarkers(t *testing.T) {
	doc, err := Document(`<div class="message incoming">hi</div>`)
	assert.NoError(t, err)

	direction := Direction(doc.Find(".message"))
	assert.Equal(t, models.DirectionReceived, direction)
}

func Test_Direction_FallsBackToParentClass(t *testing.T) {
	doc, err := Document(`<div class="outgoing-wrap"><div class="bubble">hi</div></div>`)
	assert.NoError(t, err)

	direction := Direction(doc.Find(".bubble"))
	assert.Equal(t, models.DirectionSent, direction)
}

func Test_Direction_NoSignalDefaultsToReceived(t *testing.T) {
	doc, err := Document(`<section><div class="bubble">hi</div></section>`)
	assert.NoError(t, err)

	direction := Direction(doc.Find(".bubble"))
	assert.Equal(t, models.DirectionReceived, direction)
}

func Test_Direction_OwnClassWinsOverParent(t *testing.T) {
	doc, err := Document(`<div class="incoming"><div class="bubble right">hi</div></div>`)
	assert.NoError(t, err)

	direction := Direction(doc.Find(".bubble"))
	assert.Equal(t, models.DirectionSent, direction)
}
