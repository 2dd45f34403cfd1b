package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"internscout/internal/browser"
	"internscout/internal/domain/models"
)

type fakeDetailSession struct {
	visible   bool
	pages     map[string]string
	current   string
	navigated []string
	navErr    error
}

func (f *fakeDetailSession) Navigate(_ context.Context, url string) error {
	f.navigated = append(f.navigated, url)
	f.current = url
	return f.navErr
}

func (f *fakeDetailSession) WaitVisible(_ string, _ float64) bool {
	return f.visible
}

func (f *fakeDetailSession) Content() (string, error) {
	return f.pages[f.current], nil
}

const detailPageHTML = `
	<div class="internship_details">
		<div class="skills_required">Go, SQL, Docker</div>
		<div class="company_type">Product Startup</div>
		<div class="applicants_count">120 applicants</div>
		<div class="perks_container">Certificate, Flexible hours</div>
	</div>`

func Test_Enrich_ResolvesDetailPageFields(t *testing.T) {

	session := &fakeDetailSession{
		visible: true,
		pages:   map[string]string{"https://internshala.com/internship/detail/x-1": detailPageHTML},
	}
	enricher := NewDetailEnricher(session, "test1234")

	details, err := enricher.Enrich(context.Background(), "https://internshala.com/internship/detail/x-1")

	assert.NoError(t, err)
	assert.Equal(t, "Go, SQL, Docker", details["skills_required"])
	assert.Equal(t, "Product Startup", details["company_type"])
	assert.Equal(t, "120 applicants", details["total_applicants"])
	assert.Equal(t, "Certificate, Flexible hours", details["perks"])
	assert.NotContains(t, details, "title")
}

func Test_Enrich_UnrenderedPageYieldsNothing(t *testing.T) {

	session := &fakeDetailSession{visible: false}
	enricher := NewDetailEnricher(session, "test1234")

	details, err := enricher.Enrich(context.Background(), "https://internshala.com/internship/detail/x-1")

	assert.NoError(t, err)
	assert.Empty(t, details)
}

func Test_EnrichAll_CapsWorkAndMergesExtras(t *testing.T) {

	session := &fakeDetailSession{
		visible: true,
		pages: map[string]string{
			"https://internshala.com/internship/detail/x-1": detailPageHTML,
			"https://internshala.com/internship/detail/x-2": detailPageHTML,
		},
	}
	enricher := NewDetailEnricher(session, "test1234")

	listings := []models.ListingSummary{
		{ID: "1", URL: "https://internshala.com/internship/detail/x-1", Extras: map[string]string{}},
		{ID: "2", URL: "https://internshala.com/internship/detail/x-2", Extras: map[string]string{}},
		{ID: "3", URL: "https://internshala.com/internship/detail/x-3", Extras: map[string]string{}},
	}

	err := EnrichAll(context.Background(), enricher, listings, 2)

	assert.NoError(t, err)
	assert.Len(t, session.navigated, 2)
	assert.Equal(t, "Product Startup", listings[0].Extras["company_type"])
	assert.True(t, listings[0].IsStartup)
	assert.Empty(t, listings[2].Extras)
}

func Test_EnrichAll_DeadSessionAborts(t *testing.T) {

	session := &fakeDetailSession{navErr: browser.ErrSessionUnavailable}
	enricher := NewDetailEnricher(session, "test1234")

	listings := []models.ListingSummary{{ID: "1", URL: "https://internshala.com/internship/detail/x-1"}}

	err := EnrichAll(context.Background(), enricher, listings, 0)

	assert.ErrorIs(t, err, browser.ErrSessionUnavailable)
}

type countingProvider struct {
	calls  int
	result map[string]string
}

func (c *countingProvider) Enrich(_ context.Context, _ string) (map[string]string, error) {
	c.calls++
	return c.result, nil
}

func Test_CachedDetails_MemoizesByURL(t *testing.T) {

	provider := &countingProvider{result: map[string]string{"company_type": "Startup"}}
	cached := NewCachedDetails(provider)

	first, err := cached.Enrich(context.Background(), "https://internshala.com/internship/detail/x-1")
	assert.NoError(t, err)

	second, err := cached.Enrich(context.Background(), "https://internshala.com/internship/detail/x-1")
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.calls)

	_, err = cached.Enrich(context.Background(), "https://internshala.com/internship/detail/x-2")
	assert.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func Test_CachedDetails_DoesNotCacheEmptyResults(t *testing.T) {

	provider := &countingProvider{result: nil}
	cached := NewCachedDetails(provider)

	_, err := cached.Enrich(context.Background(), "https://internshala.com/internship/detail/x-1")
	assert.NoError(t, err)
	_, err = cached.Enrich(context.Background(), "https://internshala.com/internship/detail/x-1")
	assert.NoError(t, err)

	assert.Equal(t, 2, provider.calls)
}
