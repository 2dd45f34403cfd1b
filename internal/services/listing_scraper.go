package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"internscout/internal/domain/events"
	"internscout/internal/domain/models"
	"internscout/internal/extract"
	"internscout/internal/logger"
	"internscout/internal/metrics"
)

// searchSession is the slice of the browser session the scraper needs.
type searchSession interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(selector string, timeoutMs float64) bool
	ScrollToEnd(ctx context.Context) (int, error)
	Content() (string, error)
}

const resultsWaitMs = 15000

const resultsSurfaceSelector = ".internship_meta, .individual_internship"

var (
	cardSelectors = []string{".internship_meta", ".individual_internship", ".internship-item"}

	cardTitleField = extract.Field{
		Name:      "title",
		Selectors: []string{".internship_summary_title", ".profile a", ".internship-title"},
	}
	// The listing URL lives on the title anchor; the bare "a" candidate covers
	// cards where the whole tile is one link.
	cardURLField = extract.Field{
		Name:      "url",
		Selectors: []string{".internship_summary_title a", ".profile a", ".internship-title a", "a"},
		Attr:      "href",
	}
	cardCompanyField = extract.Field{
		Name:      "company",
		Selectors: []string{".company_name", ".company a", ".company-name"},
	}
	cardLocationField = extract.Field{
		Name:      "location",
		Selectors: []string{".location_name", ".location", ".internship-location"},
	}
	cardStipendField = extract.Field{
		Name:      "stipend",
		Selectors: []string{".stipend", ".internship_stipend", ".stipend-amount"},
	}
	cardDurationField = extract.Field{
		Name:      "duration",
		Selectors: []string{".duration", ".internship_duration", ".duration-info"},
	}
	cardApplyByField = extract.Field{
		Name:      "apply_by",
		Selectors: []string{".apply_by", ".deadline", ".apply-deadline"},
	}
	cardPostedField = extract.Field{
		Name:      "posted",
		Selectors: []string{".posted", ".post_date", ".posted-date"},
	}
	cardTagsField = extract.Field{
		Name:      "tags",
		Selectors: []string{".tags .tag", ".skill_container span"},
	}
)

type ListingScraper struct {
	session searchSession
	bus     EventBus.Bus
	baseURL string
	traceID string
	now     func() time.Time
	log     *log.Entry
}

func NewListingScraper(session searchSession, bus EventBus.Bus, baseURL string, traceID string) *ListingScraper {
	return &ListingScraper{
		session: session,
		bus:     bus,
		baseURL: strings.TrimRight(baseURL, "/"),
		traceID: traceID,
		now:     time.Now,
		log:     logger.WithTrace(traceID),
	}
}

// Search fetches the remote result page for the filter and re-checks every
// card locally. The remote query narrows the page at best; Matches decides.
// Cards that fail extraction are counted as skipped, never abort the run.
func (s *ListingScraper) Search(ctx context.Context, filter models.SearchFilter) ([]models.ListingSummary, ExtractionReport, error) {
	var report ExtractionReport

	if err := filter.Validate(); err != nil {
		return nil, report, errors.Wrap(err, "invalid search filter")
	}

	searchURL := filter.BuildQuery(s.baseURL)
	s.log.Infof("searching listings: %s", searchURL)

	if err := s.session.Navigate(ctx, searchURL); err != nil {
		return nil, report, err
	}

	if !s.session.WaitVisible(resultsSurfaceSelector, resultsWaitMs) {
		s.log.Warn("search results did not render")
		return nil, report, nil
	}

	rounds, err := s.session.ScrollToEnd(ctx)
	if err != nil {
		return nil, report, err
	}
	s.log.Debugf("scrolled %d rounds to settle lazy-loaded results", rounds)

	html, err := s.session.Content()
	if err != nil {
		return nil, report, err
	}
	if html == "" {
		s.log.Warn("search results rendered no content")
		return nil, report, nil
	}

	doc, err := extract.Document(html)
	if err != nil {
		return nil, report, errors.Wrap(err, "failed to parse search results")
	}

	cards, found := extract.FirstMatch(doc.Selection, cardSelectors...)
	if !found {
		s.log.Info("no internship cards found")
		return nil, report, nil
	}
	s.log.Infof("found %d internship cards", cards.Length())

	now := s.now()
	var listings []models.ListingSummary
	cards.EachWithBreak(func(_ int, node *goquery.Selection) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		if len(listings) >= filter.Limit {
			return false
		}

		card, ok := s.extractCard(node)
		if !ok {
			report.Skipped++
			metrics.RecordsSkipped.WithLabelValues("listing").Inc()
			return true
		}
		report.Processed++

		listing := models.NewListingSummary(card, now)
		if !filter.Matches(listing, now) {
			return true
		}

		listings = append(listings, listing)
		metrics.RecordsExtracted.WithLabelValues("listing").Inc()
		s.bus.Publish(events.ListingFoundTopic, events.ListingFound{Listing: listing, TraceID: s.traceID})
		return true
	})

	if err := ctx.Err(); err != nil {
		return listings, report, err
	}

	s.log.Infof("search complete: %d listings matched, %d cards processed, %d skipped",
		len(listings), report.Processed, report.Skipped)
	return listings, report, nil
}

// extractCard resolves one result card. A card without a title is markup
// noise (ads, separators) and is not a listing.
func (s *ListingScraper) extractCard(node *goquery.Selection) (models.ListingCard, bool) {
	title, ok := extract.Resolve(node, cardTitleField)
	if !ok {
		return models.ListingCard{}, false
	}

	href, _ := extract.Resolve(node, cardURLField)
	absoluteURL := s.resolveURL(href)

	card := models.ListingCard{
		ID:    listingID(node, absoluteURL),
		Title: title,
		URL:   absoluteURL,
	}
	card.Company, _ = extract.Resolve(node, cardCompanyField)
	card.Location, _ = extract.Resolve(node, cardLocationField)
	card.StipendText, _ = extract.Resolve(node, cardStipendField)
	card.Duration, _ = extract.Resolve(node, cardDurationField)
	card.ApplyBy, _ = extract.Resolve(node, cardApplyByField)
	card.PostedText, _ = extract.Resolve(node, cardPostedField)
	card.Tags = extract.ResolveAll(node, cardTagsField)

	return card, true
}

// resolveURL makes a card href absolute against the site base.
func (s *ListingScraper) resolveURL(href string) string {
	if href == "" {
		return ""
	}

	base, err := url.Parse(s.baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// listingID derives a stable identity for a card so that reruns recognize
// listings they already archived. The markup attribute wins, then the URL
// tail; a random ID is the last resort for cards with neither.
func listingID(node *goquery.Selection, absoluteURL string) string {
	if id := strings.TrimSpace(node.AttrOr("internshipid", "")); id != "" {
		return id
	}

	if absoluteURL != "" {
		trimmed := strings.TrimRight(absoluteURL, "/")
		if idx := strings.LastIndex(trimmed, "/"); idx >= 0 && idx+1 < len(trimmed) {
			return trimmed[idx+1:]
		}
	}

	return uuid.NewString()
}
