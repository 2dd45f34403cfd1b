package services

import (
	"context"

	log "github.com/sirupsen/logrus"

	"internscout/internal/domain/models"
	"internscout/internal/extract"
	"internscout/internal/logger"
)

// detailSession is the slice of the browser session the enricher needs.
type detailSession interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(selector string, timeoutMs float64) bool
	Content() (string, error)
}

const detailWaitMs = 15000

const detailSurfaceSelector = ".internship_details, .detail_view, .internship-detail"

// detailFields are resolved against the whole detail page; Name doubles as
// the Extras key and the export column.
var detailFields = []extract.Field{
	{Name: "title", Selectors: []string{".profile_name", ".internship_profile", ".internship-title", "h1.heading_4_5"}},
	{Name: "company", Selectors: []string{".company_name", ".link_display_like_text", ".company-name"}},
	{Name: "location", Selectors: []string{".location_name", ".internship_location", ".location-info"}},
	{Name: "duration", Selectors: []string{".duration_container", ".internship_duration", ".duration-info"}},
	{Name: "stipend", Selectors: []string{".stipend_container", ".internship_stipend", ".stipend-info"}},
	{Name: "start_date", Selectors: []string{".start_date_container", ".internship_start_date", ".start-date-info"}},
	{Name: "apply_by", Selectors: []string{".apply_by_container", ".internship_apply_by", ".apply-by-info"}},
	{Name: "skills_required", Selectors: []string{".skills_required", ".internship_skills", ".skills-section"}},
	{Name: "eligibility", Selectors: []string{".who_can_apply", ".eligibility_criteria", ".eligibility-section"}},
	{Name: "openings", Selectors: []string{".number_of_internships", ".openings_count", ".openings-info"}},
	{Name: "perks", Selectors: []string{".perks_container", ".internship_perks", ".perks-section"}},
	{Name: "application_deadline", Selectors: []string{".application_deadline", ".apply_by", ".deadline-info"}},
	{Name: "total_applicants", Selectors: []string{".applicants_count", ".total_applicants", ".applicants-info"}},
	{Name: "activity", Selectors: []string{".activity_container", ".internship_activity", ".activity-info"}},
	{Name: "company_description", Selectors: []string{".company_description", ".about_company", ".company-about"}},
	{Name: "company_size", Selectors: []string{".company_size", ".team_size", ".company-size"}},
	{Name: "company_type", Selectors: []string{".company_type", ".organization_type", ".company-type"}},
}

type DetailEnricher struct {
	session detailSession
	log     *log.Entry
}

func NewDetailEnricher(session detailSession, traceID string) *DetailEnricher {
	return &DetailEnricher{session: session, log: logger.WithTrace(traceID)}
}

// Enrich fetches one detail page and resolves whatever fields it exposes.
// A page that will not render or parse yields nil without error; only a dead
// session or a cancelled context is reported.
func (d *DetailEnricher) Enrich(ctx context.Context, url string) (map[string]string, error) {
	if err := d.session.Navigate(ctx, url); err != nil {
		return nil, err
	}

	if !d.session.WaitVisible(detailSurfaceSelector, detailWaitMs) {
		d.log.Warnf("detail page did not render: %s", url)
		return nil, nil
	}

	html, err := d.session.Content()
	if err != nil {
		return nil, err
	}
	if html == "" {
		return nil, nil
	}

	doc, err := extract.Document(html)
	if err != nil {
		d.log.WithField(logger.ErrorTypeField, logger.ErrorTypeExtract).
			Warnf("failed to parse detail page %s: %v", url, err)
		return nil, nil
	}

	details := map[string]string{}
	for _, field := range detailFields {
		if value, ok := extract.Resolve(doc.Selection, field); ok {
			details[field.Name] = value
		}
	}
	return details, nil
}

// detailProvider lets the enrichment pass run against the cached or the
// plain enricher interchangeably.
type detailProvider interface {
	Enrich(ctx context.Context, url string) (map[string]string, error)
}

// EnrichAll merges detail-page fields into the first few listings in place.
// Detail pages cost one navigation each, so the pass is capped rather than
// exhaustive. Listings whose pages fail to parse keep their summary fields.
func EnrichAll(ctx context.Context, provider detailProvider, listings []models.ListingSummary, limit int) error {
	n := len(listings)
	if limit > 0 && limit < n {
		n = limit
	}

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if listings[i].URL == "" {
			continue
		}

		details, err := provider.Enrich(ctx, listings[i].URL)
		if err != nil {
			return err
		}
		if len(details) == 0 {
			continue
		}
		listings[i].Enrich(details)
	}

	return nil
}
