package models

import (
	"strings"
	"time"
)

type WorkMode string

const (
	ModeOnSite WorkMode = "on_site"
	ModeRemote WorkMode = "remote"
	ModeHybrid WorkMode = "hybrid"
)

func ToWorkMode(s string) (WorkMode, bool) {
	switch WorkMode(s) {
	case ModeOnSite, ModeRemote, ModeHybrid:
		return WorkMode(s), true
	default:
		return "", false
	}
}

// ModeFromLocation classifies the advertised location text. The site mixes
// "Work From Home" into the location slot instead of a dedicated field.
func ModeFromLocation(location string) WorkMode {
	lowered := strings.ToLower(location)
	switch {
	case strings.Contains(lowered, "hybrid"):
		return ModeHybrid
	case strings.Contains(lowered, "work from home"), strings.Contains(lowered, "remote"):
		return ModeRemote
	default:
		return ModeOnSite
	}
}

// ListingCard carries the raw card fields as read off the results page,
// before any derivation.
type ListingCard struct {
	ID          string
	Title       string
	Company     string
	Location    string
	StipendText string
	Duration    string
	PostedText  string
	ApplyBy     string
	URL         string
	Tags        []string
}

// ListingSummary is one internship listing. StipendMin/StipendMax are derived
// from StipendText exactly once, at construction. Extras holds detail-page
// fields keyed by column name.
type ListingSummary struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Company     string            `json:"company"`
	Location    string            `json:"location"`
	Mode        WorkMode          `json:"mode"`
	StipendText string            `json:"stipend"`
	StipendMin  *float64          `json:"stipend_min"`
	StipendMax  *float64          `json:"stipend_max"`
	Duration    string            `json:"duration"`
	PostedText  string            `json:"posted_text"`
	PostedDate  time.Time         `json:"posted_date"`
	ApplyBy     string            `json:"apply_by"`
	URL         string            `json:"url"`
	IsStartup   bool              `json:"is_startup"`
	Tags        []string          `json:"tags"`
	Extras      map[string]string `json:"extras"`
}

func NewListingSummary(card ListingCard, now time.Time) ListingSummary {

	stipendMin, stipendMax := ParseStipend(card.StipendText)
	posted, _ := ParsePostedDate(card.PostedText, now)

	return ListingSummary{
		ID:          card.ID,
		Title:       card.Title,
		Company:     card.Company,
		Location:    card.Location,
		Mode:        ModeFromLocation(card.Location),
		StipendText: card.StipendText,
		StipendMin:  stipendMin,
		StipendMax:  stipendMax,
		Duration:    card.Duration,
		PostedText:  card.PostedText,
		PostedDate:  posted,
		ApplyBy:     card.ApplyBy,
		URL:         card.URL,
		Tags:        card.Tags,
		Extras:      map[string]string{},
	}
}

// Enrich merges detail-page fields into the summary and re-derives the
// startup flag when the company type became known.
func (l *ListingSummary) Enrich(details map[string]string) {
	if l.Extras == nil {
		l.Extras = map[string]string{}
	}
	for key, value := range details {
		l.Extras[key] = value
	}
	if companyType, ok := l.Extras["company_type"]; ok {
		l.IsStartup = strings.Contains(strings.ToLower(companyType), "startup")
	}
}
