package models

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// SearchFilter is a value object of optional listing constraints. It is used
// twice per search: once to build the remote query (best effort, the remote
// grammar cannot express everything) and once to re-filter the fetched set
// locally. The local pass is authoritative.
type SearchFilter struct {
	Keywords         []string `validate:"max=10"`
	Locations        []string `validate:"max=10"`
	StipendMin       *float64 `validate:"omitempty,gte=0"`
	StipendMax       *float64 `validate:"omitempty,gte=0"`
	Mode             WorkMode `validate:"omitempty,oneof=on_site remote hybrid"`
	Categories       []string `validate:"max=10"`
	CompanyTypes     []string `validate:"max=10"`
	ExcludeUnpaid    bool
	PostedWithinDays int `validate:"gte=0"`

	// Remote-query hints only: summary cards do not reliably expose these
	// facts, so they narrow the query but are not re-checked locally.
	DurationWeeks int `validate:"gte=0,lte=104"`
	PartTime      bool
	WithJobOffer  bool

	Limit int `validate:"gte=1,lte=500"`
}

func (f *SearchFilter) Validate() error {
	return validator.New().Struct(f)
}

// BuildQuery renders the filter into the remote search URL. Only the
// constraints the remote grammar understands are encoded here; Matches
// re-checks everything on the fetched records.
func (f *SearchFilter) BuildQuery(baseURL string) string {
	base := strings.TrimRight(baseURL, "/") + "/internships"

	var params []string
	if len(f.Keywords) > 0 {
		escaped := lo.Map(f.Keywords, func(k string, _ int) string { return url.QueryEscape(k) })
		params = append(params, "keyword="+strings.Join(escaped, "+"))
	}
	if len(f.Locations) > 0 {
		escaped := lo.Map(f.Locations, func(l string, _ int) string { return url.QueryEscape(l) })
		params = append(params, "location="+strings.Join(escaped, ","))
	}
	switch f.Mode {
	case ModeRemote:
		params = append(params, "type=work_from_home")
	case ModeOnSite:
		params = append(params, "type=in_office")
	}
	if len(f.Categories) > 0 {
		escaped := lo.Map(f.Categories, func(c string, _ int) string { return url.QueryEscape(c) })
		params = append(params, "category="+strings.Join(escaped, ","))
	}
	if len(f.CompanyTypes) > 0 {
		escaped := lo.Map(f.CompanyTypes, func(c string, _ int) string { return url.QueryEscape(c) })
		params = append(params, "company_type="+strings.Join(escaped, ","))
	}
	if f.DurationWeeks > 0 {
		params = append(params, "duration="+strconv.Itoa(f.DurationWeeks))
	}
	if f.PartTime {
		params = append(params, "part_time=1")
	}
	if f.WithJobOffer {
		params = append(params, "job_offer=1")
	}
	if f.ExcludeUnpaid {
		params = append(params, "stipend_type=paid")
	}

	if len(params) == 0 {
		return base
	}
	return base + "?" + strings.Join(params, "&")
}

// Matches reports whether a listing satisfies every locally checkable
// constraint. It must never pass a record the filter logically excludes,
// no matter what the remote query returned. Constraints that need a fact the
// record does not carry (an unparsed posted date, an unknown company type)
// are not grounds for exclusion.
func (f *SearchFilter) Matches(listing ListingSummary, now time.Time) bool {

	if len(f.Keywords) > 0 && !f.matchesKeywords(listing) {
		return false
	}

	if len(f.Locations) > 0 {
		location := strings.ToLower(listing.Location)
		found := lo.SomeBy(f.Locations, func(want string) bool {
			return strings.Contains(location, strings.ToLower(want))
		})
		if !found {
			return false
		}
	}

	if f.StipendMin != nil {
		if listing.StipendMax == nil || *listing.StipendMax < *f.StipendMin {
			return false
		}
	}

	if f.StipendMax != nil {
		if listing.StipendMin == nil || *listing.StipendMin > *f.StipendMax {
			return false
		}
	}

	if f.ExcludeUnpaid && listing.StipendMin == nil {
		return false
	}

	if f.Mode != "" && listing.Mode != f.Mode {
		return false
	}

	if len(f.Categories) > 0 && !f.matchesCategories(listing) {
		return false
	}

	if len(f.CompanyTypes) > 0 && !f.matchesCompanyType(listing) {
		return false
	}

	if f.PostedWithinDays > 0 && !listing.PostedDate.IsZero() {
		cutoff := now.AddDate(0, 0, -f.PostedWithinDays)
		if listing.PostedDate.Before(cutoff) {
			return false
		}
	}

	return true
}

func (f *SearchFilter) matchesKeywords(listing ListingSummary) bool {
	haystack := strings.ToLower(listing.Title + " " + listing.Company + " " + strings.Join(listing.Tags, " "))
	return lo.SomeBy(f.Keywords, func(keyword string) bool {
		return strings.Contains(haystack, strings.ToLower(keyword))
	})
}

func (f *SearchFilter) matchesCategories(listing ListingSummary) bool {
	haystack := strings.ToLower(listing.Title + " " + strings.Join(listing.Tags, " "))
	return lo.SomeBy(f.Categories, func(category string) bool {
		return strings.Contains(haystack, strings.ToLower(category))
	})
}

func (f *SearchFilter) matchesCompanyType(listing ListingSummary) bool {
	companyType := strings.ToLower(listing.Extras["company_type"])
	if companyType == "" {
		// Unknown until the detail page is scraped; not grounds for exclusion.
		return true
	}
	return lo.SomeBy(f.CompanyTypes, func(want string) bool {
		return strings.Contains(companyType, strings.ToLower(want))
	})
}
