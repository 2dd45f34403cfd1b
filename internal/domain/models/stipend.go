package models

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

var (
	kSuffixRe   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*k`)
	perPeriodRe = regexp.MustCompile(`(?i)/\s*(month|week|day|year).*`)
	numberRe    = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// ParseStipend derives numeric bounds from a stipend blurb. "Unpaid" and its
// variants yield (nil, nil); a single number yields equal bounds; a range
// yields (min, max). "K" suffixes expand to thousands. Deterministic and
// idempotent: the same text always yields identical bounds.
func ParseStipend(text string) (*float64, *float64) {

	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" || lowered == "-" ||
		strings.Contains(lowered, "unpaid") || strings.Contains(lowered, "no stipend") {
		return nil, nil
	}

	lowered = strings.ReplaceAll(lowered, "₹", "")
	lowered = strings.ReplaceAll(lowered, ",", "")
	lowered = perPeriodRe.ReplaceAllString(lowered, "")
	lowered = kSuffixRe.ReplaceAllStringFunc(lowered, func(match string) string {
		groups := kSuffixRe.FindStringSubmatch(match)
		value, err := strconv.ParseFloat(groups[1], 64)
		if err != nil {
			return match
		}
		return strconv.FormatFloat(value*1000, 'f', -1, 64)
	})

	var values []float64
	for _, raw := range numberRe.FindAllString(lowered, -1) {
		if value, err := strconv.ParseFloat(raw, 64); err == nil {
			values = append(values, value)
		}
	}
	if len(values) == 0 {
		return nil, nil
	}

	minValue, maxValue := lo.Min(values), lo.Max(values)
	return &minValue, &maxValue
}
