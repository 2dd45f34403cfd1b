package models

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// IST is the platform's display timezone. Fixed offset so no tzdata lookup
// is needed at runtime.
var IST = time.FixedZone("IST", 5*3600+30*60)

var (
	daysAgoRe   = regexp.MustCompile(`(\d+)\s+day`)
	weeksAgoRe  = regexp.MustCompile(`(\d+)\s+week`)
	monthsAgoRe = regexp.MustCompile(`(\d+)\s+month`)
)

var postedLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
}

// ParsePostedDate turns the "posted" blurb of a listing card into a concrete
// time. Handles relative forms ("2 days ago", "today") and the absolute
// layouts the site renders. Returns false when nothing matched.
func ParsePostedDate(text string, now time.Time) (time.Time, bool) {

	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return time.Time{}, false
	}

	switch {
	case strings.Contains(lowered, "today"),
		strings.Contains(lowered, "just now"),
		strings.Contains(lowered, "hour"):
		return now, true
	case strings.Contains(lowered, "yesterday"):
		return now.AddDate(0, 0, -1), true
	}

	if groups := daysAgoRe.FindStringSubmatch(lowered); groups != nil {
		days, _ := strconv.Atoi(groups[1])
		return now.AddDate(0, 0, -days), true
	}
	if groups := weeksAgoRe.FindStringSubmatch(lowered); groups != nil {
		weeks, _ := strconv.Atoi(groups[1])
		return now.AddDate(0, 0, -7*weeks), true
	}
	if groups := monthsAgoRe.FindStringSubmatch(lowered); groups != nil {
		months, _ := strconv.Atoi(groups[1])
		return now.AddDate(0, 0, -30*months), true
	}

	for _, layout := range postedLayouts {
		if parsed, err := time.ParseInLocation(layout, strings.TrimSpace(text), IST); err == nil {
			return parsed, true
		}
	}

	return time.Time{}, false
}

var messageTimeLayouts = []string{
	"15:04",
	"3:04 PM",
	"02/01/2006 15:04",
	"2006-01-02 15:04:05",
	"Jan 2, 2006 3:04 PM",
}

// ParseMessageTime normalizes a chat timestamp. Time-of-day-only formats are
// anchored to now's date; anything unparseable falls back to now so a message
// always carries a usable timestamp.
func ParseMessageTime(text string, now time.Time) time.Time {

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return now
	}

	for _, layout := range messageTimeLayouts {
		parsed, err := time.ParseInLocation(layout, trimmed, IST)
		if err != nil {
			continue
		}
		if parsed.Year() == 0 {
			return time.Date(now.Year(), now.Month(), now.Day(),
				parsed.Hour(), parsed.Minute(), parsed.Second(), 0, IST)
		}
		return parsed
	}

	return now
}
