package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"internscout/internal/domain/models"
)

// Listing columns always come first and in this order. Detail-page extras
// follow, sorted by key, so two exports of the same data line up column for
// column.
var listingPriorityColumns = []string{
	"id", "title", "company", "location", "mode",
	"stipend", "stipend_min", "stipend_max",
	"duration", "apply_by", "posted_date", "url", "is_startup", "tags",
}

var messageColumns = []string{
	"id", "sender", "direction", "timestamp",
	"cleaned_text", "raw_text", "attachments", "source_url",
}

const listSeparator = "; "

func WriteListingsCSV(path string, listings []models.ListingSummary) error {
	columns := listingColumns(listings)

	rows := make([][]string, 0, len(listings)+1)
	rows = append(rows, columns)
	for _, listing := range listings {
		row := make([]string, 0, len(columns))
		for _, column := range columns {
			row = append(row, listingValue(listing, column))
		}
		rows = append(rows, row)
	}

	return writeCSV(path, rows)
}

func WriteMessagesCSV(path string, messages []models.Message) error {
	rows := make([][]string, 0, len(messages)+1)
	rows = append(rows, messageColumns)
	for _, m := range messages {
		rows = append(rows, []string{
			m.ID,
			m.Sender,
			string(m.Direction),
			m.Timestamp.Format(time.RFC3339),
			m.CleanedText,
			m.RawText,
			strings.Join(m.Attachments, listSeparator),
			m.SourceURL,
		})
	}

	return writeCSV(path, rows)
}

// TimestampedPath builds the default artifact name, for example
// exports/messages_20250908_143000.csv.
func TimestampedPath(dir, prefix, ext string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", prefix, now.Format("20060102_150405"), ext))
}

func listingColumns(listings []models.ListingSummary) []string {
	priority := lo.SliceToMap(listingPriorityColumns, func(c string) (string, struct{}) {
		return c, struct{}{}
	})

	extraSet := map[string]struct{}{}
	for _, listing := range listings {
		for key := range listing.Extras {
			if _, taken := priority[key]; !taken {
				extraSet[key] = struct{}{}
			}
		}
	}
	extra := lo.Keys(extraSet)
	sort.Strings(extra)

	return append(append([]string{}, listingPriorityColumns...), extra...)
}

func listingValue(l models.ListingSummary, column string) string {
	switch column {
	case "id":
		return l.ID
	case "title":
		return l.Title
	case "company":
		return l.Company
	case "location":
		return l.Location
	case "mode":
		return string(l.Mode)
	case "stipend":
		return l.StipendText
	case "stipend_min":
		return formatStipend(l.StipendMin)
	case "stipend_max":
		return formatStipend(l.StipendMax)
	case "duration":
		return l.Duration
	case "apply_by":
		return l.ApplyBy
	case "posted_date":
		if l.PostedDate.IsZero() {
			return ""
		}
		return l.PostedDate.Format("2006-01-02")
	case "url":
		return l.URL
	case "is_startup":
		return strconv.FormatBool(l.IsStartup)
	case "tags":
		return strings.Join(l.Tags, listSeparator)
	default:
		return l.Extras[column]
	}
}

func formatStipend(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func writeCSV(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create export directory")
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create export file")
	}

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		_ = file.Close()
		return errors.Wrap(err, "write csv")
	}

	return errors.Wrap(file.Close(), "close export file")
}
