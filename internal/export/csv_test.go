package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internscout/internal/domain/models"
)

func sampleListing() models.ListingSummary {
	stipendMin, stipendMax := 5000.0, 20000.0
	return models.ListingSummary{
		ID:          "42",
		Title:       "Backend Developer Intern",
		Company:     "Acme Labs",
		Location:    "Bangalore",
		Mode:        models.ModeOnSite,
		StipendText: "₹5K-20K /month",
		StipendMin:  &stipendMin,
		StipendMax:  &stipendMax,
		Duration:    "6 Months",
		PostedDate:  time.Date(2025, 9, 6, 0, 0, 0, 0, time.UTC),
		ApplyBy:     "20 Sep' 25",
		URL:         "https://internshala.com/internship/detail/42",
		Tags:        []string{"Go", "SQL"},
		Extras: map[string]string{
			"skills":       "Go; Docker",
			"company_type": "Startup",
			"applicants":   "120",
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func Test_WriteListingsCSV_PriorityColumnsFirstThenSortedExtras(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.csv")
	require.NoError(t, WriteListingsCSV(path, []models.ListingSummary{sampleListing()}))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)

	expected := append(append([]string{}, listingPriorityColumns...),
		"applicants", "company_type", "skills")
	assert.Equal(t, expected, rows[0])
}

func Test_WriteListingsCSV_CellValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.csv")
	require.NoError(t, WriteListingsCSV(path, []models.ListingSummary{sampleListing()}))

	rows := readCSV(t, path)
	header, row := rows[0], rows[1]
	cell := func(column string) string {
		idx := lo.IndexOf(header, column)
		require.GreaterOrEqual(t, idx, 0, "column %s missing", column)
		return row[idx]
	}

	assert.Equal(t, "42", cell("id"))
	assert.Equal(t, "on_site", cell("mode"))
	assert.Equal(t, "5000", cell("stipend_min"))
	assert.Equal(t, "20000", cell("stipend_max"))
	assert.Equal(t, "2025-09-06", cell("posted_date"))
	assert.Equal(t, "Go; SQL", cell("tags"))
	assert.Equal(t, "false", cell("is_startup"))
	assert.Equal(t, "Startup", cell("company_type"))
}

func Test_WriteListingsCSV_MissingFactsStayEmpty(t *testing.T) {
	listing := models.ListingSummary{ID: "7", Title: "Intern", Mode: models.ModeRemote}

	path := filepath.Join(t.TempDir(), "listings.csv")
	require.NoError(t, WriteListingsCSV(path, []models.ListingSummary{listing}))

	rows := readCSV(t, path)
	header, row := rows[0], rows[1]
	assert.Equal(t, "", row[lo.IndexOf(header, "stipend_min")])
	assert.Equal(t, "", row[lo.IndexOf(header, "posted_date")])
}

func Test_WriteMessagesCSV_FixedColumns(t *testing.T) {
	message := models.Message{
		ID:          "m-1",
		Sender:      "Acme Labs",
		Direction:   models.DirectionReceived,
		Timestamp:   time.Date(2025, 9, 8, 14, 30, 0, 0, time.UTC),
		RawText:     "Hello [attachment] ...",
		CleanedText: "Hello",
		Attachments: []string{"https://a/1.pdf", "https://a/2.pdf"},
		SourceURL:   "https://internshala.com/chat/1",
	}

	path := filepath.Join(t.TempDir(), "messages.csv")
	require.NoError(t, WriteMessagesCSV(path, []models.Message{message}))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, messageColumns, rows[0])
	assert.Equal(t, []string{
		"m-1", "Acme Labs", "received", "2025-09-08T14:30:00Z",
		"Hello", "Hello [attachment] ...",
		"https://a/1.pdf; https://a/2.pdf",
		"https://internshala.com/chat/1",
	}, rows[1])
}

func Test_WriteListingsJSON_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.json")
	require.NoError(t, WriteListingsJSON(path, []models.ListingSummary{sampleListing()}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []models.ListingSummary
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Backend Developer Intern", decoded[0].Title)
	assert.Equal(t, 5000.0, *decoded[0].StipendMin)
	assert.Equal(t, "Startup", decoded[0].Extras["company_type"])
}

func Test_TimestampedPath_Format(t *testing.T) {
	now := time.Date(2025, 9, 8, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, filepath.Join("exports", "messages_20250908_143000.csv"),
		TimestampedPath("exports", "messages", "csv", now))
}
