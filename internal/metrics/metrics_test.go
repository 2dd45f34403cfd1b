package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func Test_ErrorsCounter_UsesErrorTypeLabel(t *testing.T) {
	ErrorsCounter.Reset()
	ErrorsCounter.WithLabelValues("browser").Inc()

	expected := `
# HELP scraper_errors_total Total number of occurred errors.
# TYPE scraper_errors_total counter
scraper_errors_total{error_type="browser"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(ErrorsCounter, strings.NewReader(expected)))
}
