package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservers(t *testing.T) {
	t.Parallel()
	before := testutil.ToFloat64(candidatesTotal.WithLabelValues(OutcomeValid))
	ObserveCandidate(OutcomeValid)
	assert.Equal(t, before+1, testutil.ToFloat64(candidatesTotal.WithLabelValues(OutcomeValid)))

	before = testutil.ToFloat64(tradesTotal.WithLabelValues("stop-loss"))
	ObserveTrade("stop-loss")
	assert.Equal(t, before+1, testutil.ToFloat64(tradesTotal.WithLabelValues("stop-loss")))

	before = testutil.ToFloat64(rejectionsTotal.WithLabelValues("max-leverage"))
	ObserveRejection("max-leverage")
	assert.Equal(t, before+1, testutil.ToFloat64(rejectionsTotal.WithLabelValues("max-leverage")))

	before = testutil.ToFloat64(runsTotal.WithLabelValues(RunComplete))
	ObserveRun(RunComplete, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(runsTotal.WithLabelValues(RunComplete)))
}

func TestHandler(t *testing.T) {
	t.Parallel()
	ObserveCandidate(OutcomeSkipped)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "pairs_candidates_total"))
}
