package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestRegistry_ObserveQuery(t *testing.T) {
	r := NewRegistry()
	r.ObserveQuery("tree", 150*time.Microsecond, true)
	r.ObserveQuery("tree", 10*time.Microsecond, false)
	r.ObserveQuery("linear", time.Millisecond, true)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.QueriesTotal.WithLabelValues("tree", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.QueriesTotal.WithLabelValues("tree", "empty")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.QueryDuration))
}

func TestRegistry_EngineState(t *testing.T) {
	r := NewRegistry()
	r.SetEngineState("linear", 10, 2)
	r.SetEngineState("tree", 12, 0)
	assert.Equal(t, 1, testutil.CollectAndCount(r.IndexSize), "previous engine series is dropped")
	assert.Equal(t, 12.0, testutil.ToFloat64(r.IndexSize.WithLabelValues("tree")))
}

func TestRegistry_Rebuild(t *testing.T) {
	r := NewRegistry()
	r.ObserveRebuild("tree", time.Second, nil)
	r.ObserveRebuild("tree", time.Second, errors.New("bad row"))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RebuildsTotal.WithLabelValues("tree", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.RebuildSeconds))
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.ObserveQuery("tree", time.Microsecond, true)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "tracknn_queries_total"))
}

func TestRegistry_ObserveLogEntry(t *testing.T) {
	r := NewRegistry()
	r.ObserveLogEntry(zapcore.InfoLevel)
	r.ObserveLogEntry(zapcore.ErrorLevel)
	r.ObserveLogEntry(zapcore.FatalLevel)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.LogEntries.WithLabelValues("info")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.LogErrors))
}
