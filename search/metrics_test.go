package search

import (
	"context"
	"testing"

	"github.com/poiesic/conformit/internal/fixtures"
	"github.com/poiesic/conformit/terminology"
	"github.com/poiesic/conformit/terminology/mock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMonitor(t *testing.T) {
	reg := prometheus.NewRegistry()
	monitor := NewMetricsMonitor(reg)

	extra := fixtures.WithStatedRelationship(fixtures.CTGuidedProcedureConcept("1003", false), 1, fixtures.CausativeAgent, "105590001")
	client := mock.NewMockClient(fixtures.CTGuidedProcedureConcept("1001", true), extra)
	searcher, err := NewSearcher(ctLoader(), client, WithMonitor(monitor))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = searcher.Search(ctx, request(ptr(true), nil, true))
	require.NoError(t, err)

	missing := request(ptr(true), nil, true)
	missing.TemplateName = "missing"
	_, err = searcher.Search(ctx, missing)
	require.Error(t, err)

	client.EvaluateQueryFunc = func(ctx context.Context, branch, ecl string, maxResults int, stated bool) (*terminology.QueryResult, error) {
		return &terminology.QueryResult{ConceptIDs: []string{"1001"}, Total: 2}, nil
	}
	_, err = searcher.Search(ctx, request(ptr(true), nil, true))
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(monitor.searches.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(monitor.searches.WithLabelValues("not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(monitor.removed))
	assert.Equal(t, 1.0, testutil.ToFloat64(monitor.truncated))
	assert.Empty(t, monitor.started)

	count, err := testutil.GatherAndCount(reg, "conformit_search_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
