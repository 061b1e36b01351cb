package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap/zaptest"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{ServerAddress: "http://localhost:4040", ApplicationName: "agencydesk"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_Validation(t *testing.T) {
	cases := []struct {
		name    string
		cfg     ProfilerConfig
		wantErr string
	}{
		{"missing server address", ProfilerConfig{Enabled: true, ApplicationName: "agencydesk"}, "server address is required"},
		{"missing application name", ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"}, "application name is required"},
		{"unknown profile type", ProfilerConfig{
			Enabled:         true,
			ServerAddress:   "http://localhost:4040",
			ApplicationName: "agencydesk",
			ProfileTypes:    []string{"cpu", "heap"},
		}, `unknown profile type "heap"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewProfiler(tc.cfg, zaptest.NewLogger(t))
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestParseProfileTypes_Dedupes(t *testing.T) {
	types, err := parseProfileTypes([]string{"cpu", "inuse_space", "cpu"})
	require.NoError(t, err)
	assert.Len(t, types, 2)
}

func TestEnableSpanProfiles(t *testing.T) {
	t.Run("no-op while tracing is disabled", func(t *testing.T) {
		p, err := Setup(context.Background(), Config{}, zaptest.NewLogger(t))
		require.NoError(t, err)

		p.EnableSpanProfiles()
		assert.False(t, p.SpanProfilesEnabled())
	})

	t.Run("wraps the global provider", func(t *testing.T) {
		prev := otel.GetTracerProvider()
		t.Cleanup(func() { otel.SetTracerProvider(prev) })

		tp := sdktrace.NewTracerProvider()
		t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
		p := &Providers{logger: zaptest.NewLogger(t), tracer: tp}

		p.EnableSpanProfiles()
		assert.True(t, p.SpanProfilesEnabled())
		assert.NotSame(t, tp, otel.GetTracerProvider())

		_, span := p.Tracer("test").Start(context.Background(), "op")
		span.End()
	})
}

func TestWithProfilingLabels(t *testing.T) {
	t.Run("runs fn without labels", func(t *testing.T) {
		called := false
		WithProfilingLabels(context.Background(), nil, func(context.Context) { called = true })
		assert.True(t, called)
	})

	t.Run("attaches sanitized labels", func(t *testing.T) {
		labels := map[string]string{
			"Route-Name": "/api/v1/invoices/:id",
			"user_id":    "3f0c",
			"resource":   "invoices",
		}
		var route, user string
		var hasUser bool
		WithProfilingLabels(context.Background(), labels, func(ctx context.Context) {
			route, _ = pprof.Label(ctx, "route_name")
			user, hasUser = pprof.Label(ctx, "user_id")
		})

		assert.Equal(t, "/api/v1/invoices/:id", route)
		assert.False(t, hasUser, "user ids must not become labels: %q", user)
		assert.Len(t, labels, 3, "caller's map is left alone")
	})
}

func TestSanitizeLabels(t *testing.T) {
	pairs := sanitizeLabels(map[string]string{
		"method":     "GET",
		"empty":      "",
		"request_id": "abc",
		"Op Name!":   strings.Repeat("x", MaxLabelValueLength+10),
	})

	// ordered by the raw key, and "O" sorts before "m"
	require.Len(t, pairs, 4)
	assert.Equal(t, "op_name", pairs[0])
	assert.Len(t, pairs[1], MaxLabelValueLength)
	assert.Equal(t, "method", pairs[2])
	assert.Equal(t, "GET", pairs[3])
}

func TestOperationLabels(t *testing.T) {
	labels := OperationLabels("overdue-sweep", map[string]string{ProfilingLabelOperation: "ignored", "kind": "job"})
	assert.Equal(t, "overdue-sweep", labels[ProfilingLabelOperation])
	assert.Equal(t, "job", labels["kind"])
}
