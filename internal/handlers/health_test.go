package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbe(t *testing.T) {
	ok := probe(context.Background(), func(context.Context) error { return nil })
	assert.Equal(t, "healthy", ok.Status)
	assert.NotEmpty(t, ok.Latency)

	down := probe(context.Background(), func(context.Context) error { return errors.New("connection refused") })
	assert.Equal(t, "unhealthy", down.Status)
	assert.Equal(t, "connection refused", down.Error)
	assert.Empty(t, down.Latency)
}

func TestHealthReportDegradesOnAnyFailure(t *testing.T) {
	healthy := componentHealth{Status: "healthy"}
	report := newHealthReport("test", "req-1", map[string]componentHealth{"database": healthy, "redis": healthy})
	assert.Equal(t, "healthy", report.Status)
	assert.Equal(t, Version, report.Version)

	report = newHealthReport("test", "req-2", map[string]componentHealth{
		"database": healthy,
		"redis":    {Status: "unhealthy", Error: "timeout"},
	})
	assert.Equal(t, "degraded", report.Status)
}
