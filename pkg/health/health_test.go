package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/logger"
)

func TestRunAggregatesStatus(t *testing.T) {
	c := NewChecker(logger.Discard())
	c.Register("postgres", func(context.Context) error { return nil })
	report := c.Run(context.Background())
	assert.Equal(t, StatusUp, report.Status)

	c.Register("redis", func(context.Context) error { return errors.New("connection refused") })
	report = c.Run(context.Background())
	assert.Equal(t, StatusDown, report.Status)
	assert.Equal(t, "connection refused", report.Components["redis"].Message)
	assert.Equal(t, StatusUp, report.Components["postgres"].Status)
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker(logger.Discard())
	c.Register("postgres", func(context.Context) error { return errors.New("down") })

	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var report Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, StatusDown, report.Status)
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChecker(logger.Discard()).LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}
