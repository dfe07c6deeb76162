package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/logger"
)

type fakeReporter struct {
	year      int
	quarterly []QuarterlyHires
	aboveMean []DepartmentHires
	err       error
}

func (f *fakeReporter) QuarterlyHiresByDepartmentAndJob(_ context.Context, year int) ([]QuarterlyHires, error) {
	f.year = year
	return f.quarterly, f.err
}

func (f *fakeReporter) DepartmentsAboveYearlyMean(_ context.Context, year int) ([]DepartmentHires, error) {
	f.year = year
	return f.aboveMean, f.err
}

func serve(h http.HandlerFunc, pattern, target string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestQuarterlyHandler(t *testing.T) {
	fake := &fakeReporter{quarterly: []QuarterlyHires{{Department: "Sales", Job: "Rep", Q1: 1, Q3: 2}}}
	h := NewHandler(fake, logger.Discard())

	rec := serve(h.Quarterly, "GET /q/{year}", "/q/2021")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2021, fake.year)
	assert.JSONEq(t, `[{"department":"Sales","job":"Rep","Q1":1,"Q2":0,"Q3":2,"Q4":0}]`, rec.Body.String())
}

func TestAboveMeanHandlerEmpty(t *testing.T) {
	fake := &fakeReporter{aboveMean: []DepartmentHires{}}
	h := NewHandler(fake, logger.Discard())

	rec := serve(h.AboveMean, "GET /m/{year}", "/m/2021")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandlerRejectsNonNumericYear(t *testing.T) {
	fake := &fakeReporter{}
	h := NewHandler(fake, logger.Discard())

	rec := serve(h.Quarterly, "GET /q/{year}", "/q/twenty")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, fake.year)
}

func TestHandlerMapsEngineErrors(t *testing.T) {
	fake := &fakeReporter{err: apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "year must be between 1 and 9999")}
	h := NewHandler(fake, logger.Discard())

	rec := serve(h.AboveMean, "GET /m/{year}", "/m/0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "year must be between 1 and 9999", body["error"])

	fake.err = apperrors.ErrSchema
	rec = serve(h.AboveMean, "GET /m/{year}", "/m/2021")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
