package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/metrics"
)

type fakeStore struct {
	inserts   [][]ingestion.RawRow
	deletes   []ingestion.EntityType
	deleted   *int64
	insertErr error
}

func (f *fakeStore) Insert(_ context.Context, entity ingestion.EntityType, rows []ingestion.RawRow) (ingestion.InsertSummary, error) {
	f.inserts = append(f.inserts, rows)
	if f.insertErr != nil {
		return ingestion.InsertSummary{Table: entity.Table()}, f.insertErr
	}
	return ingestion.InsertSummary{Table: entity.Table(), RowsInserted: int64(len(rows))}, nil
}

func (f *fakeStore) DeleteAll(_ context.Context, entity ingestion.EntityType) (int64, error) {
	f.deletes = append(f.deletes, entity)
	if f.deleted != nil {
		return *f.deleted, nil
	}
	return 4, nil
}

type fakeNotifier struct {
	ingested []*ingestion.Result
	purged   []ingestion.EntityType
}

func (f *fakeNotifier) Ingested(_ context.Context, res *ingestion.Result) error {
	f.ingested = append(f.ingested, res)
	return errors.New("broker down")
}

func (f *fakeNotifier) Purged(_ context.Context, entity ingestion.EntityType, _ int64) error {
	f.purged = append(f.purged, entity)
	return nil
}

type fakeInvalidator struct{ calls int }

func (f *fakeInvalidator) Invalidate(context.Context) error {
	f.calls++
	return nil
}

func newOrchestrator(store Store, opts ...Option) *Orchestrator {
	return New(store, config.IngestionConfig{MaxLines: 1000, Delimiter: ","}, logger.Discard(), opts...)
}

func csv(name, content string) *ingestion.Upload {
	return &ingestion.Upload{FileName: name, Content: []byte(content)}
}

func TestIngestAllAccepted(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	inv := &fakeInvalidator{}
	o := newOrchestrator(store, WithNotifier(notifier), WithInvalidator(inv))

	res, err := o.Ingest(context.Background(), ingestion.Job, csv("jobs.csv", "1,Marketing Assistant\n2,VP Sales\n"))
	require.NoError(t, err)

	assert.Equal(t, ingestion.CountResponse{TotalInsertedRows: 2, Message: "2 rows inserted into jobs"}, res.Response())
	require.Len(t, store.inserts, 1)
	assert.Len(t, store.inserts[0], 2)
	assert.Len(t, notifier.ingested, 1, "notifier failure must not fail the call")
	assert.Equal(t, 1, inv.calls)
}

func TestIngestHireEventsNormalizesAndRejects(t *testing.T) {
	store := &fakeStore{}
	o := newOrchestrator(store)

	content := strings.Join([]string{
		"1,Harold Vogt,2021-11-07T02:48:42Z,2,96",
		"2,Ty Hofer,2021-05-30T05:43:46Z,8,",
		"",
		"3,Lyman Hadye,2021-09-01T23:27:38Z,5,52",
	}, "\n")
	res, err := o.Ingest(context.Background(), ingestion.HireEvent, csv("hired_employees.csv", content))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Report.Total())
	assert.Equal(t, int64(2), res.Summary.RowsInserted)
	require.Len(t, store.inserts, 1)
	assert.Equal(t, "2021-11-07 02:48:42", store.inserts[0][0].Fields[2])

	resp, ok := res.Response().(ingestion.DetailedResponse)
	require.True(t, ok)
	assert.Equal(t, 1, resp.TotalRejectedRows)
	assert.Equal(t, 2, resp.RejectRecords[0].Line)
	assert.Equal(t, []string{"Missing value for 'job_id'"}, resp.RejectRecords[0].Errors)
}

func TestIngestPreconditionsNeverTouchStore(t *testing.T) {
	tooMany := strings.Repeat("1,a\n", 1001)
	tests := []struct {
		name     string
		upload   *ingestion.Upload
		sentinel error
		status   int
	}{
		{"no file", nil, apperrors.ErrUnsupportedMediaType, http.StatusBadRequest},
		{"not csv", csv("data.txt", "1,a"), apperrors.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType},
		{"empty", csv("jobs.csv", ""), apperrors.ErrEmptyInput, http.StatusUnprocessableEntity},
		{"blank lines only", csv("jobs.csv", "\n  \n\r\n"), apperrors.ErrEmptyInput, http.StatusUnprocessableEntity},
		{"too many rows", csv("jobs.csv", tooMany), apperrors.ErrTooManyRows, http.StatusUnprocessableEntity},
		{"binary", csv("jobs.csv", "\x00\x01\x02\xff"), apperrors.ErrMalformedInput, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			inv := &fakeInvalidator{}
			o := newOrchestrator(store, WithInvalidator(inv))

			_, err := o.Ingest(context.Background(), ingestion.Job, tt.upload)
			require.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.status, apperrors.HTTPStatusCode(err))
			assert.Empty(t, store.inserts)
			assert.Zero(t, inv.calls)
		})
	}
}

func TestIngestExactlyMaxLinesIsAccepted(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 1000; i++ {
		fmt.Fprintf(&b, "%d,Job %d\n", i, i)
	}
	store := &fakeStore{}
	res, err := newOrchestrator(store).Ingest(context.Background(), ingestion.Job, csv("jobs.csv", b.String()))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.Summary.RowsInserted)
}

func TestIngestAllRejectedSkipsSideEffects(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	inv := &fakeInvalidator{}
	o := newOrchestrator(store, WithNotifier(notifier), WithInvalidator(inv))

	res, err := o.Ingest(context.Background(), ingestion.Department, csv("departments.csv", "1,a,b\n2"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Summary.RowsInserted)
	assert.Equal(t, 2, res.Report.TotalRejected)
	assert.Empty(t, notifier.ingested)
	assert.Zero(t, inv.calls)
}

func TestIngestConflictPropagates(t *testing.T) {
	conflict := apperrors.New(apperrors.ErrConflict, http.StatusConflict, "Duplicate entry")
	store := &fakeStore{insertErr: conflict}
	inv := &fakeInvalidator{}
	m := metrics.New()
	o := newOrchestrator(store, WithInvalidator(inv), WithMetrics(m))

	res, err := o.Ingest(context.Background(), ingestion.Department, csv("departments.csv", "1,Sales"))
	assert.Nil(t, res)
	require.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, http.StatusConflict, apperrors.HTTPStatusCode(err))
	assert.Zero(t, inv.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IngestionFailures.WithLabelValues("departments", "conflict")))
}

func TestIngestRecordsRowMetrics(t *testing.T) {
	m := metrics.New()
	o := newOrchestrator(&fakeStore{}, WithMetrics(m))

	_, err := o.Ingest(context.Background(), ingestion.Job, csv("jobs.csv", "1,a\n2,b,c\n3,d"))
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsProcessedTotal.WithLabelValues("jobs", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RowsProcessedTotal.WithLabelValues("jobs", "rejected")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsInsertedTotal.WithLabelValues("jobs")))
}

func TestPurge(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	inv := &fakeInvalidator{}
	o := newOrchestrator(store, WithNotifier(notifier), WithInvalidator(inv))

	n, err := o.Purge(context.Background(), ingestion.HireEvent)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, []ingestion.EntityType{ingestion.HireEvent}, store.deletes)
	assert.Equal(t, []ingestion.EntityType{ingestion.HireEvent}, notifier.purged)
	assert.Equal(t, 1, inv.calls)
}

func TestPurgeEmptyTableSkipsNotifications(t *testing.T) {
	var zero int64
	store := &fakeStore{deleted: &zero}
	notifier := &fakeNotifier{}
	inv := &fakeInvalidator{}
	o := newOrchestrator(store, WithNotifier(notifier), WithInvalidator(inv))

	n, err := o.Purge(context.Background(), ingestion.Job)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, notifier.purged)
	assert.Zero(t, inv.calls)
}

func TestUnknownEntity(t *testing.T) {
	o := newOrchestrator(&fakeStore{})
	_, err := o.Ingest(context.Background(), ingestion.EntityType(42), csv("x.csv", "1,a"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	_, err = o.Purge(context.Background(), ingestion.EntityType(0))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
