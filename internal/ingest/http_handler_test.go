package ingest

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gutendex/internal/platform/gutenberg"
	"gutendex/internal/testutil"
)

func newTestHandler(secret string) (*HTTPHandler, *Service, *mockImporter, *mockIngestRepo) {
	importer := new(mockImporter)
	repo := new(mockIngestRepo)
	feed := &fakeFeed{entries: []gutenberg.Entry{{ID: 1, Record: record(1)}}}
	svc := NewService(feed, importer, repo, discardLogger())
	return NewHTTPHandler(svc, repo, secret, discardLogger()), svc, importer, repo
}

func TestHTTPHandler_Ingest(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		h, _, _, repo := newTestHandler("s3cret")
		w := httptest.NewRecorder()
		h.Ingest(w, testutil.NewRequest(http.MethodPost, "/internal/jobs/ingest", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		repo.AssertNotCalled(t, "CreateRun", mock.Anything, mock.Anything)
	})

	t.Run("unconfigured secret rejects everything", func(t *testing.T) {
		h, _, _, _ := newTestHandler("")
		r := testutil.NewRequest(http.MethodPost, "/internal/jobs/ingest", nil)
		r.Header.Set("X-Internal-Secret", "")
		w := httptest.NewRecorder()
		h.Ingest(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("starts a background run", func(t *testing.T) {
		h, svc, importer, repo := newTestHandler("s3cret")
		repo.On("CreateRun", mock.Anything, mock.Anything).Return("run-1", nil)
		repo.On("UpdateRun", mock.Anything, withStatus(StatusCompleted)).Return(nil)
		importer.On("Import", mock.Anything, mock.Anything).Return(nil)
		importer.On("Prune", mock.Anything, mock.Anything).Return(2, nil)

		r := testutil.NewRequest(http.MethodPost, "/internal/jobs/ingest", nil)
		r.Header.Set("X-Internal-Secret", "s3cret")
		w := httptest.NewRecorder()
		h.Ingest(w, r)

		assert.Equal(t, http.StatusAccepted, w.Code)

		// the background run holds the guard until it finishes
		svc.running.Lock()
		svc.running.Unlock()
		repo.AssertExpectations(t)
		importer.AssertExpectations(t)
	})

	t.Run("conflict while running", func(t *testing.T) {
		h, svc, _, _ := newTestHandler("s3cret")
		svc.running.Lock()
		defer svc.running.Unlock()

		r := testutil.NewRequest(http.MethodPost, "/internal/jobs/ingest", nil)
		r.Header.Set("X-Internal-Secret", "s3cret")
		w := httptest.NewRecorder()
		h.Ingest(w, r)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHTTPHandler_Latest(t *testing.T) {
	t.Run("none recorded", func(t *testing.T) {
		h, _, _, repo := newTestHandler("s3cret")
		repo.On("LatestRun", mock.Anything).Return(Run{}, ErrRunNotFound)

		r := testutil.NewRequest(http.MethodGet, "/internal/jobs/ingest", nil)
		r.Header.Set("X-Internal-Secret", "s3cret")
		w := httptest.NewRecorder()
		h.Latest(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("latest run", func(t *testing.T) {
		h, _, _, repo := newTestHandler("s3cret")
		repo.On("LatestRun", mock.Anything).Return(Run{ID: "run-7", Status: StatusCompleted, StartedAt: time.Now()}, nil)

		r := testutil.NewRequest(http.MethodGet, "/internal/jobs/ingest", nil)
		r.Header.Set("X-Internal-Secret", "s3cret")
		w := httptest.NewRecorder()
		h.Latest(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		data := testutil.DecodeBody(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "run-7", data["id"])
	})
}
