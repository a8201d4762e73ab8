package client

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	c, err := NewClient("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.baseURL)

	_, err = NewClient("")
	require.Error(t, err)

	_, err = NewClient("ftp://files.example.com")
	require.Error(t, err)
}

func TestTrend_DecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/books/abc/trend", r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "shelfswap-go-sdk/")
		json.NewEncoder(w).Encode(TrendReport{
			BookID:        "abc",
			CurrentValue:  80,
			Direction:     "increasing",
			PercentChange: 50,
			TotalOffers:   4,
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	report, err := c.Trend(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 80, report.CurrentValue)
	assert.Equal(t, "increasing", report.Direction)
}

func TestDiscussions_LimitQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(DiscussionSummary{HasMoreThreads: true})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	summary, err := c.Discussions(context.Background(), "abc", 3)
	require.NoError(t, err)
	assert.True(t, summary.HasMoreThreads)
}

func TestAnalytics_APIErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "BOOK_001",
			"message": "book not found",
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Analytics(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, stderrors.As(err, &apiErr))
	assert.Equal(t, "BOOK_001", apiErr.Code)
	assert.True(t, apiErr.IsNotFound())
	assert.False(t, apiErr.IsServerError())
}

func TestValue_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"code": "COMMON_001", "message": "boom"})
			return
		}
		json.NewEncoder(w).Encode(Valuation{BookID: "abc", Points: 75, Source: "fallback"})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetry(3, time.Millisecond))
	require.NoError(t, err)

	v, err := c.Value(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 75, v.Points)
	assert.Equal(t, int32(3), calls.Load())
}

func TestValue_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"code": "BOOK_003", "message": "malformed book id"})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetry(3, time.Millisecond))
	require.NoError(t, err)

	_, err = c.Value(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var apiErr *APIError
	require.True(t, stderrors.As(err, &apiErr))
	assert.Equal(t, "BOOK_003", apiErr.Code)
}

func TestDo_ExhaustedRetriesReportLastError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetry(1, time.Millisecond))
	require.NoError(t, err)

	_, err = c.Value(context.Background(), "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestRevalue_UsesPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		json.NewEncoder(w).Encode(Valuation{BookID: "abc", Points: 90})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	v, err := c.Revalue(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 90, v.Points)
}
