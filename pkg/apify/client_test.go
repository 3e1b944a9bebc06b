package apify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/acts/test-actor/runs", r.URL.Path)
		assert.Equal(t, "secret-token", r.URL.Query().Get("token"))

		var input RunInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Equal(t, []string{"plumbers in Springfield"}, input.SearchQueries)
		assert.Equal(t, 25, input.MaxPlacesPerQuery)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"id":               "run-1",
				"status":           "RUNNING",
				"defaultDatasetId": "ds-1",
			},
		})
	}))
	defer srv.Close()

	c := NewClient("secret-token", WithBaseURL(srv.URL))
	run, err := c.StartRun(context.Background(), "test-actor", RunInput{
		SearchQueries:     []string{"plumbers in Springfield"},
		MaxPlacesPerQuery: 25,
	})
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.Equal(t, "ds-1", run.DefaultDatasetID)
}

func TestStartRun_NonCreated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("bad-token", WithBaseURL(srv.URL))
	_, err := c.StartRun(context.Background(), "test-actor", RunInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestGetRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/acts/test-actor/runs/run-1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"id":               "run-1",
				"status":           "SUCCEEDED",
				"defaultDatasetId": "ds-1",
			},
		})
	}))
	defer srv.Close()

	c := NewClient("tok", WithBaseURL(srv.URL))
	run, err := c.GetRun(context.Background(), "test-actor", "run-1")
	require.NoError(t, err)
	assert.Equal(t, RunStatusSucceeded, run.Status)
	assert.True(t, run.Status.Terminal())
}

func TestDatasetItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/datasets/ds-1/items", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"title":        "Springfield Plumbing",
				"address":      "1 Main St",
				"phone":        "(415) 555-0100",
				"totalScore":   4.7,
				"reviewsCount": 31,
				"placeId":      "place-1",
				"location":     map[string]float64{"lat": 37.7, "lng": -122.4},
			},
			{
				"title":   "No Score LLC",
				"placeId": "place-2",
			},
		})
	}))
	defer srv.Close()

	c := NewClient("tok", WithBaseURL(srv.URL))
	items, err := c.DatasetItems(context.Background(), "ds-1")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Springfield Plumbing", items[0].Name)
	require.NotNil(t, items[0].Rating)
	assert.Equal(t, 4.7, *items[0].Rating)
	require.NotNil(t, items[0].Location)
	assert.Equal(t, 37.7, items[0].Location.Lat)

	assert.Nil(t, items[1].Rating)
	assert.Nil(t, items[1].Location)
}

func TestRunStatus_Terminal(t *testing.T) {
	assert.False(t, RunStatusReady.Terminal())
	assert.False(t, RunStatusRunning.Terminal())
	assert.True(t, RunStatusSucceeded.Terminal())
	assert.True(t, RunStatusFailed.Terminal())
	assert.True(t, RunStatusAborted.Terminal())
	assert.True(t, RunStatusTimedOut.Terminal())
}
