package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prospectly/leadgen-cli/pkg/apify"
)

// fakeAPI scripts StartRun/GetRun/DatasetItems responses.
type fakeAPI struct {
	startRun  *apify.Run
	startErr  error
	polls     []apify.RunStatus
	pollIdx   int
	pollErr   error
	items     []apify.Listing
	itemsErr  error
	lastInput apify.RunInput
}

func (f *fakeAPI) StartRun(_ context.Context, _ string, input apify.RunInput) (*apify.Run, error) {
	f.lastInput = input
	return f.startRun, f.startErr
}

func (f *fakeAPI) GetRun(_ context.Context, _, runID string) (*apify.Run, error) {
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	status := f.polls[len(f.polls)-1]
	if f.pollIdx < len(f.polls) {
		status = f.polls[f.pollIdx]
		f.pollIdx++
	}
	return &apify.Run{ID: runID, Status: status, DefaultDatasetID: "ds-1"}, nil
}

func (f *fakeAPI) DatasetItems(_ context.Context, _ string) ([]apify.Listing, error) {
	return f.items, f.itemsErr
}

func testConfig() Config {
	return Config{
		ActorID:      "test-actor",
		PollInterval: time.Millisecond,
		MaxWait:      time.Second,
	}
}

func TestSearch_PollsToSuccess(t *testing.T) {
	api := &fakeAPI{
		startRun: &apify.Run{ID: "run-1", Status: apify.RunStatusRunning},
		polls:    []apify.RunStatus{apify.RunStatusRunning, apify.RunStatusRunning, apify.RunStatusSucceeded},
		items:    []apify.Listing{{Name: "A", PlaceID: "p1"}, {Name: "B", PlaceID: "p2"}},
	}
	c := New(api, testConfig())

	items, err := c.Search(context.Background(), "plumbers", "Springfield", 25)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 3, api.pollIdx)
	assert.Equal(t, []string{"plumbers in Springfield"}, api.lastInput.SearchQueries)
	assert.Equal(t, 25, api.lastInput.MaxPlacesPerQuery)
	assert.False(t, api.lastInput.IncludeReviews)
}

func TestSearch_StartRunError(t *testing.T) {
	api := &fakeAPI{startErr: errors.New("401 unauthorized")}
	c := New(api, testConfig())

	_, err := c.Search(context.Background(), "plumbers", "Springfield", 25)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start search run")
}

func TestSearch_RunFailed(t *testing.T) {
	api := &fakeAPI{
		startRun: &apify.Run{ID: "run-1", Status: apify.RunStatusRunning},
		polls:    []apify.RunStatus{apify.RunStatusFailed},
	}
	c := New(api, testConfig())

	_, err := c.Search(context.Background(), "plumbers", "Springfield", 25)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apify.ErrRunFailed))
}

func TestSearch_EmptyResults(t *testing.T) {
	api := &fakeAPI{
		startRun: &apify.Run{ID: "run-1", Status: apify.RunStatusSucceeded},
	}
	c := New(api, testConfig())

	items, err := c.Search(context.Background(), "unicorn breeders", "Nowhere", 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearch_Canceled(t *testing.T) {
	api := &fakeAPI{
		startRun: &apify.Run{ID: "run-1", Status: apify.RunStatusRunning},
		polls:    []apify.RunStatus{apify.RunStatusRunning},
	}
	cfg := testConfig()
	cfg.PollInterval = 50 * time.Millisecond
	c := New(api, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Search(ctx, "plumbers", "Springfield", 25)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSearch_WaitBudgetExceeded(t *testing.T) {
	api := &fakeAPI{
		startRun: &apify.Run{ID: "run-1", Status: apify.RunStatusRunning},
		polls:    []apify.RunStatus{apify.RunStatusRunning},
	}
	cfg := testConfig()
	cfg.MaxWait = 10 * time.Millisecond
	c := New(api, cfg)

	_, err := c.Search(context.Background(), "plumbers", "Springfield", 25)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still RUNNING")
}
