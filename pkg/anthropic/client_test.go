package anthropic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClient implements Client for testing.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MessageResponse), args.Error(1)
}

func TestTokenUsage_EstimateCost(t *testing.T) {
	usage := TokenUsage{InputTokens: 1_000_000, OutputTokens: 500_000}

	cost := usage.EstimateCost("claude-haiku-4-5-20251001")
	assert.InDelta(t, 0.80+2.00, cost, 1e-9)

	cost = usage.EstimateCost("claude-sonnet-4-5-20250929")
	assert.InDelta(t, 3.00+7.50, cost, 1e-9)
}

func TestTokenUsage_EstimateCost_UnknownModel(t *testing.T) {
	usage := TokenUsage{InputTokens: 1000, OutputTokens: 1000}
	assert.Equal(t, 0.0, usage.EstimateCost("some-future-model"))
}

func TestMockClient_CreateMessage(t *testing.T) {
	m := &MockClient{}
	m.On("CreateMessage", mock.Anything, mock.Anything).Return(&MessageResponse{
		Text:  "hello",
		Usage: TokenUsage{InputTokens: 10, OutputTokens: 5},
	}, nil)

	resp, err := m.CreateMessage(context.Background(), MessageRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text)
	m.AssertExpectations(t)
}
