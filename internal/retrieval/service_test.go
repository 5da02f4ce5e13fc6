package retrieval_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"casperlearn/backend/internal/retrieval"
)

type MockStore struct{ mock.Mock }

func (m *MockStore) Query(ctx context.Context, query string, topK int) ([]retrieval.Match, error) {
	args := m.Called(ctx, query, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]retrieval.Match), args.Error(1)
}

func (m *MockStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestService_Retrieve(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		n       int
		setup   func(*MockStore)
		wantErr error
		check   func(*testing.T, []retrieval.RetrievedContext)
	}{
		{
			name:  "Relevance From Distance",
			query: "account balance",
			n:     2,
			setup: func(s *MockStore) {
				s.On("Count", mock.Anything).Return(3, nil)
				s.On("Query", mock.Anything, "account balance", 2).Return([]retrieval.Match{
					{Content: "A", Title: "Balances", URL: "https://x/a", Distance: 0.1},
					{Content: "B", Title: "Deploys", URL: "https://x/b", Distance: 0.4},
				}, nil)
			},
			check: func(t *testing.T, got []retrieval.RetrievedContext) {
				require.Len(t, got, 2)
				assert.InDelta(t, 0.9, got[0].Relevance, 1e-9)
				assert.InDelta(t, 0.6, got[1].Relevance, 1e-9)
				assert.GreaterOrEqual(t, got[0].Relevance, got[1].Relevance)
			},
		},
		{
			name:  "Relevance Clamped To Unit Interval",
			query: "q",
			n:     3,
			setup: func(s *MockStore) {
				s.On("Count", mock.Anything).Return(3, nil)
				s.On("Query", mock.Anything, "q", 3).Return([]retrieval.Match{
					{Content: "far", Distance: 1.7},
					{Content: "negative", Distance: -0.2},
				}, nil)
			},
			check: func(t *testing.T, got []retrieval.RetrievedContext) {
				require.Len(t, got, 2)
				assert.Equal(t, 0.0, got[0].Relevance)
				assert.Equal(t, 1.0, got[1].Relevance)
			},
		},
		{
			name:  "Fewer Matches Than Requested Is Not An Error",
			query: "q",
			n:     5,
			setup: func(s *MockStore) {
				s.On("Count", mock.Anything).Return(3, nil)
				s.On("Query", mock.Anything, "q", 5).Return([]retrieval.Match{
					{Content: "only"}, {Content: "three"}, {Content: "hits"},
				}, nil)
			},
			check: func(t *testing.T, got []retrieval.RetrievedContext) {
				assert.Len(t, got, 3)
			},
		},
		{
			name:  "Empty Collection",
			query: "q",
			n:     5,
			setup: func(s *MockStore) {
				s.On("Count", mock.Anything).Return(0, nil)
			},
			wantErr: retrieval.ErrIndexUnavailable,
		},
		{
			name:  "Collection Unreachable",
			query: "q",
			n:     5,
			setup: func(s *MockStore) {
				s.On("Count", mock.Anything).Return(0, errors.New("connection refused"))
			},
			wantErr: retrieval.ErrIndexUnavailable,
		},
		{
			name:  "TopK Clamped To Bounds",
			query: "q",
			n:     99,
			setup: func(s *MockStore) {
				s.On("Count", mock.Anything).Return(3, nil)
				s.On("Query", mock.Anything, "q", retrieval.MaxResults).Return([]retrieval.Match{}, nil)
			},
			check: func(t *testing.T, got []retrieval.RetrievedContext) {
				assert.Empty(t, got)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockStore{}
			tt.setup(store)

			svc := retrieval.NewService(store, nil)
			got, err := svc.Retrieve(context.Background(), tt.query, tt.n)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
			store.AssertExpectations(t)
		})
	}
}

func TestService_RetrieveLogsQuery(t *testing.T) {
	store := &MockStore{}
	store.On("Count", mock.Anything).Return(1, nil)
	store.On("Query", mock.Anything, "q", 1).Return([]retrieval.Match{{Content: "A"}}, nil)

	var buf bytes.Buffer
	svc := retrieval.NewService(store, retrieval.NewQueryLogger(&buf))

	_, err := svc.Retrieve(context.Background(), "q", 1)
	require.NoError(t, err)

	var entry retrieval.QueryLogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "q", entry.Query)
	assert.Equal(t, 1, entry.NumResults)
}
