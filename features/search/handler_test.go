package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"casperlearn/backend/internal/llm"
	"casperlearn/backend/internal/prompt"
	"casperlearn/backend/internal/rag"
	"casperlearn/backend/internal/retrieval"
)

type MockRetriever struct{ mock.Mock }

func (m *MockRetriever) Retrieve(ctx context.Context, query string, nResults int) ([]retrieval.RetrievedContext, error) {
	args := m.Called(ctx, query, nResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]retrieval.RetrievedContext), args.Error(1)
}

func (m *MockRetriever) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type noopProvider struct{}

func (noopProvider) Complete(context.Context, []llm.Message, float64, int) (string, error) {
	return "", nil
}

func (noopProvider) StreamComplete(context.Context, []llm.Message, float64) (*llm.Stream, error) {
	return nil, nil
}

func newTestReadiness(t *testing.T, retriever rag.Retriever) rag.Readiness {
	t.Helper()
	builder, err := prompt.NewBuilder()
	require.NoError(t, err)
	engine := rag.NewEngine(retriever, prompt.NewAssembler(12000), builder, noopProvider{}, "casper_docs")
	return rag.Ready(engine)
}

func TestHandler_Search_Table(t *testing.T) {
	contexts := []retrieval.RetrievedContext{
		{Content: "Deploys are signed transactions.", Title: "Deploys", URL: "https://docs.casper.network/deploys", Relevance: 0.92},
	}

	tests := []struct {
		name       string
		body       string
		setupMocks func(*MockRetriever)
		wantStatus int
		wantCode   string
		checkBody  func(*testing.T, Response)
	}{
		{
			name: "Success with default n_results",
			body: `{"query": "deploy"}`,
			setupMocks: func(r *MockRetriever) {
				r.On("Retrieve", mock.Anything, "deploy", defaultNResults).Return(contexts, nil)
			},
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, resp Response) {
				assert.Equal(t, 1, resp.Total)
				require.Len(t, resp.Results, 1)
				assert.Equal(t, "Deploys", resp.Results[0].Title)
				assert.InDelta(t, 0.92, resp.Results[0].Relevance, 1e-9)
			},
		},
		{
			name: "Explicit n_results forwarded",
			body: `{"query": "deploy", "n_results": 3}`,
			setupMocks: func(r *MockRetriever) {
				r.On("Retrieve", mock.Anything, "deploy", 3).Return(contexts, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "Missing query",
			body:       `{"n_results": 3}`,
			setupMocks: func(r *MockRetriever) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "Invalid JSON",
			body:       `{"query"`,
			setupMocks: func(r *MockRetriever) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name: "Empty index",
			body: `{"query": "deploy"}`,
			setupMocks: func(r *MockRetriever) {
				r.On("Retrieve", mock.Anything, "deploy", defaultNResults).Return(nil, retrieval.ErrIndexUnavailable)
			},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "INDEX_UNAVAILABLE",
		},
		{
			name: "Store failure",
			body: `{"query": "deploy"}`,
			setupMocks: func(r *MockRetriever) {
				r.On("Retrieve", mock.Anything, "deploy", defaultNResults).Return(nil, errors.New("connection refused"))
			},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "RETRIEVAL_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRetriever := new(MockRetriever)
			tt.setupMocks(mRetriever)

			h := NewHandler(newTestReadiness(t, mRetriever))
			req := httptest.NewRequest("POST", "/search", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.Search(w, req)

			resp := w.Result()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantCode != "" {
				var body map[string]interface{}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				errMap := body["error"].(map[string]interface{})
				assert.Equal(t, tt.wantCode, errMap["code"])
			} else if tt.checkBody != nil {
				var body Response
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				tt.checkBody(t, body)
			}
		})
	}
}

func TestHandler_Search_Degraded(t *testing.T) {
	h := NewHandler(rag.Degraded("vector store unreachable"))

	req := httptest.NewRequest("POST", "/search", strings.NewReader(`{"query": "deploy"}`))
	w := httptest.NewRecorder()

	h.Search(w, req)

	resp := w.Result()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	errMap := body["error"].(map[string]interface{})
	assert.Equal(t, "SERVICE_DEGRADED", errMap["code"])
}
