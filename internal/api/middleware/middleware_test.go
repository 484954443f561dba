package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/api/shared"
	"github.com/phrazzld/taskpulse-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireRecipient(t *testing.T) {
	t.Parallel()

	valid := uuid.New()

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCalled bool
	}{
		{"missing", "", http.StatusUnauthorized, false},
		{"malformed", "abc", http.StatusBadRequest, false},
		{"nil uuid", uuid.Nil.String(), http.StatusBadRequest, false},
		{"valid", valid.String(), http.StatusNoContent, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				id, ok := GetRecipientID(r)
				assert.True(t, ok)
				assert.Equal(t, valid, id)
				w.WriteHeader(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/ws/notifications", nil)
			if tt.header != "" {
				req.Header.Set(RecipientHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			RequireRecipient(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			if !tt.wantCalled {
				var body shared.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.NotEmpty(t, body.Error)
			}
		})
	}
}

func TestTraceMiddleware(t *testing.T) {
	t.Parallel()

	var traceID string
	var hasLogger bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		hasLogger = logger.FromContextOrDefault(r.Context(), nil) != nil
	})

	NewTraceMiddleware(nil)(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(traceID)
	assert.NoError(t, err)
	assert.True(t, hasLogger)
}
