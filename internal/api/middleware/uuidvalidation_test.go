package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tradelog/trading-journal-backend/internal/testutil"
)

func TestValidateUUIDMiddleware(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("passes a valid UUID through", func(t *testing.T) {
		id := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/trade/"+id, map[string]string{"uuid": id})
		w := httptest.NewRecorder()

		ValidateUUIDMiddleware(okHandler).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejects a malformed UUID", func(t *testing.T) {
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/trade/nope", map[string]string{"uuid": "nope"})
		w := httptest.NewRecorder()

		ValidateUUIDMiddleware(okHandler).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("rejects a missing UUID", func(t *testing.T) {
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/trade/", nil)
		w := httptest.NewRecorder()

		ValidateUUIDMiddleware(okHandler).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}
