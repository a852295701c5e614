package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	perr "shamewizard/internal/platform/errors"
	"shamewizard/internal/platform/logger"
	"shamewizard/internal/platform/net/middleware"
)

func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func TestWrappers_ReturnHandlers(t *testing.T) {
	if middleware.RequestID() == nil ||
		middleware.RealIP() == nil ||
		middleware.Timeout(time.Second) == nil ||
		middleware.NoCache() == nil ||
		middleware.CORS(middleware.CORSOptions{}) == nil {
		t.Fatal("expected non nil handlers from wrappers")
	}
	if len(middleware.Defaults(middleware.CORSOptions{})) == 0 {
		t.Fatal("expected default bundle")
	}
}

func TestRequestID_EchoesHeaderAndFeedsLogger(t *testing.T) {
	var seen string
	h := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// logger.C must not panic and the id rides on the context
		logger.C(r.Context()).Debug().Msg("inside")
		seen = w.Header().Get("X-Request-ID")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "rid-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if seen != "rid-1" || rr.Header().Get("X-Request-ID") != "rid-1" {
		t.Fatalf("request id not echoed: handler=%q resp=%q", seen, rr.Header().Get("X-Request-ID"))
	}
}

func TestCORS_PreflightAllowsGet(t *testing.T) {
	h := middleware.CORS(middleware.CORSOptions{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodOptions, "/bot/stats", nil)
	req.Header.Set("Origin", "http://dash.local")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Allow-Origin = %q, want *", got)
	}
}

func TestRecoverJSON_WritesEnvelope(t *testing.T) {
	h := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), middleware.RequestID(), middleware.RecoverJSON)

	req := httptest.NewRequest(http.MethodGet, "/bot/queue", nil)
	req.Header.Set("X-Request-Id", "rid-9")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	var body struct {
		Code      perr.ErrorCode `json:"code"`
		RequestID string         `json:"request_id"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != perr.ErrorCodePanic || body.RequestID != "rid-9" {
		t.Fatalf("body = %+v", body)
	}
}
