package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/quickmatch/internal/app/system/auth"
)

func fixedClock(l *Limiter, t time.Time) *time.Time {
	now := t
	l.now = func() time.Time { return now }
	return &now
}

func TestAllowBurstThenBlock(t *testing.T) {
	l := New(60, 3)
	fixedClock(l, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	for i := 0; i < 3; i++ {
		if !l.Allow("a") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("a") {
		t.Fatal("fourth request should be blocked")
	}
	if !l.Allow("b") {
		t.Fatal("other keys are independent")
	}
}

func TestAllowRefills(t *testing.T) {
	l := New(60, 1) // one token per second
	now := fixedClock(l, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	if !l.Allow("a") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("a") {
		t.Fatal("second immediate request should be blocked")
	}
	*now = now.Add(time.Second)
	if !l.Allow("a") {
		t.Fatal("request after refill should be allowed")
	}
}

func TestIdleBucketsAreSwept(t *testing.T) {
	l := New(60, 1)
	now := fixedClock(l, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	l.Allow("a")
	l.Allow("b")
	*now = now.Add(11 * time.Minute)
	l.Allow("c")

	if got := l.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestMiddleware(t *testing.T) {
	l := New(60, 1)
	fixedClock(l, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		if userID != "" {
			req = auth.WithTestUser(req, &auth.SessionUser{ID: userID})
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := send("u1"); rec.Code != http.StatusNoContent {
		t.Fatalf("first: %d", rec.Code)
	}
	rec := send("u1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second: %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	// Same IP, different identity: separate bucket.
	if rec := send("u2"); rec.Code != http.StatusNoContent {
		t.Errorf("other user: %d", rec.Code)
	}
	// Anonymous caller is keyed by IP.
	if rec := send(""); rec.Code != http.StatusNoContent {
		t.Errorf("anonymous: %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"forwarded", "1.2.3.4, 5.6.7.8", "", "9.9.9.9:1", "1.2.3.4"},
		{"real ip", "", "2.2.2.2", "9.9.9.9:1", "2.2.2.2"},
		{"remote with port", "", "", "3.3.3.3:80", "3.3.3.3"},
		{"remote without port", "", "", "3.3.3.3", "3.3.3.3"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tc.remote
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xri != "" {
				r.Header.Set("X-Real-IP", tc.xri)
			}
			if got := ClientIP(r); got != tc.want {
				t.Errorf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}
