package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/quickmatch/internal/app/system/auth"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const testSecret = "test-jwt-secret-that-is-32-bytes!!"

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		logger,
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	if err := sm.EnableBearerTokens(testSecret, "quickmatch-test"); err != nil {
		t.Fatalf("EnableBearerTokens: %v", err)
	}
	return sm
}

func signToken(t *testing.T, secret, issuer, subject string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"iss":  issuer,
		"name": "Token User",
		"exp":  exp.Unix(),
	})
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// echoUser writes the current user id, or "anonymous".
func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := auth.CurrentUser(r); ok {
			_, _ = w.Write([]byte(u.ID))
			return
		}
		_, _ = w.Write([]byte("anonymous"))
	})
}

func TestNewSessionManager_RequiresKey(t *testing.T) {
	_, err := auth.NewSessionManager("", "s", "", time.Hour, false, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for empty session key")
	}
}

func TestEnableBearerTokens_ShortSecret(t *testing.T) {
	sm := newTestSessionManager(t)
	if err := sm.EnableBearerTokens("short", ""); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestRequireSignedIn_NoUser_Returns401JSON(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/quickmatch/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"unauthenticated"`) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestRequireSignedIn_WithUser_Passes(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireSignedIn(echoUser())

	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{ID: "u1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "u1" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestLoadSessionUser_BearerToken(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.LoadSessionUser(echoUser())
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid", "Bearer " + signToken(t, testSecret, "quickmatch-test", "u42", future), "u42"},
		{"lowercase scheme", "bearer " + signToken(t, testSecret, "quickmatch-test", "u42", future), "u42"},
		{"wrong secret", "Bearer " + signToken(t, "another-secret-that-is-32-bytes!!!", "quickmatch-test", "u42", future), "anonymous"},
		{"wrong issuer", "Bearer " + signToken(t, testSecret, "elsewhere", "u42", future), "anonymous"},
		{"expired", "Bearer " + signToken(t, testSecret, "quickmatch-test", "u42", time.Now().Add(-time.Hour)), "anonymous"},
		{"no subject", "Bearer " + signToken(t, testSecret, "quickmatch-test", "", future), "anonymous"},
		{"garbage", "Bearer not-a-jwt", "anonymous"},
		{"no header", "", "anonymous"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Body.String() != tc.want {
				t.Errorf("user = %q, want %q", rec.Body.String(), tc.want)
			}
		})
	}
}

func TestLoadSessionUser_CookieSession(t *testing.T) {
	sm := newTestSessionManager(t)

	// Sign in to obtain a cookie.
	signIn := httptest.NewRecorder()
	if err := sm.SignIn(signIn, httptest.NewRequest("POST", "/login", nil), auth.SessionUser{ID: "u7", Name: "Seven"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := signIn.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("SignIn did not set a cookie")
	}

	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	sm.LoadSessionUser(echoUser()).ServeHTTP(rec, req)

	if rec.Body.String() != "u7" {
		t.Errorf("user = %q, want u7", rec.Body.String())
	}
}
