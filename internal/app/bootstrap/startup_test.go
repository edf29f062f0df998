package bootstrap

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/quickmatch/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func sqliteConfig(t *testing.T) AppConfig {
	t.Helper()
	return AppConfig{
		StoreBackend:       BackendSQLite,
		SQLitePath:         filepath.Join(t.TempDir(), "nested", "quickmatch.db"),
		SessionKey:         "test-session-key-must-be-32-chars-long",
		SessionName:        "test-session",
		SessionMaxAge:      time.Hour,
		LockWait:           time.Second,
		RateLimitPerMinute: 60,
		RateLimitBurst:     10,
		AuditLogMeetings:   "log",
	}
}

func TestValidateConfig(t *testing.T) {
	base := AppConfig{
		StoreBackend:  BackendMongo,
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "quickmatch",
		SessionKey:    "a-real-session-key-with-enough-entropy",
	}

	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"mongo ok", "dev", func(*AppConfig) {}, ""},
		{"bad uri", "dev", func(c *AppConfig) { c.MongoURI = "postgres://nope" }, "invalid MongoDB URI"},
		{"missing database", "dev", func(c *AppConfig) { c.MongoDatabase = " " }, "mongo_database"},
		{"sqlite ignores mongo uri", "dev", func(c *AppConfig) {
			c.StoreBackend = BackendSQLite
			c.MongoURI = ""
			c.SQLitePath = "q.db"
		}, ""},
		{"sqlite needs path", "dev", func(c *AppConfig) { c.StoreBackend = BackendSQLite }, "sqlite_path"},
		{"unknown backend", "dev", func(c *AppConfig) { c.StoreBackend = "redis" }, "unknown store_backend"},
		{"short jwt secret", "dev", func(c *AppConfig) { c.JWTSecret = "short" }, "jwt_secret"},
		{"negative burst", "dev", func(c *AppConfig) { c.RateLimitBurst = -1 }, "rate limit"},
		{"dev key in prod", "prod", func(c *AppConfig) { c.SessionKey = "dev-only-change-me" }, "session_key"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{Env: tc.env}, cfg, testLogger())
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" https://a.example , ,https://b.example,")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("splitList = %q", got)
	}
	if splitList("") != nil {
		t.Error("empty value should yield nil")
	}
}

func TestConnectDB_SQLite(t *testing.T) {
	appCfg := sqliteConfig(t)
	ctx := context.Background()

	deps, err := ConnectDB(ctx, &config.CoreConfig{Env: "dev"}, appCfg, testLogger())
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	if deps.Backend != BackendSQLite || deps.Store == nil {
		t.Fatalf("deps = %+v", deps)
	}
	if deps.AuditSink != nil {
		t.Error("sqlite backend should have no audit sink")
	}
	if err := EnsureSchema(ctx, nil, appCfg, deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := deps.Store.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := Shutdown(ctx, nil, appCfg, deps, testLogger()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestConnectDB_UnknownBackend(t *testing.T) {
	_, err := ConnectDB(context.Background(), nil, AppConfig{StoreBackend: "redis"}, testLogger())
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestBuildHandler_SQLite(t *testing.T) {
	appCfg := sqliteConfig(t)
	appCfg.CORSAllowedOrigins = []string{"https://app.example"}
	coreCfg := &config.CoreConfig{Env: "dev"}
	ctx := context.Background()

	deps, err := ConnectDB(ctx, coreCfg, appCfg, testLogger())
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	t.Cleanup(func() { _ = Shutdown(ctx, coreCfg, appCfg, deps, testLogger()) })

	h, err := BuildHandler(coreCfg, appCfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}

	serve := func(req *http.Request) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := serve(testutil.NewRequest(http.MethodGet, "/health"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"backend":"sqlite"`)

	serve(testutil.NewRequest(http.MethodGet, "/quickmatch/")).AssertStatus(t, http.StatusOK)
	serve(testutil.NewJSONRequest(http.MethodPost, "/quickmatch/", map[string]any{"title": "a", "location": "b"})).
		AssertStatus(t, http.StatusUnauthorized)

	user := testutil.NewTestUser("Organizer")
	rec = serve(testutil.NewAuthenticatedRequest(http.MethodPost, "/quickmatch/", map[string]any{"title": "Futsal", "location": "Park"}, user))
	rec.AssertStatus(t, http.StatusOK)

	rec = serve(testutil.NewRequest(http.MethodGet, "/metrics"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `quickmatch_operations_total{operation="create",outcome="ok"} 1`)

	preflight := testutil.NewRequest(http.MethodOptions, "/quickmatch/")
	preflight.Header.Set("Origin", "https://app.example")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = serve(preflight)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestBuildHandler_RejectsShortJWTSecret(t *testing.T) {
	appCfg := sqliteConfig(t)
	appCfg.JWTSecret = "too-short"
	deps, err := ConnectDB(context.Background(), nil, appCfg, testLogger())
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	t.Cleanup(func() { _ = deps.Store.Close(context.Background()) })

	if _, err := BuildHandler(&config.CoreConfig{Env: "dev"}, appCfg, deps, testLogger()); err == nil {
		t.Fatal("expected error for short jwt secret")
	}
}
