// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dalemusser/quickmatch/internal/app/store/audit"
	"github.com/dalemusser/quickmatch/internal/app/store/mongostore"
	"github.com/dalemusser/quickmatch/internal/app/store/sqlite"
	"github.com/dalemusser/quickmatch/internal/app/system/indexes"
	"github.com/dalemusser/quickmatch/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const mongoConnectTimeout = 10 * time.Second

// ConnectDB opens the configured meeting store.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	switch appCfg.StoreBackend {
	case BackendSQLite:
		return connectSQLite(appCfg, logger)
	case BackendMongo:
		return connectMongo(ctx, appCfg, logger)
	default:
		return DBDeps{}, fmt.Errorf("unknown store_backend %q", appCfg.StoreBackend)
	}
}

func connectSQLite(appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	if dir := filepath.Dir(appCfg.SQLitePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return DBDeps{}, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	store, err := sqlite.Open(appCfg.SQLitePath)
	if err != nil {
		logger.Error("sqlite open failed", zap.String("path", appCfg.SQLitePath), zap.Error(err))
		return DBDeps{}, err
	}
	logger.Info("sqlite store opened", zap.String("path", appCfg.SQLitePath))
	return DBDeps{Backend: BackendSQLite, Store: store}, nil
}

func connectMongo(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		logger.Error("MongoDB connect failed", zap.Error(err))
		return DBDeps{}, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Error("MongoDB ping failed", zap.Error(err))
		return DBDeps{}, err
	}

	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize))

	return DBDeps{
		Backend:       BackendMongo,
		Store:         mongostore.New(db, logger),
		MongoClient:   client,
		MongoDatabase: db,
		AuditSink:     audit.New(db),
	}, nil
}

// EnsureSchema creates collections, validators and indexes for MongoDB.
// The sqlite store migrates itself on open.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return nil
	}
	if err := validators.EnsureAllWithLogger(ctx, deps.MongoDatabase, logger); err != nil {
		logger.Error("ensure collection validators failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	logger.Info("MongoDB schema ensured", zap.String("database", deps.MongoDatabase.Name()))
	return nil
}
