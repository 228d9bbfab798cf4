package main

import (
	"os"
	"path/filepath"

	"github.com/bwmarrin/snowflake"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Andriiklymiuk/ung-sub008/internal/bus"
	"github.com/Andriiklymiuk/ung-sub008/internal/clock"
	"github.com/Andriiklymiuk/ung-sub008/internal/config"
	"github.com/Andriiklymiuk/ung-sub008/internal/entitycache"
	"github.com/Andriiklymiuk/ung-sub008/internal/observability/logger"
	"github.com/Andriiklymiuk/ung-sub008/internal/observability/metrics"
	"github.com/Andriiklymiuk/ung-sub008/internal/observability/tracing"
	"github.com/Andriiklymiuk/ung-sub008/internal/runner"
	"github.com/Andriiklymiuk/ung-sub008/internal/server"
	"github.com/Andriiklymiuk/ung-sub008/internal/session"
	"github.com/Andriiklymiuk/ung-sub008/internal/snapshot"
	"github.com/Andriiklymiuk/ung-sub008/internal/ung"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		fx.Provide(
			loggerConfig,
			tracingConfig,
			busConfig,
			cacheConfig,
			sessionConfig,
			busMetrics,
			registerSnowflake,
			newRunner,
			openSnapshotDB,
			newSnapshotStore,
		),
		logger.Module,
		clock.Module,
		fx.Provide(tracing.NewProvider),
		fx.Invoke(func(*sdktrace.TracerProvider) {}),
		bus.Module,
		entitycache.Module,
		ung.Module,
		session.Module,
		server.Module,
	)
	app.Run()
}

func loggerConfig(cfg config.Config) logger.Config {
	return logger.Config{Level: cfg.Log.Level, Encoding: cfg.Log.Encoding}
}

func tracingConfig(cfg config.Config) tracing.Config {
	return tracing.Config{
		Enabled:          cfg.Tracing.Enabled,
		ServiceName:      "ungd",
		ServiceVersion:   version,
		Environment:      cfg.Environment,
		ExporterEndpoint: cfg.Tracing.ExporterEndpoint,
		ExporterProtocol: cfg.Tracing.ExporterProtocol,
		SamplingRatio:    cfg.Tracing.SamplingRatio,
	}
}

func busConfig(cfg config.Config) bus.Config {
	return bus.Config{Timeout: cfg.Tool.Timeout, MaxRetries: cfg.Tool.MaxRetries}
}

func cacheConfig(cfg config.Config) entitycache.Config {
	return entitycache.Config{TTL: cfg.Cache.TTL}
}

func sessionConfig(cfg config.Config) session.Config {
	return session.Config{
		PollInterval:  cfg.Session.PollInterval,
		HoursInterval: cfg.Session.HoursInterval,
	}
}

func busMetrics(cfg config.Config) *metrics.BusMetrics {
	return metrics.Bus(metrics.Config{
		ServiceName: "ungd",
		Environment: cfg.Environment,
	})
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func newRunner(cfg config.Config, log *zap.Logger) runner.Runner {
	return runner.NewExec(cfg.Tool.Binary, log)
}

// openSnapshotDB returns nil when the offline snapshot store is
// disabled; downstream consumers nil-check.
func openSnapshotDB(cfg config.Config) (*gorm.DB, error) {
	if !cfg.Snapshot.Enabled {
		return nil, nil
	}
	if dir := filepath.Dir(cfg.Snapshot.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return gorm.Open(sqlite.Open(cfg.Snapshot.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

func newSnapshotStore(db *gorm.DB, genID *snowflake.Node, clk clock.Clock, log *zap.Logger) (*snapshot.Store, error) {
	if db == nil {
		return nil, nil
	}
	return snapshot.NewStore(snapshot.Params{
		DB:    db,
		GenID: genID,
		Clock: clk,
		Log:   log,
	})
}
