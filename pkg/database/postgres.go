package database

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"shopmall-api/internal/model"
	"shopmall-api/pkg/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const pingTimeout = 5 * time.Second

// Store owns the connection pool. It is created once in main and handed to
// the repositories.
type Store struct {
	DB *gorm.DB

	log     *zap.Logger
	ping    func(ctx context.Context) error
	healthy atomic.Bool

	// owned by the Monitor goroutine
	onReady []func() error
	ready   bool
	probed  bool
}

func Connect(cfg *config.Config, log *zap.Logger) (*Store, error) {
	level := logger.Info
	if cfg.IsProduction() {
		level = logger.Warn
	}

	gormLogger := logger.New(
		zap.NewStdLog(log.Named("gorm")),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  !cfg.IsProduction(),
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // Disables implicit prepared statements for pgbouncer transaction mode
	}), &gorm.Config{
		Logger:               gormLogger,
		PrepareStmt:          false,
		TranslateError:       true, // unique violations surface as gorm.ErrDuplicatedKey
		DisableAutomaticPing: true, // Monitor owns connecting so the API starts without a database
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Store{DB: db, log: log, ping: sqlDB.PingContext}, nil
}

// OnReady registers fn to run after the first successful probe. A failing fn
// is retried on the next probe. Call it before Monitor.
func (s *Store) OnReady(fn func() error) {
	s.onReady = append(s.onReady, fn)
}

// HealthCheck pings the database and records the result for Healthy
func (s *Store) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := s.ping(ctx)
	s.healthy.Store(err == nil)
	return err
}

// Healthy reports the result of the last probe
func (s *Store) Healthy() bool {
	return s.healthy.Load()
}

// Monitor probes the database right away and then every interval until ctx
// is done. Only changes of state are logged; the pool reconnects by itself.
func (s *Store) Monitor(ctx context.Context, interval time.Duration) {
	s.probe(ctx, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probe(ctx, interval)
		}
	}
}

func (s *Store) probe(ctx context.Context, interval time.Duration) {
	wasHealthy := s.Healthy()
	err := s.HealthCheck(ctx)
	switch {
	case err != nil && wasHealthy:
		s.log.Error("database connection lost", zap.Error(err))
	case err != nil && !s.probed:
		s.log.Error("database unavailable, retrying", zap.Duration("interval", interval), zap.Error(err))
	case err == nil && !wasHealthy:
		s.log.Info("database connection established")
	}
	s.probed = true

	if err != nil || s.ready {
		return
	}
	for _, fn := range s.onReady {
		if err := fn(); err != nil {
			s.log.Error("database setup failed, retrying", zap.Error(err))
			return
		}
	}
	s.ready = true
}

func (s *Store) Migrate() error {
	return s.DB.AutoMigrate(&model.User{}, &model.Product{}, &model.Order{})
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
