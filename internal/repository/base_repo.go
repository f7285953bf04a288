// Package repository is the Relational Store: gorm-backed persistence for
// users, conversations, members, messages, and message statuses, plus the
// MySQL/Redis connection wiring, mirroring the teacher's
// internal/repository package shape (one *gorm.DB, one *redis.Client, one
// small repo struct per entity family, a shared Transaction helper).
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mbeoliero/kit/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pulsechat/pulse/internal/config"
)

// Repositories bundles the relational store and the redis client shared by
// the Presence Store and Message Bus packages.
type Repositories struct {
	DB    *gorm.DB
	Redis *redis.Client

	User          *UserRepo
	Conversation  *ConversationRepo
	Message       *MessageRepo
	MessageStatus *MessageStatusRepo
}

// NewRepositories opens the MySQL and Redis connections and wires the
// per-entity repos on top of them.
func NewRepositories(cfg *config.Config) (*Repositories, error) {
	db, err := initMySQL(cfg)
	if err != nil {
		return nil, err
	}
	rdb := initRedis(cfg)

	return &Repositories{
		DB:            db,
		Redis:         rdb,
		User:          &UserRepo{db: db},
		Conversation:  &ConversationRepo{db: db},
		Message:       &MessageRepo{db: db},
		MessageStatus: &MessageStatusRepo{db: db},
	}, nil
}

func initMySQL(cfg *config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.Server.Mode == "debug" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// Transaction runs fn inside a single MySQL transaction, the way every
// multi-row write in this service (message send, batch receipts) must.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.DB.WithContext(ctx).Transaction(fn)
}

// Close releases both store connections, part of graceful shutdown.
func (r *Repositories) Close() error {
	if sqlDB, err := r.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return r.Redis.Close()
}

// CheckConnection pings both stores at startup and logs failures; callers
// decide whether to abort.
func (r *Repositories) CheckConnection(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return fmt.Errorf("mysql handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		log.CtxError(ctx, "mysql ping failed: %v", err)
		return fmt.Errorf("mysql ping: %w", err)
	}
	if err := r.Redis.Ping(ctx).Err(); err != nil {
		log.CtxError(ctx, "redis ping failed: %v", err)
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
