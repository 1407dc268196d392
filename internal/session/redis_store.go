package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eventra/service-event-creation/internal/domain/wizard"
	"github.com/eventra/service-event-creation/internal/platform/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "wizard:session:"

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisConfig holds connection settings for the session store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// NewRedisClient opens a client and verifies the connection.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     poolSize,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisStore keeps sessions as JSON snapshots with a sliding TTL. Updates are
// compare-and-set on the snapshot version using WATCH/MULTI.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

func key(id uuid.UUID) string {
	return keyPrefix + id.String()
}

// Create stores a new session.
func (s *RedisStore) Create(ctx context.Context, sess *wizard.Session) error {
	data, err := json.Marshal(sess.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to encode wizard session: %w", err)
	}
	ok, err := s.client.SetNX(ctx, key(sess.ID()), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create wizard session: %w", err)
	}
	if !ok {
		return domain.NewConflictError("wizard session already exists")
	}
	return nil
}

// Get retrieves a session by ID and refreshes its TTL.
func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*wizard.Session, error) {
	snap, err := s.load(ctx, s.client, id)
	if err != nil {
		return nil, err
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key(id), s.ttl).Err(); err != nil {
			s.logger.Warn("failed to refresh wizard session ttl",
				zap.String("session_id", id.String()),
				zap.Error(err),
			)
		}
	}
	return wizard.ReconstructSession(snap), nil
}

// Update replaces a session whose stored version is sess.Version()-1.
func (s *RedisStore) Update(ctx context.Context, sess *wizard.Session) error {
	data, err := json.Marshal(sess.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to encode wizard session: %w", err)
	}
	k := key(sess.ID())
	expected := sess.Version() - 1

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := s.load(ctx, tx, sess.ID())
		if err != nil {
			return err
		}
		if stored.Version != expected {
			return domain.NewConflictError("wizard session was modified by another request")
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, data, s.ttl)
			return nil
		})
		return err
	}, k)

	if errors.Is(err, redis.TxFailedErr) {
		return domain.NewConflictError("wizard session was modified by another request")
	}
	return err
}

func (s *RedisStore) load(ctx context.Context, c getter, id uuid.UUID) (wizard.Snapshot, error) {
	var snap wizard.Snapshot
	data, err := c.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return snap, domain.NewNotFoundError("WizardSession", id.String())
		}
		return snap, fmt.Errorf("failed to load wizard session: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("failed to decode wizard session: %w", err)
	}
	return snap, nil
}
