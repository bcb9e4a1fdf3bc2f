package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix       = "matchmaker:reservations:"
	defaultUpdateRetries = 8
)

var (
	ErrNotConnected      = errors.New("not connected to redis")
	ErrTooMuchContention = errors.New("reservations were modified concurrently too many times")
)

// RedisStore is a ReservationStore backed by Redis, which allows the reservations to be shared with
// other subsystems.
//
// The reservations of each user are stored as a single JSON document. Updates use optimistic
// transactions (WATCH/MULTI/EXEC) and are retried when the document is modified concurrently.
type RedisStore struct {
	addr          string
	databaseIndex int
	password      string

	// ttl is the expiration applied to the reservations of a user whenever they are written.
	// Zero disables expiration.
	ttl time.Duration

	client *redis.Client

	log logger.Logger
}

func NewRedisStore(addr string, password string, db int, ttl time.Duration) *RedisStore {
	store := &RedisStore{
		addr:          addr,
		databaseIndex: db,
		password:      password,
		ttl:           ttl,
	}

	config.InitLogger(&store.log, store)

	return store
}

// NewRedisStoreWithClient creates a RedisStore that uses the given, already-configured client.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	store := &RedisStore{
		ttl:    ttl,
		client: client,
	}

	config.InitLogger(&store.log, store)

	return store
}

// Connect creates the Redis client and verifies that the server is reachable.
func (s *RedisStore) Connect(ctx context.Context) error {
	if s.client == nil {
		s.client = redis.NewClient(&redis.Options{
			Addr:     s.addr,
			Password: s.password,
			DB:       s.databaseIndex,
		})
	}

	if err := s.client.Ping(ctx).Err(); err != nil {
		s.log.Error("Failed to connect to Redis at %s: %v", s.addr, err)
		return err
	}

	s.log.Debug("Connected to Redis at %s (db=%d).", s.addr, s.databaseIndex)
	return nil
}

func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}

	return s.client.Close()
}

func (s *RedisStore) Load(ctx context.Context, userId string) ([]Reservation, error) {
	if s.client == nil {
		return nil, ErrNotConnected
	}

	return s.read(ctx, s.client, userId)
}

func (s *RedisStore) Update(ctx context.Context, userId string, update func(current []Reservation) []Reservation) error {
	if s.client == nil {
		return ErrNotConnected
	}

	key := redisKeyPrefix + userId
	txf := func(tx *redis.Tx) error {
		current, err := s.read(ctx, tx, userId)
		if err != nil {
			return err
		}

		updated := update(current)

		var encoded []byte
		if len(updated) > 0 {
			if encoded, err = json.Marshal(updated); err != nil {
				return err
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(updated) == 0 {
				pipe.Del(ctx, key)
			} else {
				pipe.Set(ctx, key, encoded, s.ttl)
			}
			return nil
		})
		return err
	}

	for attempt := 0; attempt < defaultUpdateRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}

		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}

		s.log.Warn("Reservations of user \"%s\" were modified concurrently. Retrying (attempt %d/%d).",
			userId, attempt+1, defaultUpdateRetries)
	}

	return fmt.Errorf("%w: user \"%s\"", ErrTooMuchContention, userId)
}

func (s *RedisStore) read(ctx context.Context, cmd redis.Cmdable, userId string) ([]Reservation, error) {
	data, err := cmd.Get(ctx, redisKeyPrefix+userId).Bytes()
	if errors.Is(err, redis.Nil) {
		return []Reservation{}, nil
	} else if err != nil {
		return nil, err
	}

	var reservations []Reservation
	if err = json.Unmarshal(data, &reservations); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReservations, err)
	}

	return reservations, nil
}
