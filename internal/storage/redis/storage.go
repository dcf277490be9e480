package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/clashoffists/internal/model"
	"github.com/mcoot/clashoffists/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interfaces
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interfaces
var (
	_ storage.Users = (*Storage)(nil)
	_ storage.Games = (*Storage)(nil)
)

// User operations

func (s *Storage) CreateUser(ctx context.Context, u *model.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}

	// Claim both unique indexes before writing the record
	ok, err := s.client.SetNX(ctx, usernameIndexKey(u.Username), u.ID, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrUserExists
	}

	ok, err = s.client.SetNX(ctx, emailIndexKey(u.Email), u.ID, 0).Result()
	if err != nil || !ok {
		s.releaseIndexes(ctx, usernameIndexKey(u.Username))
		if err != nil {
			return err
		}
		return model.ErrUserExists
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, userKey(u.ID), data, 0)
	if u.Online {
		pipe.SAdd(ctx, onlineSetKey(), u.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.releaseIndexes(ctx, usernameIndexKey(u.Username), emailIndexKey(u.Email))
		return err
	}
	return nil
}

// releaseIndexes drops index claims made by a CreateUser that failed. It
// runs even when ctx is already cancelled.
func (s *Storage) releaseIndexes(ctx context.Context, keys ...string) {
	_ = s.client.Del(context.WithoutCancel(ctx), keys...).Err()
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var u model.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getUserByIndex(ctx, usernameIndexKey(username))
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUserByIndex(ctx, emailIndexKey(email))
}

func (s *Storage) getUserByIndex(ctx context.Context, indexKey string) (*model.User, error) {
	id, err := s.client.Get(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return s.GetUserByID(ctx, id)
}

func (s *Storage) SetOnline(ctx context.Context, id string, online bool) error {
	u, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	u.Online = online

	data, err := json.Marshal(u)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, userKey(id), data, 0)
	if online {
		pipe.SAdd(ctx, onlineSetKey(), id)
	} else {
		pipe.SRem(ctx, onlineSetKey(), id)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListOnlineUsers(ctx context.Context, excludeID string) ([]*model.User, error) {
	ids, err := s.client.SMembers(ctx, onlineSetKey()).Result()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != excludeID {
			keys = append(keys, userKey(id))
		}
	}
	users := make([]*model.User, 0, len(keys))
	if len(keys) == 0 {
		return users, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var u model.User
		if err := json.Unmarshal([]byte(str), &u); err != nil {
			continue
		}
		users = append(users, &u)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})
	return users, nil
}

// Game state operations

func (s *Storage) GetGameState(ctx context.Context, username string) (*model.GameState, error) {
	return getGameState(ctx, s.client, username)
}

func (s *Storage) SaveGameState(ctx context.Context, state *model.GameState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, gameKey(state.Username), data, s.cfg.GameTTL).Err()
}

func (s *Storage) DeleteGameState(ctx context.Context, username string) error {
	return s.client.Del(ctx, gameKey(username)).Err()
}

// UpdateGameState runs fn inside a WATCH/MULTI transaction, retrying when
// another writer touched the key in between
func (s *Storage) UpdateGameState(ctx context.Context, username string, fn storage.GameUpdateFunc) (*model.GameState, error) {
	key := gameKey(username)
	var result *model.GameState

	txf := func(tx *redis.Tx) error {
		current, err := getGameState(ctx, tx, username)
		if err != nil && !errors.Is(err, model.ErrGameStateNotFound) {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		data, err := json.Marshal(next)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.cfg.GameTTL)
			return nil
		})
		if err != nil {
			return err
		}
		result = next
		return nil
	}

	retries := s.cfg.MaxUpdateRetries
	if retries <= 0 {
		retries = 1
	}
	for i := 0; i < retries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("update %s: %w", username, model.ErrConcurrentUpdate)
}

// stringGetter is satisfied by both *redis.Client and *redis.Tx
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getGameState(ctx context.Context, c stringGetter, username string) (*model.GameState, error) {
	data, err := c.Get(ctx, gameKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameStateNotFound
		}
		return nil, err
	}

	var state model.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.History == nil {
		state.History = []model.RoundRecord{}
	}
	return &state, nil
}
