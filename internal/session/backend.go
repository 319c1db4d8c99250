package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
)

// Backend is the durable key/value storage behind the store.
type Backend interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
	Clear(ctx context.Context) error
}

type fileBackend struct {
	path string
}

// NewFileBackend persists the session as a JSON state file, the default for
// a locally run portal.
func NewFileBackend(path string) Backend {
	return &fileBackend{path: path}
}

func (b *fileBackend) Load(_ context.Context) (State, error) {
	var state State
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return state, nil
		}
		return state, err
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, err
	}
	return state, nil
}

func (b *fileBackend) Save(_ context.Context, state State) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return os.WriteFile(b.path, data, 0o600)
}

func (b *fileBackend) Clear(_ context.Context) error {
	err := os.Remove(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

const redisKey = "portal:session"

type redisBackend struct {
	client *redis.Client
}

// NewRedisBackend persists the session in Redis, for deployments where the
// portal should survive host restarts or run off a shared state store.
func NewRedisBackend(client *redis.Client) Backend {
	return &redisBackend{client: client}
}

func (b *redisBackend) Load(ctx context.Context) (State, error) {
	var state State
	fields, err := b.client.HGetAll(ctx, redisKey).Result()
	if err != nil {
		return state, err
	}
	if len(fields) == 0 {
		return state, nil
	}
	state.AccessToken = fields["access_token"]
	state.RefreshToken = fields["refresh_token"]
	state.UserType = fields["userType"]
	if raw := fields["profile"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &state.Profile); err != nil {
			return State{}, err
		}
	}
	return state, nil
}

func (b *redisBackend) Save(ctx context.Context, state State) error {
	profile, err := json.Marshal(state.Profile)
	if err != nil {
		return err
	}
	return b.client.HSet(ctx, redisKey, map[string]interface{}{
		"access_token":  state.AccessToken,
		"refresh_token": state.RefreshToken,
		"userType":      state.UserType,
		"profile":       string(profile),
	}).Err()
}

func (b *redisBackend) Clear(ctx context.Context) error {
	return b.client.Del(ctx, redisKey).Err()
}
