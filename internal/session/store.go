package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"agriwise-client/internal/common/cache"
	"agriwise-client/internal/models"
)

// FileStore keeps every profile's credential in one JSON file readable only by the owner.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load(_ context.Context, profile string) (*models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.read()
	if err != nil {
		return nil, err
	}
	return all[profile], nil
}

func (f *FileStore) Save(_ context.Context, profile string, cred *models.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.read()
	if err != nil {
		return err
	}
	all[profile] = cred
	return f.write(all)
}

func (f *FileStore) Delete(_ context.Context, profile string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := all[profile]; !ok {
		return nil
	}
	delete(all, profile)
	return f.write(all)
}

func (f *FileStore) read() (map[string]*models.Credential, error) {
	all := map[string]*models.Credential{}
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return all, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if len(b) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, fmt.Errorf("decode session file %s: %w", f.path, err)
	}
	return all, nil
}

func (f *FileStore) write(all map[string]*models.Credential) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return os.Rename(tmp, f.path)
}

// RedisStore shares credentials across machines through redis.
type RedisStore struct {
	client *cache.RedisClient
	ttl    time.Duration
}

// NewRedisStore keeps entries for ttl; zero keeps them until logout.
func NewRedisStore(client *cache.RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) key(profile string) string {
	return r.client.Key("session", profile)
}

func (r *RedisStore) Load(ctx context.Context, profile string) (*models.Credential, error) {
	var cred models.Credential
	found, err := r.client.GetJSON(ctx, r.key(profile), &cred)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &cred, nil
}

func (r *RedisStore) Save(ctx context.Context, profile string, cred *models.Credential) error {
	return r.client.SetJSON(ctx, r.key(profile), cred, r.ttl)
}

func (r *RedisStore) Delete(ctx context.Context, profile string) error {
	return r.client.Del(ctx, r.key(profile))
}

// MemoryStore is process-local.
type MemoryStore struct {
	mu    sync.Mutex
	creds map[string]models.Credential
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: map[string]models.Credential{}}
}

func (m *MemoryStore) Load(_ context.Context, profile string) (*models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creds[profile]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *MemoryStore) Save(_ context.Context, profile string, cred *models.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[profile] = *cred
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, profile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.creds, profile)
	return nil
}
