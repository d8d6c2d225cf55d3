package room

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Identity is the locally persisted player identity for one room. It is
// written once at join/create time and must survive reloads of the same
// room so a restart does not look like a new player joining. It is cleared
// only on an explicit leave.
type Identity struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
}

// ErrNoIdentity is returned when no identity is persisted for the room.
var ErrNoIdentity = errors.New("no identity stored for room")

// IdentityStore persists player identities per room. It is injected into
// the controller rather than looked up ambiently so tests can supply their
// own.
type IdentityStore interface {
	Load(roomID string) (Identity, error)
	Save(roomID string, id Identity) error
	Clear(roomID string) error
}

// FileIdentityStore keeps one JSON file per room under a directory, the
// moral equivalent of browser local storage.
type FileIdentityStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileIdentityStore creates the directory if needed.
func NewFileIdentityStore(dir string) (*FileIdentityStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create identity dir: %w", err)
	}
	return &FileIdentityStore{dir: dir}, nil
}

func (s *FileIdentityStore) path(roomID string) string {
	return filepath.Join(s.dir, roomID+".json")
}

func (s *FileIdentityStore) Load(roomID string) (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(roomID))
	if errors.Is(err, os.ErrNotExist) {
		return Identity{}, ErrNoIdentity
	}
	if err != nil {
		return Identity{}, fmt.Errorf("read identity: %w", err)
	}
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return Identity{}, fmt.Errorf("decode identity: %w", err)
	}
	if id.PlayerID == "" {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}

func (s *FileIdentityStore) Save(roomID string, id Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := os.WriteFile(s.path(roomID), data, 0o600); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}

func (s *FileIdentityStore) Clear(roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(roomID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}

// MemoryIdentityStore is an in-process store for tests.
type MemoryIdentityStore struct {
	mu  sync.Mutex
	ids map[string]Identity
}

func NewMemoryIdentityStore() *MemoryIdentityStore {
	return &MemoryIdentityStore{ids: make(map[string]Identity)}
}

func (s *MemoryIdentityStore) Load(roomID string) (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.ids[roomID]
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}

func (s *MemoryIdentityStore) Save(roomID string, id Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[roomID] = id
	return nil
}

func (s *MemoryIdentityStore) Clear(roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, roomID)
	return nil
}
