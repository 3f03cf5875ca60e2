// Package kvstore is the local durable key-value store the walker persists
// answers to. Values are strings, as in a browser's local storage.
package kvstore

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
)

// AnswersKey is the key the answer set lives under.
const AnswersKey = "rpg_answers"

var ErrNotFound = errors.New("key not found")

type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Memory is a Store held in process memory.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// Namespace returns the directory under root that holds the store of one
// client. Characters outside [A-Za-z0-9._-] are replaced so a client name
// can never escape root.
func Namespace(root, client string) string {
	if client == "" {
		client = "anonymous"
	}

	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == '.':
			return r
		default:
			return '_'
		}
	}, client)
	if strings.Trim(clean, ".") == "" {
		clean = "_" + clean
	}

	return filepath.Join(root, clean)
}
