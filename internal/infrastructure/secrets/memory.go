// Package secrets holds SecretStore implementations.
package secrets

import (
	"fmt"
	"strconv"
	"sync"
)

// Memory keeps secrets in process memory. It backs tests and headless runs
// where no platform keystore exists.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) GetString(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) SetString(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) GetBool(key string) (bool, bool, error) {
	v, ok, _ := m.GetString(key)
	if !ok {
		return false, false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, true, fmt.Errorf("secret %s is not a bool: %w", key, err)
	}
	return b, true, nil
}

func (m *Memory) SetBool(key string, value bool) error {
	return m.SetString(key, strconv.FormatBool(value))
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]string)
	return nil
}
