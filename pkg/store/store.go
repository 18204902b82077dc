// Package store persists scraped stations. A Store is the source of truth on restart:
// the directory reloads everything from All and only scrapes what is missing.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/scubot/tidechart/pkg/station"
)

// Store is a durable key-value store of stations keyed by ID.
type Store interface {
	// Get returns the station stored under id, if any.
	Get(ctx context.Context, id string) (station.Station, bool, error)
	// Put stores st. Storing an ID twice keeps the first record.
	Put(ctx context.Context, st station.Station) error
	// All returns every station in insertion order.
	All(ctx context.Context) ([]station.Station, error)
}

// Memory is a Store that forgets everything on exit.
type Memory struct {
	mu       sync.RWMutex
	stations []station.Station
	byID     map[string]int
}

func NewMemory(initial ...station.Station) *Memory {
	m := &Memory{byID: make(map[string]int)}
	for _, st := range initial {
		_ = m.Put(context.Background(), st)
	}
	return m
}

func (m *Memory) Get(ctx context.Context, id string) (station.Station, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.byID[id]
	if !ok {
		return station.Station{}, false, nil
	}
	return m.stations[i], true, nil
}

func (m *Memory) Put(ctx context.Context, st station.Station) error {
	if err := st.Validate(); err != nil {
		return fmt.Errorf("refusing to store station: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[st.ID]; ok {
		return nil
	}
	m.byID[st.ID] = len(m.stations)
	m.stations = append(m.stations, st)
	return nil
}

func (m *Memory) All(ctx context.Context) ([]station.Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]station.Station, len(m.stations))
	copy(result, m.stations)
	return result, nil
}
