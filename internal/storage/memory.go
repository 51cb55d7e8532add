package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryBackend implements an in-memory decision trace buffer
type MemoryBackend struct {
	mu          sync.RWMutex
	transitions map[string]*Transition // ID -> Transition
	episodes    map[string][]string    // EpisodeID -> TransitionIDs
	agentIndex  map[string][]string    // Agent -> TransitionIDs
	timeIndex   []string               // TransitionIDs sorted by timestamp
	maxSize     uint64                 // Maximum number of transitions to store
}

// NewMemoryBackend creates a new in-memory storage backend
func NewMemoryBackend(maxSize uint64) *MemoryBackend {
	return &MemoryBackend{
		transitions: make(map[string]*Transition),
		episodes:    make(map[string][]string),
		agentIndex:  make(map[string][]string),
		timeIndex:   make([]string, 0),
		maxSize:     maxSize,
	}
}

// Store implements Backend.Store
func (m *MemoryBackend) Store(ctx context.Context, transition *Transition) error {
	if transition.EpisodeID == "" {
		return fmt.Errorf("transition has no episode id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.transitions == nil {
		return fmt.Errorf("backend closed")
	}

	if transition.ID == "" {
		transition.ID = uuid.New().String()
	}
	if transition.Timestamp.IsZero() {
		transition.Timestamp = time.Now()
	}

	m.transitions[transition.ID] = transition
	m.episodes[transition.EpisodeID] = append(m.episodes[transition.EpisodeID], transition.ID)
	if transition.Agent != "" {
		m.agentIndex[transition.Agent] = append(m.agentIndex[transition.Agent], transition.ID)
	}

	m.insertInTimeIndex(transition.ID, transition.Timestamp)
	m.evictIfNeeded()

	return nil
}

// StoreBatch implements Backend.StoreBatch
func (m *MemoryBackend) StoreBatch(ctx context.Context, transitions []*Transition) ([]string, error) {
	ids := make([]string, len(transitions))

	for i, transition := range transitions {
		if err := m.Store(ctx, transition); err != nil {
			return ids[:i], err
		}
		ids[i] = transition.ID
	}

	return ids, nil
}

// Episode implements Backend.Episode
func (m *MemoryBackend) Episode(ctx context.Context, episodeID string) ([]*Transition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids, ok := m.episodes[episodeID]
	if !ok {
		return nil, fmt.Errorf("episode %s: %w", episodeID, ErrNotFound)
	}

	out := make([]*Transition, 0, len(ids))
	for _, id := range ids {
		t := *m.transitions[id]
		out = append(out, &t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StepNumber < out[j].StepNumber
	})
	return out, nil
}

// GetStats implements Backend.GetStats
func (m *MemoryBackend) GetStats(ctx context.Context, agent string) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &Stats{
		TotalTransitions:   uint64(len(m.transitions)),
		TotalEpisodes:      uint64(len(m.episodes)),
		TransitionsByAgent: make(map[string]uint64),
	}

	for name, ids := range m.agentIndex {
		if agent == "" || name == agent {
			stats.TransitionsByAgent[name] = uint64(len(ids))
		}
	}

	if len(m.timeIndex) > 0 {
		oldest := m.transitions[m.timeIndex[0]].Timestamp
		newest := m.transitions[m.timeIndex[len(m.timeIndex)-1]].Timestamp
		stats.OldestTimestamp = &oldest
		stats.NewestTimestamp = &newest
	}

	return stats, nil
}

// Clear implements Backend.Clear
func (m *MemoryBackend) Clear(ctx context.Context, episodeID string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := append([]string(nil), m.episodes[episodeID]...)
	for _, id := range ids {
		m.deleteTransition(id)
	}
	return uint64(len(ids)), nil
}

// Close implements Backend.Close
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transitions = nil
	m.episodes = nil
	m.agentIndex = nil
	m.timeIndex = nil

	return nil
}

// Helper methods

func (m *MemoryBackend) insertInTimeIndex(id string, timestamp time.Time) {
	idx := sort.Search(len(m.timeIndex), func(i int) bool {
		return m.transitions[m.timeIndex[i]].Timestamp.After(timestamp)
	})

	m.timeIndex = append(m.timeIndex, "")
	copy(m.timeIndex[idx+1:], m.timeIndex[idx:])
	m.timeIndex[idx] = id
}

func (m *MemoryBackend) evictIfNeeded() {
	if m.maxSize == 0 || uint64(len(m.transitions)) <= m.maxSize {
		return
	}

	toRemove := uint64(len(m.transitions)) - m.maxSize
	for i := uint64(0); i < toRemove && len(m.timeIndex) > 0; i++ {
		m.deleteTransition(m.timeIndex[0])
	}
}

func (m *MemoryBackend) deleteTransition(id string) {
	transition, exists := m.transitions[id]
	if !exists {
		return
	}

	delete(m.transitions, id)

	if ids, ok := m.episodes[transition.EpisodeID]; ok {
		m.episodes[transition.EpisodeID] = removeString(ids, id)
		if len(m.episodes[transition.EpisodeID]) == 0 {
			delete(m.episodes, transition.EpisodeID)
		}
	}

	if transition.Agent != "" {
		if ids, ok := m.agentIndex[transition.Agent]; ok {
			m.agentIndex[transition.Agent] = removeString(ids, id)
			if len(m.agentIndex[transition.Agent]) == 0 {
				delete(m.agentIndex, transition.Agent)
			}
		}
	}

	m.timeIndex = removeString(m.timeIndex, id)
}

func removeString(slice []string, s string) []string {
	for i, v := range slice {
		if v == s {
			return append(slice[:i], slice[i+1:]...)
		}
	}
	return slice
}
