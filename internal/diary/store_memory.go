package diary

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// InMemoryStore stores diary entries in memory for tests/dev.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]*Entry // userID → entries
}

// NewInMemoryStore constructs an empty in-memory diary store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string][]*Entry)}
}

func (s *InMemoryStore) Create(_ context.Context, entry *Entry) error {
	if entry == nil || entry.ID == "" || entry.UserID == "" {
		return fmt.Errorf("entry id and user id are required")
	}
	copied := *entry
	copied.Emotions = append([]string(nil), entry.Emotions...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.UserID] = append(s.entries[entry.UserID], &copied)
	return nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID string, from, to string) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Entry
	for _, entry := range s.entries[userID] {
		if inRange(entry.Date, from, to) {
			copied := *entry
			copied.Emotions = append([]string(nil), entry.Emotions...)
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *InMemoryStore) CountEmotionsByDay(_ context.Context, userID string, from, to string) ([]EmotionCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]map[string]int)
	for _, entry := range s.entries[userID] {
		if !inRange(entry.Date, from, to) {
			continue
		}
		if counts[entry.Date] == nil {
			counts[entry.Date] = make(map[string]int)
		}
		for _, emotion := range entry.Emotions {
			counts[entry.Date][emotion]++
		}
	}

	var out []EmotionCount
	for date, emotions := range counts {
		for emotion, count := range emotions {
			out = append(out, EmotionCount{Date: date, Emotion: emotion, Count: count})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Emotion < out[j].Emotion
	})
	return out, nil
}

// inRange compares ISO dates lexically; empty bounds are open.
func inRange(date, from, to string) bool {
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}
