// Package store persists completed match records: the artifact plus the
// preflight setup snapshot it was produced under. The core requires only
// Save/Get semantics; everything else is a collaborator concern.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/quarrylabs/matchspine/pkg/contracts"
)

var ErrNotFound = errors.New("match record not found")

// MatchRecord is the persisted artifact + snapshot bundle.
type MatchRecord struct {
	MatchID  string                   `json:"matchId"`
	Artifact *contracts.MatchArtifact `json:"artifact"`
	Snapshot *contracts.SetupSnapshot `json:"snapshot,omitempty"`
	SavedAt  time.Time                `json:"savedAt"`
}

// ArtifactStore is the persistence capability the platform injects into
// its orchestration layer.
type ArtifactStore interface {
	Save(ctx context.Context, record *MatchRecord) error
	Get(ctx context.Context, matchID string) (*MatchRecord, error)
	List(ctx context.Context, limit int) ([]*MatchRecord, error)
}

// MemoryStore is a thread-safe in-memory implementation for tests and
// single-process hosts.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*MatchRecord
	order   []string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*MatchRecord)}
}

func (s *MemoryStore) Save(_ context.Context, record *MatchRecord) error {
	if record == nil || record.MatchID == "" {
		return errors.New("record missing matchId")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.MatchID]; !exists {
		s.order = append(s.order, record.MatchID)
	}
	stored := *record
	stored.Artifact = record.Artifact.Clone()
	s.records[record.MatchID] = &stored
	return nil
}

func (s *MemoryStore) Get(_ context.Context, matchID string) (*MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[matchID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *record
	out.Artifact = record.Artifact.Clone()
	return &out, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]*MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.order)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*MatchRecord, 0, n)
	for _, matchID := range s.order[:n] {
		record := s.records[matchID]
		cp := *record
		cp.Artifact = record.Artifact.Clone()
		out = append(out, &cp)
	}
	return out, nil
}
