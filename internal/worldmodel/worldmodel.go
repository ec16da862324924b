// Package worldmodel implements the World Model Store: a single JSON
// document on disk (data/world_model.json in the original), held
// in-memory behind a mutex and written back whole on every mutation.
// Grounded on original_source/app.py's load/save pattern (every layer
// reads the same world_model.json and writes the full document back)
// and structurally on the teacher's pkg/database/client.go, which
// plays the same "the one place every other package reaches for
// persistent state" role for a relational store — here adapted to a
// whole-document JSON store since SIA's World Model is not relational.
package worldmodel

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shun1423/sia/internal/engerr"
	"github.com/shun1423/sia/internal/model"
)

// Document is the full shape of world_model.json.
type Document struct {
	User              model.CurrentState          `json:"user"`
	Goals             []model.AbstractGoal        `json:"goals"`
	Preferences       model.Preferences           `json:"preferences"`
	ConnectedSources  map[string]model.ConnectedSource `json:"connected_sources"`
	IdealStates       []model.Expectation         `json:"ideal_states"`
	History           []model.HistoryRecord       `json:"history"`
	Baselines         map[string]model.Baseline   `json:"baselines"`
	Problems          []model.Problem             `json:"problems"`
	AgentConfigs      []model.AgentConfig         `json:"agent_configs"`
	Patterns          []model.Pattern             `json:"patterns"`
	Safety            model.Safety                `json:"safety"`
	LastSensedAt      *time.Time                  `json:"last_sensed_at,omitempty"`
}

// emptyDocument returns a Document with every map/slice initialized,
// matching the original's defensive world_model.get("key", {}) reads.
func emptyDocument() Document {
	return Document{
		Goals:            []model.AbstractGoal{},
		ConnectedSources: map[string]model.ConnectedSource{},
		IdealStates:      []model.Expectation{},
		History:          []model.HistoryRecord{},
		Baselines:        map[string]model.Baseline{},
		Problems:         []model.Problem{},
		AgentConfigs:     []model.AgentConfig{},
		Patterns:         []model.Pattern{},
	}
}

// Store is the in-process handle to the World Model. All reads and
// writes go through it; it is the only component that touches the
// backing file directly.
type Store struct {
	mu   sync.RWMutex
	path string
	doc  Document
}

// Open loads path into memory, or seeds an empty Document if the file
// does not exist yet (the original's "if world_model_path.exists()"
// guard, inverted into an upfront default rather than a per-read check).
func Open(path string) (*Store, error) {
	s := &Store{path: path, doc: emptyDocument()}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, engerr.ErrStoreUnavailable
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, engerr.ErrParse
	}
	s.doc = doc
	return s, nil
}

// View runs fn against a read-only snapshot of the current document.
// fn must not retain slices/maps from the snapshot past its call since
// they are shared with the live document under the read lock only.
func (s *Store) View(fn func(Document)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.doc)
}

// Update runs fn against a mutable copy of the document and, if fn
// returns no error, persists the mutated copy to disk and swaps it in
// as the live document. The whole document is rewritten on every
// update since World Model has no finer-grained storage unit.
func (s *Store) Update(fn func(*Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc
	if err := fn(&next); err != nil {
		return err
	}
	if err := s.persist(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// persist atomically replaces the backing file: write to a temp file
// in the same directory, then rename over the target, so a reader
// never observes a partially written document.
func (s *Store) persist(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return engerr.ErrParse
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return engerr.ErrStoreUnavailable
	}

	tmp, err := os.CreateTemp(dir, ".world_model-*.json.tmp")
	if err != nil {
		return engerr.ErrStoreUnavailable
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return engerr.ErrStoreUnavailable
	}
	if err := tmp.Close(); err != nil {
		return engerr.ErrStoreUnavailable
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return engerr.ErrStoreUnavailable
	}
	return nil
}

// Snapshot returns a copy of the current document for read-mostly
// callers that prefer a value over a callback (e.g. the Presenter).
func (s *Store) Snapshot() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}
