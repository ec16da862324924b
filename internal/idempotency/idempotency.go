// Package idempotency implements the Execution stage's duplicate-event
// guard, ported from original_source/utils/execution_utils.py's
// generate_event_id/check_idempotency/clear_processed_events. The
// Python keeps this state in module-level globals; here it is owned by
// a *Tracker value so each Runtime gets its own isolated table.
package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"sync"
)

// evictThreshold mirrors the Python's crude "clear everything past
// 10,000 entries" memory cap.
const evictThreshold = 10000

// Tracker records which event IDs have already been processed.
type Tracker struct {
	mu        sync.Mutex
	processed map[string]struct{}
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{processed: make(map[string]struct{})}
}

// GenerateEventID hashes (action, resourceID, context) into a stable
// SHA-256 hex digest, matching generate_event_id's
// json.dumps(sort_keys=True) + sha256 construction. Map keys are
// sorted explicitly since Go's encoding/json does not guarantee key
// order for map[string]any on its own older than 1.12, and to stay
// byte-for-byte faithful to the Python's canonical form.
func GenerateEventID(action, resourceID string, context map[string]any) string {
	canonical := canonicalize(map[string]any{
		"action":      action,
		"resource_id": resourceID,
		"context":     context,
	})
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// canonicalize renders v as JSON with map keys sorted at every level,
// reproducing Python's json.dumps(v, sort_keys=True).
func canonicalize(v any) string {
	b, _ := marshalSorted(v)
	return string(b)
}

func marshalSorted(v any) ([]byte, error) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var buf []byte
		buf = append(buf, '{')
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			kb, _ := json.Marshal(k)
			buf = append(buf, kb...)
			buf = append(buf, ':')
			vb, err := marshalSorted(val[k])
			if err != nil {
				return nil, err
			}
			buf = append(buf, vb...)
		}
		buf = append(buf, '}')
		return buf, nil
	default:
		return json.Marshal(val)
	}
}

// CheckAndMark reports whether eventID has already been processed. If
// not, it records eventID as processed and returns false, matching
// check_idempotency's "record on first sight" semantics.
func (t *Tracker) CheckAndMark(eventID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, seen := t.processed[eventID]; seen {
		return true
	}
	t.processed[eventID] = struct{}{}
	return false
}

// Clear drops the entire processed-event table once it has grown past
// evictThreshold entries, matching clear_processed_events' blunt MVP
// behavior (the Python also accepts an older_than_hours parameter it
// never actually uses to filter by age).
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.processed) > evictThreshold {
		t.processed = make(map[string]struct{})
	}
}

// Size reports how many event IDs are currently tracked.
func (t *Tracker) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.processed)
}
