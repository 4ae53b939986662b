// Package transcript loads and serves the read-only dialogue snapshot
// for the session. The source is loaded once at start; every accessor
// hands out copies so no caller can mutate the snapshot.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/callreview-team/call-review/internal/domain/entities"
	uerrors "github.com/callreview-team/call-review/internal/usecase/errors"
)

// Source holds the immutable call snapshot.
type Source struct {
	calls []entities.Call
	index map[string]int
}

// LoadFile reads a JSON transcript file: a list of
// {callId, dialogue: [{author, text}, ...]} items. A read or parse
// failure is the one user-visible failure in the system.
func LoadFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", uerrors.ErrSourceUnavailable, err)
	}
	var calls []entities.Call
	if err := json.Unmarshal(data, &calls); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", uerrors.ErrSourceUnavailable, path, err)
	}
	return New(calls)
}

// New builds a source from already-decoded calls, rejecting duplicate
// or blank call identifiers.
func New(calls []entities.Call) (*Source, error) {
	index := make(map[string]int, len(calls))
	snapshot := make([]entities.Call, 0, len(calls))
	for i, call := range calls {
		if call.ID == "" {
			return nil, fmt.Errorf("%w: call %d has no identifier", uerrors.ErrSourceUnavailable, i)
		}
		if _, dup := index[call.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate call identifier %q", uerrors.ErrSourceUnavailable, call.ID)
		}
		index[call.ID] = len(snapshot)
		snapshot = append(snapshot, call.Clone())
	}
	return &Source{calls: snapshot, index: index}, nil
}

// Calls returns a deep copy of the snapshot in load order.
func (s *Source) Calls() []entities.Call {
	out := make([]entities.Call, 0, len(s.calls))
	for _, call := range s.calls {
		out = append(out, call.Clone())
	}
	return out
}

// Call returns a copy of one call by identifier.
func (s *Source) Call(callID string) (entities.Call, error) {
	i, ok := s.index[callID]
	if !ok {
		return entities.Call{}, uerrors.ErrCallNotFound
	}
	return s.calls[i].Clone(), nil
}

// Len reports the number of calls in the snapshot.
func (s *Source) Len() int {
	return len(s.calls)
}
