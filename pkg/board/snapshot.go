package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/orbitboard/pkg/geom"
	"github.com/matzehuels/orbitboard/pkg/viewport"
)

// ErrInvalidSnapshot is returned when snapshot data is not well formed.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is the persisted board: every card, the committed viewport and the
// cloud flag. Its JSON form is {cards, viewport, cloudEnabled}.
type Snapshot struct {
	Cards        []Card            `json:"cards"`
	Viewport     viewport.Viewport `json:"viewport"`
	CloudEnabled bool              `json:"cloudEnabled"`
}

// DefaultSnapshot is the state of a board that has never been saved.
func DefaultSnapshot() Snapshot {
	return Snapshot{Cards: []Card{}, Viewport: viewport.Default(), CloudEnabled: true}
}

// Validate checks that every card has an id and a known type and that ids
// are unique.
func (s Snapshot) Validate() error {
	seen := make(map[string]bool, len(s.Cards))
	for i, c := range s.Cards {
		if c.ID == "" {
			return fmt.Errorf("%w: card %d has no id", ErrInvalidSnapshot, i)
		}
		if c.Type != TypeContent && c.Type != TypeFolder {
			return fmt.Errorf("%w: card %s has unknown type %q", ErrInvalidSnapshot, c.ID, c.Type)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate card id %s", ErrInvalidSnapshot, c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}

// Patch returns s with the fields present and well formed in data replaced.
// A field that is present but malformed is skipped, not an error. The
// returned names list the fields that were applied. data itself must be a
// JSON object.
func (s Snapshot) Patch(data []byte) (Snapshot, []string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return s, nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if raw == nil {
		return s, nil, fmt.Errorf("%w: body is not an object", ErrInvalidSnapshot)
	}

	var applied []string
	if msg, ok := raw["cards"]; ok {
		var cards []Card
		if err := json.Unmarshal(msg, &cards); err == nil && cards != nil {
			if (Snapshot{Cards: cards}).Validate() == nil {
				s.Cards = cards
				applied = append(applied, "cards")
			}
		}
	}
	if msg, ok := raw["viewport"]; ok {
		var v viewport.Viewport
		if err := json.Unmarshal(msg, &v); err == nil {
			s.Viewport = v
			applied = append(applied, "viewport")
		}
	}
	if msg, ok := raw["cloudEnabled"]; ok {
		var b bool
		if err := json.Unmarshal(msg, &b); err == nil && string(msg) != "null" {
			s.CloudEnabled = b
			applied = append(applied, "cloudEnabled")
		}
	}
	return s, applied, nil
}

// =============================================================================
// Position export/import
// =============================================================================

// Positions is the export file format: the full cards, the viewport and the
// export time.
type Positions struct {
	Cards      []Card            `json:"cards"`
	Viewport   viewport.Viewport `json:"viewport"`
	ExportedAt time.Time         `json:"exportedAt"`
}

// PositionsImport is the import file format. Only id and position of each card
// are read, and any subset of the viewport fields.
type PositionsImport struct {
	Cards []struct {
		ID       string      `json:"id"`
		Position *geom.Point `json:"position"`
	} `json:"cards"`
	Viewport *viewport.Partial `json:"viewport"`
}

// ExportPositions captures the board for a positions file.
func (s *Store) ExportPositions() Positions {
	snap := s.Snapshot()
	return Positions{Cards: snap.Cards, Viewport: snap.Viewport, ExportedAt: s.now().UTC()}
}

// ImportPositions decodes a positions file and applies it: positions of known
// cards are replaced and the viewport fields present are merged. Unknown ids
// are ignored. It returns the number of cards moved.
func (s *Store) ImportPositions(data []byte) (int, error) {
	var in PositionsImport
	if err := json.Unmarshal(data, &in); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for _, item := range in.Cards {
		i, ok := s.index[item.ID]
		if !ok || item.Position == nil {
			continue
		}
		s.cards[i].Position = *item.Position
		s.cards[i].UpdatedAt = now
		n++
	}
	if in.Viewport != nil {
		s.view = in.Viewport.Apply(s.view)
	}
	return n, nil
}
