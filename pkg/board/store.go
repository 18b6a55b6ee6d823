package board

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/orbitboard/pkg/geom"
	"github.com/matzehuels/orbitboard/pkg/orbit"
	"github.com/matzehuels/orbitboard/pkg/viewport"
)

var (
	// ErrCardNotFound is returned when an operation names an unknown card.
	ErrCardNotFound = errors.New("card not found")

	// ErrNotFolder is returned when a folder operation targets a content card.
	ErrNotFolder = errors.New("card is not a folder")

	// ErrSelfReference is returned when a card would link to, or contain,
	// itself.
	ErrSelfReference = errors.New("card cannot reference itself")
)

// Phase tracks whether the board has received its initial placement.
type Phase int

const (
	// Uninitialized boards have neither been laid out nor hydrated.
	Uninitialized Phase = iota
	// LayingOut is held while InitialLayout runs.
	LayingOut
	// Stable boards keep the positions they have; InitialLayout is a no-op.
	Stable
)

func (p Phase) String() string {
	switch p {
	case LayingOut:
		return "laying-out"
	case Stable:
		return "stable"
	default:
		return "uninitialized"
	}
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithIDs overrides the card id generator.
func WithIDs(next func() string) Option { return func(s *Store) { s.newID = next } }

// WithParams sets the ring geometry used for placement.
func WithParams(p orbit.Params) Option { return func(s *Store) { s.params = p } }

// Store is the in-memory card store. Cards keep insertion order. All methods
// are safe for concurrent use and return copies.
type Store struct {
	mu       sync.RWMutex
	cards    []Card
	index    map[string]int
	selected []string
	view     viewport.Viewport
	cloud    bool
	phase    Phase

	params orbit.Params
	now    func() time.Time
	newID  func() string
}

// New returns an empty, uninitialized store.
func New(opts ...Option) *Store {
	s := &Store{
		index:  make(map[string]int),
		view:   viewport.Default(),
		cloud:  true,
		params: orbit.DefaultParams(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Params returns the ring geometry.
func (s *Store) Params() orbit.Params { return s.params }

// Phase returns the layout phase.
func (s *Store) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// =============================================================================
// Reads
// =============================================================================

// Len returns the number of cards.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cards)
}

// Card returns the card with the given id.
func (s *Store) Card(id string) (Card, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return Card{}, false
	}
	return s.cards[i].clone(), true
}

// Cards returns every card in insertion order.
func (s *Store) Cards() []Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Card, len(s.cards))
	for i, c := range s.cards {
		out[i] = c.clone()
	}
	return out
}

// TopLevelCards returns the cards that are not inside a folder.
func (s *Store) TopLevelCards() []Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topLevelLocked()
}

func (s *Store) topLevelLocked() []Card {
	var out []Card
	for _, c := range s.cards {
		if c.IsTopLevel() {
			out = append(out, c.clone())
		}
	}
	return out
}

// FolderChildren returns the children of a folder in folder order. Unknown
// folders and dangling child ids yield nothing.
func (s *Store) FolderChildren(folderID string) []Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[folderID]
	if !ok || !s.cards[i].IsFolder() {
		return nil
	}
	var out []Card
	for _, id := range s.cards[i].Children {
		if j, ok := s.index[id]; ok {
			out = append(out, s.cards[j].clone())
		}
	}
	return out
}

// =============================================================================
// Card mutations
// =============================================================================

// AddCard creates a card from in and returns it. Without an explicit position
// the card takes the next orbital slot among the top-level cards.
func (s *Store) AddCard(in NewCard) Card {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c := Card{
		ID:          s.newID(),
		Type:        in.Type,
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
		Color:       in.Color,
		ParentID:    in.ParentID,
		Links:       slices.Clone(in.Links),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.Type != TypeFolder {
		c.Type = TypeContent
		c.Tags = slices.Clone(in.Tags)
		c.URL = in.URL
	}
	applyDefaults(&c)

	if in.Position != nil {
		c.Position = *in.Position
	} else {
		n := len(s.topLevelLocked())
		c.Position = s.params.CardPosition(n, n+1, c.Size())
	}

	s.index[c.ID] = len(s.cards)
	s.cards = append(s.cards, c)
	return c.clone()
}

func applyDefaults(c *Card) {
	folder := c.IsFolder()
	if c.Title == "" {
		c.Title = DefaultTitle
		if folder {
			c.Title = DefaultFolderTitle
		}
	}
	if c.Description == "" && !c.IsBookmark() {
		c.Description = DefaultDescription
		if folder {
			c.Description = DefaultFolderDescription
		}
	}
	if c.Image == "" {
		switch {
		case folder:
			c.Image = DefaultFolderImage
		case c.IsBookmark():
			c.Image = DefaultBookmarkImage
		default:
			c.Image = DefaultImage
		}
	}
	if c.Color == "" {
		c.Color = ColorCream
	}
	if folder && c.LayoutStyle == "" {
		c.LayoutStyle = LayoutCircle
	}
}

// UpdateCard applies fn to the card with the given id and stamps UpdatedAt.
// The id and type cannot be changed through fn.
func (s *Store) UpdateCard(id string, fn func(*Card)) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return Card{}, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	c := s.cards[i].clone()
	fn(&c)
	c.ID, c.Type = s.cards[i].ID, s.cards[i].Type
	c.UpdatedAt = s.now()
	s.cards[i] = c
	return c.clone(), nil
}

// SetCardPosition commits a card position.
func (s *Store) SetCardPosition(id string, p geom.Point) error {
	_, err := s.UpdateCard(id, func(c *Card) { c.Position = p })
	return err
}

// DeleteCard removes a card. Deleting a folder releases its children onto the
// board rather than deleting them.
func (s *Store) DeleteCard(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(id)
}

func (s *Store) deleteLocked(id string) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	gone := s.cards[i]
	now := s.now()

	if gone.IsFolder() {
		for _, child := range gone.Children {
			if j, ok := s.index[child]; ok && s.cards[j].ParentID == id {
				s.cards[j].ParentID = ""
				s.cards[j].UpdatedAt = now
			}
		}
	}
	if gone.ParentID != "" {
		if j, ok := s.index[gone.ParentID]; ok {
			s.cards[j].Children = slices.DeleteFunc(s.cards[j].Children, func(c string) bool { return c == id })
		}
	}

	s.cards = slices.Delete(s.cards, i, i+1)
	s.reindexLocked()
	s.selected = slices.DeleteFunc(s.selected, func(c string) bool { return c == id })
	return nil
}

func (s *Store) reindexLocked() {
	clear(s.index)
	for i, c := range s.cards {
		s.index[c.ID] = i
	}
}

// DeleteSelected deletes every selected card, clears the selection and
// returns the number of cards removed.
func (s *Store) DeleteSelected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range slices.Clone(s.selected) {
		if s.deleteLocked(id) == nil {
			n++
		}
	}
	s.selected = nil
	return n
}

// =============================================================================
// Folders and links
// =============================================================================

// ToggleFolder flips a folder between collapsed and expanded and returns the
// new state.
func (s *Store) ToggleFolder(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.folderLocked(id)
	if err != nil {
		return false, err
	}
	s.cards[i].IsExpanded = !s.cards[i].IsExpanded
	s.cards[i].UpdatedAt = s.now()
	return s.cards[i].IsExpanded, nil
}

func (s *Store) folderLocked(id string) (int, error) {
	i, ok := s.index[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	if !s.cards[i].IsFolder() {
		return 0, fmt.Errorf("%w: %s", ErrNotFolder, id)
	}
	return i, nil
}

// AddCardToFolder moves a card into a folder. A card already in another
// folder leaves it first.
func (s *Store) AddCardToFolder(cardID, folderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cardID == folderID {
		return ErrSelfReference
	}
	fi, err := s.folderLocked(folderID)
	if err != nil {
		return err
	}
	ci, ok := s.index[cardID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}
	now := s.now()

	if prev := s.cards[ci].ParentID; prev != "" && prev != folderID {
		if pi, ok := s.index[prev]; ok {
			s.cards[pi].Children = slices.DeleteFunc(s.cards[pi].Children, func(c string) bool { return c == cardID })
			s.cards[pi].UpdatedAt = now
		}
	}
	if !slices.Contains(s.cards[fi].Children, cardID) {
		s.cards[fi].Children = append(s.cards[fi].Children, cardID)
	}
	s.cards[fi].UpdatedAt = now
	s.cards[ci].ParentID = folderID
	s.cards[ci].UpdatedAt = now
	return nil
}

// RemoveCardFromFolder puts a folder child back on the board.
func (s *Store) RemoveCardFromFolder(cardID, folderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fi, err := s.folderLocked(folderID)
	if err != nil {
		return err
	}
	now := s.now()
	s.cards[fi].Children = slices.DeleteFunc(s.cards[fi].Children, func(c string) bool { return c == cardID })
	s.cards[fi].UpdatedAt = now
	if ci, ok := s.index[cardID]; ok && s.cards[ci].ParentID == folderID {
		s.cards[ci].ParentID = ""
		s.cards[ci].UpdatedAt = now
	}
	return nil
}

// Link connects from to to. Linking twice is a no-op.
func (s *Store) Link(from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from == to {
		return ErrSelfReference
	}
	fi, ok := s.index[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCardNotFound, from)
	}
	if _, ok := s.index[to]; !ok {
		return fmt.Errorf("%w: %s", ErrCardNotFound, to)
	}
	if !s.cards[fi].HasLink(to) {
		s.cards[fi].Links = append(s.cards[fi].Links, to)
		s.cards[fi].UpdatedAt = s.now()
	}
	return nil
}

// Unlink removes the link from from to to, if any.
func (s *Store) Unlink(from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fi, ok := s.index[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCardNotFound, from)
	}
	s.cards[fi].Links = slices.DeleteFunc(s.cards[fi].Links, func(c string) bool { return c == to })
	return nil
}

// =============================================================================
// Selection, viewport, cloud
// =============================================================================

// Select selects id. With multi it toggles id within the current selection,
// otherwise the selection becomes id alone.
func (s *Store) Select(id string, multi bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !multi {
		s.selected = []string{id}
		return
	}
	if slices.Contains(s.selected, id) {
		s.selected = slices.DeleteFunc(s.selected, func(c string) bool { return c == id })
		return
	}
	s.selected = append(s.selected, id)
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// Selected returns the selected card ids in selection order.
func (s *Store) Selected() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.selected)
}

// Viewport returns the committed viewport.
func (s *Store) Viewport() viewport.Viewport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// SetViewport replaces the committed viewport.
func (s *Store) SetViewport(v viewport.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

// CloudEnabled reports whether the background cloud is on.
func (s *Store) CloudEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cloud
}

// ToggleCloud flips the background cloud and returns the new value.
func (s *Store) ToggleCloud() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cloud = !s.cloud
	return s.cloud
}

// =============================================================================
// Layout phase
// =============================================================================

// InitialLayout places every top-level card centered on its orbital slot. It
// runs once, and only on a board that has not been hydrated; it reports
// whether it ran.
func (s *Store) InitialLayout() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != Uninitialized {
		return false
	}
	s.phase = LayingOut
	s.placeLocked()
	s.phase = Stable
	return true
}

// Relayout moves every top-level card back onto its orbital slot, whatever
// the phase, and returns the number of cards placed.
func (s *Store) Relayout() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.placeLocked()
	now := s.now()
	for i := range s.cards {
		if s.cards[i].IsTopLevel() {
			s.cards[i].UpdatedAt = now
		}
	}
	s.phase = Stable
	return n
}

func (s *Store) placeLocked() int {
	var top []int
	for i, c := range s.cards {
		if c.IsTopLevel() {
			top = append(top, i)
		}
	}
	for slot, i := range top {
		s.cards[i].Position = s.params.CardPosition(slot, len(top), s.cards[i].Size())
	}
	return len(top)
}

// Hydrate replaces the whole board with snap and marks it stable, so that
// loaded positions are never overwritten by the initial layout.
func (s *Store) Hydrate(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards = make([]Card, 0, len(snap.Cards))
	for _, c := range snap.Cards {
		s.cards = append(s.cards, c.clone())
	}
	s.reindexLocked()
	s.selected = nil
	s.view = snap.Viewport
	s.cloud = snap.CloudEnabled
	s.phase = Stable
}

// Snapshot returns the persistable state of the board.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cards := make([]Card, len(s.cards))
	for i, c := range s.cards {
		cards[i] = c.clone()
	}
	return Snapshot{Cards: cards, Viewport: s.view, CloudEnabled: s.cloud}
}
