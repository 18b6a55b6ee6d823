package board

// HubID names the hub in edge lists. It is never a card id.
const HubID = "hub"

// EdgeKind distinguishes hub spokes from user links.
type EdgeKind int

const (
	// EdgeHub connects the hub to a top-level card.
	EdgeHub EdgeKind = iota
	// EdgeLink is a user-drawn connection between two cards.
	EdgeLink
)

// Edge is a connection to draw between two nodes.
type Edge struct {
	From string
	To   string
	Kind EdgeKind
}

// Edges returns a hub spoke for every top-level card followed by every link
// whose two ends exist, in card order.
func (s *Store) Edges() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Edge
	for _, c := range s.cards {
		if c.IsTopLevel() {
			out = append(out, Edge{From: HubID, To: c.ID, Kind: EdgeHub})
		}
	}
	for _, c := range s.cards {
		for _, to := range c.Links {
			if _, ok := s.index[to]; ok {
				out = append(out, Edge{From: c.ID, To: to, Kind: EdgeLink})
			}
		}
	}
	return out
}
