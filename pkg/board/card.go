package board

import (
	"slices"
	"time"

	"github.com/matzehuels/orbitboard/pkg/geom"
	"github.com/matzehuels/orbitboard/pkg/orbit"
)

// CardType distinguishes plain cards from folders.
type CardType string

const (
	TypeContent CardType = "content"
	TypeFolder  CardType = "folder"
)

// LayoutStyle is how an expanded folder arranges its children. Only burst
// placement is computed here; the other styles are carried for the client.
type LayoutStyle string

const (
	LayoutCircle LayoutStyle = "circle"
	LayoutGrid   LayoutStyle = "grid"
	LayoutBurst  LayoutStyle = "burst"
)

// Card palette keys.
const (
	ColorCream    = "cream"
	ColorYellow   = "yellow"
	ColorHoney    = "honey"
	ColorPeach    = "peach"
	ColorMint     = "mint"
	ColorLavender = "lavender"
	ColorSky      = "sky"
)

// Colors lists the palette in display order.
var Colors = []string{ColorCream, ColorYellow, ColorHoney, ColorPeach, ColorMint, ColorLavender, ColorSky}

var colorHex = map[string]string{
	ColorCream:    "#fdf6e3",
	ColorYellow:   "#fef3c7",
	ColorHoney:    "#fde68a",
	ColorPeach:    "#fed7aa",
	ColorMint:     "#d1fae5",
	ColorLavender: "#ede9fe",
	ColorSky:      "#e0f2fe",
}

// ColorHex returns the hex value for a palette key. Values that are not
// palette keys, such as "#ff0000", are returned unchanged.
func ColorHex(color string) string {
	if h, ok := colorHex[color]; ok {
		return h
	}
	return color
}

// Emojis are the stock card images.
var Emojis = []string{
	"📝", "💡", "🎯", "🚀", "⭐", "🔥", "💎", "🎨",
	"📚", "🔨", "🌟", "🎉", "💪", "🎮", "🎬",
	"📱", "💻", "🖥️", "⌚", "📷", "🎧", "🎵", "🎸",
	"🏆", "🎓", "📊", "📈", "💰", "🏠", "🌍", "✈️",
}

// Defaults applied by [Store.AddCard] to empty fields.
const (
	DefaultTitle             = "New Card"
	DefaultDescription       = "Add a description..."
	DefaultImage             = "📝"
	DefaultFolderTitle       = "New Folder"
	DefaultFolderDescription = "Drag cards inside"
	DefaultFolderImage       = "📁"
	DefaultBookmarkImage     = "🔗"
)

// Card is a content card or a folder placed on the board. Position is the
// top-left corner in board space. Folder-only and content-only fields are
// left empty on the other kind.
type Card struct {
	ID          string     `json:"id"`
	Type        CardType   `json:"type"`
	Position    geom.Point `json:"position"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	Color       string     `json:"color"`
	ParentID    string     `json:"parentId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Links []string `json:"links,omitempty"`

	// Content only.
	Tags []string `json:"tags,omitempty"`
	URL  string   `json:"url,omitempty"`

	// Folder only.
	Children    []string    `json:"children,omitempty"`
	IsExpanded  bool        `json:"isExpanded,omitempty"`
	LayoutStyle LayoutStyle `json:"layoutStyle,omitempty"`
}

// IsFolder reports whether c is a folder.
func (c Card) IsFolder() bool { return c.Type == TypeFolder }

// IsBookmark reports whether c is a content card pointing at a URL.
func (c Card) IsBookmark() bool { return c.Type != TypeFolder && c.URL != "" }

// IsTopLevel reports whether c sits directly on the board rather than inside
// a folder.
func (c Card) IsTopLevel() bool { return c.ParentID == "" }

// Size returns the footprint of c.
func (c Card) Size() geom.Size {
	switch {
	case c.IsFolder():
		return orbit.FolderSize
	case c.IsBookmark():
		return orbit.BookmarkSize
	default:
		return orbit.CardSize
	}
}

// Rect returns the footprint of c at its position.
func (c Card) Rect() geom.Rect { return geom.RectAt(c.Position, c.Size()) }

// Center returns the center of c in board space.
func (c Card) Center() geom.Point { return c.Rect().Center() }

// HasLink reports whether c links to id.
func (c Card) HasLink(id string) bool { return slices.Contains(c.Links, id) }

func (c Card) clone() Card {
	c.Links = slices.Clone(c.Links)
	c.Tags = slices.Clone(c.Tags)
	c.Children = slices.Clone(c.Children)
	return c
}

// NewCard describes a card to add. Zero fields take the defaults for Type.
type NewCard struct {
	Type        CardType
	Title       string
	Description string
	Image       string
	Color       string
	URL         string
	Tags        []string
	Links       []string
	ParentID    string
	// Position, when nil, places the card on the next orbital slot.
	Position *geom.Point
}
