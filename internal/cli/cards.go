package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orbitboard/pkg/board"
	orberrors "github.com/matzehuels/orbitboard/pkg/errors"
	"github.com/matzehuels/orbitboard/pkg/geom"
)

// cardsCommand creates the cards command group.
func (c *CLI) cardsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cards",
		Aliases: []string{"card"},
		Short:   "List and edit cards on the board",
	}

	cmd.AddCommand(c.cardsListCommand())
	cmd.AddCommand(c.cardsAddCommand())
	cmd.AddCommand(c.cardsRemoveCommand())
	cmd.AddCommand(c.cardsLinkCommand(true))
	cmd.AddCommand(c.cardsLinkCommand(false))
	cmd.AddCommand(c.cardsMoveCommand())
	cmd.AddCommand(c.cardsToggleCommand())

	return cmd
}

// editSession opens the board, applies fn and saves the result.
func (c *CLI) editSession(ctx context.Context, fn func(*session) error) error {
	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := fn(s); err != nil {
		return cardError(err)
	}
	return s.save(ctx)
}

// cardError attaches an error code to board errors.
func cardError(err error) error {
	if errors.Is(err, board.ErrCardNotFound) {
		return orberrors.Wrap(orberrors.ErrCodeCardNotFound, err, "%s", err.Error())
	}
	if errors.Is(err, board.ErrNotFolder) || errors.Is(err, board.ErrSelfReference) {
		return orberrors.Wrap(orberrors.ErrCodeInvalidInput, err, "%s", err.Error())
	}
	return err
}

// validateIDs checks every card id argument.
func validateIDs(_ *cobra.Command, args []string) error {
	for _, id := range args {
		if err := orberrors.ValidateCardID(id); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// list
// =============================================================================

func (c *CLI) cardsListCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cards with their positions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			cards := s.board.TopLevelCards()
			if all {
				cards = s.board.Cards()
			}
			if len(cards) == 0 {
				printInfo("The board is empty")
				printNextStep("Add a card", appName+" cards add --title 'First idea'")
				return nil
			}
			fmt.Println(cardTable(cards))
			printStats(summarize(s.board, s.created))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include cards inside folders")

	return cmd
}

// =============================================================================
// add
// =============================================================================

func (c *CLI) cardsAddCommand() *cobra.Command {
	var (
		in     board.NewCard
		folder bool
		at     string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a content card, bookmark or folder",
		Long: `Add a content card, bookmark or folder.

Without --at the card takes the next slot on the orbit. Give --url to make
the card a bookmark, or --folder to make it a folder. With --in the card is
placed inside an existing folder.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if folder {
				in.Type = board.TypeFolder
			}
			if at != "" {
				p, err := parsePoint(at)
				if err != nil {
					return err
				}
				in.Position = &p
			}
			if in.ParentID != "" {
				if err := orberrors.ValidateCardID(in.ParentID); err != nil {
					return err
				}
			}
			return c.editSession(cmd.Context(), func(s *session) error {
				parent := in.ParentID
				if parent != "" {
					if p, ok := s.board.Card(parent); !ok || !p.IsFolder() {
						return fmt.Errorf("%w: %s", board.ErrNotFolder, parent)
					}
				}
				in.ParentID = ""
				card := s.board.AddCard(in)
				if parent != "" {
					if err := s.board.AddCardToFolder(card.ID, parent); err != nil {
						return err
					}
				}
				printSuccess("Added %s %s", card.Type, StyleHighlight.Render(card.ID))
				printDetail("%s at %.0f, %.0f", card.Title, card.Position.X, card.Position.Y)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&in.Title, "title", "t", "", "card title")
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "card description")
	cmd.Flags().StringVar(&in.URL, "url", "", "bookmark URL")
	cmd.Flags().StringVar(&in.Color, "color", "", "card color: "+strings.Join(board.Colors, ", "))
	cmd.Flags().StringSliceVar(&in.Tags, "tag", nil, "tag (repeatable)")
	cmd.Flags().StringVar(&in.ParentID, "in", "", "folder to place the card in")
	cmd.Flags().BoolVar(&folder, "folder", false, "create a folder")
	cmd.Flags().StringVar(&at, "at", "", "position as x,y")

	return cmd
}

// parsePoint parses "x,y".
func parsePoint(s string) (geom.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geom.Point{}, orberrors.New(orberrors.ErrCodeInvalidInput, "position %q must be x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geom.Point{}, orberrors.Wrap(orberrors.ErrCodeInvalidInput, err, "invalid x in %q", s)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geom.Point{}, orberrors.Wrap(orberrors.ErrCodeInvalidInput, err, "invalid y in %q", s)
	}
	if err := orberrors.ValidateFinite("x", x); err != nil {
		return geom.Point{}, err
	}
	if err := orberrors.ValidateFinite("y", y); err != nil {
		return geom.Point{}, err
	}
	return geom.Pt(x, y), nil
}

// =============================================================================
// rm
// =============================================================================

func (c *CLI) cardsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <card-id>...",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete cards; children of a deleted folder return to the board",
		Args:    cobra.MatchAll(cobra.MinimumNArgs(1), validateIDs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editSession(cmd.Context(), func(s *session) error {
				for _, id := range args {
					if _, ok := s.board.Card(id); !ok {
						return fmt.Errorf("%w: %s", board.ErrCardNotFound, id)
					}
					s.board.Select(id, true)
				}
				n := s.board.DeleteSelected()
				printSuccess("Deleted %d cards", n)
				return nil
			})
		},
	}
}

// =============================================================================
// link / unlink
// =============================================================================

func (c *CLI) cardsLinkCommand(link bool) *cobra.Command {
	use, short := "link <from> <to>", "Draw a link between two cards"
	if !link {
		use, short = "unlink <from> <to>", "Remove a link between two cards"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MatchAll(cobra.ExactArgs(2), validateIDs),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to := args[0], args[1]
			return c.editSession(cmd.Context(), func(s *session) error {
				if link {
					if err := s.board.Link(from, to); err != nil {
						return err
					}
					printSuccess("Linked %s %s %s", StyleHighlight.Render(from), iconArrow, StyleHighlight.Render(to))
					return nil
				}
				if err := s.board.Unlink(from, to); err != nil {
					return err
				}
				printSuccess("Unlinked %s %s %s", StyleHighlight.Render(from), iconArrow, StyleHighlight.Render(to))
				return nil
			})
		},
	}
}

// =============================================================================
// move
// =============================================================================

func (c *CLI) cardsMoveCommand() *cobra.Command {
	var out bool

	cmd := &cobra.Command{
		Use:   "move <card-id> <folder-id>",
		Short: "Move a card into a folder, or out of it with --out",
		Args:  cobra.MatchAll(cobra.ExactArgs(2), validateIDs),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, folder := args[0], args[1]
			return c.editSession(cmd.Context(), func(s *session) error {
				if out {
					if err := s.board.RemoveCardFromFolder(id, folder); err != nil {
						return err
					}
					printSuccess("Moved %s out of %s", StyleHighlight.Render(id), StyleHighlight.Render(folder))
					return nil
				}
				if err := s.board.AddCardToFolder(id, folder); err != nil {
					return err
				}
				printSuccess("Moved %s into %s", StyleHighlight.Render(id), StyleHighlight.Render(folder))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&out, "out", false, "move the card out of the folder onto the board")

	return cmd
}

// =============================================================================
// toggle
// =============================================================================

func (c *CLI) cardsToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <folder-id>",
		Short: "Expand or collapse a folder",
		Args:  cobra.MatchAll(cobra.ExactArgs(1), validateIDs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editSession(cmd.Context(), func(s *session) error {
				open, err := s.board.ToggleFolder(args[0])
				if err != nil {
					return err
				}
				if !open {
					printSuccess("Collapsed %s", StyleHighlight.Render(args[0]))
					return nil
				}
				printSuccess("Expanded %s", StyleHighlight.Render(args[0]))
				burst := s.engine.BurstPositions(args[0])
				for _, child := range s.board.FolderChildren(args[0]) {
					if p, ok := burst[child.ID]; ok {
						printDetail("%s at %.0f, %.0f", child.ID, p.X, p.Y)
					}
				}
				return nil
			})
		},
	}
}
