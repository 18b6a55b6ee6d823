package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orbitboard/pkg/board"
)

// layoutCommand creates the layout command for placing cards on the orbit.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		add    int
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Place every top-level card on the orbit around the hub",
		Long: `Place every top-level card on the orbit around the hub.

Cards are spaced evenly on a circle, the first one at the right of the hub,
continuing clockwise on screen. Folder children keep their positions; they
burst around their folder when it is expanded.

Use --add to put new default cards on the board before laying it out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), add, dryRun)
		},
	}

	cmd.Flags().IntVar(&add, "add", 0, "add this many default cards before laying out")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the layout without saving it")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, add int, dryRun bool) error {
	if add < 0 {
		return fmt.Errorf("--add must not be negative, got %d", add)
	}
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	for range add {
		s.board.AddCard(board.NewCard{})
	}
	n := len(s.board.TopLevelCards())
	if s.board.InitialLayout() {
		logger.Debug("initial layout", "cards", n)
	} else {
		n = s.board.Relayout()
	}
	prog.done("placed cards", "cards", n, "radius", s.board.Params().Radius())

	fmt.Println(cardTable(s.board.TopLevelCards()))
	printStats(summarize(s.board, s.created))

	if dryRun {
		printInfo("Dry run, board not saved")
		return nil
	}
	if err := s.save(ctx); err != nil {
		return err
	}
	printSuccess("Saved layout to %s storage", backendName(c.cfg.Storage.Backend))
	return nil
}
