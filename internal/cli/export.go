package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orbitboard/pkg/export"
)

// Export formats.
const (
	formatPositions = "positions"
	formatDOT       = "dot"
	formatSVG       = "svg"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
		pinned   bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the board as a positions file, DOT graph or SVG",
		Long: `Export the board as a positions file, DOT graph or SVG.

Formats:
  positions   JSON with every card, the viewport and the export time;
              read back with 'orbitboard import'
  dot         Graphviz source with the hub, cards and links
  svg         the DOT graph rendered with Graphviz

With --pinned the graph uses the board positions; otherwise Graphviz lays
the cards out radially around the hub.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), format, output, export.Options{Detailed: detailed, Pinned: pinned})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatPositions, "output format: positions, dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include card type, tags and URL in node labels")
	cmd.Flags().BoolVar(&pinned, "pinned", true, "pin nodes to their board positions")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, format, output string, opts export.Options) error {
	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	opts.Burst = c.cfg.Engine().Burst

	var data []byte
	switch strings.ToLower(format) {
	case formatPositions:
		data, err = json.MarshalIndent(s.board.ExportPositions(), "", "  ")
		if err != nil {
			return fmt.Errorf("encode positions: %w", err)
		}
		data = append(data, '\n')
	case formatDOT:
		data = []byte(export.ToDOT(s.board, opts))
	case formatSVG:
		spinner := newSpinner(ctx, "Rendering SVG...")
		spinner.Start()
		data, err = export.RenderSVG(ctx, export.ToDOT(s.board, opts))
		if err != nil {
			spinner.StopWithError("Rendering failed")
			return fmt.Errorf("render svg: %w", err)
		}
		spinner.Stop()
	default:
		return fmt.Errorf("unknown format %q (use positions, dot or svg)", format)
	}

	if output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := writeFile(output, data); err != nil {
		return err
	}
	printSuccess("Exported %d cards", s.board.Len())
	printFile(output)
	return nil
}

func writeFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// importCommand creates the import command for positions files.
func (c *CLI) importCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <positions.json>",
		Short: "Apply card positions and viewport from a positions file",
		Long: `Apply card positions and viewport from a positions file.

Only the id and position of each card are read. Cards not on the board are
ignored, and viewport fields present in the file replace the saved ones.
Use - to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), args[0], dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without saving")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, input string, dryRun bool) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}

	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.board.ImportPositions(data)
	if err != nil {
		return fmt.Errorf("import %s: %w", input, err)
	}
	printSuccess("Moved %d of %d cards", n, s.board.Len())
	printDetail("Viewport: %s", s.board.Viewport())

	if dryRun {
		printInfo("Dry run, board not saved")
		return nil
	}
	return s.save(ctx)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
