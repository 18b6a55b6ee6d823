package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	orberrors "github.com/matzehuels/orbitboard/pkg/errors"
	"github.com/matzehuels/orbitboard/pkg/geom"
	"github.com/matzehuels/orbitboard/pkg/motion"
)

// frameInterval is the simulated frame length when settling without a display.
const frameInterval = 16 * time.Millisecond

// maxSettleFrames bounds a headless settle so a misconfigured slide cannot spin.
const maxSettleFrames = 10_000

// resolveCommand creates the resolve command for dropping a card headlessly.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		vx, vy float64
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <card-id> <x> <y>",
		Short: "Drop a card at a board position and resolve collisions",
		Long: `Drop a card at a board position and resolve collisions.

The card is released at (x, y), its top-left corner in board space. If it
overlaps the hub or another top-level card it is pushed to the nearest free
spot. With --vx/--vy the card is thrown instead and slides with momentum
before it settles.

Frames are simulated, so the command finishes immediately. Put -- before
negative coordinates: orbitboard resolve -- c1 -90 -70`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := orberrors.ValidateCardID(args[0]); err != nil {
				return err
			}
			at, err := parsePoint(args[1] + "," + args[2])
			if err != nil {
				return err
			}
			return c.runResolve(cmd.Context(), args[0], at, geom.Pt(vx, vy), dryRun)
		},
	}

	cmd.Flags().Float64Var(&vx, "vx", 0, "release velocity x in px per second")
	cmd.Flags().Float64Var(&vy, "vy", 0, "release velocity y in px per second")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the result without saving it")

	return cmd
}

func (c *CLI) runResolve(ctx context.Context, id string, at, velocity geom.Point, dryRun bool) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	now := time.Unix(0, 0)
	var phase motion.Phase
	if velocity.Len() > 0 {
		// Two drag samples one frame apart reproduce the release velocity.
		start := at.Sub(velocity.Scale(frameInterval.Seconds()))
		if err := s.engine.BeginDrag(id, start, now); err != nil {
			return err
		}
		now = now.Add(frameInterval)
		rel, err := s.engine.ReleaseDrag(id, at, now)
		if err != nil {
			return err
		}
		phase = rel.Phase
	} else {
		rel, err := s.engine.Drop(id, at, now)
		if err != nil {
			return err
		}
		phase = rel.Phase
	}
	logger.Debug("released", "card", id, "phase", phase)

	frames := 0
	for s.engine.Animating() && frames < maxSettleFrames {
		now = now.Add(frameInterval)
		s.engine.Tick(now)
		frames++
	}
	if s.engine.Animating() {
		s.engine.CancelAll()
		return fmt.Errorf("card %s did not settle after %d frames", id, frames)
	}

	card, _ := s.board.Card(id)
	prog.done("resolved card", "card", id, "frames", frames)

	printKeyValue("Dropped at", fmtPoint(at))
	printKeyValue("Settled at", fmtPoint(card.Position))
	if moved := at.Dist(card.Position); moved > 0 {
		printKeyValue("Moved", StyleNumber.Render(fmt.Sprintf("%.1f px", moved)))
	}
	printKeyValue("Release", phase.String())

	if dryRun {
		printInfo("Dry run, board not saved")
		return nil
	}
	return s.save(ctx)
}

func fmtPoint(p geom.Point) string {
	return StyleNumber.Render(fmt.Sprintf("(%.1f, %.1f)", p.X, p.Y))
}
