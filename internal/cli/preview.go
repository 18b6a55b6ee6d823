package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orbitboard/pkg/httputil"
	"github.com/matzehuels/orbitboard/pkg/preview"
)

// previewCommand creates the preview command for bookmark previews.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		noCache bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "preview <url>",
		Short: "Fetch the Open Graph preview of a bookmark URL",
		Long: `Fetch the Open Graph preview of a bookmark URL.

Reads og:title, og:description and og:image (with Twitter card and <title>
fallbacks) from the page. Results are cached locally for a day.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd.Context(), args[0], noCache, asJSON)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the preview cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the preview as JSON")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, rawURL string, noCache, asJSON bool) error {
	logger := loggerFromContext(ctx)

	pc, err := c.newPreviewCache(ctx, noCache)
	if err != nil {
		return fmt.Errorf("open preview cache: %w", err)
	}
	defer pc.Close()

	f := preview.NewFetcher(
		preview.WithLogger(logger),
		preview.WithCache(pc),
		preview.WithTTL(c.cfg.Preview.TTL),
		preview.WithRetry(c.cfg.Preview.Attempts, time.Second),
		preview.WithClient(httputil.NewClient("preview", httputil.WithTimeout(c.cfg.Preview.Timeout))),
	)

	spinner := newSpinner(ctx, "Fetching "+rawURL+"...")
	spinner.Start()
	p, err := f.Fetch(ctx, rawURL)
	if err != nil {
		spinner.StopWithError("Could not fetch preview")
		return err
	}
	spinner.Stop()

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	printKeyValue("URL", StyleLink.Render(p.URL))
	printKeyValue("Title", StyleTitle.Render(valueOrDash(p.Title)))
	printKeyValue("Description", valueOrDash(p.Description))
	if p.Image != "" {
		printKeyValue("Image", StyleLink.Render(p.Image))
	} else {
		printKeyValue("Image", "—")
	}
	printNewline()
	printNextStep("Add as bookmark", fmt.Sprintf("%s cards add --url %q --title %q", appName, p.URL, p.Title))
	return nil
}

func valueOrDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
