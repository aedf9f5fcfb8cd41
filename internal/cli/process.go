package cli

import (
	"github.com/spf13/cobra"

	"github.com/withstain/sitekit"
)

func (c *CLI) processCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Generate missing images for every post and update front matter",
		Long: `Scan the posts directory for posts without generated images, render them
from {sources_dir}/{slug}.{jpg,jpeg,png,webp} and write the image paths
into each post's front matter. With --watch, keep running and process
again whenever a post or source image changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.newRenderer()
			if err != nil {
				return err
			}
			p := sitekit.NewProcessor(c.cfg, r, c.Logger)
			if watch {
				return p.Watch(cmd.Context())
			}

			prog := newProgress(c.Logger)
			report, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}
			prog.done("Processing complete")
			c.printReport(report)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "watch posts and source images for changes")
	return cmd
}

func (c *CLI) printReport(r sitekit.Report) {
	c.printTitle("Summary")
	c.printCount("Posts", r.Total)
	c.printCount("Processed", r.Processed)
	c.printCount("Skipped", r.Skipped)
	c.printCount("Errors", r.Errors)
	if r.Errors > 0 {
		c.printWarning("%d post(s) failed; see the log above", r.Errors)
	}
}
