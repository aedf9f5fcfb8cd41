package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/withstain/sitekit/render"
)

func (c *CLI) siteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "site-og",
		Short: "Render the site-wide Open Graph and Twitter cards",
		Long: `Render og-image.png and twitter-image.png into site_output_dir and copy
og-image.png into site_source_dir so the static site build picks it up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.newRenderer()
			if err != nil {
				return err
			}

			outputs, err := r.RenderSite(cmd.Context(), c.cfg.SiteOutputDir)
			if err != nil {
				return fmt.Errorf("generate site images: %w", err)
			}

			og, _ := render.VariantByName(render.SiteOG)
			src := og.OutputPath(c.cfg.SiteOutputDir, "")
			dst := og.OutputPath(c.cfg.SiteSourceDir, "")
			if err := copyFile(src, dst); err != nil {
				return fmt.Errorf("copy %s: %w", og.Filename, err)
			}

			c.printSuccess("Site images generated")
			for _, out := range outputs {
				c.printFile(fmt.Sprintf("%s (%dx%d)", out.Path, out.Width, out.Height))
			}
			c.printFile(dst + " (copy)")
			return nil
		},
	}
}

func copyFile(src, dst string) error {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
