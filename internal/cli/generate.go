package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/withstain/sitekit"
	"github.com/withstain/sitekit/render"
)

func (c *CLI) generateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <input-image> <post-title> [output-dir] [slug]",
		Short: "Render the thumbnail, hero and share cards for one post",
		Long: `Render the four post images from one source photo.

The output directory defaults to the configured output_dir
(src/images/posts) and the slug to the slugified title.`,
		Example: `  withstain generate source.jpg "Health Optimization" src/images/posts my-slug`,
		Args:    cobra.RangeArgs(2, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), args)
		},
	}
}

func (c *CLI) runGenerate(ctx context.Context, args []string) error {
	input, title := args[0], args[1]
	outDir := c.cfg.OutputDir
	if len(args) > 2 && args[2] != "" {
		outDir = args[2]
	}
	slug := sitekit.Slugify(title)
	if len(args) > 3 && args[3] != "" {
		slug = args[3]
	}

	if _, err := os.Stat(input); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("input image not found: %s", input)
		}
		return err
	}
	if _, err := os.Stat(outDir); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		c.printInfo("Created directory: %s", outDir)
	}

	r, err := c.newRenderer()
	if err != nil {
		return err
	}

	c.printTitle("Generating images")
	c.printKeyValue("Input", input)
	c.printKeyValue("Title", title)
	c.printKeyValue("Slug", slug)
	c.printKeyValue("Output", outDir)
	c.printNewline()

	prog := newProgress(c.Logger)
	outputs, err := r.Render(ctx, render.Request{
		SourcePath: input,
		Title:      title,
		OutputDir:  outDir,
		Slug:       slug,
	})
	if err != nil {
		return fmt.Errorf("generate images: %w", err)
	}
	prog.done(fmt.Sprintf("Rendered %d images", len(outputs)))

	c.printSuccess("All images generated")
	for _, out := range outputs {
		c.printFile(fmt.Sprintf("%-10s %s (%dx%d)", out.Variant, out.Path, out.Width, out.Height))
	}
	c.printNewline()
	c.printInfo("Add to the post front matter:")
	c.printSnippet(frontMatterSnippet(c.cfg.PublicPrefix, title, slug)...)
	return nil
}

// frontMatterSnippet returns the front matter lines pointing at a post's
// generated images.
func frontMatterSnippet(prefix, title, slug string) []string {
	path := func(name string) string {
		v, _ := render.VariantByName(name)
		return sitekit.PublicPath(prefix, v.OutputName(slug))
	}
	return []string{
		"---",
		fmt.Sprintf("title: %q", title),
		fmt.Sprintf("image: %q", path(render.Hero)),
		fmt.Sprintf("ogImage: %q", path(render.OpenGraph)),
		fmt.Sprintf("twitterImage: %q", path(render.Twitter)),
		"---",
	}
}
