package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/withstain/sitekit/tags"
)

func (c *CLI) tagsCommand() *cobra.Command {
	var fix, strict bool

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Check post tags against the topic registry",
		Long: `Compare the tags used in post front matter with the topic registry
(tags.registry, default src/_data/topicsMeta.json). Missing tags are
reported with a suggestion when a registered tag is a likely typo;
--fix adds them to the registry with a default display name and
description.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			check := tags.Check
			if fix {
				check = tags.Fix
			}
			report, err := check(c.cfg.PostsDir, c.cfg.Tags.Registry)
			if err != nil {
				return err
			}
			c.printTagReport(report, fix)
			if strict && len(report.Missing) > len(report.Added) {
				return errors.New("posts use unregistered tags")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "add missing tags to the registry")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when posts use unregistered tags")
	return cmd
}

func (c *CLI) printTagReport(r tags.Report, fixed bool) {
	c.printTitle("Checking tags")
	c.printCount("Posts", r.Posts)
	c.printCount("Tags in use", r.InUse)
	c.printCount("Registered", r.Registered)
	c.printNewline()

	for _, w := range r.Warnings {
		c.printWarning("%s", w)
	}

	if len(r.Missing) > 0 {
		c.printError("Tags used in posts but missing from the registry:")
		for _, m := range r.Missing {
			line := fmt.Sprintf("%s (%d post%s)", m.Tag, m.Count, plural(m.Count))
			if m.Suggestion != "" {
				line += styleDim.Render(fmt.Sprintf("  did you mean %q?", m.Suggestion))
			}
			c.printBullet("%s", line)
		}
		c.printNewline()

		if fixed {
			c.printSuccess("Added %d tag(s) to the registry", len(r.Added))
			c.printDetail("Update the descriptions to customize them")
		} else {
			c.printInfo("Add these to the registry, or run with --fix:")
			for _, m := range r.Missing {
				e := tags.NewEntry(m.Tag)
				c.printSnippet(
					fmt.Sprintf("%q: {", m.Tag),
					fmt.Sprintf("  \"display\": %q,", e.Display),
					fmt.Sprintf("  \"description\": %q", e.Description),
					"},",
				)
			}
		}
		c.printNewline()
	}

	if len(r.Unused) > 0 {
		c.printInfo("Tags registered but not used in any posts:")
		for _, u := range r.Unused {
			c.printBullet("%s (%s)", u.Tag, u.Display)
		}
		c.printDetail("These tags will show empty topic pages until posts are added")
		c.printNewline()
	}

	if r.OK() {
		c.printSuccess("All tags are properly registered")
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
