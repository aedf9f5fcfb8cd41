// Package cli implements the withstain command-line interface.
//
// The commands render post and site share images, keep post front matter
// pointing at the generated files, check the tag registry and run the
// newsletter server. All of them read the same optional withstain.toml
// (see --config) and log through one charmbracelet/log logger; --verbose
// lowers the level to debug.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/withstain/sitekit"
	"github.com/withstain/sitekit/render"
)

const appName = "withstain"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out        io.Writer
	configPath string
	verbose    bool
	cfg        sitekit.Config
}

// New creates a CLI that prints results to out and logs to logs.
func New(out, logs io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(logs, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		out: out,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Withstain site toolkit",
		Long:          `withstain renders branded share images for blog posts, keeps post front matter in sync with them, checks the tag registry and serves the newsletter API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cfg, err := sitekit.LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default "+sitekit.DefaultConfigFile+" if present)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.processCommand())
	root.AddCommand(c.siteCommand())
	root.AddCommand(c.tagsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.subscribersCommand())

	return root
}

// newRenderer builds a renderer from the loaded fonts and brand settings.
func (c *CLI) newRenderer() (*render.Renderer, error) {
	fonts, err := render.LoadFonts(c.cfg.Fonts)
	if err != nil {
		return nil, err
	}
	return render.New(
		render.WithFonts(fonts),
		render.WithBrand(c.cfg.Brand),
		render.WithLogger(c.Logger),
	)
}
