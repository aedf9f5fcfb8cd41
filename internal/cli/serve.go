package cli

import (
	"github.com/spf13/cobra"

	"github.com/withstain/sitekit/newsletter"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the newsletter API server",
		Long: `Serve POST /api/subscribe and GET /api/subscribers until interrupted.

Secrets are read from the environment (or .env): ADMIN_API_KEY protects
the export endpoint; RESEND_API_KEY together with NOTIFICATION_EMAIL
enables a notification email for every signup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg.Newsletter
			if addr != "" {
				cfg.Addr = addr
			}
			app, err := newsletter.New(cfg, newsletter.WithLogger(c.Logger))
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Start(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides newsletter.addr)")
	return cmd
}
