package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/withstain/sitekit/newsletter"
)

func (c *CLI) subscribersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscribers",
		Short: "Inspect and manage newsletter subscribers",
	}

	cmd.AddCommand(c.subscribersListCommand())
	cmd.AddCommand(c.subscribersUnsubscribeCommand())

	return cmd
}

func (c *CLI) openStore() (*newsletter.Store, error) {
	return newsletter.NewStore(c.cfg.Newsletter.DatabasePath)
}

func (c *CLI) subscribersListCommand() *cobra.Command {
	var active bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List subscribers, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var filter newsletter.Filter
			if active {
				no := false
				filter.Unsubscribed = &no
			}
			subs, err := store.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			for _, s := range subs {
				status := "active"
				if s.Unsubscribed {
					status = "unsubscribed"
				}
				c.printKeyValue(s.SubscribedAt, fmt.Sprintf("%s %s", s.Email, styleDim.Render(status)))
			}
			c.printCount("Total", len(subs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&active, "active", false, "only list subscribers who have not unsubscribed")
	return cmd
}

func (c *CLI) subscribersUnsubscribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unsubscribe <email>",
		Short: "Mark a subscriber as unsubscribed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			email := args[0]
			if err := store.Unsubscribe(cmd.Context(), email); err != nil {
				if errors.Is(err, newsletter.ErrNotFound) {
					return fmt.Errorf("no subscriber with email %s", email)
				}
				return err
			}
			c.printSuccess("Unsubscribed %s", email)
			return nil
		},
	}
}
