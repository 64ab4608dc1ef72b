package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func listCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "list",
		Usage: "List known topics in insertion order",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx, c)

			store, err := cfg.newStore(ctx)
			if err != nil {
				return err
			}

			kb, err := cfg.loadKnowledgeBase(ctx, store)
			if err != nil {
				return err
			}

			if kb.Len() == 0 {
				fmt.Fprintln(c.Root().Writer, "No topics found")
				return nil
			}

			for _, topic := range kb.Topics() {
				fmt.Fprintln(c.Root().Writer, topic)
			}
			return nil
		},
	}
}
