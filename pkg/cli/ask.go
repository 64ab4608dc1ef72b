package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/lore/pkg/usecase/chat"
	"github.com/urfave/cli/v3"
)

func askCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "ask",
		Usage:     "Answer one query from the knowledge base without research",
		ArgsUsage: "<query>",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if query == "" {
				return goerr.New("query is required")
			}

			ctx = cfg.setupLogger(ctx, c)

			store, err := cfg.newStore(ctx)
			if err != nil {
				return err
			}

			kb, err := cfg.loadKnowledgeBase(ctx, store)
			if err != nil {
				return err
			}

			session := chat.New(chat.NewInput{KnowledgeBase: kb})
			answer, ok := session.Ask(ctx, query)
			if !ok {
				return goerr.New("no matching topic", goerr.V("query", query))
			}

			fmt.Fprintln(c.Root().Writer, answer)
			return nil
		},
	}
}
