package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/lore/pkg/usecase/chat"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var cfg config

	var flags []cli.Flag
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, referenceFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive question answering (default)",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx, c)

			// Initialize dependencies
			store, err := cfg.newStore(ctx)
			if err != nil {
				return err
			}

			kb, err := cfg.loadKnowledgeBase(ctx, store)
			if err != nil {
				return err
			}

			ref, err := cfg.newReference()
			if err != nil {
				return err
			}

			w := c.Root().Writer
			prompter, err := newPrompter(ctx, c.Root().Reader, w)
			if err != nil {
				return err
			}
			defer prompter.Close()

			session := chat.New(chat.NewInput{
				KnowledgeBase: kb,
				Store:         store,
				Fetcher:       ref,
				Prompter:      prompter,
				Writer:        w,
				OnFetch:       progress(w),
			})

			if err := session.Run(ctx); err != nil {
				return goerr.Wrap(err, "chat session failed")
			}
			return nil
		},
	}
}

// progress returns a hook showing a spinner while the reference source is
// queried. Nothing is shown unless w is a terminal.
func progress(w io.Writer) func() func() {
	f, ok := w.(*os.File)
	if !ok || !readline.IsTerminal(int(f.Fd())) {
		return nil
	}

	return func() func() {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(f))
		s.Suffix = " Researching..."
		s.Start()
		return s.Stop
	}
}
