package cli

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	return run(ctx, argv, os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, argv []string, r io.Reader, w, ew io.Writer) *Error {
	cmd := &cli.Command{
		Name:      "lore",
		Usage:     "Answer questions from a self-growing knowledge base",
		Reader:    r,
		Writer:    w,
		ErrWriter: ew,
		Commands: []*cli.Command{
			chatCommand(),
			askCommand(),
			listCommand(),
		},
	}

	// chat is the default command
	if len(argv) == 1 {
		argv = append(argv, "chat")
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
