package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
)

type prompter interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// newPrompter uses line editing when r is a terminal and plain line reading
// otherwise. A plain read blocked on input is abandoned when ctx is done.
func newPrompter(ctx context.Context, r io.Reader, w io.Writer) (prompter, error) {
	if f, ok := r.(*os.File); ok && readline.IsTerminal(int(f.Fd())) {
		rl, err := readline.NewEx(&readline.Config{
			Stdout:          w,
			InterruptPrompt: "^C",
			EOFPrompt:       "quit",
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize readline")
		}
		return &readlinePrompter{rl: rl}, nil
	}

	return &linePrompter{ctx: ctx, reader: bufio.NewReader(r), w: w}, nil
}

type readlinePrompter struct {
	rl *readline.Instance
}

func (x *readlinePrompter) Prompt(prompt string) (string, error) {
	x.rl.SetPrompt(prompt)
	line, err := x.rl.Readline()
	if err != nil {
		// Ctrl-C and Ctrl-D both end the session
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", goerr.Wrap(err, "failed to read line")
	}
	return line, nil
}

func (x *readlinePrompter) Close() error {
	return x.rl.Close()
}

type readResult struct {
	line string
	err  error
}

// linePrompter reads lines of any length. Reads run in a goroutine so that
// cancellation of ctx is noticed while waiting for input.
type linePrompter struct {
	ctx     context.Context
	reader  *bufio.Reader
	w       io.Writer
	pending chan readResult
}

func (x *linePrompter) Prompt(prompt string) (string, error) {
	fmt.Fprint(x.w, prompt)

	// only one read is in flight at a time
	if x.pending == nil {
		ch := make(chan readResult, 1)
		go func() {
			line, err := readLine(x.reader)
			ch <- readResult{line: line, err: err}
		}()
		x.pending = ch
	}

	select {
	case <-x.ctx.Done():
		return "", io.EOF
	case res := <-x.pending:
		x.pending = nil
		return res.line, res.err
	}
}

func (x *linePrompter) Close() error {
	return nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", io.EOF
			}
			// last line without newline
			return strings.TrimRight(line, "\r"), nil
		}
		return "", goerr.Wrap(err, "failed to read line")
	}
	return strings.TrimRight(line, "\r\n"), nil
}
