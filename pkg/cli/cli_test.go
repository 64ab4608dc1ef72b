package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
)

const pythonBase = `{
  "topics": [
    {"topic": "python", "answer": "A programming language."}
  ]
}`

func writeKB(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "knowledgeBase.json")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func runCLI(t *testing.T, input string, args ...string) (string, *Error) {
	var out, errOut bytes.Buffer
	argv := append([]string{"lore"}, args...)
	err := run(context.Background(), argv, strings.NewReader(input), &out, &errOut)
	return out.String(), err
}

func requireNoError(t *testing.T, err *Error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Message)
	}
}

func TestChatHit(t *testing.T) {
	path := writeKB(t, pythonBase)

	out, err := runCLI(t, "pythom\nQUIT\n", "chat", "--kb", path)
	requireNoError(t, err)
	gt.S(t, out).Contains(`Bot: Enter a topic you'd like to learn about or type "quit" to terminate the program`)
	gt.S(t, out).Contains("You: Bot: A programming language.")
}

func TestChatEnrich(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wiki/oxygen" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`<html><body><div id="mw-content-text"><p>Oxygen is a chemical element.</p></div></body></html>`))
	}))
	defer srv.Close()

	path := writeKB(t, pythonBase)

	out, err := runCLI(t, "oxygen\nyes\nzinc\ngo\nquit\n",
		"chat", "--kb", path, "--base-url", srv.URL+"/wiki/")
	requireNoError(t, err)
	gt.S(t, out).Contains("Bot: Here is some information I found:\nOxygen is a chemical element.")
	gt.S(t, out).Contains("Bot: I've logged this information for the next time you ask!")
	gt.S(t, out).Contains("Bot: I couldn't find information on that topic.")

	data, rErr := os.ReadFile(path)
	gt.NoError(t, rErr)
	saved := string(data)
	gt.S(t, saved).Contains(`"topic": "oxygen"`)
	gt.S(t, saved).NotContains("zinc")
	gt.True(t, strings.Index(saved, `"python"`) < strings.Index(saved, `"oxygen"`))
}

func TestChatSkipDoesNotWrite(t *testing.T) {
	path := writeKB(t, pythonBase)
	_, err := runCLI(t, "oxygen\nskip\nquit\n", "chat", "--kb", path)
	requireNoError(t, err)

	data, rErr := os.ReadFile(path)
	gt.NoError(t, rErr)
	gt.Equal(t, string(data), pythonBase)
}

func TestChatMissingKnowledgeBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	_, err := runCLI(t, "quit\n", "chat", "--kb", path)
	gt.True(t, err != nil)
	gt.Equal(t, err.Code, 1)
}

func TestChatBrokenKnowledgeBase(t *testing.T) {
	path := writeKB(t, `{"topics": `)

	_, err := runCLI(t, "quit\n", "chat", "--kb", path)
	gt.True(t, err != nil)
	gt.Equal(t, err.Code, 1)
}

func TestChatInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.yaml")

	out, err := runCLI(t, "python\nskip\nquit\n", "chat", "--kb", path, "--init")
	requireNoError(t, err)
	gt.S(t, out).Contains("I don't know anything on the subject")

	// nothing was learned, so nothing was written
	_, sErr := os.Stat(path)
	gt.True(t, os.IsNotExist(sErr))
}

func TestAsk(t *testing.T) {
	path := writeKB(t, pythonBase)

	out, err := runCLI(t, "", "ask", "--kb", path, "pyton")
	requireNoError(t, err)
	gt.Equal(t, out, "A programming language.\n")

	_, err = runCLI(t, "", "ask", "--kb", path, "oxygen")
	gt.True(t, err != nil)
	gt.S(t, err.Message).Contains("no matching topic")
}

func TestList(t *testing.T) {
	path := writeKB(t, `{"topics": [
  {"topic": "python", "answer": "a"},
  {"topic": "oxygen", "answer": "b"}
]}`)

	out, err := runCLI(t, "", "list", "--kb", path)
	requireNoError(t, err)
	gt.Equal(t, out, "python\noxygen\n")
}

func TestChatLongLine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	path := writeKB(t, pythonBase)
	long := strings.Repeat("x", 70*1024)

	out, err := runCLI(t, long+"\nskip\npython\nquit\n",
		"chat", "--kb", path, "--base-url", srv.URL+"/")
	requireNoError(t, err)
	gt.S(t, out).Contains("Bot: I don't know anything on the subject.")
	gt.S(t, out).Contains("Bot: A programming language.")
}

func TestChatLastLineWithoutNewline(t *testing.T) {
	path := writeKB(t, pythonBase)

	out, err := runCLI(t, "python", "chat", "--kb", path)
	requireNoError(t, err)
	gt.S(t, out).Contains("Bot: A programming language.")
}

func TestPrompterCanceledWhileWaiting(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	p, err := newPrompter(ctx, pr, io.Discard)
	gt.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err = p.Prompt("You: ")
	gt.Equal(t, err, io.EOF)
}

func TestPrompterReadsLines(t *testing.T) {
	var out bytes.Buffer
	p, err := newPrompter(context.Background(), strings.NewReader("first\r\nsecond\n"), &out)
	gt.NoError(t, err)

	line, err := p.Prompt("A: ")
	gt.NoError(t, err)
	gt.Equal(t, line, "first")

	line, err = p.Prompt("B: ")
	gt.NoError(t, err)
	gt.Equal(t, line, "second")

	_, err = p.Prompt("C: ")
	gt.Equal(t, err, io.EOF)
	gt.Equal(t, out.String(), "A: B: C: ")
}
