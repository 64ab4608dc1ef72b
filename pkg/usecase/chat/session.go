package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/lore/pkg/model"
	"github.com/m-mizutani/lore/pkg/usecase/match"
	"github.com/m-mizutani/lore/pkg/utils/logging"
)

const (
	msgGreeting   = `Bot: Enter a topic you'd like to learn about or type "quit" to terminate the program`
	msgUnknown    = "Bot: I don't know anything on the subject. Would you like me to research it?"
	msgFound      = "Bot: Here is some information I found:"
	msgLogged     = "Bot: I've logged this information for the next time you ask!"
	msgNotFound   = "Bot: I couldn't find information on that topic."
	promptQuery   = "You: "
	promptConfirm = `Type anything to research or "skip" to skip: `

	cmdQuit = "quit"
	cmdSkip = "skip"

	maxReadFailures = 3
)

// Fetcher looks up a topic in an external reference source
type Fetcher interface {
	Fetch(ctx context.Context, topic string) (string, error)
}

// Store persists the whole knowledge base
type Store interface {
	Save(ctx context.Context, kb *model.KnowledgeBase) error
}

// Prompter shows prompt and reads one line. It returns io.EOF when input is closed.
type Prompter interface {
	Prompt(prompt string) (string, error)
}

// Session answers queries from a knowledge base it owns for its whole lifetime
type Session struct {
	id       model.SessionID
	kb       *model.KnowledgeBase
	store    Store
	fetcher  Fetcher
	prompter Prompter
	w        io.Writer
	onFetch  func() func()
}

// NewInput contains parameters for creating a new chat session
type NewInput struct {
	KnowledgeBase *model.KnowledgeBase
	Store         Store
	Fetcher       Fetcher
	Prompter      Prompter
	Writer        io.Writer

	// OnFetch is called before a reference lookup; the returned func is called after it. Optional.
	OnFetch func() func()
}

func New(input NewInput) *Session {
	kb := input.KnowledgeBase
	if kb == nil {
		kb = &model.KnowledgeBase{}
	}
	w := input.Writer
	if w == nil {
		w = io.Discard
	}

	return &Session{
		id:       model.NewSessionID(),
		kb:       kb,
		store:    input.Store,
		fetcher:  input.Fetcher,
		prompter: input.Prompter,
		w:        w,
		onFetch:  input.OnFetch,
	}
}

// ID returns the identifier used in log records of this session
func (s *Session) ID() model.SessionID {
	return s.id
}

// KnowledgeBase returns the live knowledge base of the session
func (s *Session) KnowledgeBase() *model.KnowledgeBase {
	return s.kb
}

// Ask returns the stored answer of the topic most similar to query
func (s *Session) Ask(ctx context.Context, query string) (string, bool) {
	topic, ok := match.FindBestMatch(query, s.kb.Topics())
	if !ok {
		logging.From(ctx).Debug("no topic matched", "query", query)
		return "", false
	}

	logging.From(ctx).Debug("topic matched", "query", query, "topic", topic)
	return s.kb.Lookup(topic)
}

// Run reads queries until "quit", end of input or cancellation of ctx.
// Failures of a single turn are reported to the user and do not stop the
// loop. Failures are logged at info level, the user already sees them.
func (s *Session) Run(ctx context.Context) error {
	logger := logging.From(ctx).With("session_id", s.id)
	ctx = logging.With(ctx, logger)
	logger.Info("chat session started", "topics", s.kb.Len())

	readFailures := 0
	for {
		if ctx.Err() != nil {
			logger.Info("chat session interrupted")
			return nil
		}

		s.println(msgGreeting)
		input, err := s.prompter.Prompt(promptQuery)
		if err == nil {
			query := strings.TrimSpace(input)
			if strings.EqualFold(query, cmdQuit) {
				logger.Info("chat session finished")
				return nil
			}
			if query == "" {
				readFailures = 0
				continue
			}
			err = s.turn(ctx, query)
		}

		switch {
		case err == nil:
			readFailures = 0
		case errors.Is(err, io.EOF):
			return nil
		default:
			readFailures++
			logger.Info("failed to read input", "error", err, "failures", readFailures)
			s.println("Bot: I couldn't read your input: " + err.Error())
			if readFailures >= maxReadFailures {
				// input is unusable, end as if it was closed
				logger.Error("giving up reading input", "error", err)
				return nil
			}
		}
	}
}

func (s *Session) turn(ctx context.Context, query string) error {
	if answer, ok := s.Ask(ctx, query); ok {
		s.println("Bot: " + answer)
		return nil
	}

	s.println(msgUnknown)
	confirm, err := s.prompter.Prompt(promptConfirm)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		return goerr.Wrap(err, "failed to read confirmation")
	}
	if strings.EqualFold(strings.TrimSpace(confirm), cmdSkip) {
		return nil
	}

	s.enrich(ctx, query)
	return nil
}

// enrich looks up query in the reference source and stores the result.
// Nothing is stored when the lookup fails.
func (s *Session) enrich(ctx context.Context, query string) {
	logger := logging.From(ctx)

	text, err := s.fetch(ctx, query)
	if err != nil {
		logger.Info("failed to fetch reference", "topic", query, "error", err)
		s.println(msgNotFound)
		return
	}

	s.println(msgFound + "\n" + text)

	if err := s.kb.Append(&model.TopicEntry{Topic: query, Answer: text}); err != nil {
		logger.Info("failed to add topic", "topic", query, "error", err)
		s.println("Bot: I couldn't log this information: " + err.Error())
		return
	}

	if err := s.store.Save(ctx, s.kb); err != nil {
		// the entry stays in memory and can be answered until the session ends
		logger.Info("failed to save knowledge base", "topic", query, "error", err)
		s.println("Bot: I couldn't save this information: " + err.Error())
		return
	}

	logger.Info("topic logged", "topic", query, "topics", s.kb.Len())
	s.println(msgLogged)
}

func (s *Session) fetch(ctx context.Context, topic string) (string, error) {
	if s.onFetch != nil {
		done := s.onFetch()
		defer done()
	}

	text, err := s.fetcher.Fetch(ctx, topic)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", goerr.New("empty reference text", goerr.V("topic", topic), goerr.T(model.ErrTagFetch))
	}
	return text, nil
}

func (s *Session) println(msg string) {
	fmt.Fprintln(s.w, msg)
}
