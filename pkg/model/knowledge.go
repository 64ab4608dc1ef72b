package model

import (
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type SessionID string

// NewSessionID generates a new unique SessionID
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

// TopicEntry is a pair of topic and its answer
type TopicEntry struct {
	Topic  string `json:"topic" yaml:"topic"`
	Answer string `json:"answer" yaml:"answer"`
}

// Validate checks if the entry can be persisted
func (e *TopicEntry) Validate() error {
	if e.Topic == "" {
		return goerr.New("topic is empty")
	}
	if strings.TrimSpace(e.Answer) == "" {
		return goerr.New("answer is empty", goerr.V("topic", e.Topic))
	}
	return nil
}

// KnowledgeBase holds topic entries in insertion order
type KnowledgeBase struct {
	Entries []*TopicEntry `json:"topics" yaml:"topics"`
}

// Topics returns all topic strings in insertion order
func (kb *KnowledgeBase) Topics() []string {
	topics := make([]string, 0, len(kb.Entries))
	for _, e := range kb.Entries {
		topics = append(topics, e.Topic)
	}
	return topics
}

// Lookup returns the answer of the first entry with exactly the same topic
func (kb *KnowledgeBase) Lookup(topic string) (string, bool) {
	for _, e := range kb.Entries {
		if e.Topic == topic {
			return e.Answer, true
		}
	}
	return "", false
}

// Append adds a new entry at the end. An already known topic is rejected,
// existing entries are never replaced.
func (kb *KnowledgeBase) Append(entry *TopicEntry) error {
	if err := entry.Validate(); err != nil {
		return goerr.Wrap(err, "invalid topic entry")
	}
	if _, ok := kb.Lookup(entry.Topic); ok {
		return goerr.New("topic already exists",
			goerr.V("topic", entry.Topic),
			goerr.T(ErrTagDuplicateTopic))
	}

	kb.Entries = append(kb.Entries, entry)
	return nil
}

// Len returns the number of entries
func (kb *KnowledgeBase) Len() int {
	return len(kb.Entries)
}
