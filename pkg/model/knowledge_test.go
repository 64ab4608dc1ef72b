package model_test

import (
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/lore/pkg/model"
)

func TestKnowledgeBaseAppend(t *testing.T) {
	kb := &model.KnowledgeBase{}

	gt.NoError(t, kb.Append(&model.TopicEntry{Topic: "python", Answer: "A programming language."}))
	gt.NoError(t, kb.Append(&model.TopicEntry{Topic: "oxygen", Answer: "Oxygen is a chemical element."}))

	gt.Equal(t, kb.Len(), 2)
	gt.A(t, kb.Topics()).Length(2)
	gt.Equal(t, kb.Topics()[0], "python")
	gt.Equal(t, kb.Topics()[1], "oxygen")

	answer, ok := kb.Lookup("oxygen")
	gt.True(t, ok)
	gt.Equal(t, answer, "Oxygen is a chemical element.")
}

func TestKnowledgeBaseAppendDuplicate(t *testing.T) {
	kb := &model.KnowledgeBase{}
	gt.NoError(t, kb.Append(&model.TopicEntry{Topic: "python", Answer: "first"}))

	err := kb.Append(&model.TopicEntry{Topic: "python", Answer: "second"})
	gt.Error(t, err).Required()
	gt.True(t, goerr.HasTag(err, model.ErrTagDuplicateTopic))

	answer, ok := kb.Lookup("python")
	gt.True(t, ok)
	gt.Equal(t, answer, "first")
	gt.Equal(t, kb.Len(), 1)
}

func TestKnowledgeBaseAppendInvalid(t *testing.T) {
	testCases := []struct {
		name  string
		entry model.TopicEntry
	}{
		{"empty topic", model.TopicEntry{Topic: "", Answer: "something"}},
		{"empty answer", model.TopicEntry{Topic: "python", Answer: ""}},
		{"blank answer", model.TopicEntry{Topic: "python", Answer: " \n\t"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			kb := &model.KnowledgeBase{}
			gt.Error(t, kb.Append(&tc.entry))
			gt.Equal(t, kb.Len(), 0)
		})
	}
}

func TestKnowledgeBaseLookupIsCaseSensitive(t *testing.T) {
	kb := &model.KnowledgeBase{}
	gt.NoError(t, kb.Append(&model.TopicEntry{Topic: "Python", Answer: "A programming language."}))

	_, ok := kb.Lookup("python")
	gt.False(t, ok)
}

func TestNewSessionID(t *testing.T) {
	a := model.NewSessionID()
	b := model.NewSessionID()
	gt.NotEqual(t, a, b)
	gt.NotEqual(t, string(a), "")
}
