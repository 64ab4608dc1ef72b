package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/lore/pkg/adapter"
	"github.com/m-mizutani/lore/pkg/model"
	"gopkg.in/yaml.v3"
)

// KnowledgeStore loads and persists a whole KnowledgeBase as one object
type KnowledgeStore struct {
	storage adapter.Storage
	key     string
	codec   codec
}

// New creates a KnowledgeStore. The object format is selected by the key
// extension: .yaml and .yml are YAML, everything else is JSON.
func New(storage adapter.Storage, key string) *KnowledgeStore {
	return &KnowledgeStore{
		storage: storage,
		key:     key,
		codec:   codecFor(key),
	}
}

// Key returns the object key of the knowledge base
func (s *KnowledgeStore) Key() string {
	return s.key
}

// Load reads and decodes the whole knowledge base
func (s *KnowledgeStore) Load(ctx context.Context) (*model.KnowledgeBase, error) {
	r, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open knowledge base", goerr.V("key", s.key))
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read knowledge base", goerr.V("key", s.key))
	}

	kb, err := s.codec.decode(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode knowledge base",
			goerr.V("key", s.key),
			goerr.T(model.ErrTagFormat))
	}

	return kb, nil
}

// Save encodes the whole knowledge base and overwrites the stored object
func (s *KnowledgeStore) Save(ctx context.Context, kb *model.KnowledgeBase) error {
	data, err := s.codec.encode(kb)
	if err != nil {
		return goerr.Wrap(err, "failed to encode knowledge base",
			goerr.V("key", s.key),
			goerr.T(model.ErrTagWrite))
	}

	w, err := s.storage.Put(ctx, s.key)
	if err != nil {
		return goerr.Wrap(err, "failed to open knowledge base for writing",
			goerr.V("key", s.key),
			goerr.T(model.ErrTagWrite))
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write knowledge base",
			goerr.V("key", s.key),
			goerr.T(model.ErrTagWrite))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to commit knowledge base",
			goerr.V("key", s.key),
			goerr.T(model.ErrTagWrite))
	}

	return nil
}

type codec interface {
	encode(kb *model.KnowledgeBase) ([]byte, error)
	decode(data []byte) (*model.KnowledgeBase, error)
}

func codecFor(key string) codec {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".yaml", ".yml":
		return yamlCodec{}
	default:
		return jsonCodec{}
	}
}

// rawKnowledgeBase distinguishes a missing "topics" field from an empty one
type rawKnowledgeBase struct {
	Topics *[]*model.TopicEntry `json:"topics" yaml:"topics"`
}

func (x rawKnowledgeBase) validate() (*model.KnowledgeBase, error) {
	if x.Topics == nil {
		return nil, goerr.New("topics field is missing")
	}

	for i, entry := range *x.Topics {
		if entry == nil {
			return nil, goerr.New("topic entry is null", goerr.V("index", i))
		}
		if err := entry.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid topic entry", goerr.V("index", i))
		}
	}

	return &model.KnowledgeBase{Entries: *x.Topics}, nil
}

type jsonCodec struct{}

func (jsonCodec) encode(kb *model.KnowledgeBase) ([]byte, error) {
	out := kb
	if kb.Entries == nil {
		out = &model.KnowledgeBase{Entries: []*model.TopicEntry{}}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, goerr.Wrap(err, "failed to marshal JSON")
	}
	return buf.Bytes(), nil
}

func (jsonCodec) decode(data []byte) (*model.KnowledgeBase, error) {
	var raw rawKnowledgeBase
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, goerr.Wrap(err, "failed to parse JSON")
	}
	return raw.validate()
}

type yamlCodec struct{}

func (yamlCodec) encode(kb *model.KnowledgeBase) ([]byte, error) {
	out := kb
	if kb.Entries == nil {
		out = &model.KnowledgeBase{Entries: []*model.TopicEntry{}}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return nil, goerr.Wrap(err, "failed to marshal YAML")
	}
	if err := enc.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to flush YAML")
	}
	return buf.Bytes(), nil
}

func (yamlCodec) decode(data []byte) (*model.KnowledgeBase, error) {
	var raw rawKnowledgeBase
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, goerr.Wrap(err, "failed to parse YAML")
	}
	return raw.validate()
}
