package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrTagNotFound is attached when the knowledge base does not exist
	ErrTagNotFound = goerr.NewTag("not_found")
	// ErrTagFormat is attached when persisted data can not be decoded
	ErrTagFormat = goerr.NewTag("format")
	// ErrTagWrite is attached when the knowledge base can not be persisted
	ErrTagWrite = goerr.NewTag("write")
	// ErrTagFetch is attached when the reference source has no usable answer
	ErrTagFetch = goerr.NewTag("fetch")
	// ErrTagDuplicateTopic is attached when appending an already known topic
	ErrTagDuplicateTopic = goerr.NewTag("duplicate_topic")
)
