package retriever

import "errors"

var (
	// ErrPaperRepositoryRequired is returned when a paper repository is not provided.
	ErrPaperRepositoryRequired = errors.New("paper repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrMissingColumns is returned when the input CSV lacks a required header.
	ErrMissingColumns = errors.New("csv missing required columns pmid, title, abstract")

	// ErrNoDocuments is returned when an index build finds no usable rows.
	ErrNoDocuments = errors.New("no valid documents extracted from csv")
)
