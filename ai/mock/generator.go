package mock

import (
	"context"
	"errors"
)

// ErrGeneratorUnavailable is the default error returned by a failing mock generator.
var ErrGeneratorUnavailable = errors.New("mock generator unavailable")

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// CompleteFunc is called by Complete if set.
	// If nil, Response and Err control the result.
	CompleteFunc func(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)

	// Response is returned by Complete when CompleteFunc is nil.
	Response string

	// Err is returned by Complete when CompleteFunc is nil and Err is set.
	Err error

	callCount int

	// LastSystemPrompt and LastUserPrompt record the most recent invocation
	// for prompt-content assertions.
	LastSystemPrompt string
	LastUserPrompt   string
}

// NewMockGenerator creates a mock generator returning the given canned response.
func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{Response: response}
}

// NewFailingGenerator creates a mock generator that always errors.
func NewFailingGenerator() *MockGenerator {
	return &MockGenerator{Err: ErrGeneratorUnavailable}
}

// Complete returns the injected behavior, canned response or error.
func (m *MockGenerator) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	m.callCount++
	m.LastSystemPrompt = systemPrompt
	m.LastUserPrompt = userPrompt

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemPrompt, userPrompt, temperature)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}
