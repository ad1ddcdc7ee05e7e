// Package service provides application services that orchestrate the AI
// pipeline over the domain stores and model providers.
package service

import "errors"

// Error taxonomy for the AI pipeline. NotFound lives in domain/report and
// invalid model output in domain/plan; these cover the model and store call
// failures the services themselves introduce.
var (
	// ErrEmbedding indicates the embedding model call failed or returned
	// malformed output.
	ErrEmbedding = errors.New("embedding model call failed")

	// ErrRetrieval indicates the embedding store search failed.
	ErrRetrieval = errors.New("embedding store search failed")

	// ErrGeneration indicates the chat model call failed before producing
	// any output.
	ErrGeneration = errors.New("chat model call failed")
)
