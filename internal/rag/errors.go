package rag

import "errors"

// Sentinel errors for the retrieval pipeline. Callers match them with
// errors.Is; wrapped variants carry the underlying cause.
var (
	// ErrNotFound indicates a source file that does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrParse indicates source data that could not be decoded.
	ErrParse = errors.New("document parse failed")
	// ErrMissingField indicates a catalog record with an empty required field.
	ErrMissingField = errors.New("catalog record missing required field")
	// ErrEmbeddingService indicates an embedding call that failed after retries.
	ErrEmbeddingService = errors.New("embedding service failed")
	// ErrGeneration indicates a text-generation call that failed.
	ErrGeneration = errors.New("generation service failed")
	// ErrInvalidSearchConfig indicates bad search parameters (e.g. fetchK < k).
	ErrInvalidSearchConfig = errors.New("invalid search configuration")
)
