package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals a malformed caller request.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidCatalog signals catalog input that cannot produce documents.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrDuplicateDocumentID signals two documents sharing an id in one rebuild.
	ErrDuplicateDocumentID = errors.New("duplicate document id")

	// ErrIndexUnavailable signals that the vector index cannot be opened, created or queried.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRateLimited signals a transient provider rejection that is worth retrying.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingInvalidInput signals a permanent provider rejection of the input.
	ErrEmbeddingInvalidInput = errors.New("embedding input rejected")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")

	// ErrExtractionFailed signals that free text could not be turned into filters.
	ErrExtractionFailed = errors.New("filter extraction failed")
)

// IsRetryable reports whether err is a transient failure worth retrying with backoff.
// Permanent provider rejections are never retryable even if they also carry a provider error.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrEmbeddingInvalidInput) || errors.Is(err, ErrInvalidRequest) {
		return false
	}
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrEmbeddingProviderError)
}
