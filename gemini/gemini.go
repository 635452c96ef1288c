// Package gemini provides embeddings and token counting backed by the
// Google Gemini API.
package gemini

// Default model names.
const (
	DefaultEmbeddingModel = "gemini-embedding-001"
	DefaultTokenizerModel = "gemini-2.0-flash"
)

// Task types sent with embedding requests.
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// MaxBatchSize is the largest number of texts embedded per request.
const MaxBatchSize = 100
