package concierge

import "context"

// TokenCounter counts model tokens in text. It is used to report the size
// of an indexed corpus.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
