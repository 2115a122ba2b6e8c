package ai

import "context"

type Client interface {
	Summarize(ctx context.Context, report string, payload []byte) (string, error)
}
