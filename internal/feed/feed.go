// Package feed pulls new submissions from the communities being monitored.
package feed

import (
	"context"

	"leadscout/internal/model"
)

// Feed returns the newest posts across the given subreddits.
type Feed interface {
	FetchNew(ctx context.Context, subreddits []string, limit int) ([]model.Post, error)
}
