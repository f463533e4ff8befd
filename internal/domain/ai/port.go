package ai

import "context"

// Client sends one user-role prompt to a completion service and returns the
// first choice's message content.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
