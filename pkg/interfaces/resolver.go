package interfaces

import "context"

// LinkResolver turns the raw text of a `[[Link]]` reference into an entity,
// trying progressively looser matches until one succeeds or all are
// exhausted.
type LinkResolver interface {
	// Resolve returns the matched entity's permalink, or ok=false if no
	// step produced a match.
	Resolve(ctx context.Context, linkText string) (permalink string, ok bool, err error)
}
