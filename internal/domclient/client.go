// Package domclient defines the capability interface the extraction and
// browser layers program against, so the rest of scoutpool never imports
// chromedp or go-rod directly. internal/browser provides two
// implementations, one per backend.
package domclient

import "context"

// Client is a single live page session. Implementations wrap either a
// chromedp context or a go-rod page.
type Client interface {
	// Navigate loads url and waits for the configured settle conditions.
	Navigate(ctx context.Context, url string) error

	// HTML returns the current rendered document (post-JS).
	HTML(ctx context.Context) (string, error)

	// EvalJS runs an expression and decodes the result into out.
	EvalJS(ctx context.Context, expression string, out interface{}) error

	// Click performs a trusted click on the first element matching
	// selector. A missing element is not an error; callers check
	// existence separately when it matters.
	Click(ctx context.Context, selector string) error

	// ScrollIntoView scrolls the page progressively, used to trigger
	// lazy-loaded product grids before extraction.
	ScrollIntoView(ctx context.Context, steps int) error

	// Title returns the current document title, used by page validators.
	Title(ctx context.Context) (string, error)

	// CurrentURL returns the post-redirect URL.
	CurrentURL(ctx context.Context) (string, error)

	// Close releases the underlying tab/page.
	Close(ctx context.Context) error
}

// Factory creates a new Client bound to one browser backend instance.
type Factory interface {
	NewClient(ctx context.Context) (Client, error)
	// Backend identifies which implementation this factory produces,
	// for logging and recycle-policy decisions.
	Backend() string
}
