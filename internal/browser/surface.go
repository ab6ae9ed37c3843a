package browser

import "context"

// Surface is the rendering capability the orchestrator drives: load a URL,
// read or script against the loaded document, report where the surface
// currently is. Exactly one navigation is in flight at a time.
type Surface interface {
	// Navigate loads the URL and waits for the load event.
	Navigate(ctx context.Context, url string) error

	// HTML returns the full markup of the currently loaded document.
	HTML() (string, error)

	// Eval runs a JS function expression ("() => { ... }") against the
	// loaded document, discarding the result.
	Eval(js string) error

	// CurrentURL reports the document URL the surface ended up on, which
	// may differ from the navigated URL after redirects.
	CurrentURL() string

	// Focus brings the surface to the foreground so an external input
	// action lands on it.
	Focus()

	Close() error
}
