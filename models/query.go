package models

// QueryIntent is what a free-text query asks for. All fields are lower-case;
// Area and City may be empty.
type QueryIntent struct {
	Specialty string `json:"specialty"`
	Area      string `json:"area,omitempty"`
	City      string `json:"city,omitempty"`
	Query     string `json:"query"`
}

// Candidate is a listing URL discovered through a search provider.
type Candidate struct {
	URL   string `json:"url"`
	Score int    `json:"score"`
	Order int    `json:"-"` // discovery position
}

// Page is the result of the page-fetch collaborator. Failures are carried
// in Success/Error rather than returned, so callers can treat them as
// "no data" for that unit of work.
type Page struct {
	URL     string
	Success bool
	Text    string // rendered text (markdown)
	HTML    string // raw markup
	Error   string
}

// FetchOptions tunes a single page fetch.
type FetchOptions struct {
	// WaitSelector is a CSS selector to wait for after load. Best effort:
	// a timeout on the wait does not fail the fetch.
	WaitSelector string

	// Timeout bounds the whole fetch. Zero uses the configured default.
	Timeout int // seconds

	// PostLoadDelay is an extra settle time before the markup is read.
	PostLoadDelay int // milliseconds

	// Browser forces the rod engine; otherwise the dispatcher may answer
	// with the plain HTTP engine.
	Browser bool
}
