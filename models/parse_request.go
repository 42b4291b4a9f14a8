package models

// ParseRequest is the input to the step-page parser.
type ParseRequest struct {
	URL  string
	HTML string

	// MaxBlocks caps the number of content blocks kept; zero keeps all.
	MaxBlocks int `json:"max_blocks,omitempty"`
}
