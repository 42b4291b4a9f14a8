package models

// Page represents the readable content of a scraped how-to page.
type Page struct {
	URL     string         `json:"url"`
	Title   string         `json:"title"`
	Excerpt string         `json:"excerpt,omitempty"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock represents a semantic block of text on a page.
type ContentBlock struct {
	Type string `json:"type"` // e.g., "h2", "p", "li"
	Text string `json:"text"`
}

// Paragraphs returns the text of body blocks (paragraphs and list items),
// skipping headings.
func (p *Page) Paragraphs() []string {
	var out []string
	for _, block := range p.Content {
		switch block.Type {
		case "p", "li":
			out = append(out, block.Text)
		}
	}
	return out
}
