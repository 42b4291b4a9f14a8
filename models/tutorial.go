package models

// Tutorial is one catalog entry. Steps are ordered; a step's index aligns it
// with its Artifact.
type Tutorial struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Steps       []string `json:"steps" yaml:"steps"`
}

// TutorialSummary is the index-page projection of a Tutorial.
type TutorialSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Summary drops the steps.
func (t Tutorial) Summary() TutorialSummary {
	return TutorialSummary{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
	}
}
