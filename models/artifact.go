package models

// ArtifactKind tells a template how to render an Artifact.
type ArtifactKind string

const (
	// ArtifactUnavailable is the sentinel kind for a failed acquisition.
	ArtifactUnavailable ArtifactKind = "unavailable"
	ArtifactImage       ArtifactKind = "image"
	ArtifactText        ArtifactKind = "text"
)

// Artifact is the auxiliary content attached to one tutorial step.
type Artifact struct {
	Kind ArtifactKind `json:"kind"`
	URL  string       `json:"url,omitempty"`
	Text string       `json:"text,omitempty"`
	// Source names the backend or page the artifact came from.
	Source string `json:"source,omitempty"`
}

// Unavailable returns the sentinel Artifact.
func Unavailable() Artifact {
	return Artifact{Kind: ArtifactUnavailable}
}

func ImageArtifact(url string) Artifact {
	return Artifact{Kind: ArtifactImage, URL: url}
}

func TextArtifact(text, source string) Artifact {
	return Artifact{Kind: ArtifactText, Text: text, Source: source}
}

// Available reports whether the artifact carries content.
func (a Artifact) Available() bool {
	switch a.Kind {
	case ArtifactImage:
		return a.URL != ""
	case ArtifactText:
		return a.Text != ""
	default:
		return false
	}
}

func (a Artifact) IsImage() bool { return a.Kind == ArtifactImage && a.URL != "" }
func (a Artifact) IsText() bool  { return a.Kind == ArtifactText && a.Text != "" }
