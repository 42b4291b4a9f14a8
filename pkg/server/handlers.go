package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tucommenceapousser/tutodiy/models"
	"github.com/tucommenceapousser/tutodiy/pkg/catalog"
)

const (
	msgTutorialNotFound = "Tutoriel introuvable."
	msgPageNotFound     = "Page introuvable."
	msgInternalError    = "Une erreur est survenue. Veuillez réessayer plus tard."
)

// maxAskBody bounds the POST /ask request body.
const maxAskBody = 64 << 10

type indexView struct {
	Tutorials []models.TutorialSummary
}

type stepView struct {
	Index    int
	Text     string
	Artifact models.Artifact
}

type tutorialView struct {
	ID          string
	Title       string
	Description string
	Steps       []stepView
}

type errorView struct {
	Status  int
	Message string
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	tutorials, err := s.catalog.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list tutorials", "error", err, "request_id", middleware.GetReqID(r.Context()))
		s.renderError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	view := indexView{Tutorials: make([]models.TutorialSummary, 0, len(tutorials))}
	for _, t := range tutorials {
		view.Tutorials = append(view.Tutorials, t.Summary())
	}
	s.render(w, http.StatusOK, "index.html", view)
}

func (s *Server) handleTutorial(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	t, err := s.catalog.Find(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		s.renderError(w, http.StatusNotFound, msgTutorialNotFound)
		return
	}
	if err != nil {
		s.logger.Error("failed to look up tutorial", "tutorial_id", id, "error", err)
		s.renderError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	artifacts := s.enricher.Enrich(ctx, t.Steps)

	view, err := assemble(t, artifacts)
	if err != nil {
		s.logger.Error("failed to assemble tutorial page", "tutorial_id", id, "error", err)
		s.renderError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	s.render(w, http.StatusOK, "tutorial.html", view)
}

// assemble pairs each step with its artifact.
func assemble(t models.Tutorial, artifacts []models.Artifact) (tutorialView, error) {
	if len(artifacts) != len(t.Steps) {
		return tutorialView{}, fmt.Errorf("got %d artifacts for %d steps", len(artifacts), len(t.Steps))
	}
	view := tutorialView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Steps:       make([]stepView, len(t.Steps)),
	}
	for i, step := range t.Steps {
		view.Steps[i] = stepView{Index: i, Text: step, Artifact: artifacts[i]}
	}
	return view, nil
}

// handleAsk accepts {"question": "..."} as JSON or a form field and always
// answers 200 with {"answer": "..."}.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAskBody)

	var question string
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		question = r.FormValue("question")
	default:
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.logger.Debug("unreadable ask body", "error", err)
		}
		question = req.Question
	}

	writeJSON(w, http.StatusOK, askResponse{Answer: s.asker.Answer(r.Context(), question)})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, http.StatusNotFound, msgPageNotFound)
}

// render executes name into a buffer so a failing template never produces a
// partial page.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("failed to render page", "template", name, "error", err)
		if name != "error.html" {
			s.renderError(w, http.StatusInternalServerError, msgInternalError)
			return
		}
		http.Error(w, msgInternalError, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, status int, message string) {
	s.render(w, status, "error.html", errorView{Status: status, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
