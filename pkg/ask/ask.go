// Package ask answers free-text DIY questions through a completer.
package ask

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/tucommenceapousser/tutodiy/models"
	"github.com/tucommenceapousser/tutodiy/pkg/llm"
	"github.com/tucommenceapousser/tutodiy/pkg/metrics"
)

const (
	GuidanceMessage = "Veuillez poser une question valide."
	FallbackMessage = "Erreur avec l'assistant. Essayez plus tard."
)

// maxQuestionRunes bounds what is forwarded to the completer.
const maxQuestionRunes = 1000

type Service struct {
	completer llm.Completer
	prompt    string
	timeout   time.Duration
	logger    *slog.Logger
}

type Option func(*Service)

// WithPrompt sets the template; it must contain one %s for the question.
func WithPrompt(tpl string) Option {
	return func(s *Service) {
		if strings.Contains(tpl, "%s") {
			s.prompt = tpl
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(c llm.Completer, opts ...Option) *Service {
	s := &Service{
		completer: c,
		prompt:    models.DefaultAskPrompt,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer always returns a message for the user. Blank questions get
// GuidanceMessage without calling the completer, and any completer failure
// becomes FallbackMessage.
func (s *Service) Answer(ctx context.Context, question string) string {
	question = strings.TrimSpace(question)
	if question == "" {
		metrics.RecordAsk(metrics.OutcomeInvalid)
		return GuidanceMessage
	}
	if r := []rune(question); len(r) > maxQuestionRunes {
		question = string(r[:maxQuestionRunes])
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	answer, err := s.complete(ctx, fmt.Sprintf(s.prompt, question))
	if err != nil {
		metrics.RecordAsk(metrics.OutcomeFallback)
		s.logger.Warn("Question answering failed, serving fallback", "error", err)
		return FallbackMessage
	}
	if answer == "" {
		metrics.RecordAsk(metrics.OutcomeFallback)
		s.logger.Warn("Question answering returned an empty reply, serving fallback")
		return FallbackMessage
	}

	metrics.RecordAsk(metrics.OutcomeSuccess)
	return answer
}

func (s *Service) complete(ctx context.Context, prompt string) (answer string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("completer panicked: %v", r)
		}
	}()
	if s.completer == nil {
		return "", llm.ErrNotConfigured
	}
	answer, err = s.completer.Complete(ctx, prompt)
	return strings.TrimSpace(answer), err
}
