package triage

import (
	"context"
	"fmt"

	logx "symptom-triage-api/pkg/logger"
)

// Service runs the triage pipeline for one request: context
// reconstruction, symptom extraction, ranking and response composition.
type Service interface {
	Analyze(ctx context.Context, message string, history []ChatTurn) (*ResponsePayload, error)
	Symptoms() []string
}

type service struct {
	kb       *KnowledgeBase
	composer *Composer
}

func NewService(kb *KnowledgeBase, generator Generator) Service {
	return &service{
		kb:       kb,
		composer: NewComposer(kb, generator),
	}
}

// Analyze reconstructs the conversational context from the supplied
// history, extracts symptoms from the current message, and composes the
// reply. Any panic inside the pipeline is converted into an error so the
// handler can answer with the fixed error payload instead of a raw fault.
func (s *service) Analyze(ctx context.Context, message string, history []ChatTurn) (payload *ResponsePayload, err error) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Interface("panic", r).Msg("triage pipeline panicked")
			payload = nil
			err = fmt.Errorf("triage: unexpected fault: %v", r)
		}
	}()

	conv := ReconstructContext(history)
	current := ExtractSymptoms(message, s.kb.Symptoms())

	logx.Debug().
		Strs("current_symptoms", current).
		Strs("context_symptoms", conv.Symptoms).
		Bool("has_last_question", conv.LastQuestion != "").
		Msg("analyzing message")

	return s.composer.Compose(ctx, message, conv, current), nil
}

func (s *service) Symptoms() []string {
	return s.kb.Symptoms()
}
