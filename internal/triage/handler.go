package triage

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	logx "symptom-triage-api/pkg/logger"
)

const errorReply = "I apologize, but I encountered an error while processing your message. Could you please rephrase your symptoms or try again?"

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (h *Handler) Symptoms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SymptomsResponse{Symptoms: h.svc.Symptoms()})
}

// Analyze handles POST /api/analyze. Malformed bodies are tolerated: the
// request decodes to whatever fields were usable (an absent message becomes
// the empty string) and the pipeline answers with its clarifying prompt.
// Only an unexpected pipeline fault produces the error payload, always with
// status 500 and never a raw error message.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Warn().Err(err).Msg("unparsable analyze request body, treating as empty")
		req = AnalyzeRequest{}
	}

	payload, err := h.svc.Analyze(r.Context(), req.Message, req.ChatHistory)
	if err != nil {
		logx.Error().Err(err).Msg("analysis failed")
		writeJSON(w, http.StatusInternalServerError, &ResponsePayload{
			Response:           errorReply,
			DetectedSymptoms:   []string{},
			PossibleConditions: []ScoredCondition{},
			IsError:            true,
		})
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/health", h.Health)
	r.Get("/symptoms", h.Symptoms)
	r.Post("/analyze", h.Analyze)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Error().Err(err).Msg("failed to encode response")
	}
}
