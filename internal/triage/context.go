package triage

import (
	"errors"
	"strings"

	logx "symptom-triage-api/pkg/logger"
)

// SymptomMarker is the line prefix assistant replies use to surface the
// symptoms detected so far. The client echoes replies back in the chat
// history, so this marker is the only channel that carries symptom memory
// across turns. Changing it breaks every conversation in flight.
const SymptomMarker = "Detected symptoms:"

// questionIndicators mark an assistant message as a clarifying question.
// Matched case-insensitively as substrings anywhere in the message.
var questionIndicators = []string{
	"how long",
	"could you describe",
	"can you tell me more",
	"when did",
	"do you have any other",
}

// ReconstructContext replays the supplied history and recovers the
// accumulated symptom set plus the most recent clarifying question. It is a
// pure function of the history: no session state exists anywhere else.
// Malformed marker lines are logged and skipped, never fatal.
func ReconstructContext(history []ChatTurn) Context {
	var ctx Context
	seen := make(map[string]bool)

	for _, turn := range history {
		msg := turn.Assistant
		if msg == "" {
			continue
		}

		if strings.Contains(msg, SymptomMarker) {
			names, err := parseSymptomLine(msg)
			if err != nil {
				logx.Warn().Err(err).Msg("skipping malformed symptom marker in chat history")
			}
			for _, n := range names {
				if !seen[n] {
					seen[n] = true
					ctx.Symptoms = append(ctx.Symptoms, n)
				}
			}
		}

		if isClarifyingQuestion(msg) {
			ctx.LastQuestion = msg
		}
	}
	return ctx
}

func parseSymptomLine(msg string) ([]string, error) {
	for _, line := range strings.Split(msg, "\n") {
		idx := strings.Index(line, SymptomMarker)
		if idx < 0 {
			continue
		}
		rest := strings.TrimSpace(line[idx+len(SymptomMarker):])
		if rest == "" {
			return nil, errors.New("symptom marker with no symptom list")
		}

		parts := strings.Split(rest, ", ")
		names := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				names = append(names, p)
			}
		}
		if len(names) == 0 {
			return nil, errors.New("symptom marker with no parsable names")
		}
		return names, nil
	}
	return nil, errors.New("symptom marker not found on any line")
}

func isClarifyingQuestion(msg string) bool {
	lowered := strings.ToLower(msg)
	for _, phrase := range questionIndicators {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
