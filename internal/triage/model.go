package triage

import "encoding/json"

// ChatTurn is one prior exchange supplied by the client: the user message
// and the assistant reply, either of which may be absent. On the wire it is
// a two-element array, matching the chat front end's history format.
type ChatTurn struct {
	User      string
	Assistant string
}

func (t *ChatTurn) UnmarshalJSON(data []byte) error {
	var pair []*string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) > 0 && pair[0] != nil {
		t.User = *pair[0]
	}
	if len(pair) > 1 && pair[1] != nil {
		t.Assistant = *pair[1]
	}
	return nil
}

func (t ChatTurn) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{t.User, t.Assistant})
}

// AnalyzeRequest is the body of POST /api/analyze. A missing message is
// treated as an empty one; the pipeline answers with a clarifying prompt
// rather than rejecting the request.
type AnalyzeRequest struct {
	Message     string     `json:"message"`
	ChatHistory []ChatTurn `json:"chat_history"`
}

// Context is the conversational state recovered from the chat history: the
// symptoms surfaced in earlier assistant replies and, if the assistant's
// most recent relevant turn was a clarifying question, that question. It is
// rebuilt from scratch on every request; nothing survives between calls.
type Context struct {
	Symptoms     []string
	LastQuestion string
}

// ScoredCondition is a candidate condition with its match confidence.
type ScoredCondition struct {
	Name       string  `json:"name"`
	MatchScore float64 `json:"match_score"`
}

// ResponsePayload is the sole externally visible artifact of an analysis
// turn. Field names are part of the client contract and must not change.
type ResponsePayload struct {
	Response           string            `json:"response"`
	DetectedSymptoms   []string          `json:"detected_symptoms"`
	PossibleConditions []ScoredCondition `json:"possible_conditions"`
	FollowUpQuestion   string            `json:"follow_up_question,omitempty"`
	IsError            bool              `json:"isError,omitempty"`
}

// SymptomsResponse is the body of GET /api/symptoms.
type SymptomsResponse struct {
	Symptoms []string `json:"symptoms"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
}
