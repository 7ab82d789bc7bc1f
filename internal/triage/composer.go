package triage

import (
	"context"
	"fmt"
	"strings"

	logx "symptom-triage-api/pkg/logger"
)

// Generator is the boundary to the language model: one prompt in, one
// generated string out, or an error. Implementations live elsewhere
// (internal/agent); the composer only needs this capability and treats any
// failure as recoverable.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// strategy enumerates the response policies the composer can pick for a
// turn. Selection happens per request and is never persisted.
type strategy int

const (
	strategyShortFollowUp strategy = iota
	strategyNoSymptoms
	strategyFullAnalysis
)

const (
	noSymptomsReply = "I understand you're not feeling well. Could you please describe your symptoms in more detail? For example, do you have a fever, cough, or headache?"

	describeSymptomsQuestion = "Could you please describe your symptoms?"
	durationQuestion         = "How long have you been experiencing these symptoms?"
	otherSymptomsQuestion    = "Do you have any other symptoms you'd like to mention?"

	// apologyTemplate replaces the model output when generation fails. It
	// names the detected symptoms but never the underlying error.
	apologyTemplate = "Based on your symptoms (%s), I'd provide medical information, but I'm currently experiencing technical difficulties. Please consult a healthcare professional for proper evaluation of your symptoms."

	// emptyGenerationReply covers the model producing nothing usable.
	emptyGenerationReply = "Based on the symptoms you've described, I recommend consulting with a healthcare professional for proper evaluation and treatment advice."

	disclaimer = "Please note that this is general information and not a medical diagnosis. If your symptoms are severe, persistent, or concerning, please consult a healthcare professional right away."

	descriptionPlaceholder = "A condition that may warrant professional evaluation."
)

var symptomAdvice = map[string][]string{
	"fever": {
		"For fever, you can use over-the-counter fever reducers like acetaminophen as directed",
		"If your fever persists beyond 3 days or rises above 103°F (39.4°C), consult a healthcare professional",
	},
	"cough": {
		"For cough, staying hydrated and using honey (if over 1 year old) may help",
	},
	"headache": {
		"For headache, rest in a quiet, dark room and consider appropriate pain relievers",
	},
}

// Composer turns the reconstructed context, the current symptoms and
// (optionally) generated model text into the final reply payload. A nil
// generator means the templated analysis is used instead of the model.
type Composer struct {
	kb        *KnowledgeBase
	generator Generator
}

func NewComposer(kb *KnowledgeBase, generator Generator) *Composer {
	return &Composer{kb: kb, generator: generator}
}

// Compose selects a response strategy for the turn and builds its payload.
// ShortFollowUp is checked before NoSymptoms: a bare duration answer like
// "3 days" carries no symptom words, yet must not fall through to the
// describe-your-symptoms prompt.
func (c *Composer) Compose(ctx context.Context, message string, conv Context, current []string) *ResponsePayload {
	all := mergeSymptoms(conv.Symptoms, current)

	switch c.selectStrategy(message, conv, all) {
	case strategyShortFollowUp:
		return c.composeShortFollowUp(message, all)
	case strategyNoSymptoms:
		return c.composeNoSymptoms()
	default:
		return c.composeFullAnalysis(ctx, message, all)
	}
}

func (c *Composer) selectStrategy(message string, conv Context, all []string) strategy {
	if isShortDurationAnswer(message, conv.LastQuestion) {
		return strategyShortFollowUp
	}
	if len(all) == 0 {
		return strategyNoSymptoms
	}
	return strategyFullAnalysis
}

// mergeSymptoms unions previously detected symptoms with the current ones,
// context first, deduplicated in first-seen order.
func mergeSymptoms(previous, current []string) []string {
	seen := make(map[string]bool, len(previous)+len(current))
	merged := make([]string, 0, len(previous)+len(current))
	for _, list := range [][]string{previous, current} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				merged = append(merged, s)
			}
		}
	}
	return merged
}

func isShortDurationAnswer(message, lastQuestion string) bool {
	if lastQuestion == "" || !strings.Contains(strings.ToLower(lastQuestion), "how long") {
		return false
	}
	if len(strings.Fields(message)) >= 5 {
		return false
	}
	return containsDurationUnit(message)
}

func containsDurationUnit(message string) bool {
	lowered := strings.ToLower(message)
	for _, unit := range []string{"day", "week", "month"} {
		if strings.Contains(lowered, unit) {
			return true
		}
	}
	return false
}

// looksAcute reports whether a duration answer reads as a recent onset:
// a small day count ("3 days", "a day", "couple of days") rather than
// weeks or months.
func looksAcute(message string) bool {
	lowered := strings.ToLower(message)
	if !strings.Contains(lowered, "day") {
		return false
	}
	for _, w := range strings.Fields(lowered) {
		switch strings.Trim(w, ".,!?") {
		case "1", "2", "3", "a", "one", "two", "three", "couple", "few":
			return true
		}
	}
	return false
}

func (c *Composer) composeShortFollowUp(message string, all []string) *ResponsePayload {
	duration := strings.TrimSpace(message)

	var b strings.Builder
	if looksAcute(message) {
		fmt.Fprintf(&b, "Thank you for letting me know. Since you've had this for %s, it sounds like a recent onset. Rest, stay hydrated, and keep an eye on how your symptoms develop over the next couple of days.", duration)
	} else {
		fmt.Fprintf(&b, "Thank you for letting me know. Having symptoms for %s is a while, and persistent symptoms deserve a proper look. I'd recommend arranging an appointment with a healthcare professional.", duration)
	}

	conditions := ScoreConditions(c.kb, all)
	if len(conditions) > 0 {
		names := make([]string, 0, 3)
		for i, sc := range conditions {
			if i == 3 {
				break
			}
			names = append(names, sc.Name)
		}
		fmt.Fprintf(&b, "\n\nBased on everything you've shared, possible conditions to consider: %s.", strings.Join(names, ", "))
	}
	if len(all) > 0 {
		fmt.Fprintf(&b, "\n\n%s %s", SymptomMarker, strings.Join(all, ", "))
	}
	b.WriteString("\n\n" + otherSymptomsQuestion)

	return &ResponsePayload{
		Response:           b.String(),
		DetectedSymptoms:   all,
		PossibleConditions: conditions,
		FollowUpQuestion:   otherSymptomsQuestion,
	}
}

func (c *Composer) composeNoSymptoms() *ResponsePayload {
	return &ResponsePayload{
		Response:           noSymptomsReply,
		DetectedSymptoms:   []string{},
		PossibleConditions: []ScoredCondition{},
		FollowUpQuestion:   describeSymptomsQuestion,
	}
}

func (c *Composer) composeFullAnalysis(ctx context.Context, message string, all []string) *ResponsePayload {
	conditions := ScoreConditions(c.kb, all)

	var text string
	if c.generator != nil {
		generated, err := c.generator.Generate(ctx, buildPrompt(all, message))
		switch {
		case err != nil:
			logx.Error().Err(err).Msg("model generation failed, using fallback reply")
			text = fmt.Sprintf(apologyTemplate, strings.Join(all, ", "))
		case generated == "":
			text = emptyGenerationReply
		default:
			text = generated
		}
	} else {
		text = c.templatedAnalysis(all)
	}

	followUp := c.followUpFor(all)

	var b strings.Builder
	b.WriteString(text)
	fmt.Fprintf(&b, "\n\n%s %s", SymptomMarker, strings.Join(all, ", "))
	b.WriteString("\n\n" + followUp)

	return &ResponsePayload{
		Response:           b.String(),
		DetectedSymptoms:   all,
		PossibleConditions: conditions,
		FollowUpQuestion:   followUp,
	}
}

// buildPrompt formats the symptom list and the raw utterance the way the
// fine-tuned model was trained to expect.
func buildPrompt(symptoms []string, message string) string {
	return fmt.Sprintf("Patient presents with the following symptoms: %s. Patient states: %q. Provide medical analysis and advice.",
		strings.Join(symptoms, ", "), message)
}

// templatedAnalysis composes the full reply without the model: detected
// symptoms, up to three candidate conditions with descriptions, general and
// symptom-specific advice, and the disclaimer.
func (c *Composer) templatedAnalysis(all []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the symptoms you've described (%s), here are some possible considerations:\n\n", strings.Join(all, ", "))

	ranked := RankConditions(c.kb, all)
	if len(ranked) > 0 {
		b.WriteString("Possible conditions to consider:\n")
		for i, rc := range ranked {
			if i == 3 {
				break
			}
			desc, ok := c.kb.Description(rc.Name)
			if !ok {
				desc = descriptionPlaceholder
			}
			fmt.Fprintf(&b, "- %s: %s\n", rc.Name, desc)
		}
		b.WriteString("\n")
	}

	b.WriteString("General advice:\n")
	b.WriteString("- Monitor your symptoms and keep track of any changes\n")
	b.WriteString("- Stay hydrated and get plenty of rest\n")
	for _, symptom := range all {
		for _, line := range symptomAdvice[symptom] {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}

	b.WriteString("\n" + disclaimer)
	return b.String()
}

// followUpFor picks the clarifying question to close with: the leading
// knowledge-base question for the first detected symptom that has one,
// otherwise the generic duration question.
func (c *Composer) followUpFor(all []string) string {
	for _, symptom := range all {
		if q, ok := c.kb.FollowUpFor(symptom); ok {
			return q
		}
	}
	return durationQuestion
}
