package triage

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type fakeGenerator struct {
	reply string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func TestComposeNoSymptoms(t *testing.T) {
	kb := mustKB(t)
	c := NewComposer(kb, nil)

	p := c.Compose(context.Background(), "hello", Context{}, nil)
	if !strings.Contains(p.Response, "describe your symptoms") {
		t.Fatalf("unexpected reply: %q", p.Response)
	}
	if len(p.DetectedSymptoms) != 0 || len(p.PossibleConditions) != 0 {
		t.Fatalf("expected empty lists, got %+v", p)
	}
	if p.FollowUpQuestion == "" {
		t.Fatal("expected a follow-up question")
	}
	if p.IsError {
		t.Fatal("no symptoms is not an error")
	}
}

func TestComposeFullAnalysisWithModel(t *testing.T) {
	kb := mustKB(t)
	gen := &fakeGenerator{reply: "These symptoms are consistent with a viral infection. Rest and monitor your temperature."}
	c := NewComposer(kb, gen)

	message := "I have a headache and fever"
	current := ExtractSymptoms(message, kb.Symptoms())
	p := c.Compose(context.Background(), message, Context{}, current)

	if gen.calls != 1 {
		t.Fatalf("expected one generation call, got %d", gen.calls)
	}
	if !strings.Contains(p.Response, gen.reply) {
		t.Fatalf("model text missing from reply: %q", p.Response)
	}
	if !reflect.DeepEqual(p.DetectedSymptoms, []string{"headache", "fever"}) {
		t.Fatalf("detected = %v", p.DetectedSymptoms)
	}

	names := map[string]bool{}
	for _, sc := range p.PossibleConditions {
		names[sc.Name] = true
	}
	if !names["Migraine"] || !names["Common Cold"] {
		t.Fatalf("expected Migraine and Common Cold among conditions, got %+v", p.PossibleConditions)
	}

	// The symptom-specific follow-up doubles as a duration question, so the
	// next short answer can take the follow-up path.
	if p.FollowUpQuestion != "How long have you had the headache?" {
		t.Fatalf("follow-up = %q", p.FollowUpQuestion)
	}
	if !strings.Contains(p.Response, p.FollowUpQuestion) {
		t.Fatal("follow-up question must appear in the reply text")
	}
}

func TestComposeMarkerRoundTrip(t *testing.T) {
	kb := mustKB(t)
	c := NewComposer(kb, &fakeGenerator{reply: "Some analysis."})

	message := "I have a headache and fever"
	p := c.Compose(context.Background(), message, Context{}, ExtractSymptoms(message, kb.Symptoms()))

	// The reply echoed back as history must reproduce the symptom set.
	ctx := ReconstructContext([]ChatTurn{{User: message, Assistant: p.Response}})
	if !reflect.DeepEqual(ctx.Symptoms, []string{"headache", "fever"}) {
		t.Fatalf("round trip lost symptoms: %v", ctx.Symptoms)
	}
}

func TestComposeGeneratorFailure(t *testing.T) {
	kb := mustKB(t)
	c := NewComposer(kb, &fakeGenerator{err: errors.New("connection refused")})

	message := "I have a headache and fever"
	p := c.Compose(context.Background(), message, Context{}, ExtractSymptoms(message, kb.Symptoms()))

	if !strings.Contains(p.Response, "technical difficulties") {
		t.Fatalf("expected apology template, got %q", p.Response)
	}
	if !strings.Contains(p.Response, "headache, fever") {
		t.Fatal("apology must name the detected symptoms")
	}
	if strings.Contains(p.Response, "connection refused") {
		t.Fatal("raw generation error leaked into the reply")
	}
	if p.IsError {
		t.Fatal("fallback replies are not error responses")
	}
	if len(p.PossibleConditions) == 0 {
		t.Fatal("condition scores must survive a generation failure")
	}
}

func TestComposeEmptyGeneration(t *testing.T) {
	kb := mustKB(t)
	c := NewComposer(kb, &fakeGenerator{reply: ""})

	p := c.Compose(context.Background(), "I have a cough", Context{}, []string{"cough"})
	if !strings.Contains(p.Response, "consulting with a healthcare professional") {
		t.Fatalf("expected the default advice, got %q", p.Response)
	}
}

func TestComposeTemplatedAnalysis(t *testing.T) {
	kb := mustKB(t)
	c := NewComposer(kb, nil) // inference disabled

	message := "I can't stop coughing"
	p := c.Compose(context.Background(), message, Context{}, []string{"cough"})

	for _, fragment := range []string{
		"Based on the symptoms you've described (cough)",
		"Common Cold: A viral infection",
		"General advice:",
		"staying hydrated and using honey",
		"not a medical diagnosis",
		"Detected symptoms: cough",
	} {
		if !strings.Contains(p.Response, fragment) {
			t.Fatalf("templated reply missing %q:\n%s", fragment, p.Response)
		}
	}
}

func TestComposeShortFollowUp(t *testing.T) {
	kb := mustKB(t)
	c := NewComposer(kb, &fakeGenerator{reply: "unused"})

	t.Run("acute duration", func(t *testing.T) {
		conv := Context{
			Symptoms:     []string{"headache"},
			LastQuestion: "How long have you had the headache?",
		}
		p := c.Compose(context.Background(), "3 days", conv, nil)

		if !strings.Contains(p.Response, "3 days") {
			t.Fatalf("duration not echoed verbatim: %q", p.Response)
		}
		if !strings.Contains(p.Response, "recent onset") {
			t.Fatalf("expected acute advice, got %q", p.Response)
		}
		if !reflect.DeepEqual(p.DetectedSymptoms, []string{"headache"}) {
			t.Fatalf("detected = %v", p.DetectedSymptoms)
		}
		if len(p.PossibleConditions) == 0 {
			t.Fatal("context symptoms should still produce conditions")
		}
		if p.FollowUpQuestion != "Do you have any other symptoms you'd like to mention?" {
			t.Fatalf("follow-up = %q", p.FollowUpQuestion)
		}
	})

	t.Run("prolonged duration", func(t *testing.T) {
		conv := Context{LastQuestion: "How long have you been experiencing these symptoms?"}
		p := c.Compose(context.Background(), "2 weeks", conv, nil)

		if !strings.Contains(p.Response, "2 weeks") {
			t.Fatalf("duration not echoed: %q", p.Response)
		}
		if strings.Contains(p.Response, "recent onset") {
			t.Fatal("two weeks is not acute")
		}
	})

	t.Run("long answers take the normal path", func(t *testing.T) {
		conv := Context{
			Symptoms:     []string{"fever"},
			LastQuestion: "How long have you had the fever?",
		}
		p := c.Compose(context.Background(), "it started about five days ago I think", conv, nil)
		if strings.Contains(p.Response, "Thank you for letting me know") {
			t.Fatal("a five-plus word answer must not be treated as a short follow-up")
		}
	})

	t.Run("no pending question means no follow-up path", func(t *testing.T) {
		p := c.Compose(context.Background(), "3 days", Context{}, nil)
		if !strings.Contains(p.Response, "describe your symptoms") {
			t.Fatalf("expected the no-symptoms prompt, got %q", p.Response)
		}
	})
}

func TestServiceAnalyze(t *testing.T) {
	kb := mustKB(t)

	t.Run("short follow-up from raw history", func(t *testing.T) {
		svc := NewService(kb, &fakeGenerator{reply: "unused"})
		history := []ChatTurn{
			{User: "I have a headache", Assistant: "I'm sorry to hear that. How long have you had the headache?"},
		}
		p, err := svc.Analyze(context.Background(), "3 days", history)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(p.Response, "3 days") || !strings.Contains(p.Response, "recent onset") {
			t.Fatalf("expected acute duration acknowledgment, got %q", p.Response)
		}
	})

	t.Run("context symptoms merge with current ones", func(t *testing.T) {
		svc := NewService(kb, &fakeGenerator{reply: "Analysis text."})
		history := []ChatTurn{
			{User: "my head hurts", Assistant: "Noted.\n\nDetected symptoms: headache\n\nHow long have you had the headache?"},
		}
		p, err := svc.Analyze(context.Background(), "I also noticed a rash and some nausea", history)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"headache", "nausea", "rash"}
		if !reflect.DeepEqual(p.DetectedSymptoms, want) {
			t.Fatalf("detected = %v, want %v", p.DetectedSymptoms, want)
		}
	})
}
