package triage

import (
	"fmt"
	"strings"
)

// symptomVocabulary fixes the recognized symptom set and its order. Order
// matters twice: GET /api/symptoms returns it verbatim, and condition lists
// are ranked with ties broken by the first symptom that mentions them.
var symptomVocabulary = []string{
	"headache",
	"fever",
	"cough",
	"fatigue",
	"nausea",
	"vomiting",
	"dizziness",
	"chest pain",
	"shortness of breath",
	"abdominal pain",
	"joint pain",
	"rash",
	"sore throat",
	"runny nose",
	"muscle aches",
}

var symptomConditions = map[string][]string{
	"headache":            {"Migraine", "Tension Headache", "Sinusitis", "Meningitis"},
	"fever":               {"Common Cold", "Flu", "COVID-19", "Infection", "Malaria"},
	"cough":               {"Common Cold", "Flu", "COVID-19", "Bronchitis", "Pneumonia"},
	"fatigue":             {"Flu", "Anemia", "Depression", "Sleep Disorder", "Chronic Fatigue Syndrome"},
	"nausea":              {"Food Poisoning", "Migraine", "Pregnancy", "Vertigo", "Gastroenteritis"},
	"vomiting":            {"Food Poisoning", "Gastroenteritis", "Migraine", "Morning Sickness"},
	"dizziness":           {"Vertigo", "Low Blood Pressure", "Anemia", "Inner Ear Infection"},
	"chest pain":          {"Heart Attack", "Angina", "Acid Reflux", "Anxiety", "Pulmonary Embolism"},
	"shortness of breath": {"Asthma", "COVID-19", "Heart Failure", "Anxiety", "Pulmonary Embolism"},
	"abdominal pain":      {"Appendicitis", "Gastritis", "IBS", "Food Poisoning", "Kidney Stones"},
	"joint pain":          {"Arthritis", "Gout", "Lupus", "Lyme Disease", "Rheumatoid Arthritis"},
	"rash":                {"Allergic Reaction", "Eczema", "Psoriasis", "Chickenpox", "Measles"},
	"sore throat":         {"Strep Throat", "Common Cold", "Flu", "Tonsillitis"},
	"runny nose":          {"Common Cold", "Flu", "Allergies", "Sinusitis"},
	"muscle aches":        {"Flu", "Fibromyalgia", "Exercise-Related Injury", "Viral Infection"},
}

var symptomFollowUps = map[string][]string{
	"headache": {
		"How long have you had the headache?",
		"Is it on one side or both?",
		"Is it throbbing or constant?",
		"On a scale of 1-10, how severe is the pain?",
		"Do you have any other symptoms like nausea or sensitivity to light?",
	},
	"fever": {
		"What is your temperature?",
		"How long have you had the fever?",
		"Have you recently traveled to any tropical regions?",
		"Do you have any other symptoms like cough or body aches?",
	},
	"cough": {
		"Is your cough dry or productive?",
		"How long have you had it?",
		"Any blood in your cough?",
		"Does it get worse at night or in certain environments?",
	},
	"fatigue": {
		"When did the fatigue begin?",
		"Does rest help?",
		"Have you experienced weight loss?",
		"Is it constant or does it come and go?",
	},
	"chest pain": {
		"Does the pain radiate to your arm or jaw?",
		"Is it worse with exertion?",
		"How would you rate the pain on a scale of 1-10?",
		"Does the pain change when you breathe deeply?",
	},
	"abdominal pain": {
		"Where exactly is the pain located?",
		"Is it sharp or dull?",
		"Does it come and go or is it constant?",
		"Does eating make it better or worse?",
	},
}

var conditionDescriptions = map[string]string{
	"Migraine":         "A neurological condition characterized by intense, debilitating headaches, often accompanied by nausea, vomiting, and sensitivity to light and sound.",
	"Tension Headache": "The most common type of headache, characterized by dull, aching head pain, tightness or pressure across the forehead or the back of the head and neck.",
	"Common Cold":      "A viral infection of the upper respiratory tract, causing symptoms like runny nose, sneezing, and mild fever.",
	"Flu":              "A contagious respiratory illness caused by influenza viruses, characterized by fever, cough, sore throat, body aches, and fatigue.",
	"COVID-19":         "A respiratory illness caused by the SARS-CoV-2 virus, with symptoms ranging from mild to severe, including fever, cough, and shortness of breath.",
	"Pneumonia":        "An infection that inflames the air sacs in one or both lungs, which may fill with fluid, causing cough, fever, chills, and difficulty breathing.",
	"Bronchitis":       "Inflammation of the lining of the bronchial tubes, which carry air to and from the lungs, causing coughing with mucus, fatigue, shortness of breath, and mild fever.",
}

// KnowledgeBase is the static symptom-to-condition mapping the pipeline
// consults. Built once at startup, validated, and never written afterwards;
// request handling only reads it.
type KnowledgeBase struct {
	order        []string
	conditions   map[string][]string
	followUps    map[string][]string
	descriptions map[string]string
}

// NewKnowledgeBase builds the knowledge base from the static tables and
// checks them for structural problems up front, so request handlers never
// have to cope with missing or malformed entries.
func NewKnowledgeBase() (*KnowledgeBase, error) {
	seen := make(map[string]bool, len(symptomVocabulary))
	for _, s := range symptomVocabulary {
		if s == "" {
			return nil, fmt.Errorf("knowledge base: empty symptom key")
		}
		if s != strings.ToLower(s) {
			return nil, fmt.Errorf("knowledge base: symptom %q is not lowercase", s)
		}
		if seen[s] {
			return nil, fmt.Errorf("knowledge base: duplicate symptom %q", s)
		}
		seen[s] = true

		conds, ok := symptomConditions[s]
		if !ok || len(conds) == 0 {
			return nil, fmt.Errorf("knowledge base: symptom %q has no conditions", s)
		}
		for _, c := range conds {
			if c == "" {
				return nil, fmt.Errorf("knowledge base: symptom %q lists an empty condition name", s)
			}
		}
	}
	for s := range symptomConditions {
		if !seen[s] {
			return nil, fmt.Errorf("knowledge base: condition entry %q is not in the vocabulary", s)
		}
	}
	for s, qs := range symptomFollowUps {
		if !seen[s] {
			return nil, fmt.Errorf("knowledge base: follow-up entry %q is not in the vocabulary", s)
		}
		if len(qs) == 0 {
			return nil, fmt.Errorf("knowledge base: symptom %q has an empty follow-up list", s)
		}
	}
	// Descriptions may be missing for a condition (the composer substitutes
	// a placeholder), but every described condition must be reachable.
	referenced := make(map[string]bool)
	for _, conds := range symptomConditions {
		for _, c := range conds {
			referenced[c] = true
		}
	}
	for name := range conditionDescriptions {
		if !referenced[name] {
			return nil, fmt.Errorf("knowledge base: description for unknown condition %q", name)
		}
	}

	return &KnowledgeBase{
		order:        symptomVocabulary,
		conditions:   symptomConditions,
		followUps:    symptomFollowUps,
		descriptions: conditionDescriptions,
	}, nil
}

// Symptoms returns the recognized vocabulary in its fixed order.
func (kb *KnowledgeBase) Symptoms() []string {
	out := make([]string, len(kb.order))
	copy(out, kb.order)
	return out
}

// ConditionsFor returns the conditions associated with a symptom, most
// plausible first. Unknown symptoms yield nil.
func (kb *KnowledgeBase) ConditionsFor(symptom string) []string {
	return kb.conditions[symptom]
}

// FollowUpFor returns the leading clarifying question for a symptom, if the
// knowledge base carries one.
func (kb *KnowledgeBase) FollowUpFor(symptom string) (string, bool) {
	qs, ok := kb.followUps[symptom]
	if !ok {
		return "", false
	}
	return qs[0], true
}

// Description returns the educational description of a condition, if any.
func (kb *KnowledgeBase) Description(condition string) (string, bool) {
	d, ok := kb.descriptions[condition]
	return d, ok
}
