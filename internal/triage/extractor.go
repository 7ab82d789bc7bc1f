package triage

import "strings"

// ExtractSymptoms scans free text for known symptom phrases and returns the
// matches in vocabulary order. Matching is a case-insensitive substring
// test, not word-boundary aware: "feverish" matches "fever". That quirk is
// intentional and kept for parity with the replies clients already expect.
func ExtractSymptoms(text string, known []string) []string {
	if text == "" {
		return nil
	}
	lowered := strings.ToLower(text)

	var found []string
	for _, symptom := range known {
		if strings.Contains(lowered, symptom) {
			found = append(found, symptom)
		}
	}
	return found
}
