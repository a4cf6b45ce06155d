package domain

import "encoding/json"

// AnalysisSummary is the provider's free-form analysis payload. Its shape is
// provider-defined and only partially consumed, so it is carried verbatim and
// read through best-effort accessors that report absence instead of failing.
type AnalysisSummary []byte

// DamageAssessment is the slice of the summary payload the report actually
// reads.
type DamageAssessment struct {
	Severity    string   `json:"severity"`
	Description string   `json:"description"`
	DamageTypes []string `json:"damageTypes"`
}

// MarshalJSON emits the raw payload verbatim, or null when empty.
func (s AnalysisSummary) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return s, nil
}

// UnmarshalJSON stores the raw payload verbatim.
func (s *AnalysisSummary) UnmarshalJSON(data []byte) error {
	*s = append((*s)[:0], data...)
	return nil
}

// DamageAssessment extracts the damage assessment block. Returns false when
// the payload is missing, unparsable, or has no such block.
func (s AnalysisSummary) DamageAssessment() (DamageAssessment, bool) {
	var payload struct {
		DamageAssessment *DamageAssessment `json:"damageAssessment"`
	}
	if len(s) == 0 || json.Unmarshal(s, &payload) != nil || payload.DamageAssessment == nil {
		return DamageAssessment{}, false
	}
	return *payload.DamageAssessment, true
}

// Recommendations extracts the provider's free-text recommendation. Returns
// false when absent or unparsable.
func (s AnalysisSummary) Recommendations() (string, bool) {
	var payload struct {
		Recommendations string `json:"recommendations"`
	}
	if len(s) == 0 || json.Unmarshal(s, &payload) != nil || payload.Recommendations == "" {
		return "", false
	}
	return payload.Recommendations, true
}
