// Package symptom tracks which of the known symptom categories a patient
// reported on a given day, derived from classified conversation turns.
package symptom

// Categories is the fixed set of tracked symptom categories. Every
// snapshot handed to a client contains exactly these keys.
var Categories = []string{
	"Shortness of Breath",
	"Palpitation",
	"Chest Discomfort",
	"Swelling",
	"Fatigue",
	"Syncope",
}

// State records whether a category was experienced and which message ids
// support that finding.
type State struct {
	Experienced bool     `json:"experienced" bson:"experienced"`
	Logs        []string `json:"logs" bson:"logs"`
}

// Snapshot maps each category to its state for one calendar date.
type Snapshot map[string]State

// Default returns a snapshot with every category not experienced and no
// supporting logs.
func Default() Snapshot {
	s := make(Snapshot, len(Categories))
	for _, c := range Categories {
		s[c] = State{Experienced: false, Logs: []string{}}
	}
	return s
}

// Normalize fills in any category missing from s so that all fixed
// categories are present, and guarantees non-nil log slices. The input
// may be nil.
func Normalize(s Snapshot) Snapshot {
	out := make(Snapshot, len(Categories))
	for _, c := range Categories {
		st, ok := s[c]
		if !ok {
			out[c] = State{Experienced: false, Logs: []string{}}
			continue
		}
		if st.Logs == nil {
			st.Logs = []string{}
		}
		out[c] = st
	}
	return out
}
