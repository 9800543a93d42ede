package conversation

import (
	"context"

	"github.com/carewatch/carewatch/internal/domain/symptom"
	"github.com/carewatch/carewatch/pkg/dates"
)

// CategoryLogs is one category's slice of a day's transcript. The
// General bucket carries no experienced flag, so the field is a
// pointer.
type CategoryLogs struct {
	Logs        []View `json:"logs"`
	Experienced *bool  `json:"experienced"`
}

// DayLogs is a day's transcript partitioned by symptom category.
type DayLogs struct {
	Date        string                  `json:"date"`
	SymptomLogs map[string]CategoryLogs `json:"symptom_logs"`
	AllLogs     []View                  `json:"all_logs"`
}

// LogsByCategory partitions the date's transcript into the tracked
// categories plus a General bucket of unclassified turns. Every
// message lands in exactly one tracked category or General.
func (e *Engine) LogsByCategory(ctx context.Context, assistantUserID, date string) (*DayLogs, error) {
	p, err := e.patients.GetByAssistantID(ctx, assistantUserID)
	if err != nil {
		return nil, err
	}

	iso, err := dates.NormalizeISO(date)
	if err != nil {
		return nil, err
	}
	from, to, err := dates.DayBounds(iso)
	if err != nil {
		return nil, err
	}
	msgs, err := e.messages.ListBetween(ctx, p.ID.Hex(), from, to)
	if err != nil {
		return nil, err
	}

	snap := symptom.Normalize(p.SnapshotFor(iso))

	byID := make(map[string]*Message, len(msgs))
	all := make([]View, 0, len(msgs))
	for _, m := range msgs {
		byID[m.ID.Hex()] = m
		all = append(all, m.View())
	}

	// Messages cited by any category are excluded from General.
	cited := map[string]bool{}
	out := &DayLogs{Date: iso, SymptomLogs: make(map[string]CategoryLogs, len(symptom.Categories)+1), AllLogs: all}

	for _, category := range symptom.Categories {
		state := snap[category]
		views := []View{}
		for _, id := range state.Logs {
			cited[id] = true
			if m, ok := byID[id]; ok {
				views = append(views, m.View())
			}
		}
		experienced := state.Experienced
		out.SymptomLogs[category] = CategoryLogs{Logs: views, Experienced: &experienced}
	}

	general := []View{}
	for _, m := range msgs {
		if !cited[m.ID.Hex()] {
			general = append(general, m.View())
		}
	}
	out.SymptomLogs["General"] = CategoryLogs{Logs: general, Experienced: nil}

	return out, nil
}
