package patient

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/carewatch/carewatch/internal/domain/symptom"
	"github.com/carewatch/carewatch/internal/platform/llm"
	"github.com/carewatch/carewatch/pkg/dates"
)

var (
	// ErrDuplicateAssistantID indicates another patient already holds the
	// assistant user id supplied on creation.
	ErrDuplicateAssistantID = errors.New("assistant user id already registered")

	// ErrMissingFields indicates a create request without the required
	// name or assistant user id.
	ErrMissingFields = errors.New("name and assistant user id are required")
)

// wearableSeries are the sensor streams scanned for available dates.
var wearableSeries = []string{"heartRate", "respiration", "spo2", "skinTemperature"}

type Service struct {
	repo         Repository
	client       llm.Client
	summaryModel string
}

func NewService(repo Repository, client llm.Client, summaryModel string) *Service {
	return &Service{repo: repo, client: client, summaryModel: summaryModel}
}

func (s *Service) Create(ctx context.Context, p *Patient) (string, error) {
	if p.Name == "" || p.AssistantUserID == "" {
		return "", ErrMissingFields
	}
	if _, err := s.repo.GetByAssistantID(ctx, p.AssistantUserID); err == nil {
		return "", ErrDuplicateAssistantID
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	now := time.Now().UTC()
	p.AssistantIDAddedAt = &now
	p.ConversationEnded = false
	if p.SymptomStates == nil {
		p.SymptomStates = map[string]symptom.Snapshot{}
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) GetByDisplayID(ctx context.Context, displayID string) (*Patient, error) {
	return s.repo.GetByDisplayID(ctx, displayID)
}

func (s *Service) GetByAssistantID(ctx context.Context, assistantUserID string) (*Patient, error) {
	return s.repo.GetByAssistantID(ctx, assistantUserID)
}

func (s *Service) ListSummaries(ctx context.Context) ([]*Summary, error) {
	return s.repo.ListSummaries(ctx)
}

// ConversationLogFor returns the patient's stored dashboard conversation
// log when it matches the requested date; the stored date may be in
// either calendar format.
func (s *Service) ConversationLogFor(p *Patient, date string) (map[string]interface{}, error) {
	if p.ConversationLog == nil {
		return nil, fmt.Errorf("conversation log not found")
	}
	if date == "" {
		return p.ConversationLog, nil
	}
	stored, _ := p.ConversationLog["date"].(string)
	if stored == "" || dates.SameDay(date, stored) {
		return p.ConversationLog, nil
	}
	return nil, fmt.Errorf("no conversation log for date %s", date)
}

// AvailableDates collects the sorted union of ISO dates appearing across
// the wearable series, the dashboard conversation log, and the risk
// prediction history.
func (s *Service) AvailableDates(p *Patient) []string {
	seen := map[string]struct{}{}

	for _, series := range wearableSeries {
		sensor, ok := p.WearableSensorData[series].(map[string]interface{})
		if !ok {
			continue
		}
		entries, ok := sensor["10days"].([]interface{})
		if !ok {
			continue
		}
		for _, e := range entries {
			entry, ok := e.(map[string]interface{})
			if !ok {
				continue
			}
			if d, ok := entry["date"].(string); ok {
				addDate(seen, d)
			}
		}
	}

	if d, ok := p.ConversationLog["date"].(string); ok {
		addDate(seen, d)
	}

	if hist, ok := p.AIRiskPrediction["historicalData"].([]interface{}); ok {
		for _, e := range hist {
			entry, ok := e.(map[string]interface{})
			if !ok {
				continue
			}
			if d, ok := entry["date"].(string); ok {
				addDate(seen, d)
			}
		}
	}

	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func addDate(seen map[string]struct{}, raw string) {
	if iso, err := dates.NormalizeISO(raw); err == nil {
		seen[iso] = struct{}{}
		return
	}
	seen[raw] = struct{}{}
}

// DailySummary asks the language model for a short health summary over
// the patient's wearable and conversation payloads for one date.
func (s *Service) DailySummary(ctx context.Context, p *Patient, date string) (string, error) {
	prompt := fmt.Sprintf(
		"Generate a concise health summary based on the following patient data for %s:\nWearable Data: %v\nSymptoms: %v\nProvide a brief summary focusing on health insights, avoiding unnecessary repetition.",
		date, p.WearableSensorData, p.ConversationLog,
	)

	reply, err := s.client.Complete(ctx, llm.Request{
		Model: s.summaryModel,
		Messages: []llm.Message{
			{Role: "system", Content: "You are a helpful health assistant summarizing patient data."},
			{Role: "user", Content: prompt},
		},
		MaxTokens: 300,
	})
	if err != nil {
		return "", fmt.Errorf("daily summary: %w", err)
	}
	return reply, nil
}
