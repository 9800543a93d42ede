package patient

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carewatch/carewatch/internal/domain/symptom"
	"github.com/carewatch/carewatch/internal/platform/llm"
)

type mockRepo struct {
	patients map[string]*Patient
	failing  bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: map[string]*Patient{}}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) (string, error) {
	if m.failing {
		return "", errors.New("storage down")
	}
	p.ID = primitive.NewObjectID()
	m.patients[p.ID.Hex()] = p
	return p.ID.Hex(), nil
}

func (m *mockRepo) GetByDisplayID(_ context.Context, displayID string) (*Patient, error) {
	for _, p := range m.patients {
		if p.DisplayID == displayID {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) GetByAssistantID(_ context.Context, assistantUserID string) (*Patient, error) {
	for _, p := range m.patients {
		if p.AssistantUserID == assistantUserID {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) ListSummaries(_ context.Context) ([]*Summary, error) {
	out := []*Summary{}
	for _, p := range m.patients {
		out = append(out, &Summary{DisplayID: p.DisplayID, Name: p.Name, Age: p.Age, Gender: p.Gender, RiskLevel: p.RiskLevel})
	}
	return out, nil
}

func (m *mockRepo) SetSymptomSnapshot(_ context.Context, id primitive.ObjectID, date string, snap symptom.Snapshot, at time.Time) error {
	p, ok := m.patients[id.Hex()]
	if !ok {
		return ErrNotFound
	}
	if p.SymptomStates == nil {
		p.SymptomStates = map[string]symptom.Snapshot{}
	}
	p.SymptomStates[date] = snap
	p.ConversationEnded = true
	p.LastConversationDate = &at
	return nil
}

func (m *mockRepo) ListUnassigned(_ context.Context) ([]*Patient, error) {
	out := []*Patient{}
	for _, p := range m.patients {
		if p.Unassigned() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRepo) AssignAssistantID(_ context.Context, id primitive.ObjectID, assistantUserID string, at time.Time) error {
	p, ok := m.patients[id.Hex()]
	if !ok {
		return ErrNotFound
	}
	p.AssistantUserID = assistantUserID
	p.AssistantIDAddedAt = &at
	return nil
}

func (m *mockRepo) ListAssignedSince(_ context.Context, since time.Time) ([]*Patient, error) {
	out := []*Patient{}
	for _, p := range m.patients {
		if p.AssistantIDAddedAt != nil && !p.AssistantIDAddedAt.Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestCreateRequiresNameAndAssistantID(t *testing.T) {
	svc := NewService(newMockRepo(), nil, "gpt-4o")

	_, err := svc.Create(context.Background(), &Patient{Name: "Ada"})
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	_, err = svc.Create(context.Background(), &Patient{AssistantUserID: "va.user.1"})
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestCreateRejectsDuplicateAssistantID(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, "gpt-4o")

	if _, err := svc.Create(context.Background(), &Patient{Name: "Ada", AssistantUserID: "va.user.1"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := svc.Create(context.Background(), &Patient{Name: "Grace", AssistantUserID: "va.user.1"})
	if !errors.Is(err, ErrDuplicateAssistantID) {
		t.Fatalf("expected ErrDuplicateAssistantID, got %v", err)
	}
}

func TestCreateStampsAssignmentTime(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, "gpt-4o")

	id, err := svc.Create(context.Background(), &Patient{Name: "Ada", AssistantUserID: "va.user.2"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	p := repo.patients[id]
	if p.AssistantIDAddedAt == nil {
		t.Error("expected assistant_id_added_at to be set")
	}
	if p.ConversationEnded {
		t.Error("expected conversation_ended to start false")
	}
}

func TestAvailableDatesUnionAcrossSources(t *testing.T) {
	svc := NewService(newMockRepo(), nil, "gpt-4o")
	p := &Patient{
		WearableSensorData: map[string]interface{}{
			"heartRate": map[string]interface{}{
				"10days": []interface{}{
					map[string]interface{}{"date": "2025-03-01", "avg": 72.0},
					map[string]interface{}{"date": "2025-03-02", "avg": 75.0},
				},
			},
			"spo2": map[string]interface{}{
				"10days": []interface{}{
					map[string]interface{}{"date": "2025-03-02", "avg": 97.0},
				},
			},
		},
		ConversationLog: map[string]interface{}{"date": "03/04/2025"},
		AIRiskPrediction: map[string]interface{}{
			"historicalData": []interface{}{
				map[string]interface{}{"date": "2025-03-03", "risk": 0.2},
			},
		},
	}

	got := svc.AvailableDates(p)
	want := []string{"2025-03-01", "2025-03-02", "2025-03-03", "2025-03-04"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestConversationLogForMatchesAcrossFormats(t *testing.T) {
	svc := NewService(newMockRepo(), nil, "gpt-4o")
	p := &Patient{ConversationLog: map[string]interface{}{"date": "03/04/2025", "messages": []interface{}{}}}

	if _, err := svc.ConversationLogFor(p, "2025-03-04"); err != nil {
		t.Fatalf("expected match across formats, got %v", err)
	}
	if _, err := svc.ConversationLogFor(p, "2025-03-05"); err == nil {
		t.Fatal("expected miss for other date")
	}
	if _, err := svc.ConversationLogFor(p, ""); err != nil {
		t.Fatalf("expected log without date filter, got %v", err)
	}
}

type summaryLLM struct {
	lastReq llm.Request
	reply   string
	err     error
}

func (f *summaryLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	f.lastReq = req
	return f.reply, f.err
}

func TestDailySummaryUsesSummaryModel(t *testing.T) {
	client := &summaryLLM{reply: "Patient stable."}
	svc := NewService(newMockRepo(), client, "gpt-4o")

	got, err := svc.DailySummary(context.Background(), &Patient{Name: "Ada"}, "2025-03-04")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if got != "Patient stable." {
		t.Errorf("got %q", got)
	}
	if client.lastReq.Model != "gpt-4o" {
		t.Errorf("model = %q, want gpt-4o", client.lastReq.Model)
	}
	if client.lastReq.MaxTokens != 300 {
		t.Errorf("max tokens = %d, want 300", client.lastReq.MaxTokens)
	}
}
