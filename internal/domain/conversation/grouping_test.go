package conversation

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carewatch/carewatch/internal/domain/symptom"
)

func TestLogsByCategoryPartition(t *testing.T) {
	engine, messages, patients, p := newTestEngine(t, &scriptedLLM{})

	day := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	fatigueMsg := &Message{ID: primitive.NewObjectID(), PatientID: p.ID.Hex(), Role: RoleUser, Content: "so tired lately", CreatedAt: day}
	chestMsg := &Message{ID: primitive.NewObjectID(), PatientID: p.ID.Hex(), Role: RoleUser, Content: "slight chest pressure", CreatedAt: day.Add(time.Minute)}
	chatter := &Message{ID: primitive.NewObjectID(), PatientID: p.ID.Hex(), Role: RoleBot, Content: "Thanks for sharing.", CreatedAt: day.Add(2 * time.Minute)}
	messages.msgs = append(messages.msgs, fatigueMsg, chestMsg, chatter)

	patients.byAssistantID["va.user.1"].SymptomStates = map[string]symptom.Snapshot{
		"2025-03-04": {
			"Fatigue":          symptom.State{Experienced: true, Logs: []string{fatigueMsg.ID.Hex()}},
			"Chest Discomfort": symptom.State{Experienced: true, Logs: []string{chestMsg.ID.Hex()}},
		},
	}

	logs, err := engine.LogsByCategory(context.Background(), "va.user.1", "2025-03-04")
	if err != nil {
		t.Fatalf("grouping failed: %v", err)
	}

	if logs.Date != "2025-03-04" {
		t.Errorf("date = %q", logs.Date)
	}
	if len(logs.AllLogs) != 3 {
		t.Fatalf("all_logs has %d entries, want 3", len(logs.AllLogs))
	}
	if len(logs.SymptomLogs) != len(symptom.Categories)+1 {
		t.Fatalf("got %d buckets, want %d", len(logs.SymptomLogs), len(symptom.Categories)+1)
	}

	fatigue := logs.SymptomLogs["Fatigue"]
	if fatigue.Experienced == nil || !*fatigue.Experienced {
		t.Error("Fatigue should be experienced")
	}
	if len(fatigue.Logs) != 1 || fatigue.Logs[0].ID != fatigueMsg.ID.Hex() {
		t.Errorf("Fatigue logs = %v", fatigue.Logs)
	}

	general := logs.SymptomLogs["General"]
	if general.Experienced != nil {
		t.Error("General must carry no experienced flag")
	}
	if len(general.Logs) != 1 || general.Logs[0].ID != chatter.ID.Hex() {
		t.Errorf("General logs = %v", general.Logs)
	}

	// Every message lands in exactly one bucket.
	seen := map[string]int{}
	for _, bucket := range logs.SymptomLogs {
		for _, v := range bucket.Logs {
			seen[v.ID]++
		}
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("message %s appears %d times", id, n)
		}
	}
	if len(seen) != 3 {
		t.Errorf("partition covers %d messages, want 3", len(seen))
	}
}

func TestLogsByCategoryUSDateAccepted(t *testing.T) {
	engine, messages, _, p := newTestEngine(t, &scriptedLLM{})
	day := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	messages.msgs = append(messages.msgs, &Message{ID: primitive.NewObjectID(), PatientID: p.ID.Hex(), Role: RoleUser, Content: "hi", CreatedAt: day})

	logs, err := engine.LogsByCategory(context.Background(), "va.user.1", "03/04/2025")
	if err != nil {
		t.Fatalf("grouping failed: %v", err)
	}
	if logs.Date != "2025-03-04" {
		t.Errorf("date = %q, want normalized ISO", logs.Date)
	}
	if len(logs.AllLogs) != 1 {
		t.Errorf("all_logs = %v", logs.AllLogs)
	}
}

func TestLogsByCategoryEmptyDay(t *testing.T) {
	engine, _, _, _ := newTestEngine(t, &scriptedLLM{})

	logs, err := engine.LogsByCategory(context.Background(), "va.user.1", "2025-03-09")
	if err != nil {
		t.Fatalf("grouping failed: %v", err)
	}
	if len(logs.AllLogs) != 0 {
		t.Errorf("all_logs = %v", logs.AllLogs)
	}
	for category, bucket := range logs.SymptomLogs {
		if len(bucket.Logs) != 0 {
			t.Errorf("bucket %s not empty", category)
		}
	}
}
