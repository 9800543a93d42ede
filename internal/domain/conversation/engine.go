package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/carewatch/carewatch/internal/domain/patient"
	"github.com/carewatch/carewatch/internal/domain/symptom"
	"github.com/carewatch/carewatch/internal/platform/llm"
	"github.com/carewatch/carewatch/pkg/dates"
)

const (
	// WelcomeFirst greets a patient with no prior check-in turns.
	WelcomeFirst = "Hello, thanks for checking in with the health monitor. How are you feeling today?"

	// WelcomeReturning greets a patient whose last check-in happened on
	// an earlier day.
	WelcomeReturning = "Hello, thanks for checking in again. How have you been feeling since we last spoke?"
)

// Engine drives the check-in dialogue: it persists turns, calls the
// language model with the day's context, and closes sessions by
// classifying the day's transcript into a symptom snapshot.
type Engine struct {
	messages   Repository
	patients   patient.Repository
	client     llm.Client
	prompts    *llm.Prompts
	classifier *symptom.Classifier
	model      string
	logger     zerolog.Logger
	now        func() time.Time
}

func NewEngine(messages Repository, patients patient.Repository, client llm.Client, prompts *llm.Prompts, classifier *symptom.Classifier, model string, logger zerolog.Logger) *Engine {
	return &Engine{
		messages:   messages,
		patients:   patients,
		client:     client,
		prompts:    prompts,
		classifier: classifier,
		model:      model,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// TurnResult is the outcome of one exchanged turn.
type TurnResult struct {
	Response  string `json:"response"`
	ShouldEnd bool   `json:"should_end"`
}

// SubmitTurn stores the patient's utterance, asks the model for the
// next reply over today's transcript, and on a sentinel reply closes
// the session with a classified snapshot for today.
func (e *Engine) SubmitTurn(ctx context.Context, assistantUserID, userText string) (*TurnResult, error) {
	p, err := e.patients.GetByAssistantID(ctx, assistantUserID)
	if err != nil {
		return nil, err
	}
	patientID := p.ID.Hex()
	now := e.now()

	userMsg := &Message{
		PatientID: patientID,
		Role:      RoleUser,
		Content:   userText,
		CreatedAt: now,
	}
	if err := e.messages.Insert(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("store user turn: %w", err)
	}

	today, err := e.todaysMessages(ctx, patientID, now)
	if err != nil {
		return nil, err
	}

	reply, err := e.client.Complete(ctx, llm.Request{
		Model:       e.model,
		Messages:    e.chatHistory(today),
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return nil, fmt.Errorf("generate reply: %w", err)
	}

	shouldEnd := strings.Contains(reply, Sentinel)
	if shouldEnd {
		reply = strings.TrimSpace(strings.ReplaceAll(reply, Sentinel, ""))
	}

	botMsg := &Message{
		PatientID: patientID,
		Role:      RoleBot,
		Content:   reply,
		CreatedAt: e.now(),
	}
	if err := e.messages.Insert(ctx, botMsg); err != nil {
		return nil, fmt.Errorf("store reply: %w", err)
	}

	if shouldEnd {
		// The snapshot write must land before the client is told the
		// session closed. Classification failures inside closeSession
		// stay soft; a store failure does not.
		if err := e.closeSession(ctx, p, today); err != nil {
			e.logger.Error().Err(err).Str("patient_id", patientID).Msg("failed to close session")
			return nil, err
		}
	}

	return &TurnResult{Response: reply, ShouldEnd: shouldEnd}, nil
}

// LastMessage returns what the assistant should say when the patient
// opens a session: the day's pending bot reply, or a welcome line.
func (e *Engine) LastMessage(ctx context.Context, assistantUserID string) (View, error) {
	p, err := e.patients.GetByAssistantID(ctx, assistantUserID)
	if err != nil {
		return View{}, err
	}

	last, err := e.messages.LastBotMessage(ctx, p.ID.Hex())
	if err != nil {
		if err == ErrNoMessages {
			return e.welcome(WelcomeFirst), nil
		}
		return View{}, err
	}
	if last.CreatedAt.UTC().Format(dates.ISOLayout) != e.now().Format(dates.ISOLayout) {
		return e.welcome(WelcomeReturning), nil
	}
	return last.View(), nil
}

func (e *Engine) welcome(text string) View {
	return View{
		Role:      RoleBot,
		Content:   text,
		CreatedAt: e.now().Format(time.RFC3339),
	}
}

// EndSession closes today's session on explicit request, classifying
// whatever transcript exists so far.
func (e *Engine) EndSession(ctx context.Context, assistantUserID string) error {
	p, err := e.patients.GetByAssistantID(ctx, assistantUserID)
	if err != nil {
		return err
	}
	today, err := e.todaysMessages(ctx, p.ID.Hex(), e.now())
	if err != nil {
		return err
	}
	return e.closeSession(ctx, p, today)
}

// SymptomStateFor returns one date's snapshot, normalized. A date with
// no stored snapshot yields the all-false default.
func (e *Engine) SymptomStateFor(ctx context.Context, assistantUserID, date string) (symptom.Snapshot, error) {
	p, err := e.patients.GetByAssistantID(ctx, assistantUserID)
	if err != nil {
		return nil, err
	}
	iso, err := dates.NormalizeISO(date)
	if err != nil {
		return nil, err
	}
	return symptom.Normalize(p.SnapshotFor(iso)), nil
}

// closeSession classifies the day's transcript and writes the snapshot
// under today's date. The snapshot lands even when classification
// degrades to the default.
func (e *Engine) closeSession(ctx context.Context, p *patient.Patient, today []*Message) error {
	transcript := make([]symptom.TranscriptEntry, 0, len(today))
	for _, m := range today {
		transcript = append(transcript, symptom.TranscriptEntry{
			ID:        m.ID.Hex(),
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}

	result := e.classifier.Classify(ctx, transcript)
	if result.Failed() {
		e.logger.Warn().
			Str("patient_id", p.ID.Hex()).
			Str("reason", result.FailureReason).
			Msg("symptom classification degraded to default")
	}

	now := e.now()
	date := now.Format(dates.ISOLayout)
	if err := e.patients.SetSymptomSnapshot(ctx, p.ID, date, result.Snapshot, now); err != nil {
		return fmt.Errorf("store symptom snapshot: %w", err)
	}
	return nil
}

func (e *Engine) todaysMessages(ctx context.Context, patientID string, now time.Time) ([]*Message, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	msgs, err := e.messages.ListSince(ctx, patientID, midnight)
	if err != nil {
		return nil, fmt.Errorf("load today's transcript: %w", err)
	}
	return msgs, nil
}

// chatHistory converts stored turns to chat-completion messages. The
// stored "bot" role becomes the API's "assistant" role, and the system
// prompt is prepended at the start of a fresh conversation.
func (e *Engine) chatHistory(today []*Message) []llm.Message {
	formatted := make([]llm.Message, 0, len(today)+1)
	for _, m := range today {
		role := m.Role
		if role == RoleBot {
			role = "assistant"
		}
		formatted = append(formatted, llm.Message{Role: role, Content: m.Content})
	}
	if len(formatted) <= 1 {
		formatted = append([]llm.Message{{Role: "system", Content: e.prompts.System}}, formatted...)
	}
	return formatted
}
