package patient

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carewatch/carewatch/internal/domain/symptom"
)

// Patient is the monitored-person record in the patients collection.
// The dashboard payloads (wearable series, risk prediction, legacy
// conversation log) are stored as free-form documents and served
// verbatim.
type Patient struct {
	ID                   primitive.ObjectID          `bson:"_id,omitempty" json:"_id,omitempty"`
	DisplayID            string                      `bson:"id,omitempty" json:"id,omitempty"`
	Name                 string                      `bson:"name" json:"name"`
	Age                  int                         `bson:"age,omitempty" json:"age,omitempty"`
	Gender               string                      `bson:"gender,omitempty" json:"gender,omitempty"`
	RiskLevel            string                      `bson:"riskLevel,omitempty" json:"riskLevel,omitempty"`
	DateOfBirth          string                      `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	AssistantUserID      string                      `bson:"assistant_user_id,omitempty" json:"assistant_user_id,omitempty"`
	AssistantIDAddedAt   *time.Time                  `bson:"assistant_id_added_at,omitempty" json:"assistant_id_added_at,omitempty"`
	ConversationEnded    bool                        `bson:"conversation_ended" json:"conversation_ended"`
	LastConversationDate *time.Time                  `bson:"last_conversation_date,omitempty" json:"last_conversation_date,omitempty"`
	SymptomStates        map[string]symptom.Snapshot `bson:"symptom_states,omitempty" json:"symptom_states,omitempty"`
	WearableSensorData   map[string]interface{}      `bson:"wearableSensorData,omitempty" json:"wearableSensorData,omitempty"`
	AIRiskPrediction     map[string]interface{}      `bson:"aiRiskPrediction,omitempty" json:"aiRiskPrediction,omitempty"`
	ConversationLog      map[string]interface{}      `bson:"conversationLog,omitempty" json:"conversationLog,omitempty"`
}

// Unassigned reports whether the patient still needs a voice-assistant
// id. Both the wholly absent field and the present-but-empty string are
// treated as unassigned; stored data holds both states.
func (p *Patient) Unassigned() bool {
	return p.AssistantUserID == ""
}

// SnapshotFor returns the stored symptom snapshot for an ISO date, or
// nil when none exists.
func (p *Patient) SnapshotFor(date string) symptom.Snapshot {
	if p.SymptomStates == nil {
		return nil
	}
	return p.SymptomStates[date]
}

// Summary is the sidebar projection of a patient.
type Summary struct {
	DisplayID string `bson:"id" json:"id"`
	Name      string `bson:"name" json:"name"`
	Age       int    `bson:"age,omitempty" json:"age,omitempty"`
	Gender    string `bson:"gender,omitempty" json:"gender,omitempty"`
	RiskLevel string `bson:"riskLevel,omitempty" json:"riskLevel,omitempty"`
}
