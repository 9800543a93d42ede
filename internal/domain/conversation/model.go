// Package conversation runs the voice-assistant check-in dialogue and
// serves its stored transcripts.
package conversation

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sentinel is the marker the language model appends to its final reply
// when the check-in is complete. It is stripped before the reply is
// stored or returned.
const Sentinel = "CONVERSATION_END"

const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Message is one stored conversation turn.
type Message struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	PatientID       string             `bson:"patient_id" json:"patient_id"`
	Role            string             `bson:"role" json:"role"`
	Content         string             `bson:"content" json:"content"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	ChainOfThoughts string             `bson:"chain_of_thoughts,omitempty" json:"chain_of_thoughts,omitempty"`
}

// View is the wire shape of a stored message: hex id and ISO timestamp.
// Synthetic messages, like welcome lines, carry no id.
type View struct {
	ID        string `json:"id,omitempty"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func (m *Message) View() View {
	return View{
		ID:        m.ID.Hex(),
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
