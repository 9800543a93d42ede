// Package assistant manages voice-assistant identity assignment: an
// auto-generated id for every patient lacking one, an audit log of
// assignments, and a polling feed of recent assignments.
package assistant

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDPrefix marks auto-generated assistant user ids.
const IDPrefix = "va.auto."

// AssignmentLog records one assistant id handed to a patient.
type AssignmentLog struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	PatientID       string             `bson:"patient_id" json:"patient_id"`
	AssistantUserID string             `bson:"assistant_user_id" json:"assistant_user_id"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

// Update is one entry in the polling feed of recent assignments.
type Update struct {
	PatientID       string    `json:"patient_id"`
	PatientName     string    `json:"patient_name"`
	AssistantUserID string    `json:"assistant_user_id"`
	UpdatedAt       time.Time `json:"updated_at"`
}
