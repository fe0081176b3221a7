package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Notification severities.
const (
	NotifyInfo    = "INFO"
	NotifySuccess = "SUCCESS"
	NotifyWarning = "WARNING"
	NotifyError   = "ERROR"
)

// Notification holds the structure for the notifications collection in mongo.
// Append-only; only the read flag is ever mutated.
type Notification struct {
	ID        primitive.ObjectID  `json:"_id" bson:"_id"`
	UserID    string              `json:"userId" bson:"userId"`
	CaseID    *primitive.ObjectID `json:"caseId,omitempty" bson:"caseId,omitempty"`
	Message   string              `json:"message" bson:"message"`
	Type      string              `json:"type" bson:"type"`
	Read      bool                `json:"read" bson:"read"`
	CreatedAt primitive.DateTime  `json:"createdAt" bson:"createdAt"`
}
