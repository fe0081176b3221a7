package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Message is a formal Qazi-to-applicant communication attached to a case,
// distinct from the lightweight notifications feed.
type Message struct {
	ID             primitive.ObjectID  `json:"_id" bson:"_id"`
	CaseID         *primitive.ObjectID `json:"caseId,omitempty" bson:"caseId,omitempty"`
	RecipientID    string              `json:"recipientId" bson:"recipientId"`
	RecipientEmail string              `json:"recipientEmail,omitempty" bson:"recipientEmail,omitempty"`
	SenderID       string              `json:"senderId" bson:"senderId"`
	SenderName     string              `json:"senderName" bson:"senderName"`
	Title          string              `json:"title" bson:"title"`
	Body           string              `json:"body" bson:"body"`
	Read           bool                `json:"read" bson:"read"`
	CreatedAt      primitive.DateTime  `json:"createdAt" bson:"createdAt"`
	UpdatedAt      primitive.DateTime  `json:"updatedAt" bson:"updatedAt"`
}
