package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Counter names.
const (
	CounterCaseSequence = "caseSequence"
	CounterFileNumber   = "fileNumber"
)

// Counter is an atomically incremented sequence, unique per (name, year).
// Backs the annual-reset display ids and the registry file numbers.
type Counter struct {
	ID   primitive.ObjectID `json:"_id" bson:"_id"`
	Name string             `json:"name" bson:"name"`
	Year int                `json:"year" bson:"year"`
	Seq  int                `json:"seq" bson:"seq"`
}
