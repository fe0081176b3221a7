package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// DocumentStatus is the review state of an uploaded case document.
type DocumentStatus string

// Document review states.
const (
	DocumentPending   DocumentStatus = "PENDING"   // document type available but not uploaded
	DocumentSubmitted DocumentStatus = "SUBMITTED" // uploaded, awaiting review
	DocumentApproved  DocumentStatus = "APPROVED"
	DocumentRejected  DocumentStatus = "REJECTED"
)

// CaseDocument holds the structure for the case_documents collection in mongo.
// At most one document exists per (case, documentType); re-upload overwrites.
type CaseDocument struct {
	ID           primitive.ObjectID  `json:"_id" bson:"_id"`
	CaseID       primitive.ObjectID  `json:"caseId" bson:"caseId"`
	DocumentType string              `json:"documentType" bson:"documentType"`
	UploadedBy   string              `json:"uploadedBy" bson:"uploadedBy"`
	UploadedAt   primitive.DateTime  `json:"uploadedAt" bson:"uploadedAt"`
	FileURL      string              `json:"fileUrl" bson:"fileUrl"`
	FileName     string              `json:"fileName" bson:"fileName"`
	Status       DocumentStatus      `json:"status" bson:"status"`
	AdminRemarks *string             `json:"adminRemarks" bson:"adminRemarks"`
	ReviewedBy   *string             `json:"reviewedBy" bson:"reviewedBy"`
	ReviewedAt   *primitive.DateTime `json:"reviewedAt" bson:"reviewedAt"`
	CreatedAt    primitive.DateTime  `json:"createdAt" bson:"createdAt"`
	UpdatedAt    primitive.DateTime  `json:"updatedAt" bson:"updatedAt"`
}
