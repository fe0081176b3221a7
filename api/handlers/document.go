package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/darul-qaza/darul-qaza-api/api"
	"github.com/darul-qaza/darul-qaza-api/config"
	"github.com/darul-qaza/darul-qaza-api/databases"
	"github.com/darul-qaza/darul-qaza-api/models"
)

// Document exported for testing purposes
type Document struct {
	DB       databases.CaseDocumentDatabase
	CDB      databases.CaseDatabase
	Notifier Notifier
}

// IsDocumentsSectionVisible reports whether the documents section is open for
// the case: the file must be opened (file number assigned), the matter type
// selected, and the case inside the document window of the lifecycle.
func IsDocumentsSectionVisible(caseData *models.Case) bool {
	if strings.TrimSpace(caseData.FileNumber) == "" {
		return false
	}
	if strings.TrimSpace(caseData.Type) == "" {
		return false
	}
	for _, s := range config.ValidStatusesForDocs {
		if string(caseData.Status) == s {
			return true
		}
	}
	return false
}

// IsUploadAllowed is the visibility check minus the terminal statuses; viewing
// stays open longer than uploading.
func IsUploadAllowed(caseData *models.Case) bool {
	if caseData.Status == models.StatusCaseClosed || caseData.Status == models.StatusDecisionApproved {
		return false
	}
	return IsDocumentsSectionVisible(caseData)
}

func (d Document) loadDocumentCase(w http.ResponseWriter, r *http.Request) (*models.Case, bool) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cID, err := primitive.ObjectIDFromHex(muxVar(r, "case_id"))
	if err != nil {
		config.ErrorStatus("invalid case ID", http.StatusBadRequest, w, err)
		return nil, false
	}
	caseData, err := d.CDB.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		config.GuardStatus("Case not found", http.StatusNotFound, w)
		return nil, false
	}
	return caseData, true
}

// GetAllowedDocumentTypesHandler returns the matter type's document catalog
// together with the gating verdicts, so the client renders exactly what the
// server will accept.
func (d Document) GetAllowedDocumentTypesHandler(w http.ResponseWriter, r *http.Request) {
	caseData, ok := d.loadDocumentCase(w, r)
	if !ok {
		return
	}

	allowed := config.RequiredDocumentsFor(caseData.Type)
	if allowed == nil {
		allowed = []string{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"caseType":      caseData.Type,
		"allowedTypes":  allowed,
		"visible":       IsDocumentsSectionVisible(caseData),
		"uploadAllowed": IsUploadAllowed(caseData),
	})
}

// GetDocumentsForCaseHandler lists the case's uploaded documents. When the
// section is gated closed the response still succeeds, with visible:false and
// the user-facing reason, so the client can render the locked state.
func (d Document) GetDocumentsForCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseData, ok := d.loadDocumentCase(w, r)
	if !ok {
		return
	}

	if !IsDocumentsSectionVisible(caseData) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"visible":   false,
			"message":   "Documents & affidavits will be enabled after application approval.",
			"documents": []models.CaseDocument{},
		})
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	docs, err := d.DB.Find(ctx, bson.M{"caseId": caseData.ID})
	if err != nil {
		config.ErrorStatus("failed to get case documents", http.StatusInternalServerError, w, err)
		return
	}
	if docs == nil {
		docs = []models.CaseDocument{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"visible":       true,
		"uploadAllowed": IsUploadAllowed(caseData),
		"allowedTypes":  config.RequiredDocumentsFor(caseData.Type),
		"documents":     docs,
	})
}

// UploadDocumentHandler registers an uploaded file for a case. One document
// per (case, type): a re-upload overwrites the previous file and resets the
// review state back to SUBMITTED, discarding any prior approval or rejection.
func (d Document) UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DocumentType string `json:"documentType"`
		FileURL      string `json:"fileUrl"`
		FileName     string `json:"fileName"`
		UploadedBy   string `json:"uploadedBy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	caseData, ok := d.loadDocumentCase(w, r)
	if !ok {
		return
	}

	if !IsUploadAllowed(caseData) {
		config.GuardStatus("Document uploads are not allowed at this case stage.", http.StatusBadRequest, w)
		return
	}
	allowed := false
	for _, t := range config.RequiredDocumentsFor(caseData.Type) {
		if t == body.DocumentType {
			allowed = true
			break
		}
	}
	if !allowed {
		config.GuardStatus(fmt.Sprintf("Document type %q is not allowed for %s cases.", body.DocumentType, caseData.Type), http.StatusBadRequest, w)
		return
	}
	if body.FileURL == "" || body.FileName == "" {
		config.GuardStatus("File URL and file name are required.", http.StatusBadRequest, w)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	uploadedBy := api.CallerID(r, body.UploadedBy)
	now := primitive.NewDateTimeFromTime(time.Now())

	existing, err := d.DB.FindOne(ctx, bson.M{"caseId": caseData.ID, "documentType": body.DocumentType})
	if err == nil && existing != nil {
		// Re-upload: overwrite the file and reset the review state
		_, err = d.DB.UpdateOne(ctx, bson.M{"_id": existing.ID}, bson.M{"$set": bson.M{
			"fileUrl":      body.FileURL,
			"fileName":     body.FileName,
			"uploadedBy":   uploadedBy,
			"uploadedAt":   now,
			"status":       models.DocumentSubmitted,
			"adminRemarks": nil,
			"reviewedBy":   nil,
			"reviewedAt":   nil,
			"updatedAt":    now,
		}})
		if err != nil {
			config.ErrorStatus("failed to update document", http.StatusInternalServerError, w, err)
			return
		}
		doc, err := d.DB.FindOne(ctx, bson.M{"_id": existing.ID})
		if err != nil {
			config.ErrorStatus("failed to reload document", http.StatusInternalServerError, w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(doc)
		return
	}

	doc := models.CaseDocument{
		ID:           primitive.NewObjectID(),
		CaseID:       caseData.ID,
		DocumentType: body.DocumentType,
		UploadedBy:   uploadedBy,
		UploadedAt:   now,
		FileURL:      body.FileURL,
		FileName:     body.FileName,
		Status:       models.DocumentSubmitted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := d.DB.InsertOne(ctx, doc); err != nil {
		config.ErrorStatus("failed to create document", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(doc)
}

func (d Document) loadDocument(w http.ResponseWriter, r *http.Request) (*models.CaseDocument, bool) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dID, err := primitive.ObjectIDFromHex(muxVar(r, "doc_id"))
	if err != nil {
		config.ErrorStatus("invalid document ID", http.StatusBadRequest, w, err)
		return nil, false
	}
	doc, err := d.DB.FindOne(ctx, bson.M{"_id": dID})
	if err != nil {
		config.GuardStatus("Document not found", http.StatusNotFound, w)
		return nil, false
	}
	return doc, true
}

// ApproveDocumentHandler marks a submitted document APPROVED. Any existing
// remarks are left untouched; rejection is the path that demands a reason.
func (d Document) ApproveDocumentHandler(w http.ResponseWriter, r *http.Request) {
	doc, ok := d.loadDocument(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caller := api.CallerID(r, "admin")
	now := primitive.NewDateTimeFromTime(time.Now())
	_, err := d.DB.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": bson.M{
		"status":     models.DocumentApproved,
		"reviewedBy": caller,
		"reviewedAt": now,
		"updatedAt":  now,
	}})
	if err != nil {
		config.ErrorStatus("failed to approve document", http.StatusInternalServerError, w, err)
		return
	}

	d.Notifier.Notify(ctx, doc.UploadedBy,
		fmt.Sprintf("Your document %q has been approved.", doc.DocumentType),
		models.NotifySuccess, &doc.CaseID)

	updated, err := d.DB.FindOne(ctx, bson.M{"_id": doc.ID})
	if err != nil {
		config.ErrorStatus("failed to reload document", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(updated)
}

// RejectDocumentHandler marks a submitted document REJECTED. The remarks field
// is mandatory so the applicant always learns why.
func (d Document) RejectDocumentHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AdminRemarks string `json:"adminRemarks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	reason := strings.TrimSpace(body.AdminRemarks)
	if reason == "" {
		config.GuardStatus("Reason is mandatory for document rejection.", http.StatusBadRequest, w)
		return
	}

	doc, ok := d.loadDocument(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caller := api.CallerID(r, "admin")
	now := primitive.NewDateTimeFromTime(time.Now())
	_, err := d.DB.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": bson.M{
		"status":       models.DocumentRejected,
		"adminRemarks": reason,
		"reviewedBy":   caller,
		"reviewedAt":   now,
		"updatedAt":    now,
	}})
	if err != nil {
		config.ErrorStatus("failed to reject document", http.StatusInternalServerError, w, err)
		return
	}

	d.Notifier.Notify(ctx, doc.UploadedBy,
		fmt.Sprintf("Your document %q was rejected. Reason: %s", doc.DocumentType, reason),
		models.NotifyWarning, &doc.CaseID)

	updated, err := d.DB.FindOne(ctx, bson.M{"_id": doc.ID})
	if err != nil {
		config.ErrorStatus("failed to reload document", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(updated)
}

// GetDocumentHandler returns a single document by id
func (d Document) GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	doc, ok := d.loadDocument(w, r)
	if !ok {
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(doc)
}
