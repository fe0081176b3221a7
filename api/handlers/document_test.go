package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/darul-qaza/darul-qaza-api/api/handlers"
	"github.com/darul-qaza/darul-qaza-api/config"
	"github.com/darul-qaza/darul-qaza-api/databases/mocks"
	"github.com/darul-qaza/darul-qaza-api/models"
)

func newOpenCase(status models.CaseStatus) *models.Case {
	c := newCase(status)
	c.FileNumber = "MDMS-2026-000042"
	return c
}

func TestIsDocumentsSectionVisible(t *testing.T) {
	t.Run("open case with file number and type", func(t *testing.T) {
		assert.True(t, handlers.IsDocumentsSectionVisible(newOpenCase(models.StatusUnderReview)))
	})
	t.Run("no file number", func(t *testing.T) {
		c := newCase(models.StatusUnderReview)
		c.FileNumber = ""
		assert.False(t, handlers.IsDocumentsSectionVisible(c))
	})
	t.Run("no type", func(t *testing.T) {
		c := newOpenCase(models.StatusUnderReview)
		c.Type = ""
		assert.False(t, handlers.IsDocumentsSectionVisible(c))
	})
	t.Run("before approval", func(t *testing.T) {
		assert.False(t, handlers.IsDocumentsSectionVisible(newOpenCase(models.StatusDarkhastSubmitted)))
	})
	t.Run("after closure", func(t *testing.T) {
		assert.False(t, handlers.IsDocumentsSectionVisible(newOpenCase(models.StatusCaseClosed)))
	})
}

func TestIsUploadAllowed(t *testing.T) {
	assert.True(t, handlers.IsUploadAllowed(newOpenCase(models.StatusResolutionPending)))
	assert.False(t, handlers.IsUploadAllowed(newOpenCase(models.StatusCaseClosed)))
	assert.False(t, handlers.IsUploadAllowed(newOpenCase(models.StatusDecisionApproved)))
}

func documentCaseRequest(t *testing.T, method, body string, caseID primitive.ObjectID) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, "/api/v1/documents/case/"+caseID.Hex(), bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	return mux.SetURLVars(req, map[string]string{"case_id": caseID.Hex()})
}

func TestDocument_GetDocumentsForCaseHandler_GatedClosed(t *testing.T) {
	caseData := newCase(models.StatusDarkhastSubmitted)

	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(caseData, nil)

	d := handlers.Document{DB: &mocks.CaseDocumentDatabase{}, CDB: caseDB}
	req := documentCaseRequest(t, "GET", "", caseData.ID)
	rr := httptest.NewRecorder()
	http.HandlerFunc(d.GetDocumentsForCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["visible"])
	assert.Equal(t, "Documents & affidavits will be enabled after application approval.", resp["message"])
	assert.Empty(t, resp["documents"])
}

func TestDocument_UploadDocumentHandler_TypeNotAllowed(t *testing.T) {
	caseData := newOpenCase(models.StatusUnderReview) // Talaq

	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(caseData, nil)

	d := handlers.Document{DB: &mocks.CaseDocumentDatabase{}, CDB: caseDB}
	body, _ := json.Marshal(map[string]string{
		"documentType": config.DocDeathCertificate,
		"fileUrl":      "https://x/death.pdf",
	})
	req := documentCaseRequest(t, "POST", string(body), caseData.ID)
	rr := httptest.NewRecorder()
	http.HandlerFunc(d.UploadDocumentHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, guardMessage(t, rr), "is not allowed for Talaq cases")
}

func TestDocument_UploadDocumentHandler_BlockedAfterClosure(t *testing.T) {
	caseData := newOpenCase(models.StatusCaseClosed)

	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(caseData, nil)

	d := handlers.Document{DB: &mocks.CaseDocumentDatabase{}, CDB: caseDB}
	req := documentCaseRequest(t, "POST", `{"documentType":"x","fileUrl":"y"}`, caseData.ID)
	rr := httptest.NewRecorder()
	http.HandlerFunc(d.UploadDocumentHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Document uploads are not allowed at this case stage.", guardMessage(t, rr))
}

func TestDocument_UploadDocumentHandler_RequiresFileURLAndName(t *testing.T) {
	caseData := newOpenCase(models.StatusUnderReview)

	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(caseData, nil)

	for name, body := range map[string]map[string]string{
		"missing fileName": {
			"documentType": config.DocApplicantStatement,
			"fileUrl":      "https://x/statement.pdf",
			"fileName":     "",
		},
		"missing fileUrl": {
			"documentType": config.DocApplicantStatement,
			"fileName":     "statement.pdf",
		},
	} {
		t.Run(name, func(t *testing.T) {
			docDB := &mocks.CaseDocumentDatabase{}
			d := handlers.Document{DB: docDB, CDB: caseDB}
			payload, _ := json.Marshal(body)
			req := documentCaseRequest(t, "POST", string(payload), caseData.ID)
			rr := httptest.NewRecorder()
			http.HandlerFunc(d.UploadDocumentHandler).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "File URL and file name are required.", guardMessage(t, rr))
			docDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
		})
	}
}

func TestDocument_UploadDocumentHandler_FirstUpload(t *testing.T) {
	caseData := newOpenCase(models.StatusUnderReview)

	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(caseData, nil)

	docDB := &mocks.CaseDocumentDatabase{}
	docDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)
	docDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	d := handlers.Document{DB: docDB, CDB: caseDB}
	body, _ := json.Marshal(map[string]string{
		"documentType": config.DocApplicantStatement,
		"fileUrl":      "https://x/statement.pdf",
		"fileName":     "statement.pdf",
		"uploadedBy":   "user-1",
	})
	req := documentCaseRequest(t, "POST", string(body), caseData.ID)
	rr := httptest.NewRecorder()
	http.HandlerFunc(d.UploadDocumentHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var created models.CaseDocument
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, models.DocumentSubmitted, created.Status)
	assert.Equal(t, config.DocApplicantStatement, created.DocumentType)
	docDB.AssertExpectations(t)
}

func TestDocument_UploadDocumentHandler_ReuploadResetsReview(t *testing.T) {
	caseData := newOpenCase(models.StatusUnderReview)
	remarks := "blurry scan"
	reviewer := "admin"
	reviewedAt := primitive.NewDateTimeFromTime(time.Now())
	existing := &models.CaseDocument{
		ID:           primitive.NewObjectID(),
		CaseID:       caseData.ID,
		DocumentType: config.DocApplicantStatement,
		Status:       models.DocumentRejected,
		AdminRemarks: &remarks,
		ReviewedBy:   &reviewer,
		ReviewedAt:   &reviewedAt,
	}

	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(caseData, nil)

	var captured bson.M
	docDB := &mocks.CaseDocumentDatabase{}
	docDB.On("FindOne", mock.Anything, bson.M{"caseId": caseData.ID, "documentType": config.DocApplicantStatement}).
		Return(existing, nil)
	docDB.On("FindOne", mock.Anything, bson.M{"_id": existing.ID}).Return(existing, nil)
	docDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(bson.M)
		}).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	d := handlers.Document{DB: docDB, CDB: caseDB}
	body, _ := json.Marshal(map[string]string{
		"documentType": config.DocApplicantStatement,
		"fileUrl":      "https://x/statement-v2.pdf",
		"fileName":     "statement-v2.pdf",
	})
	req := documentCaseRequest(t, "POST", string(body), caseData.ID)
	rr := httptest.NewRecorder()
	http.HandlerFunc(d.UploadDocumentHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	set := captured["$set"].(bson.M)
	assert.Equal(t, models.DocumentSubmitted, set["status"])
	assert.Nil(t, set["adminRemarks"])
	assert.Nil(t, set["reviewedBy"])
	assert.Nil(t, set["reviewedAt"])
	assert.Equal(t, "https://x/statement-v2.pdf", set["fileUrl"])
}

func TestDocument_RejectDocumentHandler_RequiresReason(t *testing.T) {
	d := handlers.Document{DB: &mocks.CaseDocumentDatabase{}}
	req, _ := http.NewRequest("PUT", "/api/v1/documents/1234/reject", bytes.NewBufferString(`{"adminRemarks":"  "}`))
	req = mux.SetURLVars(req, map[string]string{"doc_id": "1234"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(d.RejectDocumentHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Reason is mandatory for document rejection.", guardMessage(t, rr))
}

func TestDocument_ApproveDocumentHandler(t *testing.T) {
	doc := &models.CaseDocument{
		ID:           primitive.NewObjectID(),
		CaseID:       primitive.NewObjectID(),
		DocumentType: config.DocApplicantStatement,
		UploadedBy:   "user-1",
		Status:       models.DocumentSubmitted,
	}

	var captured bson.M
	docDB := &mocks.CaseDocumentDatabase{}
	docDB.On("FindOne", mock.Anything, mock.Anything).Return(doc, nil)
	docDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(bson.M)
		}).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	d := handlers.Document{DB: docDB, Notifier: handlers.Notifier{}}
	req, _ := http.NewRequest("PUT", "/api/v1/documents/"+doc.ID.Hex()+"/approve", bytes.NewBufferString(`{"adminRemarks":"verified"}`))
	req = mux.SetURLVars(req, map[string]string{"doc_id": doc.ID.Hex()})
	rr := httptest.NewRecorder()
	http.HandlerFunc(d.ApproveDocumentHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	set := captured["$set"].(bson.M)
	assert.Equal(t, models.DocumentApproved, set["status"])
	// approval never touches remarks, even when the request carries some
	assert.NotContains(t, set, "adminRemarks")
}

func TestDocument_RejectDocumentHandler_TrimsReason(t *testing.T) {
	doc := &models.CaseDocument{
		ID:           primitive.NewObjectID(),
		CaseID:       primitive.NewObjectID(),
		DocumentType: config.DocApplicantStatement,
		UploadedBy:   "user-1",
		Status:       models.DocumentSubmitted,
	}

	var captured bson.M
	docDB := &mocks.CaseDocumentDatabase{}
	docDB.On("FindOne", mock.Anything, mock.Anything).Return(doc, nil)
	docDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(bson.M)
		}).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	d := handlers.Document{DB: docDB, Notifier: handlers.Notifier{}}
	req, _ := http.NewRequest("PUT", "/api/v1/documents/"+doc.ID.Hex()+"/reject", bytes.NewBufferString(`{"adminRemarks":"  blurry scan  "}`))
	req = mux.SetURLVars(req, map[string]string{"doc_id": doc.ID.Hex()})
	rr := httptest.NewRecorder()
	http.HandlerFunc(d.RejectDocumentHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	set := captured["$set"].(bson.M)
	assert.Equal(t, models.DocumentRejected, set["status"])
	assert.Equal(t, "blurry scan", set["adminRemarks"])
}

func TestDocument_GetAllowedDocumentTypesHandler(t *testing.T) {
	caseData := newOpenCase(models.StatusUnderReview)
	caseData.Type = "Virasat"

	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(caseData, nil)

	d := handlers.Document{DB: &mocks.CaseDocumentDatabase{}, CDB: caseDB}
	req := documentCaseRequest(t, "GET", "", caseData.ID)
	rr := httptest.NewRecorder()
	http.HandlerFunc(d.GetAllowedDocumentTypesHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		CaseType      string   `json:"caseType"`
		AllowedTypes  []string `json:"allowedTypes"`
		Visible       bool     `json:"visible"`
		UploadAllowed bool     `json:"uploadAllowed"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Virasat", resp.CaseType)
	assert.Contains(t, resp.AllowedTypes, config.DocInheritanceDocument)
	assert.True(t, resp.Visible)
	assert.True(t, resp.UploadAllowed)
}
