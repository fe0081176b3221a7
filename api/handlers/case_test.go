package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
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
	"github.com/darul-qaza/darul-qaza-api/databases"
	"github.com/darul-qaza/darul-qaza-api/databases/mocks"
	"github.com/darul-qaza/darul-qaza-api/models"
)

func newCase(status models.CaseStatus) *models.Case {
	return &models.Case{
		ID:           primitive.NewObjectID(),
		CaseID:       "DQ/2026/007",
		DisplayID:    "DQ/2026/007",
		SequentialID: 7,
		Year:         2026,
		Type:         "Talaq",
		CreatedBy:    "user-1",
		Status:       status,
		CreatedAt:    primitive.NewDateTimeFromTime(time.Now()),
		UpdatedAt:    primitive.NewDateTimeFromTime(time.Now()),
	}
}

func caseRequest(t *testing.T, method, body string, caseID primitive.ObjectID) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, "/api/v1/cases/"+caseID.Hex(), bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	return mux.SetURLVars(req, map[string]string{"case_id": caseID.Hex()})
}

func guardMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var m map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("response is not a guard message: %s", rr.Body.String())
	}
	return m["message"]
}

func TestCase_SubmitDarkhastHandler(t *testing.T) {
	caseDB := &mocks.CaseDatabase{}
	counterDB := &mocks.CounterDatabase{}

	counterDB.On("NextSequence", mock.Anything, models.CounterCaseSequence, mock.Anything).
		Return(12, nil)
	caseDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	c := handlers.Case{DB: caseDB, Counters: counterDB, Notifier: handlers.Notifier{}}

	body := `{"userId":"user-1","darkhast":{"applicantName":"Ahmed","respondentName":"Fatima"}}`
	req, _ := http.NewRequest("POST", "/api/v1/cases/darkhast", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.SubmitDarkhastHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var created models.Case
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, fmt.Sprintf("DQ/%d/012", time.Now().Year()), created.DisplayID)
	assert.Equal(t, models.StatusDarkhastSubmitted, created.Status)
	assert.Equal(t, "user-1", created.CreatedBy)
	assert.Len(t, created.History, 1)
	assert.Equal(t, "Darkhast submitted", created.History[0].Note)
	caseDB.AssertExpectations(t)
}

func TestCase_ApproveDarkhastHandler_RequiresDecisionComment(t *testing.T) {
	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).
		Return(newCase(models.StatusDarkhastSubmitted), nil)

	c := handlers.Case{DB: caseDB, Notifier: handlers.Notifier{}}

	req := caseRequest(t, "PUT", `{"decisionComment":"   "}`, primitive.NewObjectID())
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.ApproveDarkhastHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "decisionComment is required for this action", guardMessage(t, rr))
}

func TestCase_ApproveDarkhastHandler_InvalidTransition(t *testing.T) {
	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).
		Return(newCase(models.StatusFormCompleted), nil)

	c := handlers.Case{DB: caseDB, Notifier: handlers.Notifier{}}

	req := caseRequest(t, "PUT", `{"decisionComment":"ok"}`, primitive.NewObjectID())
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.ApproveDarkhastHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid transition", guardMessage(t, rr))
}

func TestCase_ApproveDarkhastHandler_Success(t *testing.T) {
	caseData := newCase(models.StatusDarkhastSubmitted)

	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(caseData, nil)
	caseDB.On("UpdateOne", mock.Anything,
		// The CAS filter must pin the status read during the guard
		bson.M{"_id": caseData.ID, "status": models.StatusDarkhastSubmitted},
		mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	userDB := &mocks.UserDatabase{}
	userDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.User{
		ID:      "user-1",
		Details: models.UserDetails{FileNumber: "MDMS-2026-000042"},
	}, nil)

	c := handlers.Case{
		DB:       caseDB,
		Files:    &databases.FileNumberAllocator{Users: userDB, Counters: &mocks.CounterDatabase{}},
		Notifier: handlers.Notifier{},
	}

	req := caseRequest(t, "PUT", `{"decisionComment":"Documents verified"}`, caseData.ID)
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.ApproveDarkhastHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	caseDB.AssertExpectations(t)
}

func TestCase_ApproveDarkhastHandler_ConcurrentConflict(t *testing.T) {
	caseData := newCase(models.StatusDarkhastSubmitted)

	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(caseData, nil)
	// Another writer already moved the case, so the CAS update matches nothing
	caseDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 0}, nil)

	userDB := &mocks.UserDatabase{}
	userDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.User{
		ID:      "user-1",
		Details: models.UserDetails{FileNumber: "MDMS-2026-000042"},
	}, nil)

	c := handlers.Case{
		DB:       caseDB,
		Files:    &databases.FileNumberAllocator{Users: userDB, Counters: &mocks.CounterDatabase{}},
		Notifier: handlers.Notifier{},
	}

	req := caseRequest(t, "PUT", `{"decisionComment":"ok"}`, caseData.ID)
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.ApproveDarkhastHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestCase_SelectCaseTypeHandler_Guards(t *testing.T) {
	t.Run("requires approved darkhast", func(t *testing.T) {
		caseDB := &mocks.CaseDatabase{}
		caseDB.On("FindOne", mock.Anything, mock.Anything).
			Return(newCase(models.StatusDarkhastSubmitted), nil)

		c := handlers.Case{DB: caseDB}
		req := caseRequest(t, "PUT", `{"type":"Talaq"}`, primitive.NewObjectID())
		rr := httptest.NewRecorder()
		http.HandlerFunc(c.SelectCaseTypeHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Darkhast must be approved first", guardMessage(t, rr))
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		caseDB := &mocks.CaseDatabase{}
		caseDB.On("FindOne", mock.Anything, mock.Anything).
			Return(newCase(models.StatusDarkhastApproved), nil)

		c := handlers.Case{DB: caseDB}
		req := caseRequest(t, "PUT", `{"type":"Divorce"}`, primitive.NewObjectID())
		rr := httptest.NewRecorder()
		http.HandlerFunc(c.SelectCaseTypeHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid case type", guardMessage(t, rr))
	})
}

func TestCase_SaveFormDataHandler_CascadesToResolutionPending(t *testing.T) {
	caseData := newCase(models.StatusDarkhastApproved)

	var captured bson.M
	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(caseData, nil)
	caseDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(bson.M)
		}).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	c := handlers.Case{DB: caseDB, Notifier: handlers.Notifier{}}

	body := `{"formData":{"husbandName":"Ahmed","wifeName":"Fatima","talaqCount":1,"talaqIntentionConfirmed":true,"iddatAcknowledgement":true}}`
	req := caseRequest(t, "PUT", body, caseData.ID)
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.SaveFormDataHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	// The form completion step falls through to RESOLUTION_PENDING and records
	// both hops in history
	set := captured["$set"].(bson.M)
	assert.Equal(t, models.StatusResolutionPending, set["status"])
	history := captured["$push"].(bson.M)["history"].(bson.M)["$each"].([]models.HistoryEntry)
	assert.Len(t, history, 2)
	assert.Equal(t, models.StatusFormCompleted, history[0].Status)
	assert.Equal(t, models.StatusResolutionPending, history[1].Status)
	assert.Equal(t, "Resolution (Sulh) step required", history[1].Note)
}

func TestCase_SaveFormDataHandler_RejectsWrongStatus(t *testing.T) {
	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).
		Return(newCase(models.StatusUnderReview), nil)

	c := handlers.Case{DB: caseDB}
	req := caseRequest(t, "PUT", `{"formData":{}}`, primitive.NewObjectID())
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.SaveFormDataHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Case must be in DARKHAST_APPROVED, NEEDS_CORRECTION, APPROVED_FOR_CONTINUE status to edit form", guardMessage(t, rr))
}

func TestCase_SaveFormDataHandler_KhulaFieldMapping(t *testing.T) {
	caseData := newCase(models.StatusDarkhastApproved)
	caseData.Type = "Khula"

	var captured bson.M
	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(caseData, nil)
	caseDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(bson.M)
		}).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	c := handlers.Case{DB: caseDB, Notifier: handlers.Notifier{}}

	body := `{"formData":{"wifeName":"Fatima","reasonForKhula":"desertion","compensationMahrReturn":"full mahr","consentConfirmation":true}}`
	req := caseRequest(t, "PUT", body, caseData.ID)
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.SaveFormDataHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	set := captured["$set"].(bson.M)
	khula := set["darkhast.khula"].(models.KhulaForm)
	assert.Equal(t, "desertion", khula.KhulaReason)
	assert.Equal(t, "full mahr", khula.MahrReturn)
	assert.True(t, khula.ConsentConfirmation)
	assert.NotContains(t, set, "darkhast.talaq")
}

func TestCase_SaveResolutionHandler(t *testing.T) {
	t.Run("rejects wrong status", func(t *testing.T) {
		caseDB := &mocks.CaseDatabase{}
		caseDB.On("FindOne", mock.Anything, mock.Anything).
			Return(newCase(models.StatusDarkhastApproved), nil)

		c := handlers.Case{DB: caseDB}
		req := caseRequest(t, "PUT", `{"resolutionNotes":"n","resolutionOutcome":"RESOLUTION_FAILED"}`, primitive.NewObjectID())
		rr := httptest.NewRecorder()
		http.HandlerFunc(c.SaveResolutionHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Case must be in RESOLUTION_PENDING status", guardMessage(t, rr))
	})

	t.Run("rejects invalid outcome", func(t *testing.T) {
		caseDB := &mocks.CaseDatabase{}
		caseDB.On("FindOne", mock.Anything, mock.Anything).
			Return(newCase(models.StatusResolutionPending), nil)

		c := handlers.Case{DB: caseDB}
		req := caseRequest(t, "PUT", `{"resolutionNotes":"n","resolutionOutcome":"MAYBE"}`, primitive.NewObjectID())
		rr := httptest.NewRecorder()
		http.HandlerFunc(c.SaveResolutionHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "resolutionOutcome must be RESOLUTION_SUCCESS or RESOLUTION_FAILED", guardMessage(t, rr))
	})

	t.Run("outcome becomes the status", func(t *testing.T) {
		caseData := newCase(models.StatusResolutionPending)

		var captured bson.M
		caseDB := &mocks.CaseDatabase{}
		caseDB.On("FindOne", mock.Anything, mock.Anything).Return(caseData, nil)
		caseDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				captured = args.Get(2).(bson.M)
			}).
			Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

		c := handlers.Case{DB: caseDB, Notifier: handlers.Notifier{}}
		req := caseRequest(t, "PUT", `{"resolutionNotes":"parties reconciled","resolutionOutcome":"RESOLUTION_SUCCESS"}`, caseData.ID)
		rr := httptest.NewRecorder()
		http.HandlerFunc(c.SaveResolutionHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		set := captured["$set"].(bson.M)
		assert.Equal(t, models.StatusResolutionSuccess, set["status"])
	})
}

func TestCase_SaveAffidavitsHandler_TalaqRequirements(t *testing.T) {
	caseData := newCase(models.StatusResolutionFailed)

	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(caseData, nil)

	c := handlers.Case{DB: caseDB}

	t.Run("missing applicant affidavit", func(t *testing.T) {
		req := caseRequest(t, "PUT", `{"witnessAffidavits":[{"url":"https://x/w1.pdf"}]}`, caseData.ID)
		rr := httptest.NewRecorder()
		http.HandlerFunc(c.SaveAffidavitsHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Husband affidavit is required for Talaq cases", guardMessage(t, rr))
	})

	t.Run("missing witness affidavit", func(t *testing.T) {
		req := caseRequest(t, "PUT", `{"applicantAffidavit":{"url":"https://x/a.pdf"}}`, caseData.ID)
		rr := httptest.NewRecorder()
		http.HandlerFunc(c.SaveAffidavitsHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "At least one witness affidavit is required for Talaq cases", guardMessage(t, rr))
	})
}

func TestCase_SaveAffidavitsHandler_WrongStatus(t *testing.T) {
	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).
		Return(newCase(models.StatusResolutionPending), nil)

	c := handlers.Case{DB: caseDB}
	req := caseRequest(t, "PUT", `{}`, primitive.NewObjectID())
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.SaveAffidavitsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Affidavits can only be uploaded after Resolution (Sulh) step is completed with FAILED outcome", guardMessage(t, rr))
}

func TestCase_IssueNoticeHandler_RejectedFromFormCompleted(t *testing.T) {
	// FORM_COMPLETED has no notice edge in the transition table, so an initial
	// issue attempt is always rejected
	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).
		Return(newCase(models.StatusFormCompleted), nil)

	c := handlers.Case{DB: caseDB}
	req := caseRequest(t, "PUT", `{"hearingDate":"2026-09-15"}`, primitive.NewObjectID())
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.IssueNoticeHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid transition", guardMessage(t, rr))
}

func TestCase_IssueNoticeHandler_RejectedOutsideHearingPhase(t *testing.T) {
	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).
		Return(newCase(models.StatusDecisionPending), nil)

	c := handlers.Case{DB: caseDB}
	req := caseRequest(t, "PUT", `{"hearingDate":"2026-09-15"}`, primitive.NewObjectID())
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.IssueNoticeHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Notice/hearing details can only be managed after the form is completed and before the case moves to arbitration/decision", guardMessage(t, rr))
}

func TestCase_IssueNoticeHandler_UpdatesInPlaceDuringHearingPhase(t *testing.T) {
	caseData := newCase(models.StatusNoticeIssued)

	var captured bson.M
	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(caseData, nil)
	caseDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(bson.M)
		}).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	c := handlers.Case{DB: caseDB, Notifier: handlers.Notifier{}}
	req := caseRequest(t, "PUT", `{"hearingDate":"2026-09-15","hearingTime":"11:00 AM","mode":"ONLINE","locationOrLink":"https://meet/x"}`, caseData.ID)
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.IssueNoticeHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	// In-phase edits never change the status, only the notice and hearing
	set := captured["$set"].(bson.M)
	assert.NotContains(t, set, "status")
	hearing := set["hearing"].(models.Hearing)
	assert.Equal(t, "11:00 AM", hearing.HearingTime)
	assert.Equal(t, models.HearingModeOnline, hearing.Mode)
}

func TestCase_ScheduleHearingHandler_Validation(t *testing.T) {
	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).
		Return(newCase(models.StatusNoticeIssued), nil)

	c := handlers.Case{DB: caseDB}

	t.Run("missing fields", func(t *testing.T) {
		req := caseRequest(t, "PUT", `{"hearingDate":"2026-09-15"}`, primitive.NewObjectID())
		rr := httptest.NewRecorder()
		http.HandlerFunc(c.ScheduleHearingHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "hearingDate, hearingTime, and hearingMode are required", guardMessage(t, rr))
	})

	t.Run("bad mode", func(t *testing.T) {
		req := caseRequest(t, "PUT", `{"hearingDate":"2026-09-15","hearingTime":"10:00 AM","hearingMode":"PHONE"}`, primitive.NewObjectID())
		rr := httptest.NewRecorder()
		http.HandlerFunc(c.ScheduleHearingHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "hearingMode must be ONLINE or IN_PERSON", guardMessage(t, rr))
	})
}

func TestCase_RecordArbitrationHandler_Branches(t *testing.T) {
	run := func(result string) bson.M {
		caseData := newCase(models.StatusArbitrationInProgress)

		var captured bson.M
		caseDB := &mocks.CaseDatabase{}
		caseDB.On("FindOne", mock.Anything, mock.Anything).Return(caseData, nil)
		caseDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				captured = args.Get(2).(bson.M)
			}).
			Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

		c := handlers.Case{DB: caseDB, Notifier: handlers.Notifier{}}
		req := caseRequest(t, "PUT", fmt.Sprintf(`{"result":%q,"notes":"n"}`, result), caseData.ID)
		rr := httptest.NewRecorder()
		http.HandlerFunc(c.RecordArbitrationHandler).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		return captured["$set"].(bson.M)
	}

	assert.Equal(t, models.StatusCaseClosed, run("SUCCESS")["status"])
	assert.Equal(t, models.StatusDecisionPending, run("FAILED")["status"])
}

func TestCase_CloseCaseHandler_ForceClosesFromAnyStatus(t *testing.T) {
	// close is the sanctioned transition-table bypass; even an early-stage
	// case can be withdrawn
	caseData := newCase(models.StatusDarkhastSubmitted)

	var filter bson.M
	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(caseData, nil)
	caseDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			filter = args.Get(1).(bson.M)
		}).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	c := handlers.Case{DB: caseDB, Notifier: handlers.Notifier{}}
	req := caseRequest(t, "PUT", `{"note":"Withdrawn by applicant"}`, caseData.ID)
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CloseCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	// Force close does not pin the status in the filter
	assert.NotContains(t, filter, "status")
}

func TestCase_GetAllCasesHandler_SilentlyDropsInvalidFilters(t *testing.T) {
	var filter bson.M
	caseDB := &mocks.CaseDatabase{}
	caseDB.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			filter = args.Get(1).(bson.M)
		}).
		Return([]models.Case{}, nil)

	c := handlers.Case{DB: caseDB}
	req, _ := http.NewRequest("GET", "/api/v1/cases/admin/all?status=NOT_A_STATUS&type=Talaq", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.GetAllCasesHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, filter, "status")
	assert.Equal(t, "Talaq", filter["type"])
	assert.Equal(t, "[]\n", rr.Body.String())
}

func TestCase_GetMyCasesHandler_EmptyResultIsArray(t *testing.T) {
	caseDB := &mocks.CaseDatabase{}
	caseDB.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil)

	c := handlers.Case{DB: caseDB}
	req, _ := http.NewRequest("GET", "/api/v1/cases/my?userId=user-1", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.GetMyCasesHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())
}

func TestCase_GetDraftHandler_NotFound(t *testing.T) {
	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).
		Return(nil, mongo.ErrNoDocuments)

	c := handlers.Case{DB: caseDB}
	req := caseRequest(t, "GET", "", primitive.NewObjectID())
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.GetDraftHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Case not found", guardMessage(t, rr))
}
