package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/darul-qaza/darul-qaza-api/api"
	"github.com/darul-qaza/darul-qaza-api/config"
	"github.com/darul-qaza/darul-qaza-api/databases"
	"github.com/darul-qaza/darul-qaza-api/models"
)

// Case exported for testing purposes
type Case struct {
	DB       databases.CaseDatabase
	Counters databases.CounterDatabase
	Files    *databases.FileNumberAllocator
	MDB      databases.MessageDatabase
	Notifier Notifier
}

// applyTransition persists a guarded status change. The filter includes the
// status read during guard evaluation, so a concurrent writer that already
// moved the case makes this update match nothing instead of clobbering it.
// Returns false when the compare-and-swap lost the race.
func (c Case) applyTransition(ctx context.Context, caseData *models.Case, set bson.M, history []models.HistoryEntry) (bool, error) {
	update := bson.M{"$set": set}
	if len(history) > 0 {
		update["$push"] = bson.M{"history": bson.M{"$each": history}}
	}
	res, err := c.DB.UpdateOne(ctx,
		bson.M{"_id": caseData.ID, "status": caseData.Status},
		update,
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func historyEntry(status models.CaseStatus, changedBy, note string) models.HistoryEntry {
	return models.HistoryEntry{
		Status:    status,
		ChangedBy: changedBy,
		Note:      note,
		Timestamp: primitive.NewDateTimeFromTime(time.Now()),
	}
}

func (c Case) loadCase(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.Case, bool) {
	cID, err := primitive.ObjectIDFromHex(muxVar(r, "case_id"))
	if err != nil {
		config.ErrorStatus("invalid case ID", http.StatusBadRequest, w, err)
		return nil, false
	}
	caseData, err := c.DB.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		config.GuardStatus("Case not found", http.StatusNotFound, w)
		return nil, false
	}
	return caseData, true
}

func (c Case) respondCase(w http.ResponseWriter, ctx context.Context, id primitive.ObjectID, code int) {
	caseData, err := c.DB.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		config.ErrorStatus("failed to reload case", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(caseData)
}

// SubmitDarkhastHandler opens a new case. The display id sequence resets each
// calendar year and is allocated atomically, so concurrent submissions never
// share an id.
func (c Case) SubmitDarkhastHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID   string          `json:"userId"`
		Darkhast models.Darkhast `json:"darkhast"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	createdBy := api.CallerID(r, body.UserID)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	currentYear := time.Now().Year()
	seq, err := c.Counters.NextSequence(ctx, models.CounterCaseSequence, currentYear)
	if err != nil {
		config.ErrorStatus("failed to allocate case sequence", http.StatusInternalServerError, w, err)
		return
	}
	displayID := fmt.Sprintf("DQ/%d/%03d", currentYear, seq)

	now := primitive.NewDateTimeFromTime(time.Now())
	newCase := models.Case{
		ID:           primitive.NewObjectID(),
		CaseID:       displayID,
		DisplayID:    displayID,
		SequentialID: seq,
		Year:         currentYear,
		CreatedBy:    createdBy,
		Status:       models.StatusDarkhastSubmitted,
		Darkhast:     body.Darkhast,
		Attendance:   []models.Hazri{},
		HearingStatements: []models.HearingStatement{},
		History: []models.HistoryEntry{
			historyEntry(models.StatusDarkhastSubmitted, createdBy, "Darkhast submitted"),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := c.DB.InsertOne(ctx, newCase); err != nil {
		config.ErrorStatus("failed to create case", http.StatusInternalServerError, w, err)
		return
	}

	c.Notifier.Notify(ctx, createdBy, "Your Darkhast has been submitted to Qazi.", models.NotifyInfo, &newCase.ID)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(newCase)
}

// ApproveDarkhastHandler moves a submitted Darkhast to DARKHAST_APPROVED and
// assigns the applicant's permanent file number (one per user, reused across
// all their cases).
func (c Case) ApproveDarkhastHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DecisionComment string `json:"decisionComment"`
		AdminMessage    string `json:"adminMessage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, ok := c.loadCase(ctx, w, r)
	if !ok {
		return
	}

	if strings.TrimSpace(body.DecisionComment) == "" {
		config.GuardStatus("decisionComment is required for this action", http.StatusBadRequest, w)
		return
	}
	if !models.CanTransition(caseData.Status, models.StatusDarkhastApproved) {
		config.GuardStatus("Invalid transition", http.StatusBadRequest, w)
		return
	}

	caller := api.CallerID(r, "admin")
	fileNumber, err := c.Files.AssignOrReuse(ctx, caseData.CreatedBy)
	if err != nil {
		zap.S().Errorw("file number assignment failed", "caseId", caseData.ID.Hex(), "error", err)
		// Fall back to the legacy per-case format rather than blocking approval
		fileNumber = caseData.FileNumber
		if fileNumber == "" {
			fileNumber = fmt.Sprintf("%d/%d", caseData.SequentialID, caseData.Year)
		}
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	set := bson.M{
		"status":     models.StatusDarkhastApproved,
		"fileNumber": fileNumber,
		"approvedAt": now,
		"approvedBy": caller,
		"decisionComment": models.DecisionComment{
			Comment:    body.DecisionComment,
			DecisionBy: caller,
			DecisionAt: now,
		},
		"updatedAt": now,
	}
	matched, err := c.applyTransition(ctx, caseData, set, []models.HistoryEntry{
		historyEntry(models.StatusDarkhastApproved, caller, body.DecisionComment),
	})
	if err != nil {
		config.ErrorStatus("failed to approve darkhast", http.StatusInternalServerError, w, err)
		return
	}
	if !matched {
		config.GuardStatus("Case was modified concurrently, please retry", http.StatusConflict, w)
		return
	}

	c.Notifier.Notify(ctx, caseData.CreatedBy,
		fmt.Sprintf("Your Darkhast has been approved. File Number: %s", fileNumber),
		models.NotifySuccess, &caseData.ID)
	if body.AdminMessage != "" {
		sendFormalMessage(ctx, c.MDB, caseData.ID, caseData.CreatedBy, caller, "Darkhast Approved", body.AdminMessage)
	}

	c.respondCase(w, ctx, caseData.ID, http.StatusOK)
}

// RejectDarkhastHandler moves a submitted Darkhast to DARKHAST_REJECTED so the
// applicant can correct and resubmit.
func (c Case) RejectDarkhastHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DecisionComment string `json:"decisionComment"`
		AdminMessage    string `json:"adminMessage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, ok := c.loadCase(ctx, w, r)
	if !ok {
		return
	}

	if strings.TrimSpace(body.DecisionComment) == "" {
		config.GuardStatus("decisionComment is required for this action", http.StatusBadRequest, w)
		return
	}
	if !models.CanTransition(caseData.Status, models.StatusDarkhastRejected) {
		config.GuardStatus("Invalid transition", http.StatusBadRequest, w)
		return
	}

	caller := api.CallerID(r, "admin")
	now := primitive.NewDateTimeFromTime(time.Now())
	set := bson.M{
		"status": models.StatusDarkhastRejected,
		"decisionComment": models.DecisionComment{
			Comment:    body.DecisionComment,
			DecisionBy: caller,
			DecisionAt: now,
		},
		"updatedAt": now,
	}
	matched, err := c.applyTransition(ctx, caseData, set, []models.HistoryEntry{
		historyEntry(models.StatusDarkhastRejected, caller, body.DecisionComment),
	})
	if err != nil {
		config.ErrorStatus("failed to reject darkhast", http.StatusInternalServerError, w, err)
		return
	}
	if !matched {
		config.GuardStatus("Case was modified concurrently, please retry", http.StatusConflict, w)
		return
	}

	c.Notifier.Notify(ctx, caseData.CreatedBy, "Your Darkhast needs correction. Please check messages.", models.NotifyWarning, &caseData.ID)
	if body.AdminMessage != "" {
		sendFormalMessage(ctx, c.MDB, caseData.ID, caseData.CreatedBy, caller, "Darkhast Correction Required", body.AdminMessage)
	}

	c.respondCase(w, ctx, caseData.ID, http.StatusOK)
}

// SelectCaseTypeHandler sets the matter type once the Darkhast is approved.
// No status change and no history entry.
func (c Case) SelectCaseTypeHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, ok := c.loadCase(ctx, w, r)
	if !ok {
		return
	}

	if caseData.Status != models.StatusDarkhastApproved {
		config.GuardStatus("Darkhast must be approved first", http.StatusBadRequest, w)
		return
	}
	if !models.ValidCaseType(body.Type) {
		config.GuardStatus("Invalid case type", http.StatusBadRequest, w)
		return
	}

	_, err := c.DB.UpdateOne(ctx, bson.M{"_id": caseData.ID}, bson.M{"$set": bson.M{
		"type":      body.Type,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}})
	if err != nil {
		config.ErrorStatus("failed to set case type", http.StatusInternalServerError, w, err)
		return
	}

	c.respondCase(w, ctx, caseData.ID, http.StatusOK)
}

// formDataPayload is the type-specific form subset. Only the variant matching
// the case's matter type is persisted.
type formDataPayload struct {
	HusbandName string `json:"husbandName"`
	WifeName    string `json:"wifeName"`
	NikahDate   string `json:"nikahDate"`
	NikahPlace  string `json:"nikahPlace"`

	// Talaq
	TalaqCount              int    `json:"talaqCount"`
	TalaqIntentionConfirmed bool   `json:"talaqIntentionConfirmed"`
	IddatAcknowledgement    bool   `json:"iddatAcknowledgement"`
	TalaqDeclaration        string `json:"talaqDeclaration"`

	// Khula
	ReasonForKhula         string `json:"reasonForKhula"`
	CompensationMahrReturn string `json:"compensationMahrReturn"`
	ConsentConfirmation    bool   `json:"consentConfirmation"`
	KhulaDeclaration       string `json:"khulaDeclaration"`
}

// SaveFormDataHandler merges the type-specific form into the darkhast and
// walks the form-completion cascade: edits from the two resubmission statuses
// force back to FORM_COMPLETED, and reaching FORM_COMPLETED always falls
// through to RESOLUTION_PENDING because the Sulh step is mandatory.
func (c Case) SaveFormDataHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FormData formDataPayload `json:"formData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, ok := c.loadCase(ctx, w, r)
	if !ok {
		return
	}

	editable := caseData.Status == models.StatusDarkhastApproved ||
		caseData.Status == models.StatusNeedsCorrection ||
		caseData.Status == models.StatusApprovedForContinue
	if !editable {
		config.GuardStatus("Case must be in DARKHAST_APPROVED, NEEDS_CORRECTION, APPROVED_FOR_CONTINUE status to edit form", http.StatusBadRequest, w)
		return
	}
	if caseData.Type == "" {
		config.GuardStatus("Case type must be selected first", http.StatusBadRequest, w)
		return
	}

	set := bson.M{
		"darkhast.husbandName": body.FormData.HusbandName,
		"darkhast.wifeName":    body.FormData.WifeName,
	}
	if body.FormData.NikahDate != "" {
		if parsed, err := parseDate(body.FormData.NikahDate); err == nil {
			set["darkhast.nikahDate"] = primitive.NewDateTimeFromTime(parsed)
		}
	}
	switch caseData.Type {
	case "Talaq":
		set["darkhast.nikahPlace"] = body.FormData.NikahPlace
		set["darkhast.talaq"] = models.TalaqForm{
			TalaqCount:              body.FormData.TalaqCount,
			TalaqIntentionConfirmed: body.FormData.TalaqIntentionConfirmed,
			IddatAcknowledgement:    body.FormData.IddatAcknowledgement,
			TalaqDeclaration:        body.FormData.TalaqDeclaration,
		}
	case "Khula":
		set["darkhast.khula"] = models.KhulaForm{
			KhulaReason:         body.FormData.ReasonForKhula,
			MahrReturn:          body.FormData.CompensationMahrReturn,
			ConsentConfirmation: body.FormData.ConsentConfirmation,
			KhulaDeclaration:    body.FormData.KhulaDeclaration,
		}
	}

	caller := api.CallerID(r, caseData.CreatedBy)
	previousStatus := caseData.Status
	var history []models.HistoryEntry

	if previousStatus == models.StatusApprovedForContinue || previousStatus == models.StatusNeedsCorrection {
		// Explicitly modeled resubmission paths force back to FORM_COMPLETED
		reason := "approval"
		if previousStatus == models.StatusNeedsCorrection {
			reason = "correction"
		}
		history = append(history, historyEntry(models.StatusFormCompleted, caller,
			fmt.Sprintf("%s form resubmitted after %s", caseData.Type, reason)))
	} else if models.CanTransition(previousStatus, models.StatusFormCompleted) {
		history = append(history, historyEntry(models.StatusFormCompleted, caller,
			fmt.Sprintf("%s form completed", caseData.Type)))
	} else {
		config.GuardStatus("Invalid transition from current status", http.StatusBadRequest, w)
		return
	}

	finalStatus := models.StatusFormCompleted
	if models.CanTransition(models.StatusFormCompleted, models.StatusResolutionPending) {
		finalStatus = models.StatusResolutionPending
		history = append(history, historyEntry(models.StatusResolutionPending, caller, "Resolution (Sulh) step required"))
	}
	set["status"] = finalStatus
	set["updatedAt"] = primitive.NewDateTimeFromTime(time.Now())

	matched, err := c.applyTransition(ctx, caseData, set, history)
	if err != nil {
		config.ErrorStatus("failed to save form data", http.StatusInternalServerError, w, err)
		return
	}
	if !matched {
		config.GuardStatus("Case was modified concurrently, please retry", http.StatusConflict, w)
		return
	}

	c.Notifier.Notify(ctx, caseData.CreatedBy,
		fmt.Sprintf("Your %s form has been submitted successfully.", caseData.Type),
		models.NotifySuccess, &caseData.ID)

	c.respondCase(w, ctx, caseData.ID, http.StatusOK)
}

// SaveResolutionHandler records the mandatory Sulh attempt. The outcome value
// is itself the next status; the engine transitions to it directly.
func (c Case) SaveResolutionHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ResolutionNotes   string `json:"resolutionNotes"`
		ResolutionOutcome string `json:"resolutionOutcome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, ok := c.loadCase(ctx, w, r)
	if !ok {
		return
	}

	if caseData.Status != models.StatusResolutionPending {
		config.GuardStatus("Case must be in RESOLUTION_PENDING status", http.StatusBadRequest, w)
		return
	}
	if body.ResolutionNotes == "" || body.ResolutionOutcome == "" {
		config.GuardStatus("resolutionNotes and resolutionOutcome are required", http.StatusBadRequest, w)
		return
	}
	outcome := models.CaseStatus(body.ResolutionOutcome)
	if outcome != models.StatusResolutionSuccess && outcome != models.StatusResolutionFailed {
		config.GuardStatus("resolutionOutcome must be RESOLUTION_SUCCESS or RESOLUTION_FAILED", http.StatusBadRequest, w)
		return
	}

	caller := api.CallerID(r, caseData.CreatedBy)
	now := primitive.NewDateTimeFromTime(time.Now())
	set := bson.M{
		"resolution": models.Resolution{
			ResolutionNotes:       body.ResolutionNotes,
			ResolutionOutcome:     outcome,
			ResolutionCompletedAt: now,
		},
		"status":    outcome,
		"updatedAt": now,
	}

	var note string
	if outcome == models.StatusResolutionSuccess {
		note = "Reconciliation (Sulh) achieved. Case resolved."
	} else {
		note = "Reconciliation (Sulh) failed. Proceeding with case."
	}
	matched, err := c.applyTransition(ctx, caseData, set, []models.HistoryEntry{
		historyEntry(outcome, caller, note),
	})
	if err != nil {
		config.ErrorStatus("failed to save resolution", http.StatusInternalServerError, w, err)
		return
	}
	if !matched {
		config.GuardStatus("Case was modified concurrently, please retry", http.StatusConflict, w)
		return
	}

	if outcome == models.StatusResolutionSuccess {
		c.Notifier.Notify(ctx, caseData.CreatedBy, "Reconciliation (Sulh) achieved. Your case has been resolved.", models.NotifySuccess, &caseData.ID)
	} else {
		c.Notifier.Notify(ctx, caseData.CreatedBy, "Reconciliation attempt completed. You may proceed with the next step.", models.NotifyInfo, &caseData.ID)
	}

	c.respondCase(w, ctx, caseData.ID, http.StatusOK)
}

// SaveAffidavitsHandler stores the sworn statements collected after a failed
// Sulh and submits the case for Qazi review.
func (c Case) SaveAffidavitsHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ApplicantAffidavit  *models.AffidavitFile  `json:"applicantAffidavit"`
		RespondentAffidavit *models.AffidavitFile  `json:"respondentAffidavit"`
		WitnessAffidavits   []models.AffidavitFile `json:"witnessAffidavits"`
		Nikahnama           *models.AffidavitFile  `json:"nikahnama"`
		IDProof             *models.AffidavitFile  `json:"idProof"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, ok := c.loadCase(ctx, w, r)
	if !ok {
		return
	}

	if caseData.Status != models.StatusResolutionFailed {
		config.GuardStatus("Affidavits can only be uploaded after Resolution (Sulh) step is completed with FAILED outcome", http.StatusBadRequest, w)
		return
	}
	if caseData.Type == "" {
		config.GuardStatus("Case type must be selected", http.StatusBadRequest, w)
		return
	}

	switch caseData.Type {
	case "Talaq":
		if body.ApplicantAffidavit == nil || body.ApplicantAffidavit.URL == "" {
			config.GuardStatus("Husband affidavit is required for Talaq cases", http.StatusBadRequest, w)
			return
		}
		if len(body.WitnessAffidavits) < 1 || body.WitnessAffidavits[0].URL == "" {
			config.GuardStatus("At least one witness affidavit is required for Talaq cases", http.StatusBadRequest, w)
			return
		}
	case "Khula":
		if body.ApplicantAffidavit == nil || body.ApplicantAffidavit.URL == "" {
			config.GuardStatus("Wife affidavit is required for Khula cases", http.StatusBadRequest, w)
			return
		}
		if len(body.WitnessAffidavits) < 1 || body.WitnessAffidavits[0].URL == "" {
			config.GuardStatus("At least one witness affidavit is required for Khula cases", http.StatusBadRequest, w)
			return
		}
	}

	// Merge with previously stored affidavits: omitted optional files keep
	// their prior values.
	merged := models.Affidavits{WitnessAffidavits: []models.AffidavitFile{}}
	if caseData.Affidavits != nil {
		merged = *caseData.Affidavits
	}
	if body.ApplicantAffidavit != nil {
		merged.ApplicantAffidavit = body.ApplicantAffidavit
	}
	if body.RespondentAffidavit != nil {
		merged.RespondentAffidavit = body.RespondentAffidavit
	}
	if len(body.WitnessAffidavits) > 0 {
		merged.WitnessAffidavits = body.WitnessAffidavits
	}
	if body.Nikahnama != nil {
		merged.Nikahnama = body.Nikahnama
	}
	if body.IDProof != nil {
		merged.IDProof = body.IDProof
	}

	caller := api.CallerID(r, caseData.CreatedBy)
	set := bson.M{
		"affidavits": merged,
		"updatedAt":  primitive.NewDateTimeFromTime(time.Now()),
	}
	var history []models.HistoryEntry
	if models.CanTransition(caseData.Status, models.StatusUnderReview) {
		set["status"] = models.StatusUnderReview
		history = append(history, historyEntry(models.StatusUnderReview, caller,
			"Required affidavits uploaded. Case submitted for Qazi review."))
	}

	matched, err := c.applyTransition(ctx, caseData, set, history)
	if err != nil {
		config.ErrorStatus("failed to save affidavits", http.StatusInternalServerError, w, err)
		return
	}
	if !matched {
		config.GuardStatus("Case was modified concurrently, please retry", http.StatusConflict, w)
		return
	}

	if len(history) > 0 {
		c.Notifier.Notify(ctx, caseData.CreatedBy, "Your affidavits have been uploaded. Case is now under Qazi review.", models.NotifyInfo, &caseData.ID)
	}

	c.respondCase(w, ctx, caseData.ID, http.StatusOK)
}

// SendBackForCorrectionHandler returns a case to the applicant with guidance.
// A decision comment is mandatory here, unlike ApproveForContinueHandler.
func (c Case) SendBackForCorrectionHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AdminMessage        string `json:"adminMessage"`
		ReasonForCorrection string `json:"reasonForCorrection"`
		GuidanceForNextStep string `json:"guidanceForNextStep"`
		DecisionComment     string `json:"decisionComment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, ok := c.loadCase(ctx, w, r)
	if !ok {
		return
	}

	if strings.TrimSpace(body.DecisionComment) == "" {
		config.GuardStatus("decisionComment is required for this action", http.StatusBadRequest, w)
		return
	}
	if !models.CanTransition(caseData.Status, models.StatusNeedsCorrection) {
		config.GuardStatus("Invalid transition to NEEDS_CORRECTION", http.StatusBadRequest, w)
		return
	}

	caller := api.CallerID(r, "admin")
	now := primitive.NewDateTimeFromTime(time.Now())

	reason := body.ReasonForCorrection
	if reason == "" {
		reason = body.AdminMessage
	}
	if reason == "" {
		reason = body.DecisionComment
	}
	guidance := body.GuidanceForNextStep
	if guidance == "" {
		guidance = "Please review the Qazi's guidance and update the form below, then resubmit."
	}

	set := bson.M{
		"status": models.StatusNeedsCorrection,
		"adminNotes": models.AdminNotes{
			ReasonForCorrection: reason,
			GuidanceForNextStep: guidance,
			LastUpdatedBy:       caller,
			LastUpdatedAt:       now,
		},
		"decisionComment": models.DecisionComment{
			Comment:    body.DecisionComment,
			DecisionBy: caller,
			DecisionAt: now,
		},
		"updatedAt": now,
	}
	matched, err := c.applyTransition(ctx, caseData, set, []models.HistoryEntry{
		historyEntry(models.StatusNeedsCorrection, caller, body.DecisionComment),
	})
	if err != nil {
		config.ErrorStatus("failed to send case back for correction", http.StatusInternalServerError, w, err)
		return
	}
	if !matched {
		config.GuardStatus("Case was modified concurrently, please retry", http.StatusConflict, w)
		return
	}

	c.Notifier.Notify(ctx, caseData.CreatedBy, "Your case has been returned for correction. Please review and update your form.", models.NotifyWarning, &caseData.ID)
	if body.AdminMessage != "" {
		sendFormalMessage(ctx, c.MDB, caseData.ID, caseData.CreatedBy, caller, "Correction Required", body.AdminMessage)
	}

	c.respondCase(w, ctx, caseData.ID, http.StatusOK)
}

// ApproveForContinueHandler clears a case to continue to its next step. No
// decision comment is required; this asymmetry with send-back is deliberate.
func (c Case) ApproveForContinueHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AdminMessage        string `json:"adminMessage"`
		GuidanceForNextStep string `json:"guidanceForNextStep"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, ok := c.loadCase(ctx, w, r)
	if !ok {
		return
	}

	if !models.CanTransition(caseData.Status, models.StatusApprovedForContinue) {
		config.GuardStatus("Invalid transition to APPROVED_FOR_CONTINUE", http.StatusBadRequest, w)
		return
	}

	caller := api.CallerID(r, "admin")
	now := primitive.NewDateTimeFromTime(time.Now())

	guidance := body.GuidanceForNextStep
	if guidance == "" {
		guidance = body.AdminMessage
	}
	if guidance == "" {
		guidance = "Your case has been reviewed. Please proceed with the next step as indicated on this page."
	}
	note := body.AdminMessage
	if note == "" {
		note = "Case approved for continuation"
	}

	set := bson.M{
		"status": models.StatusApprovedForContinue,
		"adminNotes": models.AdminNotes{
			ReasonForCorrection: "",
			GuidanceForNextStep: guidance,
			LastUpdatedBy:       caller,
			LastUpdatedAt:       now,
		},
		"updatedAt": now,
	}
	matched, err := c.applyTransition(ctx, caseData, set, []models.HistoryEntry{
		historyEntry(models.StatusApprovedForContinue, caller, note),
	})
	if err != nil {
		config.ErrorStatus("failed to approve case for continuation", http.StatusInternalServerError, w, err)
		return
	}
	if !matched {
		config.GuardStatus("Case was modified concurrently, please retry", http.StatusConflict, w)
		return
	}

	c.Notifier.Notify(ctx, caseData.CreatedBy, "Your case has been reviewed. You may now continue with the next step.", models.NotifySuccess, &caseData.ID)
	if body.AdminMessage != "" {
		sendFormalMessage(ctx, c.MDB, caseData.ID, caseData.CreatedBy, caller, "Case Approved for Continue", body.AdminMessage)
	}

	c.respondCase(w, ctx, caseData.ID, http.StatusOK)
}

// IssueNoticeHandler issues (or updates) the hearing notice. Only an initial
// issue from FORM_COMPLETED is treated as a transition; while the case is in
// the notice/hearing phase the details are updated in place.
func (c Case) IssueNoticeHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		HearingDate    string `json:"hearingDate"`
		HearingTime    string `json:"hearingTime"`
		Mode           string `json:"mode"`
		LocationOrLink string `json:"locationOrLink"`
		Notes          string `json:"notes"`       // legacy field kept for backward compatibility
		NotesByQazi    string `json:"notesByQazi"` // preferred new field name
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, ok := c.loadCase(ctx, w, r)
	if !ok {
		return
	}

	caller := api.CallerID(r, "admin")
	set := bson.M{}
	var history []models.HistoryEntry

	if caseData.Status == models.StatusFormCompleted {
		if !models.CanTransition(caseData.Status, models.StatusNoticeIssued) {
			config.GuardStatus("Invalid transition", http.StatusBadRequest, w)
			return
		}
		set["status"] = models.StatusNoticeIssued
		history = append(history, historyEntry(models.StatusNoticeIssued, caller, "Notice issued, hearing date fixed"))
	} else if caseData.Status != models.StatusNoticeIssued &&
		caseData.Status != models.StatusHearingScheduled &&
		caseData.Status != models.StatusHearingInProgress {
		config.GuardStatus("Notice/hearing details can only be managed after the form is completed and before the case moves to arbitration/decision", http.StatusBadRequest, w)
		return
	}

	hearingDate, err := parseDate(body.HearingDate)
	if err != nil {
		config.GuardStatus("Invalid hearingDate format", http.StatusBadRequest, w)
		return
	}
	dateValue := primitive.NewDateTimeFromTime(hearingDate)

	notes := body.Notes
	if notes == "" {
		notes = body.NotesByQazi
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	set["notice"] = models.Notice{
		IssuedAt:    now,
		HearingDate: dateValue,
		Notes:       notes,
	}

	// Hearing fields fall back to the prior values when omitted
	hearing := models.Hearing{
		HearingDate:    dateValue,
		HearingTime:    body.HearingTime,
		Mode:           body.Mode,
		LocationOrLink: body.LocationOrLink,
		NotesByQazi:    body.NotesByQazi,
	}
	if hearing.NotesByQazi == "" {
		hearing.NotesByQazi = body.Notes
	}
	if caseData.Hearing != nil {
		if hearing.HearingTime == "" {
			hearing.HearingTime = caseData.Hearing.HearingTime
		}
		if hearing.Mode == "" {
			hearing.Mode = caseData.Hearing.Mode
		}
		if hearing.LocationOrLink == "" {
			hearing.LocationOrLink = caseData.Hearing.LocationOrLink
		}
		if hearing.NotesByQazi == "" {
			hearing.NotesByQazi = caseData.Hearing.NotesByQazi
		}
	}
	if hearing.Mode == "" {
		hearing.Mode = models.HearingModeInPerson
	}
	set["hearing"] = hearing
	set["updatedAt"] = now

	matched, err := c.applyTransition(ctx, caseData, set, history)
	if err != nil {
		config.ErrorStatus("failed to issue notice", http.StatusInternalServerError, w, err)
		return
	}
	if !matched {
		config.GuardStatus("Case was modified concurrently, please retry", http.StatusConflict, w)
		return
	}

	c.Notifier.Notify(ctx, caseData.CreatedBy,
		fmt.Sprintf("Notice issued. Hearing scheduled for %s", hearingDate.Format("1/2/2006")),
		models.NotifyInfo, &caseData.ID)

	c.respondCase(w, ctx, caseData.ID, http.StatusOK)
}

// ScheduleHearingHandler overwrites the hearing record wholesale and moves the
// case to HEARING_SCHEDULED if it is not already there.
func (c Case) ScheduleHearingHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		HearingDate    string `json:"hearingDate"`
		HearingTime    string `json:"hearingTime"`
		HearingMode    string `json:"hearingMode"`
		HearingNotes   string `json:"hearingNotes"`
		LocationOrLink string `json:"locationOrLink"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, ok := c.loadCase(ctx, w, r)
	if !ok {
		return
	}

	if body.HearingDate == "" || body.HearingTime == "" || body.HearingMode == "" {
		config.GuardStatus("hearingDate, hearingTime, and hearingMode are required", http.StatusBadRequest, w)
		return
	}
	hearingDate, err := parseDate(body.HearingDate)
	if err != nil {
		config.GuardStatus("Invalid hearingDate format", http.StatusBadRequest, w)
		return
	}
	if body.HearingMode != models.HearingModeOnline && body.HearingMode != models.HearingModeInPerson {
		config.GuardStatus("hearingMode must be ONLINE or IN_PERSON", http.StatusBadRequest, w)
		return
	}

	caller := api.CallerID(r, "admin")
	now := primitive.NewDateTimeFromTime(time.Now())
	set := bson.M{
		"hearing": models.Hearing{
			HearingDate:    primitive.NewDateTimeFromTime(hearingDate),
			HearingTime:    body.HearingTime,
			Mode:           body.HearingMode,
			LocationOrLink: body.LocationOrLink,
			NotesByQazi:    body.HearingNotes,
		},
		"updatedAt": now,
	}

	var history []models.HistoryEntry
	if caseData.Status != models.StatusHearingScheduled && models.CanTransition(caseData.Status, models.StatusHearingScheduled) {
		set["status"] = models.StatusHearingScheduled
		history = append(history, historyEntry(models.StatusHearingScheduled, caller,
			fmt.Sprintf("Hearing scheduled: %s at %s (%s)", body.HearingDate, body.HearingTime, body.HearingMode)))
	} else {
		history = append(history, historyEntry(models.StatusHearingScheduled, caller,
			fmt.Sprintf("Hearing details updated: %s at %s (%s)", body.HearingDate, body.HearingTime, body.HearingMode)))
	}

	matched, err := c.applyTransition(ctx, caseData, set, history)
	if err != nil {
		config.ErrorStatus("failed to schedule hearing", http.StatusInternalServerError, w, err)
		return
	}
	if !matched {
		config.GuardStatus("Case was modified concurrently, please retry", http.StatusConflict, w)
		return
	}

	c.Notifier.Notify(ctx, caseData.CreatedBy,
		fmt.Sprintf("Hearing scheduled: %s at %s (%s)", hearingDate.Format("1/2/2006"), body.HearingTime, body.HearingMode),
		models.NotifyInfo, &caseData.ID)

	c.respondCase(w, ctx, caseData.ID, http.StatusOK)
}

// StartHearingHandler initializes the hearing session. From NOTICE_ISSUED it
// moves the case to HEARING_SCHEDULED; from any other status it is a no-op.
func (c Case) StartHearingHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, ok := c.loadCase(ctx, w, r)
	if !ok {
		return
	}

	if caseData.Status == models.StatusNoticeIssued {
		caller := api.CallerID(r, "admin")
		set := bson.M{
			"status":    models.StatusHearingScheduled,
			"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
		}
		matched, err := c.applyTransition(ctx, caseData, set, []models.HistoryEntry{
			historyEntry(models.StatusHearingScheduled, caller, "Hearing session initialized"),
		})
		if err != nil {
			config.ErrorStatus("failed to start hearing", http.StatusInternalServerError, w, err)
			return
		}
		if !matched {
			config.GuardStatus("Case was modified concurrently, please retry", http.StatusConflict, w)
			return
		}
	}

	c.respondCase(w, ctx, caseData.ID, http.StatusOK)
}

// RecordAttendanceHandler appends a Hazri record. Intentionally unguarded by
// status; attendance can be taken at any point in the hearing phase.
func (c Case) RecordAttendanceHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Hazri models.Hazri `json:"hazri"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, ok := c.loadCase(ctx, w, r)
	if !ok {
		return
	}

	if body.Hazri.Date == 0 {
		body.Hazri.Date = primitive.NewDateTimeFromTime(time.Now())
	}

	_, err := c.DB.UpdateOne(ctx, bson.M{"_id": caseData.ID}, bson.M{
		"$push": bson.M{"attendance": body.Hazri},
		"$set":  bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())},
	})
	if err != nil {
		config.ErrorStatus("failed to record attendance", http.StatusInternalServerError, w, err)
		return
	}

	c.respondCase(w, ctx, caseData.ID, http.StatusOK)
}

// RecordStatementHandler appends a statement round and finalizes the hearing:
// from HEARING_SCHEDULED the case auto-completes to HEARING_COMPLETED.
func (c Case) RecordStatementHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Statement models.HearingStatement `json:"statement"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, ok := c.loadCase(ctx, w, r)
	if !ok {
		return
	}

	if body.Statement.Date == 0 {
		body.Statement.Date = primitive.NewDateTimeFromTime(time.Now())
	}

	set := bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())}
	update := bson.M{
		"$push": bson.M{"hearingStatements": body.Statement},
		"$set":  set,
	}
	if caseData.Status == models.StatusHearingScheduled {
		caller := api.CallerID(r, "admin")
		set["status"] = models.StatusHearingCompleted
		update["$push"] = bson.M{
			"hearingStatements": body.Statement,
			"history": historyEntry(models.StatusHearingCompleted, caller, "Hearing records finalized"),
		}
	}

	res, err := c.DB.UpdateOne(ctx, bson.M{"_id": caseData.ID, "status": caseData.Status}, update)
	if err != nil {
		config.ErrorStatus("failed to record statement", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.GuardStatus("Case was modified concurrently, please retry", http.StatusConflict, w)
		return
	}

	c.respondCase(w, ctx, caseData.ID, http.StatusOK)
}

// RecordArbitrationHandler records the post-hearing Sulh determination and
// branches in one call: SUCCESS closes the case, anything else moves it to
// DECISION_PENDING via ARBITRATION_IN_PROGRESS.
func (c Case) RecordArbitrationHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Result string `json:"result"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, ok := c.loadCase(ctx, w, r)
	if !ok {
		return
	}

	caller := api.CallerID(r, "admin")
	now := primitive.NewDateTimeFromTime(time.Now())

	var finalStatus models.CaseStatus
	var history []models.HistoryEntry
	if body.Result == models.ArbitrationSuccess {
		finalStatus = models.StatusCaseClosed
		history = append(history, historyEntry(models.StatusCaseClosed, caller, "Arbitration successful (Sulh), case closed"))
	} else {
		finalStatus = models.StatusDecisionPending
		history = append(history, historyEntry(models.StatusDecisionPending, caller, "Arbitration failed, moving to final decision"))
	}

	set := bson.M{
		"arbitration": models.Arbitration{
			Date:   now,
			Result: body.Result,
			Notes:  body.Notes,
		},
		"status":    finalStatus,
		"updatedAt": now,
	}
	matched, err := c.applyTransition(ctx, caseData, set, history)
	if err != nil {
		config.ErrorStatus("failed to record arbitration", http.StatusInternalServerError, w, err)
		return
	}
	if !matched {
		config.GuardStatus("Case was modified concurrently, please retry", http.StatusConflict, w)
		return
	}

	c.respondCase(w, ctx, caseData.ID, http.StatusOK)
}

// IssueFaislaHandler records the final order and force-closes the case via
// forceClose. There is deliberately no transition-table check: the Qazi can
// always issue the final order.
func (c Case) IssueFaislaHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Faisla models.Faisla `json:"faisla"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, ok := c.loadCase(ctx, w, r)
	if !ok {
		return
	}

	faisla := body.Faisla
	faisla.DecisionDate = primitive.NewDateTimeFromTime(time.Now())

	caller := api.CallerID(r, "admin")
	if err := c.forceClose(ctx, caseData.ID, caller, "Final Faisla issued, case closed", bson.M{"faisla": faisla}); err != nil {
		config.ErrorStatus("failed to issue faisla", http.StatusInternalServerError, w, err)
		return
	}

	c.respondCase(w, ctx, caseData.ID, http.StatusOK)
}

// CloseCaseHandler closes a case manually (withdrawal or administrative
// closure) via forceClose.
func (c Case) CloseCaseHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, ok := c.loadCase(ctx, w, r)
	if !ok {
		return
	}

	note := body.Note
	if note == "" {
		note = "Case closed by Qazi"
	}
	caller := api.CallerID(r, "admin")
	if err := c.forceClose(ctx, caseData.ID, caller, note, nil); err != nil {
		config.ErrorStatus("failed to close case", http.StatusInternalServerError, w, err)
		return
	}

	c.respondCase(w, ctx, caseData.ID, http.StatusOK)
}

// forceClose is the single sanctioned bypass of the transition table: it sets
// CASE_CLOSED unconditionally, regardless of the current status. Only
// IssueFaislaHandler and CloseCaseHandler route through it.
func (c Case) forceClose(ctx context.Context, id primitive.ObjectID, caller, note string, extraSet bson.M) error {
	set := bson.M{
		"status":    models.StatusCaseClosed,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}
	for k, v := range extraSet {
		set[k] = v
	}
	_, err := c.DB.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set":  set,
		"$push": bson.M{"history": historyEntry(models.StatusCaseClosed, caller, note)},
	})
	return err
}

// GetMyCasesHandler returns the caller's cases, newest first
func (c Case) GetMyCasesHandler(w http.ResponseWriter, r *http.Request) {
	createdBy := api.CallerID(r, r.URL.Query().Get("userId"))

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cases, err := c.DB.Find(ctx, bson.M{"createdBy": createdBy}, &options.FindOptions{
		Sort: bson.M{"createdAt": -1},
	})
	if err != nil {
		config.ErrorStatus("failed to get cases", http.StatusInternalServerError, w, err)
		return
	}
	if cases == nil {
		cases = []models.Case{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(cases)
}

// GetAllCasesHandler returns every case, filtered by status and type when the
// query values are valid enum members. Invalid filter values are silently
// ignored, not errored.
func (c Case) GetAllCasesHandler(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	caseType := r.URL.Query().Get("type")

	filter := bson.M{}
	if status != "" && models.ValidCaseStatus(status) {
		filter["status"] = status
	}
	if caseType != "" && models.ValidCaseType(caseType) {
		filter["type"] = caseType
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cases, err := c.DB.Find(ctx, filter, &options.FindOptions{
		Sort: bson.M{"createdAt": -1},
	})
	if err != nil {
		config.ErrorStatus("failed to get cases", http.StatusInternalServerError, w, err)
		return
	}
	if cases == nil {
		cases = []models.Case{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(cases)
}

// GetDraftHandler returns the full case for resuming an in-progress flow
func (c Case) GetDraftHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, ok := c.loadCase(ctx, w, r)
	if !ok {
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(caseData)
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", value)
}
