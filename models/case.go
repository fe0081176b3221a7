package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CaseStatus is the lifecycle status of a case. The string values are part of
// the persisted contract and must not change.
type CaseStatus string

// All case statuses.
const (
	StatusDarkhastSubmitted     CaseStatus = "DARKHAST_SUBMITTED"
	StatusDarkhastApproved      CaseStatus = "DARKHAST_APPROVED"
	StatusDarkhastRejected      CaseStatus = "DARKHAST_REJECTED"
	StatusFormCompleted         CaseStatus = "FORM_COMPLETED"
	StatusNeedsCorrection       CaseStatus = "NEEDS_CORRECTION"
	StatusApprovedForContinue   CaseStatus = "APPROVED_FOR_CONTINUE"
	StatusResolutionPending     CaseStatus = "RESOLUTION_PENDING"
	StatusResolutionSuccess     CaseStatus = "RESOLUTION_SUCCESS"
	StatusResolutionFailed      CaseStatus = "RESOLUTION_FAILED"
	StatusUnderReview           CaseStatus = "UNDER_REVIEW"
	StatusApproved              CaseStatus = "APPROVED"
	StatusNoticeIssued          CaseStatus = "NOTICE_ISSUED"
	StatusNoticeSent            CaseStatus = "NOTICE_SENT"
	StatusHearingScheduled      CaseStatus = "HEARING_SCHEDULED"
	StatusHearingInProgress     CaseStatus = "HEARING_IN_PROGRESS"
	StatusHearingCompleted      CaseStatus = "HEARING_COMPLETED"
	StatusArbitrationInProgress CaseStatus = "ARBITRATION_IN_PROGRESS"
	StatusDecisionPending       CaseStatus = "DECISION_PENDING"
	StatusDecisionApproved      CaseStatus = "DECISION_APPROVED"
	StatusCaseClosed            CaseStatus = "CASE_CLOSED"
)

// CaseStatuses lists every valid status, used to validate query filters.
var CaseStatuses = []CaseStatus{
	StatusDarkhastSubmitted,
	StatusDarkhastApproved,
	StatusDarkhastRejected,
	StatusFormCompleted,
	StatusNeedsCorrection,
	StatusApprovedForContinue,
	StatusResolutionPending,
	StatusResolutionSuccess,
	StatusResolutionFailed,
	StatusUnderReview,
	StatusApproved,
	StatusNoticeIssued,
	StatusNoticeSent,
	StatusHearingScheduled,
	StatusHearingInProgress,
	StatusHearingCompleted,
	StatusArbitrationInProgress,
	StatusDecisionPending,
	StatusDecisionApproved,
	StatusCaseClosed,
}

// CaseTypes lists the matter types a case can be filed under.
var CaseTypes = []string{
	"Talaq",
	"Khula",
	"Faskh-e-Nikah",
	"Talaq-e-Zaujiyat",
	"Virasat",
	"Zauj Nama Dispute",
}

// Transitions is the case status adjacency table. Every status change must be
// present here except the documented force-close path (issueFaisla/closeCase)
// and the internal cascades in saveFormData and recordArbitration.
var Transitions = map[CaseStatus][]CaseStatus{
	StatusDarkhastSubmitted:   {StatusDarkhastApproved, StatusDarkhastRejected, StatusCaseClosed},
	StatusDarkhastRejected:    {StatusDarkhastApproved, StatusCaseClosed},
	StatusDarkhastApproved:    {StatusFormCompleted, StatusNeedsCorrection},
	StatusFormCompleted:       {StatusResolutionPending, StatusNeedsCorrection, StatusUnderReview, StatusApprovedForContinue},
	StatusNeedsCorrection:     {StatusDarkhastApproved, StatusFormCompleted, StatusApprovedForContinue},
	StatusApprovedForContinue: {StatusFormCompleted, StatusResolutionPending},
	StatusResolutionPending:   {StatusResolutionSuccess, StatusResolutionFailed},
	// Admin must explicitly allow continuation after a successful Sulh.
	StatusResolutionSuccess:     {StatusCaseClosed},
	StatusResolutionFailed:      {StatusUnderReview},
	StatusUnderReview:           {StatusApproved, StatusNeedsCorrection, StatusApprovedForContinue},
	StatusApproved:              {StatusNoticeIssued, StatusCaseClosed},
	StatusNoticeIssued:          {StatusHearingScheduled, StatusNoticeSent},
	StatusNoticeSent:            {StatusHearingScheduled},
	StatusHearingScheduled:      {StatusHearingInProgress, StatusHearingCompleted},
	StatusHearingInProgress:     {StatusHearingCompleted},
	StatusHearingCompleted:      {StatusArbitrationInProgress},
	StatusArbitrationInProgress: {StatusDecisionPending, StatusCaseClosed},
	StatusDecisionPending:       {StatusDecisionApproved, StatusCaseClosed},
	StatusDecisionApproved:      {StatusCaseClosed},
	StatusCaseClosed:            {},
}

// CanTransition reports whether the adjacency table allows from -> to.
func CanTransition(from, to CaseStatus) bool {
	for _, next := range Transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidCaseStatus reports whether s is a known status value.
func ValidCaseStatus(s string) bool {
	for _, st := range CaseStatuses {
		if string(st) == s {
			return true
		}
	}
	return false
}

// ValidCaseType reports whether t is a known matter type.
func ValidCaseType(t string) bool {
	for _, ct := range CaseTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// ResolutionOutcome is the result of the mandatory Sulh attempt. The outcome
// values ARE case statuses: the workflow engine transitions to the outcome
// itself. This coupling is intentional, not coincidental.
type ResolutionOutcome = CaseStatus

// Case holds the structure for the cases collection in mongo.
type Case struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id"`
	CaseID       string             `json:"caseId" bson:"caseId"`
	SequentialID int                `json:"sequentialId" bson:"sequentialId"` // annual reset sequence
	Year         int                `json:"year" bson:"year"`
	DisplayID    string             `json:"displayId" bson:"displayId"` // e.g. DQ/2024/001
	Type         string             `json:"type,omitempty" bson:"type,omitempty"`
	CreatedBy    string             `json:"createdBy" bson:"createdBy"`
	AssignedQazi string             `json:"assignedQazi,omitempty" bson:"assignedQazi,omitempty"`
	Status       CaseStatus         `json:"status" bson:"status"`

	Darkhast Darkhast `json:"darkhast" bson:"darkhast"`

	// FileNumber is the permanent registry identifier of the applicant, one per
	// user across all their cases. Assigned when the Darkhast is approved.
	FileNumber string `json:"fileNumber,omitempty" bson:"fileNumber,omitempty"`

	Hearing *Hearing `json:"hearing,omitempty" bson:"hearing,omitempty"`
	// Notice is the legacy notice object, written alongside Hearing for
	// backward compatibility.
	Notice *Notice `json:"notice,omitempty" bson:"notice,omitempty"`

	Attendance        []Hazri            `json:"attendance" bson:"attendance"`
	HearingStatements []HearingStatement `json:"hearingStatements" bson:"hearingStatements"`

	Arbitration *Arbitration `json:"arbitration,omitempty" bson:"arbitration,omitempty"`
	Resolution  *Resolution  `json:"resolution,omitempty" bson:"resolution,omitempty"`
	Faisla      *Faisla      `json:"faisla,omitempty" bson:"faisla,omitempty"`

	FaskhDetails *FaskhDetails `json:"faskhDetails,omitempty" bson:"faskhDetails,omitempty"`

	Affidavits *Affidavits `json:"affidavits,omitempty" bson:"affidavits,omitempty"`

	AdminNotes      *AdminNotes      `json:"adminNotes,omitempty" bson:"adminNotes,omitempty"`
	DecisionComment *DecisionComment `json:"decisionComment,omitempty" bson:"decisionComment,omitempty"`

	ApprovedAt *primitive.DateTime `json:"approvedAt,omitempty" bson:"approvedAt,omitempty"`
	ApprovedBy string              `json:"approvedBy,omitempty" bson:"approvedBy,omitempty"`

	History []HistoryEntry `json:"history" bson:"history"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// Darkhast holds the application form. Common party fields are shared; the
// matter-specific sections are tagged-union variants selected by Case.Type, so
// a Talaq case never carries Khula fields and vice versa.
type Darkhast struct {
	Date *primitive.DateTime `json:"date,omitempty" bson:"date,omitempty"`

	FirstPartyName        string `json:"firstPartyName,omitempty" bson:"firstPartyName,omitempty"`
	FirstPartyFatherName  string `json:"firstPartyFatherName,omitempty" bson:"firstPartyFatherName,omitempty"`
	FirstPartyResidence   string `json:"firstPartyResidence,omitempty" bson:"firstPartyResidence,omitempty"`
	FirstPartyDistrict    string `json:"firstPartyDistrict,omitempty" bson:"firstPartyDistrict,omitempty"`
	SecondPartyName       string `json:"secondPartyName,omitempty" bson:"secondPartyName,omitempty"`
	SecondPartyFatherName string `json:"secondPartyFatherName,omitempty" bson:"secondPartyFatherName,omitempty"`
	SecondPartyResidence  string `json:"secondPartyResidence,omitempty" bson:"secondPartyResidence,omitempty"`
	SecondPartyDistrict   string `json:"secondPartyDistrict,omitempty" bson:"secondPartyDistrict,omitempty"`

	ApplicantName      string              `json:"applicantName,omitempty" bson:"applicantName,omitempty"`
	FatherGuardianName string              `json:"fatherGuardianName,omitempty" bson:"fatherGuardianName,omitempty"`
	ApplicantMobile    string              `json:"applicantMobile,omitempty" bson:"applicantMobile,omitempty"`
	Address            string              `json:"address,omitempty" bson:"address,omitempty"`
	District           string              `json:"district,omitempty" bson:"district,omitempty"`
	State              string              `json:"state,omitempty" bson:"state,omitempty"`
	CNIC               string              `json:"cnic,omitempty" bson:"cnic,omitempty"`
	RespondentName     string              `json:"respondentName,omitempty" bson:"respondentName,omitempty"`
	RespondentAddress  string              `json:"respondentAddress,omitempty" bson:"respondentAddress,omitempty"`
	NikahDate          *primitive.DateTime `json:"nikahDate,omitempty" bson:"nikahDate,omitempty"`
	NikahPlace         string              `json:"nikahPlace,omitempty" bson:"nikahPlace,omitempty"`
	NikahRegNo         string              `json:"nikahRegNo,omitempty" bson:"nikahRegNo,omitempty"`
	NatureOfDispute    string              `json:"natureOfDispute,omitempty" bson:"natureOfDispute,omitempty"`
	ReliefRequested    string              `json:"reliefRequested,omitempty" bson:"reliefRequested,omitempty"`
	Statement          string              `json:"statement,omitempty" bson:"statement,omitempty"`

	HusbandName string `json:"husbandName,omitempty" bson:"husbandName,omitempty"`
	WifeName    string `json:"wifeName,omitempty" bson:"wifeName,omitempty"`

	Talaq *TalaqForm `json:"talaq,omitempty" bson:"talaq,omitempty"`
	Khula *KhulaForm `json:"khula,omitempty" bson:"khula,omitempty"`
}

// TalaqForm carries the Talaq-specific form fields.
type TalaqForm struct {
	TalaqDate               *primitive.DateTime `json:"talaqDate,omitempty" bson:"talaqDate,omitempty"`
	TalaqCount              int                 `json:"talaqCount,omitempty" bson:"talaqCount,omitempty"`
	TalaqIntentionConfirmed bool                `json:"talaqIntentionConfirmed" bson:"talaqIntentionConfirmed"`
	IddatAcknowledgement    bool                `json:"iddatAcknowledgement" bson:"iddatAcknowledgement"`
	TalaqDeclaration        string              `json:"talaqDeclaration,omitempty" bson:"talaqDeclaration,omitempty"`
	MahrStatus              string              `json:"mahrStatus,omitempty" bson:"mahrStatus,omitempty"`
}

// KhulaForm carries the Khula-specific form fields.
type KhulaForm struct {
	KhulaReason         string `json:"khulaReason,omitempty" bson:"khulaReason,omitempty"`
	MahrReturn          string `json:"mahrReturn,omitempty" bson:"mahrReturn,omitempty"`
	ConsentConfirmation bool   `json:"consentConfirmation" bson:"consentConfirmation"`
	KhulaDeclaration    string `json:"khulaDeclaration,omitempty" bson:"khulaDeclaration,omitempty"`
}

// Hearing is the authoritative hearing record shown on user dashboards.
type Hearing struct {
	HearingDate    primitive.DateTime `json:"hearingDate" bson:"hearingDate"`
	HearingTime    string             `json:"hearingTime" bson:"hearingTime"` // e.g. "10:30 AM"
	Mode           string             `json:"mode" bson:"mode"`               // ONLINE or IN_PERSON
	LocationOrLink string             `json:"locationOrLink" bson:"locationOrLink"`
	NotesByQazi    string             `json:"notesByQazi" bson:"notesByQazi"`
}

// Hearing modes.
const (
	HearingModeOnline   = "ONLINE"
	HearingModeInPerson = "IN_PERSON"
)

// Notice is the legacy notice record kept for backward compatibility.
type Notice struct {
	IssuedAt    primitive.DateTime `json:"issuedAt" bson:"issuedAt"`
	HearingDate primitive.DateTime `json:"hearingDate" bson:"hearingDate"`
	Notes       string             `json:"notes" bson:"notes"`
}

// Hazri is a per-session attendance record.
type Hazri struct {
	Date           primitive.DateTime `json:"date" bson:"date"`
	PresentParties []string           `json:"presentParties" bson:"presentParties"`
	Signatures     string             `json:"signatures" bson:"signatures"`
	QaziRemarks    string             `json:"qaziRemarks" bson:"qaziRemarks"`
}

// HearingStatement records the statements taken in one hearing round,
// index-aligned with the attendance list.
type HearingStatement struct {
	Date                primitive.DateTime `json:"date" bson:"date"`
	ApplicantStatement  string             `json:"applicantStatement" bson:"applicantStatement"`
	RespondentStatement string             `json:"respondentStatement" bson:"respondentStatement"`
	QaziNotes           string             `json:"qaziNotes" bson:"qaziNotes"`
}

// Arbitration results.
const (
	ArbitrationSuccess = "SUCCESS"
	ArbitrationFailed  = "FAILED"
)

// Arbitration is the post-hearing Sulh determination. Overwritten, not
// appended, on each call.
type Arbitration struct {
	Date   primitive.DateTime `json:"date" bson:"date"`
	Result string             `json:"result" bson:"result"`
	Notes  string             `json:"notes" bson:"notes"`
}

// Resolution is the mandatory pre-affidavit reconciliation attempt, distinct
// from the later Arbitration step.
type Resolution struct {
	ResolutionNotes       string             `json:"resolutionNotes" bson:"resolutionNotes"`
	ResolutionOutcome     ResolutionOutcome  `json:"resolutionOutcome" bson:"resolutionOutcome"`
	ResolutionCompletedAt primitive.DateTime `json:"resolutionCompletedAt" bson:"resolutionCompletedAt"`
}

// Faisla is the final written order closing a case.
type Faisla struct {
	DecisionDate   primitive.DateTime `json:"decisionDate" bson:"decisionDate"`
	FinalOrderText string             `json:"finalOrderText" bson:"finalOrderText"`
	QaziSignature  string             `json:"qaziSignature" bson:"qaziSignature"`
	CourtSealRef   string             `json:"courtSealRef" bson:"courtSealRef"`
	DecisionType   string             `json:"decisionType" bson:"decisionType"`
}

// FaskhDetails holds the grounds claimed in a Faskh-e-Nikah matter.
type FaskhDetails struct {
	Grounds     string `json:"grounds" bson:"grounds"`
	EvidenceURL string `json:"evidenceUrl" bson:"evidenceUrl"`
}

// AffidavitFile is one uploaded affidavit reference. The core never inspects
// file bytes, only the opaque url/name.
type AffidavitFile struct {
	URL        string              `json:"url" bson:"url"`
	Name       string              `json:"name" bson:"name"`
	UploadedAt *primitive.DateTime `json:"uploadedAt,omitempty" bson:"uploadedAt,omitempty"`
}

// Affidavits groups the sworn statements collected after a failed Sulh.
type Affidavits struct {
	ApplicantAffidavit  *AffidavitFile  `json:"applicantAffidavit,omitempty" bson:"applicantAffidavit,omitempty"`
	RespondentAffidavit *AffidavitFile  `json:"respondentAffidavit,omitempty" bson:"respondentAffidavit,omitempty"`
	WitnessAffidavits   []AffidavitFile `json:"witnessAffidavits" bson:"witnessAffidavits"`
	Nikahnama           *AffidavitFile  `json:"nikahnama,omitempty" bson:"nikahnama,omitempty"`
	IDProof             *AffidavitFile  `json:"idProof,omitempty" bson:"idProof,omitempty"`
}

// AdminNotes is the latest structured guidance from the Qazi for the parties.
// Overwritten on each send-back or approve-continue.
type AdminNotes struct {
	ReasonForCorrection string             `json:"reasonForCorrection" bson:"reasonForCorrection"`
	GuidanceForNextStep string             `json:"guidanceForNextStep" bson:"guidanceForNextStep"`
	LastUpdatedBy       string             `json:"lastUpdatedBy" bson:"lastUpdatedBy"`
	LastUpdatedAt       primitive.DateTime `json:"lastUpdatedAt" bson:"lastUpdatedAt"`
}

// DecisionComment is the mandatory justification attached to admin decision
// actions. Overwritten per action, not accumulated.
type DecisionComment struct {
	Comment    string             `json:"comment" bson:"comment"`
	DecisionBy string             `json:"decisionBy" bson:"decisionBy"`
	DecisionAt primitive.DateTime `json:"decisionAt" bson:"decisionAt"`
}

// HistoryEntry records a single status change in the case lifecycle. The
// history list is append-only and is the sole audit trail of the case.
type HistoryEntry struct {
	Status    CaseStatus         `json:"status" bson:"status"`
	ChangedBy string             `json:"changedBy" bson:"changedBy"`
	Note      string             `json:"note,omitempty" bson:"note,omitempty"`
	Timestamp primitive.DateTime `json:"timestamp" bson:"timestamp"`
}
