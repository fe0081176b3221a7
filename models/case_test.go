package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_HappyPath(t *testing.T) {
	// Full Talaq lifecycle, step by step
	steps := []struct {
		from CaseStatus
		to   CaseStatus
	}{
		{StatusDarkhastSubmitted, StatusDarkhastApproved},
		{StatusDarkhastApproved, StatusFormCompleted},
		{StatusFormCompleted, StatusResolutionPending},
		{StatusResolutionPending, StatusResolutionFailed},
		{StatusResolutionFailed, StatusUnderReview},
		{StatusUnderReview, StatusApproved},
		{StatusApproved, StatusNoticeIssued},
		{StatusNoticeIssued, StatusHearingScheduled},
		{StatusHearingScheduled, StatusHearingCompleted},
		{StatusHearingCompleted, StatusArbitrationInProgress},
		{StatusArbitrationInProgress, StatusDecisionPending},
		{StatusDecisionPending, StatusDecisionApproved},
		{StatusDecisionApproved, StatusCaseClosed},
	}
	for _, s := range steps {
		assert.True(t, CanTransition(s.from, s.to), "%s -> %s should be allowed", s.from, s.to)
	}
}

func TestCanTransition_RejectedPaths(t *testing.T) {
	assert.False(t, CanTransition(StatusDarkhastSubmitted, StatusFormCompleted))
	assert.False(t, CanTransition(StatusResolutionPending, StatusUnderReview))
	assert.False(t, CanTransition(StatusCaseClosed, StatusDarkhastSubmitted))
	assert.False(t, CanTransition(StatusHearingCompleted, StatusDecisionPending))
	// Successful reconciliation ends the case, it never proceeds to review
	assert.False(t, CanTransition(StatusResolutionSuccess, StatusUnderReview))
	// FORM_COMPLETED has no direct notice edge; issuing a notice from there is
	// rejected by the table
	assert.False(t, CanTransition(StatusFormCompleted, StatusNoticeIssued))
}

func TestCanTransition_TerminalStatus(t *testing.T) {
	for _, to := range CaseStatuses {
		assert.False(t, CanTransition(StatusCaseClosed, to), "CASE_CLOSED must be terminal, found edge to %s", to)
	}
}

func TestCanTransition_CorrectionLoop(t *testing.T) {
	// send-back and resubmission cycle
	assert.True(t, CanTransition(StatusUnderReview, StatusNeedsCorrection))
	assert.True(t, CanTransition(StatusNeedsCorrection, StatusFormCompleted))
	assert.True(t, CanTransition(StatusUnderReview, StatusApprovedForContinue))
	assert.True(t, CanTransition(StatusApprovedForContinue, StatusFormCompleted))
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	assert.False(t, CanTransition(CaseStatus("BOGUS"), StatusDarkhastApproved))
	assert.False(t, CanTransition(StatusDarkhastApproved, CaseStatus("BOGUS")))
}

func TestValidCaseStatus(t *testing.T) {
	assert.True(t, ValidCaseStatus("DARKHAST_SUBMITTED"))
	assert.True(t, ValidCaseStatus("CASE_CLOSED"))
	assert.False(t, ValidCaseStatus("darkhast_submitted"))
	assert.False(t, ValidCaseStatus(""))
	assert.False(t, ValidCaseStatus("NOT_A_STATUS"))
}

func TestValidCaseType(t *testing.T) {
	assert.True(t, ValidCaseType("Talaq"))
	assert.True(t, ValidCaseType("Khula"))
	assert.True(t, ValidCaseType("Zauj Nama Dispute"))
	assert.False(t, ValidCaseType("talaq"))
	assert.False(t, ValidCaseType("Divorce"))
}

func TestEveryStatusAppearsInTable(t *testing.T) {
	for _, s := range CaseStatuses {
		_, ok := Transitions[s]
		assert.True(t, ok, "status %s missing from transition table", s)
	}
}

func TestIsQazi(t *testing.T) {
	qazi := &User{Details: UserDetails{Roles: []string{"qazi"}}}
	admin := &User{Details: UserDetails{Roles: []string{"admin"}}}
	applicant := &User{Details: UserDetails{Roles: []string{"user"}}}
	nobody := &User{}

	assert.True(t, qazi.IsQazi())
	assert.True(t, admin.IsQazi())
	assert.False(t, applicant.IsQazi())
	assert.False(t, nobody.IsQazi())
}
