package config

// Centralized configuration for Darul Qaza case rules: document requirements
// per matter type and the statuses during which the documents section is open.
// Loaded once at startup as immutable package data; there is no runtime
// mutation path.

// CaseRule carries the per-matter-type document requirements.
type CaseRule struct {
	RequiredDocuments []string
}

// Document type labels. The exact strings are part of the persisted contract.
const (
	DocApplicantStatement  = "Applicant Statement (Bayan-e-Halafi)"
	DocWitnessStatement    = "Witness Statement (Gawah Affidavit)"
	DocMarriageCertificate = "Marriage Certificate (Nikahnama)"
	DocSupportingEvidence  = "Supporting Evidence (Suboot)"
	DocDeathCertificate    = "Death Certificate (وفات سرٹیفکیٹ)"
	DocInheritanceDocument = "Inheritance Document (وراثت نامہ)"
	DocIdentityProof       = "Identity Proof (Aadhar/CNIC)"
)

// CaseRules maps each matter type to its ordered required-document list.
var CaseRules = map[string]CaseRule{
	"Talaq": {
		RequiredDocuments: []string{
			DocApplicantStatement,
			DocWitnessStatement,
			DocMarriageCertificate,
			DocIdentityProof,
		},
	},
	"Khula": {
		RequiredDocuments: []string{
			DocApplicantStatement,
			DocMarriageCertificate,
			DocIdentityProof,
		},
	},
	"Faskh-e-Nikah": {
		RequiredDocuments: []string{
			DocApplicantStatement,
			DocWitnessStatement,
			DocMarriageCertificate,
			DocSupportingEvidence,
			DocIdentityProof,
		},
	},
	"Talaq-e-Zaujiyat": {
		RequiredDocuments: []string{
			DocApplicantStatement,
			DocWitnessStatement,
			DocMarriageCertificate,
			DocIdentityProof,
		},
	},
	"Virasat": {
		RequiredDocuments: []string{
			DocApplicantStatement,
			DocDeathCertificate,
			DocInheritanceDocument,
			DocIdentityProof,
		},
	},
	"Zauj Nama Dispute": {
		RequiredDocuments: []string{
			DocApplicantStatement,
			DocWitnessStatement,
			DocMarriageCertificate,
			DocIdentityProof,
		},
	},
}

// AllDocumentTypes is the full document catalog across all matter types.
var AllDocumentTypes = []string{
	DocApplicantStatement,
	DocWitnessStatement,
	DocMarriageCertificate,
	DocSupportingEvidence,
	DocDeathCertificate,
	DocInheritanceDocument,
	DocIdentityProof,
}

// ValidStatusesForDocs lists the case statuses during which the documents
// section is visible: once the file is opened and before final closure.
var ValidStatusesForDocs = []string{
	"DARKHAST_APPROVED",
	"FORM_COMPLETED",
	"NEEDS_CORRECTION",
	"APPROVED_FOR_CONTINUE",
	"RESOLUTION_PENDING",
	"RESOLUTION_SUCCESS",
	"RESOLUTION_FAILED",
	"UNDER_REVIEW",
	"APPROVED",
	"NOTICE_ISSUED",
	"NOTICE_SENT",
	"HEARING_SCHEDULED",
	"HEARING_IN_PROGRESS",
	"HEARING_COMPLETED",
	"ARBITRATION_IN_PROGRESS",
	"DECISION_PENDING",
}

// RequiredDocumentsFor returns the allowed/required document labels for the
// given matter type, or nil when the type is unknown.
func RequiredDocumentsFor(caseType string) []string {
	rule, ok := CaseRules[caseType]
	if !ok {
		return nil
	}
	return rule.RequiredDocuments
}
