package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiredDocumentsFor(t *testing.T) {
	talaq := RequiredDocumentsFor("Talaq")
	assert.Contains(t, talaq, DocApplicantStatement)
	assert.Contains(t, talaq, DocWitnessStatement)
	assert.Contains(t, talaq, DocMarriageCertificate)
	assert.Contains(t, talaq, DocIdentityProof)

	// Khula does not require a witness statement
	khula := RequiredDocumentsFor("Khula")
	assert.NotContains(t, khula, DocWitnessStatement)

	// Virasat gets the inheritance documents instead of the nikah papers
	virasat := RequiredDocumentsFor("Virasat")
	assert.Contains(t, virasat, DocDeathCertificate)
	assert.Contains(t, virasat, DocInheritanceDocument)
	assert.NotContains(t, virasat, DocMarriageCertificate)

	assert.Nil(t, RequiredDocumentsFor("Unknown"))
	assert.Nil(t, RequiredDocumentsFor(""))
}

func TestEveryRuleDocumentIsInCatalog(t *testing.T) {
	catalog := map[string]bool{}
	for _, d := range AllDocumentTypes {
		catalog[d] = true
	}
	for caseType, rule := range CaseRules {
		for _, d := range rule.RequiredDocuments {
			assert.True(t, catalog[d], "%s requires %q which is not in the catalog", caseType, d)
		}
	}
}

func TestValidStatusesForDocsExcludesTerminal(t *testing.T) {
	for _, s := range ValidStatusesForDocs {
		assert.NotEqual(t, "CASE_CLOSED", s)
		assert.NotEqual(t, "DECISION_APPROVED", s)
		assert.NotEqual(t, "DARKHAST_SUBMITTED", s)
	}
}
