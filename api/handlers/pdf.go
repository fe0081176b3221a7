package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/darul-qaza/darul-qaza-api/api"
	"github.com/darul-qaza/darul-qaza-api/config"
	"github.com/darul-qaza/darul-qaza-api/databases"
	"github.com/darul-qaza/darul-qaza-api/models"
)

// Certificate exported for testing purposes
type Certificate struct {
	DB databases.CaseDatabase
}

// certificateAvailable reports whether the divorce certificate can be issued:
// either the case passed review (APPROVED) or it was closed with a final
// Faisla on record. A case closed without a Faisla (withdrawal, successful
// Sulh) never yields a certificate.
func certificateAvailable(caseData *models.Case) bool {
	if caseData.Status == models.StatusApproved {
		return true
	}
	return caseData.Status == models.StatusCaseClosed && caseData.Faisla != nil
}

// GenerateCertificateHandler renders the divorce certificate PDF for a
// concluded case and streams it inline.
func (c Certificate) GenerateCertificateHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cID, err := primitive.ObjectIDFromHex(muxVar(r, "case_id"))
	if err != nil {
		config.ErrorStatus("invalid case ID", http.StatusBadRequest, w, err)
		return
	}
	caseData, err := c.DB.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		config.GuardStatus("Case not found", http.StatusNotFound, w)
		return
	}

	if !certificateAvailable(caseData) {
		config.GuardStatus("Certificate not available yet", http.StatusBadRequest, w)
		return
	}

	pdf := buildCertificatePDF(caseData)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("inline; filename=certificate-%s.pdf", caseData.ID.Hex()))
	if err := pdf.Output(w); err != nil {
		zap.S().Errorw("failed to render certificate pdf", "caseId", caseData.ID.Hex(), "error", err)
	}
}

func buildCertificatePDF(caseData *models.Case) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Certificate of Divorce", false)
	pdf.AddPage()

	// Urdu institution header. The core latin fonts cannot shape Arabic
	// script, so the header is embedded as a UTF-8 translated string with the
	// transliteration carrying the content.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Times", "B", 22)
	pdf.CellFormat(0, 12, tr("دار القضاء"), "", 1, "C", false, 0, "")
	pdf.SetFont("Times", "", 12)
	pdf.CellFormat(0, 7, "Dar-ul-Qaza (Islamic Arbitration Council)", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetLineWidth(0.6)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(8)

	pdf.SetFont("Times", "B", 16)
	pdf.CellFormat(0, 10, "CERTIFICATE OF DIVORCE", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	row := func(label, value string) {
		if value == "" {
			value = "-"
		}
		pdf.SetFont("Times", "B", 11)
		pdf.CellFormat(60, 8, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Times", "", 11)
		pdf.MultiCell(0, 8, tr(value), "", "L", false)
	}

	displayID := caseData.DisplayID
	if displayID == "" {
		displayID = caseData.CaseID
	}
	row("Case Number:", displayID)
	row("File Number:", caseData.FileNumber)
	row("Case Type:", caseData.Type)

	husband := caseData.Darkhast.HusbandName
	if husband == "" {
		husband = caseData.Darkhast.FirstPartyName
	}
	wife := caseData.Darkhast.WifeName
	if wife == "" {
		wife = caseData.Darkhast.SecondPartyName
	}
	row("Husband:", husband)
	row("Wife:", wife)
	row("CNIC:", caseData.Darkhast.CNIC)
	if caseData.Darkhast.NikahDate != nil {
		row("Date of Nikah:", caseData.Darkhast.NikahDate.Time().Format("02 January 2006"))
	}

	pdf.Ln(4)
	if caseData.Faisla != nil {
		row("Decision:", caseData.Faisla.DecisionType)
		row("Decision Date:", caseData.Faisla.DecisionDate.Time().Format("02 January 2006"))
		if caseData.Faisla.FinalOrderText != "" {
			pdf.Ln(2)
			pdf.SetFont("Times", "B", 11)
			pdf.CellFormat(0, 8, "Final Order:", "", 1, "L", false, 0, "")
			pdf.SetFont("Times", "", 11)
			pdf.MultiCell(0, 6, tr(caseData.Faisla.FinalOrderText), "", "L", false)
		}
	}

	pdf.Ln(14)
	pdf.SetFont("Times", "", 11)
	pdf.CellFormat(95, 8, fmt.Sprintf("Issued: %s", time.Now().Format("02 January 2006")), "", 0, "L", false, 0, "")
	sig := "Qazi Dar-ul-Qaza"
	if caseData.Faisla != nil && caseData.Faisla.QaziSignature != "" {
		sig = caseData.Faisla.QaziSignature
	}
	pdf.CellFormat(0, 8, sig, "", 1, "R", false, 0, "")
	pdf.SetFont("Times", "I", 9)
	pdf.CellFormat(0, 6, "Signature & Seal of Qazi", "", 1, "R", false, 0, "")

	return pdf
}
