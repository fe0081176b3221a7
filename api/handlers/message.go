package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/darul-qaza/darul-qaza-api/api"
	"github.com/darul-qaza/darul-qaza-api/config"
	"github.com/darul-qaza/darul-qaza-api/databases"
	"github.com/darul-qaza/darul-qaza-api/models"
	templates "github.com/darul-qaza/darul-qaza-api/templates/html"
)

// Message handles the formal Qazi-to-applicant message endpoints
type Message struct {
	DB  databases.MessageDatabase
	CDB databases.CaseDatabase
}

const defaultSenderName = "Qazi Dar-ul-Qaza"

// SendMessageHandler records a formal message for a user, optionally linked to
// a case, and emails a copy when a recipient email is known
func (m Message) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CaseID         string `json:"caseId"`
		RecipientID    string `json:"recipientId"`
		RecipientEmail string `json:"recipientEmail"`
		Title          string `json:"title"`
		Body           string `json:"body"`
		SenderID       string `json:"senderId"`
		SenderName     string `json:"senderName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if body.RecipientID == "" || body.Title == "" || body.Body == "" {
		config.GuardStatus("recipientId, title and body are required", http.StatusBadRequest, w)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var caseID *primitive.ObjectID
	if body.CaseID != "" {
		cID, err := primitive.ObjectIDFromHex(body.CaseID)
		if err != nil {
			config.ErrorStatus("invalid case ID", http.StatusBadRequest, w, err)
			return
		}
		// Validate the case exists before linking the message to it
		if _, err := m.CDB.FindOne(ctx, bson.M{"_id": cID}); err == nil {
			caseID = &cID
		}
	}

	senderID := body.SenderID
	if senderID == "" {
		senderID = api.CallerID(r, "admin")
	}
	senderName := body.SenderName
	if senderName == "" {
		senderName = "Dar-ul-Qaza Admin"
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	message := models.Message{
		ID:             primitive.NewObjectID(),
		CaseID:         caseID,
		RecipientID:    body.RecipientID,
		RecipientEmail: body.RecipientEmail,
		SenderID:       senderID,
		SenderName:     senderName,
		Title:          body.Title,
		Body:           body.Body,
		Read:           false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := m.DB.InsertOne(ctx, message); err != nil {
		config.ErrorStatus("failed to create message", http.StatusInternalServerError, w, err)
		return
	}

	if message.RecipientEmail != "" {
		go sendMessageEmail(message)
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(message)
}

// GetMyMessagesHandler returns the 50 most recent messages for the caller
func (m Message) GetMyMessagesHandler(w http.ResponseWriter, r *http.Request) {
	recipientID := api.CallerID(r, r.URL.Query().Get("userId"))

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	limit := int64(50)
	messages, err := m.DB.Find(ctx, bson.M{"recipientId": recipientID}, &options.FindOptions{
		Sort:  bson.M{"createdAt": -1},
		Limit: &limit,
	})
	if err != nil {
		config.ErrorStatus("failed to get messages", http.StatusInternalServerError, w, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(messages)
}

// MarkMessageReadHandler flips the read flag on a message
func (m Message) MarkMessageReadHandler(w http.ResponseWriter, r *http.Request) {
	mID, err := primitive.ObjectIDFromHex(muxVar(r, "message_id"))
	if err != nil {
		config.ErrorStatus("invalid message ID", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	message, err := m.DB.FindOne(ctx, bson.M{"_id": mID})
	if err != nil {
		config.ErrorStatus("Message not found", http.StatusNotFound, w, err)
		return
	}

	_, err = m.DB.UpdateOne(ctx, bson.M{"_id": mID}, bson.M{"$set": bson.M{
		"read":      true,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}})
	if err != nil {
		config.ErrorStatus("failed to mark message as read", http.StatusInternalServerError, w, err)
		return
	}

	message.Read = true
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(message)
}

// GetCaseMessagesHandler returns every message linked to a case, newest first
func (m Message) GetCaseMessagesHandler(w http.ResponseWriter, r *http.Request) {
	cID, err := primitive.ObjectIDFromHex(muxVar(r, "case_id"))
	if err != nil {
		config.ErrorStatus("invalid case ID", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	messages, err := m.DB.Find(ctx, bson.M{"caseId": cID}, &options.FindOptions{
		Sort: bson.M{"createdAt": -1},
	})
	if err != nil {
		config.ErrorStatus("failed to get messages", http.StatusInternalServerError, w, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(messages)
}

// sendFormalMessage persists an admin message against a case. Used by the
// workflow decision handlers when the Qazi attaches a note for the applicant.
func sendFormalMessage(ctx context.Context, db databases.MessageDatabase, caseID primitive.ObjectID, recipientID, senderID, title, body string) {
	if db == nil || body == "" {
		return
	}
	now := primitive.NewDateTimeFromTime(time.Now())
	message := models.Message{
		ID:          primitive.NewObjectID(),
		CaseID:      &caseID,
		RecipientID: recipientID,
		SenderID:    senderID,
		SenderName:  defaultSenderName,
		Title:       title,
		Body:        body,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := db.InsertOne(ctx, message); err != nil {
		zap.S().Errorw("failed to create formal message", "caseId", caseID.Hex(), "error", err)
	}
}

func sendMessageEmail(message models.Message) {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		return
	}
	from := mail.NewEmail("Dar-ul-Qaza", "no-reply@darulqaza.org")
	to := mail.NewEmail(message.RecipientID, message.RecipientEmail)
	htmlContent := templates.RenderGenericEmail(message.Title, message.Body)
	email := mail.NewSingleEmail(from, message.Title, to, message.Body, htmlContent)
	client := sendgrid.NewSendClient(apiKey)
	response, err := client.Send(email)
	if err != nil {
		zap.S().Errorw("failed to send message email", "error", err)
		return
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
}
