package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/darul-qaza/darul-qaza-api/api/handlers"
	"github.com/darul-qaza/darul-qaza-api/databases/mocks"
	"github.com/darul-qaza/darul-qaza-api/models"
)

func TestMessage_SendMessageHandler_RequiredFields(t *testing.T) {
	m := handlers.Message{DB: &mocks.MessageDatabase{}}
	req, _ := http.NewRequest("POST", "/api/v1/messages/admin/send", bytes.NewBufferString(`{"recipientId":"user-1","title":"x"}`))
	rr := httptest.NewRecorder()
	http.HandlerFunc(m.SendMessageHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "recipientId, title and body are required", guardMessage(t, rr))
}

func TestMessage_SendMessageHandler_Success(t *testing.T) {
	msgDB := &mocks.MessageDatabase{}
	msgDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	m := handlers.Message{DB: msgDB}
	body := `{"recipientId":"user-1","title":"Hearing update","body":"Your hearing has moved.","senderId":"admin-1","senderName":"Qazi Sahib"}`
	req, _ := http.NewRequest("POST", "/api/v1/messages/admin/send", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(m.SendMessageHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var created models.Message
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "user-1", created.RecipientID)
	assert.Equal(t, "Qazi Sahib", created.SenderName)
	assert.False(t, created.Read)
	assert.Nil(t, created.CaseID)
	msgDB.AssertExpectations(t)
}

func TestMessage_SendMessageHandler_SkipsUnknownCaseLink(t *testing.T) {
	// A dangling caseId is dropped rather than failing the send
	unknownCase := primitive.NewObjectID()

	caseDB := &mocks.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	msgDB := &mocks.MessageDatabase{}
	msgDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	m := handlers.Message{DB: msgDB, CDB: caseDB}
	body, _ := json.Marshal(map[string]string{
		"caseId":      unknownCase.Hex(),
		"recipientId": "user-1",
		"title":       "t",
		"body":        "b",
	})
	req, _ := http.NewRequest("POST", "/api/v1/messages/admin/send", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(m.SendMessageHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var created models.Message
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Nil(t, created.CaseID)
}

func TestMessage_MarkMessageReadHandler_NotFound(t *testing.T) {
	msgDB := &mocks.MessageDatabase{}
	msgDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	m := handlers.Message{DB: msgDB}
	id := primitive.NewObjectID()
	req, _ := http.NewRequest("PATCH", "/api/v1/messages/"+id.Hex()+"/read", nil)
	req = mux.SetURLVars(req, map[string]string{"message_id": id.Hex()})
	rr := httptest.NewRecorder()
	http.HandlerFunc(m.MarkMessageReadHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Message not found", guardMessage(t, rr))
}

func TestMessage_GetMyMessagesHandler_EmptyResultIsArray(t *testing.T) {
	msgDB := &mocks.MessageDatabase{}
	msgDB.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	m := handlers.Message{DB: msgDB}
	req, _ := http.NewRequest("GET", "/api/v1/messages/my?userId=user-1", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(m.GetMyMessagesHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())
}

func TestNotification_GetMyNotificationsHandler(t *testing.T) {
	caseID := primitive.NewObjectID()
	notifications := []models.Notification{
		{ID: primitive.NewObjectID(), UserID: "user-1", CaseID: &caseID, Message: "hello", Type: models.NotifyInfo},
	}

	var filter bson.M
	notifDB := &mocks.NotificationDatabase{}
	notifDB.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			filter = args.Get(1).(bson.M)
		}).
		Return(notifications, nil)

	n := handlers.Notification{DB: notifDB}
	req, _ := http.NewRequest("GET", "/api/v1/notifications/my?userId=user-1", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(n.GetMyNotificationsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user-1", filter["userId"])

	var got []models.Notification
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Message)
}

func TestNotification_MarkNotificationReadHandler(t *testing.T) {
	id := primitive.NewObjectID()

	var update bson.M
	notifDB := &mocks.NotificationDatabase{}
	notifDB.On("UpdateOne", mock.Anything, bson.M{"_id": id}, mock.Anything).
		Run(func(args mock.Arguments) {
			update = args.Get(2).(bson.M)
		}).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	n := handlers.Notification{DB: notifDB}
	req, _ := http.NewRequest("PATCH", "/api/v1/notifications/"+id.Hex()+"/read", nil)
	req = mux.SetURLVars(req, map[string]string{"notification_id": id.Hex()})
	rr := httptest.NewRecorder()
	http.HandlerFunc(n.MarkNotificationReadHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, update["$set"].(bson.M)["read"])
	assert.Equal(t, "{\"success\":true}\n", rr.Body.String())
}
