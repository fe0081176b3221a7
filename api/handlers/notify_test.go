package handlers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/darul-qaza/darul-qaza-api/api/handlers"
	"github.com/darul-qaza/darul-qaza-api/databases/mocks"
	"github.com/darul-qaza/darul-qaza-api/models"
)

func TestNotifier_NotifyPersistsNotification(t *testing.T) {
	caseID := primitive.NewObjectID()

	var inserted models.Notification
	notifDB := &mocks.NotificationDatabase{}
	notifDB.On("InsertOne", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			inserted = args.Get(1).(models.Notification)
		}).
		Return(nil, nil)

	n := handlers.Notifier{DB: notifDB}
	n.Notify(context.Background(), "user-1", "Your Darkhast has been submitted to Qazi.", models.NotifyInfo, &caseID)

	assert.Equal(t, "user-1", inserted.UserID)
	assert.Equal(t, "Your Darkhast has been submitted to Qazi.", inserted.Message)
	assert.Equal(t, models.NotifyInfo, inserted.Type)
	assert.Equal(t, &caseID, inserted.CaseID)
	assert.False(t, inserted.Read)
}

func TestNotifier_NotifySwallowsInsertErrors(t *testing.T) {
	// Notification delivery must never fail the triggering operation
	notifDB := &mocks.NotificationDatabase{}
	notifDB.On("InsertOne", mock.Anything, mock.Anything).
		Return(nil, errors.New("mocked-error"))

	n := handlers.Notifier{DB: notifDB}
	assert.NotPanics(t, func() {
		n.Notify(context.Background(), "user-1", "msg", models.NotifyWarning, nil)
	})
}

func TestNotifier_NilDatabaseIsNoop(t *testing.T) {
	n := handlers.Notifier{}
	assert.NotPanics(t, func() {
		n.Notify(context.Background(), "user-1", "msg", models.NotifyInfo, nil)
	})
}
