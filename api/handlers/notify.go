package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/darul-qaza/darul-qaza-api/api"
	"github.com/darul-qaza/darul-qaza-api/config"
	"github.com/darul-qaza/darul-qaza-api/databases"
	"github.com/darul-qaza/darul-qaza-api/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NotificationHub tracks connected users (userId -> *websocket.Conn)
type NotificationHub struct {
	clients map[string]*websocket.Conn
	mutex   sync.Mutex
}

var hub = &NotificationHub{
	clients: make(map[string]*websocket.Conn),
}

// HandleNotificationsWebSocket upgrades the connection and registers the user
// for live notification delivery
func HandleNotificationsWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade error", "error", err)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		conn.Close()
		return
	}

	hub.mutex.Lock()
	hub.clients[userID] = conn
	hub.mutex.Unlock()
	zap.S().Debugw("user connected to /ws/notifications", "userId", userID)

	conn.SetCloseHandler(func(code int, text string) error {
		hub.mutex.Lock()
		delete(hub.clients, userID)
		hub.mutex.Unlock()
		zap.S().Debugw("user disconnected from /ws/notifications", "userId", userID)
		return nil
	})

	// Keep connection alive
	for {
		if _, _, err := conn.NextReader(); err != nil {
			conn.Close()
			break
		}
	}
}

func sendNotificationToUser(userID string, notification interface{}) {
	hub.mutex.Lock()
	conn, exists := hub.clients[userID]
	hub.mutex.Unlock()

	if exists {
		err := conn.WriteJSON(map[string]interface{}{
			"event": "new_notification",
			"data":  notification,
		})
		if err != nil {
			zap.S().Warnw("failed to push notification over websocket", "userId", userID, "error", err)
			hub.mutex.Lock()
			delete(hub.clients, userID)
			hub.mutex.Unlock()
			conn.Close()
		}
	}
}

// Notifier persists notifications and pushes them to connected clients.
// Delivery is best effort: failures are logged and swallowed so they never
// fail the operation that triggered them.
type Notifier struct {
	DB databases.NotificationDatabase
}

// Notify records a notification for userID, optionally linked to a case.
func (n Notifier) Notify(ctx context.Context, userID, message, severity string, caseID *primitive.ObjectID) {
	if n.DB == nil {
		return
	}
	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		CaseID:    caseID,
		Message:   message,
		Type:      severity,
		Read:      false,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	if _, err := n.DB.InsertOne(ctx, notification); err != nil {
		zap.S().Errorw("failed to create notification", "userId", userID, "error", err)
		return
	}
	sendNotificationToUser(userID, notification)
}

// Notification handles the notification feed endpoints
type Notification struct {
	DB databases.NotificationDatabase
}

// GetMyNotificationsHandler returns the 20 most recent notifications for the caller
func (n Notification) GetMyNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID := api.CallerID(r, r.URL.Query().Get("userId"))

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	limit := int64(20)
	notifications, err := n.DB.Find(ctx, bson.M{"userId": userID}, &options.FindOptions{
		Sort:  bson.M{"createdAt": -1},
		Limit: &limit,
	})
	if err != nil {
		config.ErrorStatus("failed to get notifications", http.StatusInternalServerError, w, err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(notifications)
}

// MarkNotificationReadHandler flips the read flag on a notification
func (n Notification) MarkNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	nID, err := primitive.ObjectIDFromHex(muxVar(r, "notification_id"))
	if err != nil {
		config.ErrorStatus("invalid notification ID", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	_, err = n.DB.UpdateOne(ctx, bson.M{"_id": nID}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		config.ErrorStatus("failed to mark notification as read", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
