package databases

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/darul-qaza/darul-qaza-api/models"
)

// EnsureHeadQazi bootstraps the head Qazi account from env vars if not already present
// Env vars: QAZI_HEAD_EMAIL, QAZI_HEAD_PASSWORD
func EnsureHeadQazi(db DatabaseHelper) error {
	headEmail := strings.TrimSpace(strings.ToLower(os.Getenv("QAZI_HEAD_EMAIL")))
	if headEmail == "" {
		return nil
	}
	ctx := context.Background()
	var existing models.User
	err := db.Collection(userCollectionName).FindOne(ctx, bson.M{"user.email": headEmail}).Decode(&existing)
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	headPassword := os.Getenv("QAZI_HEAD_PASSWORD")
	if headPassword == "" {
		return errors.New("QAZI_HEAD_PASSWORD must be set to bootstrap head qazi")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(headPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	qazi := models.User{
		ID: headEmail,
		Details: models.UserDetails{
			Name:      "Qazi Dar-ul-Qaza",
			Email:     headEmail,
			Password:  string(hash),
			Roles:     []string{"qazi", "admin"},
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
	}
	_, err = db.Collection(userCollectionName).InsertOne(ctx, qazi)
	return err
}
