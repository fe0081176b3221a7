package databases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/darul-qaza/darul-qaza-api/models"
)

// ErrUserNotFound is returned when no user record matches the supplied identity.
var ErrUserNotFound = errors.New("user not found for file number assignment")

// FileNumberAllocator assigns permanent registry file numbers. Each user gets
// exactly one file number, minted from a per-year atomic counter and reused
// for every case they open afterwards.
type FileNumberAllocator struct {
	Users    UserDatabase
	Counters CounterDatabase
}

// NewFileNumberAllocator initializes a new allocator with the provided db connection
func NewFileNumberAllocator(db DatabaseHelper) *FileNumberAllocator {
	return &FileNumberAllocator{
		Users:    NewUserDatabase(db),
		Counters: NewCounterDatabase(db),
	}
}

// NextFileNumber mints the next file number for the current year.
// Format: MDMS-YYYY-000001.
func (a FileNumberAllocator) NextFileNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	seq, err := a.Counters.NextSequence(ctx, models.CounterFileNumber, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("MDMS-%d-%06d", year, seq), nil
}

// AssignOrReuse returns the user's existing file number, or mints and stores a
// new one. Idempotent per user: a second call returns the same value.
func (a FileNumberAllocator) AssignOrReuse(ctx context.Context, userID string) (string, error) {
	// The identity may be a mongo _id, a Clerk id, or an email depending on
	// which auth path supplied it.
	user, err := a.Users.FindOne(ctx, bson.M{"_id": userID})
	if err != nil {
		user, err = a.Users.FindOne(ctx, bson.M{"$or": []bson.M{
			{"user.email": userID},
			{"user.clerkId": userID},
		}})
		if err != nil {
			return "", ErrUserNotFound
		}
	}

	if user.Details.FileNumber != "" {
		return user.Details.FileNumber, nil
	}

	fileNumber, err := a.NextFileNumber(ctx)
	if err != nil {
		return "", err
	}

	_, err = a.Users.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"user.fileNumber": fileNumber}},
	)
	if err != nil {
		return "", err
	}
	return fileNumber, nil
}
