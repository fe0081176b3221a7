package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/darul-qaza/darul-qaza-api/databases"
	"github.com/darul-qaza/darul-qaza-api/models"
	templates "github.com/darul-qaza/darul-qaza-api/templates/html"
)

// Scheduler handles periodic background jobs: hearing reminders the day
// before a scheduled hearing, and pruning of stale notifications.
type Scheduler struct {
	cron       *cron.Cron
	CDB        databases.CaseDatabase
	NDB        databases.NotificationDatabase
	UDB        databases.UserDatabase
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	cDB databases.CaseDatabase,
	nDB databases.NotificationDatabase,
	uDB databases.UserDatabase,
) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		CDB:        cDB,
		NDB:        nDB,
		UDB:        uDB,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Send hearing reminders daily at 3 AM UTC
	_, err := s.cron.AddFunc("0 3 * * *", s.sendHearingReminders)
	if err != nil {
		zap.S().Errorw("failed to register hearing reminder job", "error", err)
	}

	// Prune read notifications older than 30 days, daily at 4 AM UTC
	_, err = s.cron.AddFunc("0 4 * * *", s.pruneOldNotifications)
	if err != nil {
		zap.S().Errorw("failed to register notification prune job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Darul Qaza scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Darul Qaza scheduler stopped")
}

// sendHearingReminders notifies parties whose hearing falls within the next
// 24 hours.
func (s *Scheduler) sendHearingReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now()
	oneDayFromNow := now.Add(24 * time.Hour)

	zap.S().Infow("Running hearing reminder job", "instance", s.instanceID)

	filter := bson.M{
		"status": models.StatusHearingScheduled,
		"hearing.hearingDate": bson.M{
			"$gte": primitive.NewDateTimeFromTime(now),
			"$lt":  primitive.NewDateTimeFromTime(oneDayFromNow),
		},
	}
	cases, err := s.CDB.Find(ctx, filter)
	if err != nil {
		zap.S().Errorw("failed to find cases with upcoming hearings", "error", err)
		return
	}

	for _, caseData := range cases {
		s.remindHearing(ctx, caseData)
	}

	zap.S().Infow("Hearing reminder job complete", "casesReminded", len(cases))
}

func (s *Scheduler) remindHearing(ctx context.Context, caseData models.Case) {
	if caseData.Hearing == nil {
		return
	}

	when := caseData.Hearing.HearingDate.Time().Format("02 January 2006")
	if caseData.Hearing.HearingTime != "" {
		when = when + " at " + caseData.Hearing.HearingTime
	}
	message := fmt.Sprintf("Reminder: your hearing for case %s is scheduled for %s.", caseData.DisplayID, when)

	caseID := caseData.ID
	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    caseData.CreatedBy,
		CaseID:    &caseID,
		Message:   message,
		Type:      models.NotifyInfo,
		Read:      false,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	if _, err := s.NDB.InsertOne(ctx, notification); err != nil {
		zap.S().Errorw("failed to insert hearing reminder notification",
			"caseId", caseData.ID.Hex(), "error", err)
	}

	email, name := s.getUserEmail(ctx, caseData.CreatedBy)
	if email == "" {
		return
	}
	subject := fmt.Sprintf("Hearing Reminder: Case %s - Dar-ul-Qaza", caseData.DisplayID)
	htmlContent := templates.RenderGenericEmail(subject, message)
	if err := s.sendEmail(email, name, subject, htmlContent, message); err != nil {
		zap.S().Errorw("failed to send hearing reminder email",
			"caseId", caseData.ID.Hex(), "error", err)
	}
}

// pruneOldNotifications deletes read notifications older than 30 days.
func (s *Scheduler) pruneOldNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	deleted, err := s.NDB.DeleteMany(ctx, bson.M{
		"read":      true,
		"createdAt": bson.M{"$lt": primitive.NewDateTimeFromTime(cutoff)},
	})
	if err != nil {
		zap.S().Errorw("failed to prune old notifications", "error", err)
		return
	}
	zap.S().Infow("Notification prune complete", "deleted", deleted)
}

func (s *Scheduler) sendEmail(toEmail, toName, subject, htmlContent, plainText string) error {
	from := mail.NewEmail("Dar-ul-Qaza", "no-reply@darulqaza.org")
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
	return nil
}

func (s *Scheduler) getUserEmail(ctx context.Context, userID string) (email, name string) {
	user, err := s.UDB.FindOne(ctx, bson.M{"_id": userID})
	if err != nil {
		user, err = s.UDB.FindOne(ctx, bson.M{"$or": []bson.M{
			{"user.email": userID},
			{"user.clerkId": userID},
		}})
		if err != nil {
			return "", ""
		}
	}
	if user.Details.Email == "" {
		return "", ""
	}
	return user.Details.Email, user.Details.Name
}
