package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/darul-qaza/darul-qaza-api/api"
	"github.com/darul-qaza/darul-qaza-api/config"
	"github.com/darul-qaza/darul-qaza-api/databases"
	"github.com/darul-qaza/darul-qaza-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	DB       databases.CollectionHelper
	Config   config.Config
	dbHelper databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	notifier := Notifier{DB: databases.NewNotificationDatabase(a.dbHelper)}
	c := Case{
		DB:       databases.NewCaseDatabase(a.dbHelper),
		Counters: databases.NewCounterDatabase(a.dbHelper),
		Files:    databases.NewFileNumberAllocator(a.dbHelper),
		MDB:      databases.NewMessageDatabase(a.dbHelper),
		Notifier: notifier,
	}
	d := Document{
		DB:       databases.NewCaseDocumentDatabase(a.dbHelper),
		CDB:      databases.NewCaseDatabase(a.dbHelper),
		Notifier: notifier,
	}
	cert := Certificate{DB: databases.NewCaseDatabase(a.dbHelper)}
	msg := Message{DB: databases.NewMessageDatabase(a.dbHelper), CDB: databases.NewCaseDatabase(a.dbHelper)}
	n := Notification{DB: databases.NewNotificationDatabase(a.dbHelper)}
	cloudinaryHandler := CloudinaryHandler{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	// websocket endpoint authenticates via the userId query param, not bearer
	r.HandleFunc("/ws/notifications", HandleNotificationsWebSocket)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/cases/darkhast", api.Middleware(http.HandlerFunc(c.SubmitDarkhastHandler))).Methods("POST")
	apiCreate.Handle("/cases/my", api.Middleware(http.HandlerFunc(c.GetMyCasesHandler))).Methods("GET")
	apiCreate.Handle("/cases/admin/all", api.Middleware(http.HandlerFunc(c.GetAllCasesHandler))).Methods("GET")
	apiCreate.Handle("/cases/{case_id}/draft", api.Middleware(http.HandlerFunc(c.GetDraftHandler))).Methods("GET")
	apiCreate.Handle("/cases/{case_id}/select-type", api.Middleware(http.HandlerFunc(c.SelectCaseTypeHandler))).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/save-form", api.Middleware(http.HandlerFunc(c.SaveFormDataHandler))).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/save-resolution", api.Middleware(http.HandlerFunc(c.SaveResolutionHandler))).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/save-affidavits", api.Middleware(http.HandlerFunc(c.SaveAffidavitsHandler))).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/approve-darkhast", api.Middleware(http.HandlerFunc(c.ApproveDarkhastHandler))).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/reject-darkhast", api.Middleware(http.HandlerFunc(c.RejectDarkhastHandler))).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/send-back", api.Middleware(http.HandlerFunc(c.SendBackForCorrectionHandler))).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/approve-continue", api.Middleware(http.HandlerFunc(c.ApproveForContinueHandler))).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/issue-notice", api.Middleware(http.HandlerFunc(c.IssueNoticeHandler))).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/schedule-hearing", api.Middleware(http.HandlerFunc(c.ScheduleHearingHandler))).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/start-hearing", api.Middleware(http.HandlerFunc(c.StartHearingHandler))).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/record-attendance", api.Middleware(http.HandlerFunc(c.RecordAttendanceHandler))).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/record-statement", api.Middleware(http.HandlerFunc(c.RecordStatementHandler))).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/record-arbitration", api.Middleware(http.HandlerFunc(c.RecordArbitrationHandler))).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/issue-faisla", api.Middleware(http.HandlerFunc(c.IssueFaislaHandler))).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/close", api.Middleware(http.HandlerFunc(c.CloseCaseHandler))).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/certificate/pdf", api.Middleware(http.HandlerFunc(cert.GenerateCertificateHandler))).Methods("GET")

	apiCreate.Handle("/documents/case/{case_id}", api.Middleware(http.HandlerFunc(d.GetDocumentsForCaseHandler))).Methods("GET")
	apiCreate.Handle("/documents/case/{case_id}", api.Middleware(http.HandlerFunc(d.UploadDocumentHandler))).Methods("POST")
	apiCreate.Handle("/documents/case/{case_id}/allowed", api.Middleware(http.HandlerFunc(d.GetAllowedDocumentTypesHandler))).Methods("GET")
	apiCreate.Handle("/documents/{doc_id}/approve", api.Middleware(http.HandlerFunc(d.ApproveDocumentHandler))).Methods("PUT")
	apiCreate.Handle("/documents/{doc_id}/reject", api.Middleware(http.HandlerFunc(d.RejectDocumentHandler))).Methods("PUT")
	apiCreate.Handle("/documents/{doc_id}", api.Middleware(http.HandlerFunc(d.GetDocumentHandler))).Methods("GET")

	apiCreate.Handle("/messages/admin/send", api.Middleware(http.HandlerFunc(msg.SendMessageHandler))).Methods("POST")
	apiCreate.Handle("/messages/my", api.Middleware(http.HandlerFunc(msg.GetMyMessagesHandler))).Methods("GET")
	apiCreate.Handle("/messages/case/{case_id}", api.Middleware(http.HandlerFunc(msg.GetCaseMessagesHandler))).Methods("GET")
	apiCreate.Handle("/messages/{message_id}/read", api.Middleware(http.HandlerFunc(msg.MarkMessageReadHandler))).Methods("PATCH")

	apiCreate.Handle("/notifications/my", api.Middleware(http.HandlerFunc(n.GetMyNotificationsHandler))).Methods("GET")
	apiCreate.Handle("/notifications/{notification_id}/read", api.Middleware(http.HandlerFunc(n.MarkNotificationReadHandler))).Methods("PATCH")

	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("darul-qaza-api has connected to the database")

	// seed the head Qazi account so the admin dashboard is reachable on a
	// fresh database
	if err := databases.EnsureHeadQazi(a.dbHelper); err != nil {
		zap.S().With(err).Error("failed to ensure head qazi account")
		return err
	}

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

// DBHelper exposes the underlying database helper so main can wire background
// jobs against the same connection.
func (a *App) DBHelper() databases.DatabaseHelper {
	return a.dbHelper
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
