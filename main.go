package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/darul-qaza/darul-qaza-api/api/handlers"
	"github.com/darul-qaza/darul-qaza-api/api/scheduler"
	"github.com/darul-qaza/darul-qaza-api/config"
	"github.com/darul-qaza/darul-qaza-api/databases"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	if err := a.Initialize(); err != nil { // initialize database and router
		log.Fatal(err)
	}

	// background jobs: hearing reminders and notification pruning
	s := scheduler.NewScheduler(
		databases.NewCaseDatabase(a.DBHelper()),
		databases.NewNotificationDatabase(a.DBHelper()),
		databases.NewUserDatabase(a.DBHelper()),
	)
	s.Start()
	defer s.Stop()

	port := os.Getenv("PORT")
	baseURL := os.Getenv("BASE_URL")
	zap.S().Infow("darul-qaza-api is up and running",
		"port", port,
		"url", baseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", port), a.Router))
}
