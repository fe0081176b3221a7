package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

func muxVar(r *http.Request, key string) string {
	return mux.Vars(r)[key]
}
