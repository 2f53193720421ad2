package rest

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/phytoscan/phytoscan-api/util"
	"github.com/phytoscan/phytoscan-api/util/tracing"
)

// ServerResponse is the envelope every handler returns.
type ServerResponse struct {
	Err        error       `json:"-"`
	Message    string      `json:"message"`
	Status     string      `json:"status"`
	StatusCode int         `json:"-"`
	Data       interface{} `json:"data,omitempty"`
}

// respondWithError wraps a failure into the response envelope and logs
// it with the tracing context.
func respondWithError(err error, message, status string, tc *tracing.Context) *ServerResponse {
	if tc != nil {
		log.Printf("[%s] %s: %v", tc.RequestID, message, err)
	} else {
		log.Printf("%s: %v", message, err)
	}
	return &ServerResponse{
		Err:        err,
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
	}
}

// writeErrorResponse is used where a handler has no envelope to return,
// middleware mostly.
func writeErrorResponse(w http.ResponseWriter, err error, status, message string) {
	resp := ServerResponse{
		Err:        err,
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
	}
	respByte, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		http.Error(w, message, http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, respByte, resp.StatusCode)
}

func writeJSONResponse(w http.ResponseWriter, body []byte, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		log.Println("error writing response body", err)
	}
}
