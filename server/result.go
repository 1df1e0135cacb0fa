package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// EndpointResult is the outcome of one endpoint call: the HTTP status, the
// response body, and an internal message for the server log that is never
// shown to the client.
type EndpointResult struct {
	status      int
	resp        any
	internalMsg string
}

// ErrorResponse is the body of every error result.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func jsonOK(respObj any, internalMsg string, args ...any) EndpointResult {
	return EndpointResult{status: http.StatusOK, resp: respObj, internalMsg: fmt.Sprintf(internalMsg, args...)}
}

func jsonCreated(respObj any, internalMsg string, args ...any) EndpointResult {
	return EndpointResult{status: http.StatusCreated, resp: respObj, internalMsg: fmt.Sprintf(internalMsg, args...)}
}

func jsonErr(status int, userMsg string, internalMsg string, args ...any) EndpointResult {
	return EndpointResult{
		status:      status,
		resp:        ErrorResponse{Error: userMsg, Status: status},
		internalMsg: fmt.Sprintf(internalMsg, args...),
	}
}

func jsonBadRequest(userMsg string, internalMsg string, args ...any) EndpointResult {
	return jsonErr(http.StatusBadRequest, userMsg, internalMsg, args...)
}

func jsonNotFound(internalMsg string, args ...any) EndpointResult {
	return jsonErr(http.StatusNotFound, "The requested resource was not found", internalMsg, args...)
}

func jsonInternalServerError(internalMsg string, args ...any) EndpointResult {
	return jsonErr(http.StatusInternalServerError, "An internal server error occurred", internalMsg, args...)
}

func (r EndpointResult) writeResponse(w http.ResponseWriter, req *http.Request) {
	log.Printf("%d %s %s: %s", r.status, req.Method, req.URL.Path, r.internalMsg)

	if r.resp == nil {
		w.WriteHeader(r.status)
		return
	}

	body, err := json.Marshal(r.resp)
	if err != nil {
		log.Printf("marshal response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.status)
	w.Write(body)
}
