// Package api exposes HTTP handlers for the roster service.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"example.com/roster/internal/domain"
)

// IndexPath is where GET / redirects.
const IndexPath = "/static/index.html"

const activityNameVar = "activityName"

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	logger  logrus.FieldLogger
}

// NewHandler builds a Handler. A nil logger discards output.
func NewHandler(service *domain.Service, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes wires endpoints to the router and installs JSON
// responses for unknown paths and unsupported methods.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", redirectToIndex).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)
	r.HandleFunc("/activities", h.listActivities).Methods(http.MethodGet)
	r.HandleFunc("/activities/{activityName}", h.getActivity).Methods(http.MethodGet)
	r.HandleFunc("/activities/{activityName}/signup", h.signUp).Methods(http.MethodPost)
	r.HandleFunc("/activities/{activityName}/signup", h.unregister).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func redirectToIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, IndexPath, http.StatusTemporaryRedirect)
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.service.ListActivities(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}

func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := h.service.GetActivity(r.Context(), activityName(r))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}
	name := activityName(r)
	if _, err := h.service.SignUp(r.Context(), name, email); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeMessage(w, fmt.Sprintf("Signed up %s for %s", email, name))
}

func (h *Handler) unregister(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}
	name := activityName(r)
	if _, err := h.service.Unregister(r.Context(), name, email); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeMessage(w, fmt.Sprintf("Unregistered %s from %s", email, name))
}

// activityName returns the decoded {activityName} path segment.
func activityName(r *http.Request) domain.ActivityName {
	return domain.ActivityName(mux.Vars(r)[activityNameVar])
}

// requireEmail reads the email query parameter. Presence is required, the
// value itself is not validated.
func requireEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	values, ok := r.URL.Query()["email"]
	if !ok || len(values) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "email query parameter is required")
		return "", false
	}
	return values[0], true
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrActivityNotFound):
		writeError(w, http.StatusNotFound, "Activity not found")
	case errors.Is(err, domain.ErrAlreadyRegistered):
		writeError(w, http.StatusBadRequest, "Student already signed up for this activity")
	case errors.Is(err, domain.ErrNotRegistered):
		writeError(w, http.StatusBadRequest, "Student is not signed up for this activity")
	case errors.Is(err, domain.ErrActivityFull):
		writeError(w, http.StatusBadRequest, "Activity is full")
	default:
		h.logger.WithError(err).WithField("path", r.URL.Path).Error("roster request failed")
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "Not Found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

// MessageResponse is the success body of signup and unregister.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: message})
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
