package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"staff-compliance-service/internal/app"
	"staff-compliance-service/internal/domain"
)

// RESTHandler serves the compliance collaborators: dashboard rendering,
// reminder dispatch, and certificate issuance.
type RESTHandler struct {
	compliance *app.ComplianceService
}

func NewRESTHandler(compliance *app.ComplianceService) *RESTHandler {
	return &RESTHandler{compliance: compliance}
}

// NewRouter wires the REST and websocket surfaces onto one router.
func NewRouter(rest *RESTHandler, ws *WSHandler) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	router.HandleFunc("/ws", ws.ServeWS)
	router.HandleFunc("/api/compliance", rest.Dashboard).Methods(http.MethodGet)
	router.HandleFunc("/api/compliance/{staffId}", rest.MemberStatus).Methods(http.MethodGet)
	router.HandleFunc("/api/reminders", rest.ReminderTargets).Methods(http.MethodGet)
	router.HandleFunc("/api/certificates/{staffId}", rest.Certificate).Methods(http.MethodGet)
	return router
}

// Dashboard returns the annotated roster, filtered by ?status=all|outstanding|passed.
func (h *RESTHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	filter := app.StatusFilter(r.URL.Query().Get("status"))
	annotated, err := h.compliance.Dashboard(r.Context(), filter)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidResultRecord) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		// Lenient policy: one malformed record must not hide the roster.
		log.Printf("dashboard warning: %v", err)
	}
	writeJSON(w, annotated)
}

func (h *RESTHandler) MemberStatus(w http.ResponseWriter, r *http.Request) {
	staffID := mux.Vars(r)["staffId"]
	annotated, err := h.compliance.MemberStatus(r.Context(), staffID)
	if err != nil {
		if errors.Is(err, domain.ErrStaffNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if !errors.Is(err, domain.ErrInvalidResultRecord) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		log.Printf("member status warning for %s: %v", staffID, err)
	}
	writeJSON(w, annotated)
}

func (h *RESTHandler) ReminderTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := h.compliance.ReminderTargets(r.Context())
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidResultRecord) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		log.Printf("reminder targets warning: %v", err)
	}
	writeJSON(w, targets)
}

func (h *RESTHandler) Certificate(w http.ResponseWriter, r *http.Request) {
	staffID := mux.Vars(r)["staffId"]
	certificate, err := h.compliance.Certificate(r.Context(), staffID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStaffNotFound), errors.Is(err, domain.ErrNotCertified):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, certificate)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}
