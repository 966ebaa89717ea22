// Package board serves the role-gated queue board to browser clients: the
// column views, the intake/transition/re-admission mutations, and the
// change-notification websocket.
package board

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinicflow/internal/healthcare"
	"github.com/wolfman30/clinicflow/internal/queue"
	"github.com/wolfman30/clinicflow/internal/workflow"
	"github.com/wolfman30/clinicflow/pkg/logging"
)

var stageTitles = map[queue.Stage]string{
	queue.StageWaitingRoom:     "Waiting Room",
	queue.StageTriage:          "Triage",
	queue.StageQuestioning:     "Questioning",
	queue.StageLaboratoryTest:  "Laboratory Test",
	queue.StageResultsByDoctor: "Results by Doctor",
}

// Directory is the read-only slice of the backend the board passes through
// without interpretation.
type Directory interface {
	ListAppointments(ctx context.Context) ([]healthcare.Appointment, error)
	ListStaff(ctx context.Context) ([]healthcare.StaffMember, error)
	ListMedicalRecords(ctx context.Context, patientID string) ([]healthcare.MedicalRecord, error)
}

// Handler provides the board HTTP endpoints.
type Handler struct {
	store     *queue.Store
	directory Directory
	hub       *Hub
	logger    *logging.Logger
}

// NewHandler creates a board handler. hub and directory may be nil; the
// corresponding routes are then absent.
func NewHandler(store *queue.Store, directory Directory, hub *Hub, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		store:     store,
		directory: directory,
		hub:       hub,
		logger:    logger.WithComponent("board"),
	}
}

// Routes returns a chi router with all board routes. Auth middleware is
// applied by the caller.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/board", h.GetBoard)
	if h.hub != nil {
		r.Get("/board/ws", h.hub.ServeHTTP)
	}
	r.Post("/patients", h.AddPatient)
	r.Get("/patients/{patientID}", h.GetPatient)
	r.Post("/patients/{patientID}/advance", h.AdvancePatient)
	r.Post("/patients/{patientID}/readmit", h.ReAdmitPatient)
	if h.directory != nil {
		r.Get("/appointments", h.ListAppointments)
		r.Get("/staff", h.ListStaff)
		r.Get("/patients/{patientID}/records", h.ListMedicalRecords)
	}
	return r
}

// Column is one stage of the board as the acting role sees it. Action is
// nil when the role may not move patients out of this stage.
type Column struct {
	Stage    queue.Stage     `json:"stage"`
	Title    string          `json:"title"`
	Patients []queue.Patient `json:"patients"`
	Action   *workflow.Rule  `json:"action,omitempty"`
}

// View is the full board for one role.
type View struct {
	Role        workflow.Role `json:"role"`
	Columns     []Column      `json:"columns"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// GetBoard returns the role-visible columns with patients in display order.
// GET /board
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	role, ok := RoleFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "role required"}`, http.StatusForbidden)
		return
	}

	active := h.store.Active()
	byStage := make(map[queue.Stage][]queue.Patient)
	for _, p := range active {
		byStage[p.Stage] = append(byStage[p.Stage], p)
	}

	view := View{Role: role, GeneratedAt: time.Now().UTC()}
	for _, stage := range workflow.VisibleStages(role) {
		patients := byStage[stage]
		queue.SortForDisplay(patients)
		if patients == nil {
			patients = []queue.Patient{}
		}
		col := Column{Stage: stage, Title: stageTitles[stage], Patients: patients}
		if rule, ok := workflow.ActionFor(role, stage); ok {
			col.Action = &rule
		}
		view.Columns = append(view.Columns, col)
	}

	writeJSON(w, http.StatusOK, view)
}

// AddPatientRequest is the intake request body.
type AddPatientRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Priority  string `json:"priority,omitempty"`
}

// AddPatient registers a new patient into the waiting room.
// POST /patients
func (h *Handler) AddPatient(w http.ResponseWriter, r *http.Request) {
	role, _ := RoleFromContext(r.Context())
	if role != workflow.RoleReception && role != workflow.RoleAdmin {
		http.Error(w, `{"error": "intake requires reception role"}`, http.StatusForbidden)
		return
	}

	var req AddPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	intake := queue.Intake{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    req.Gender,
		Phone:     req.Phone,
		Email:     req.Email,
		Priority:  queue.PriorityFromToken(req.Priority),
	}
	if err := h.store.AddPatient(r.Context(), intake); err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// GetPatient returns one patient from the full snapshot.
// GET /patients/{patientID}
func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	patient, ok := h.store.GetPatientByID(chi.URLParam(r, "patientID"))
	if !ok {
		http.Error(w, `{"error": "patient not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, patient)
}

// AdvanceRequest carries the stage-specific payload for a transition. The
// target stage is never client-chosen; the transition table decides it.
type AdvanceRequest struct {
	RequestedLabTests []string `json:"requested_lab_tests,omitempty"`
	LabResults        string   `json:"lab_results,omitempty"`
	Diagnosis         string   `json:"diagnosis,omitempty"`
	Prescription      string   `json:"prescription,omitempty"`
}

// AdvancePatient moves a patient to the next stage the acting role is
// permitted to reach. Authorization and payload validation happen before
// any backend call.
// POST /patients/{patientID}/advance
func (h *Handler) AdvancePatient(w http.ResponseWriter, r *http.Request) {
	role, ok := RoleFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "role required"}`, http.StatusForbidden)
		return
	}
	patientID := chi.URLParam(r, "patientID")

	var current queue.Stage
	found := false
	for _, p := range h.store.Active() {
		if p.ID == patientID {
			current = p.Stage
			found = true
			break
		}
	}
	if !found {
		http.Error(w, `{"error": "patient not in active queue"}`, http.StatusNotFound)
		return
	}

	var req AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	payload := queue.MovePayload{
		RequestedLabTests: req.RequestedLabTests,
		LabResults:        req.LabResults,
		Diagnosis:         req.Diagnosis,
		Prescription:      req.Prescription,
	}

	next, err := workflow.Authorize(role, current, payload)
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}

	if err := h.store.MovePatient(r.Context(), patientID, next, payload); err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"stage": string(next)})
}

// ReAdmitPatient opens a new visit for a previously discharged patient.
// POST /patients/{patientID}/readmit
func (h *Handler) ReAdmitPatient(w http.ResponseWriter, r *http.Request) {
	role, _ := RoleFromContext(r.Context())
	if role != workflow.RoleReception && role != workflow.RoleAdmin {
		http.Error(w, `{"error": "re-admission requires reception role"}`, http.StatusForbidden)
		return
	}
	patientID := chi.URLParam(r, "patientID")
	if _, ok := h.store.GetPatientByID(patientID); !ok {
		http.Error(w, `{"error": "patient not found"}`, http.StatusNotFound)
		return
	}
	if err := h.store.ReAdmitPatient(r.Context(), patientID); err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "readmitted"})
}

// ListAppointments passes the backend appointment list through.
// GET /appointments
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.directory.ListAppointments(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appointments)
}

// ListStaff passes the backend staff list through.
// GET /staff
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.directory.ListStaff(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, staff)
}

// ListMedicalRecords passes one patient's EHR entries through.
// GET /patients/{patientID}/records
func (h *Handler) ListMedicalRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.directory.ListMedicalRecords(r.Context(), chi.URLParam(r, "patientID"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) writeWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workflow.ErrNoTransition):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, queue.ErrNameRequired), errors.Is(err, queue.ErrInvalidStage):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, queue.ErrNoActiveVisit):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, healthcare.ErrUnauthorized):
		h.logger.Error("backend authentication failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "backend authentication failed"})
	default:
		h.logger.Error("board request failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "backend request failed"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
