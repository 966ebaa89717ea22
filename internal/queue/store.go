package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinicflow/internal/observability/metrics"
	"github.com/wolfman30/clinicflow/pkg/logging"
)

var tracer = otel.Tracer("clinicflow/queue")

const (
	intakeChiefComplaint  = "General consultation"
	readmitChiefComplaint = "Follow-up visit"
)

// Backend is the slice of the healthcare REST surface the store depends on.
type Backend interface {
	FetchQueue(ctx context.Context) ([]Patient, error)
	FetchAllPatients(ctx context.Context) ([]Patient, error)
	CreatePatient(ctx context.Context, intake Intake) (string, error)
	CreateVisit(ctx context.Context, patientID, chiefComplaint string) error
	ListVisits(ctx context.Context) ([]Visit, error)
	MoveToStage(ctx context.Context, visitID string, next Stage, payload MovePayload) error
}

// Store holds the authoritative in-memory snapshot of the patient queue.
// Every mutation calls the backend and then refetches the full snapshot;
// the previous snapshot stays visible until a refresh succeeds.
type Store struct {
	backend Backend
	logger  *logging.Logger
	metrics *metrics.QueueMetrics

	mu      sync.RWMutex
	active  []Patient
	all     []Patient
	loading bool
	lastErr error

	subMu sync.Mutex
	subs  map[chan struct{}]struct{}
}

// NewStore creates a queue store over the given backend. metrics may be nil.
func NewStore(backend Backend, logger *logging.Logger, m *metrics.QueueMetrics) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		backend: backend,
		logger:  logger.WithComponent("queue"),
		metrics: m,
		subs:    make(map[chan struct{}]struct{}),
	}
}

// Refresh fetches the active queue and the full patient list and replaces
// the local snapshot atomically. Silent refreshes never surface errors to
// the caller; failures are logged and the previous snapshot stays intact.
func (s *Store) Refresh(ctx context.Context, silent bool) error {
	if !silent {
		s.mu.Lock()
		s.loading = true
		s.mu.Unlock()
	}

	start := time.Now()
	active, all, err := s.fetchSnapshot(ctx)
	if err != nil {
		s.metrics.ObserveRefresh("error", silent, time.Since(start).Seconds())
		if silent {
			s.logger.Warn("background queue refresh failed", "error", err)
			return nil
		}
		s.mu.Lock()
		s.loading = false
		s.lastErr = err
		s.mu.Unlock()
		s.logger.Error("queue refresh failed", "error", err)
		return err
	}
	s.metrics.ObserveRefresh("ok", silent, time.Since(start).Seconds())

	s.mu.Lock()
	s.active = active
	s.all = all
	s.loading = false
	s.lastErr = nil
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Store) fetchSnapshot(ctx context.Context) (active, all []Patient, err error) {
	active, err = s.backend.FetchQueue(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch queue: %w", err)
	}
	all, err = s.backend.FetchAllPatients(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch all patients: %w", err)
	}
	return active, all, nil
}

// AddPatient registers a new patient and their initial visit, then
// resynchronizes. Both backend calls must succeed; an error from either
// aborts the operation and leaves the snapshot untouched.
func (s *Store) AddPatient(ctx context.Context, intake Intake) error {
	ctx, span := tracer.Start(ctx, "queue.AddPatient")
	defer span.End()

	if strings.TrimSpace(intake.FirstName) == "" && strings.TrimSpace(intake.LastName) == "" {
		return ErrNameRequired
	}

	patientID, err := s.backend.CreatePatient(ctx, intake)
	if err != nil {
		s.logger.Error("create patient failed", "error", err)
		return fmt.Errorf("create patient: %w", err)
	}
	span.SetAttributes(attribute.String("patient.id", patientID))

	if err := s.backend.CreateVisit(ctx, patientID, intakeChiefComplaint); err != nil {
		s.logger.Error("create intake visit failed", "patient_id", patientID, "error", err)
		return fmt.Errorf("create visit: %w", err)
	}

	return s.Refresh(ctx, false)
}

// MovePatient advances the patient's active visit to the given stage. The
// active visit is the first non-discharged visit found for the patient;
// ErrNoActiveVisit is returned when none exists.
func (s *Store) MovePatient(ctx context.Context, patientID string, next Stage, payload MovePayload) error {
	ctx, span := tracer.Start(ctx, "queue.MovePatient")
	defer span.End()
	span.SetAttributes(
		attribute.String("patient.id", patientID),
		attribute.String("stage.next", string(next)),
	)

	if !next.Valid() {
		return ErrInvalidStage
	}

	visit, err := s.activeVisit(ctx, patientID)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("visit.id", visit.ID))

	if err := s.backend.MoveToStage(ctx, visit.ID, next, payload); err != nil {
		s.metrics.ObserveTransition(string(visit.Stage), string(next), "error")
		s.logger.Error("move to stage failed",
			"patient_id", patientID,
			"visit_id", visit.ID,
			"stage", next,
			"error", err,
		)
		return fmt.Errorf("move to stage %s: %w", next, err)
	}
	s.metrics.ObserveTransition(string(visit.Stage), string(next), "ok")

	return s.Refresh(ctx, false)
}

// ReAdmitPatient opens a fresh visit for an existing patient identity. The
// discharged record is left as-is; the new visit starts at WaitingRoom.
func (s *Store) ReAdmitPatient(ctx context.Context, patientID string) error {
	ctx, span := tracer.Start(ctx, "queue.ReAdmitPatient")
	defer span.End()
	span.SetAttributes(attribute.String("patient.id", patientID))

	if err := s.backend.CreateVisit(ctx, patientID, readmitChiefComplaint); err != nil {
		s.logger.Error("re-admission failed", "patient_id", patientID, "error", err)
		return fmt.Errorf("re-admit patient: %w", err)
	}

	return s.Refresh(ctx, false)
}

func (s *Store) activeVisit(ctx context.Context, patientID string) (Visit, error) {
	visits, err := s.backend.ListVisits(ctx)
	if err != nil {
		return Visit{}, fmt.Errorf("list visits: %w", err)
	}
	for _, v := range visits {
		if v.PatientID == patientID && v.Active() {
			return v, nil
		}
	}
	return Visit{}, ErrNoActiveVisit
}

// GetPatientByID looks a patient up in the full snapshot, discharged
// records included. The bool is false when the id is unknown.
func (s *Store) GetPatientByID(id string) (Patient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.all {
		if p.ID == id {
			return p, true
		}
	}
	return Patient{}, false
}

// Active returns a copy of the current active-queue snapshot.
func (s *Store) Active() []Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyPatients(s.active)
}

// All returns a copy of the full patient snapshot including discharged.
func (s *Store) All() []Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyPatients(s.all)
}

// Loading reports whether a non-silent refresh is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastErr returns the error of the most recent non-silent refresh, nil
// after a success.
func (s *Store) LastErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Subscribe registers for snapshot-change notifications. The returned
// cancel func must be called when the consumer goes away.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		delete(s.subs, ch)
		s.subMu.Unlock()
	}
	return ch, cancel
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func copyPatients(in []Patient) []Patient {
	if in == nil {
		return nil
	}
	out := make([]Patient, len(in))
	copy(out, in)
	return out
}
