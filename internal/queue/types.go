// Package queue owns the synchronized in-memory snapshot of the patient
// queue. All reads go through copied views and all mutations go through the
// Store, which calls the healthcare backend and then refetches the full
// snapshot rather than applying changes optimistically.
package queue

import "time"

// Stage is one discrete phase of a patient's visit lifecycle. Transitions
// move forward along the declared order only; Discharged is terminal.
type Stage string

const (
	StageWaitingRoom     Stage = "WaitingRoom"
	StageTriage          Stage = "Triage"
	StageQuestioning     Stage = "Questioning"
	StageLaboratoryTest  Stage = "LaboratoryTest"
	StageResultsByDoctor Stage = "ResultsByDoctor"
	StageDischarged      Stage = "Discharged"
)

// Stages lists the non-terminal stages in queue order.
var Stages = []Stage{
	StageWaitingRoom,
	StageTriage,
	StageQuestioning,
	StageLaboratoryTest,
	StageResultsByDoctor,
}

var stageTokens = map[Stage]string{
	StageWaitingRoom:     "waiting_room",
	StageTriage:          "triage",
	StageQuestioning:     "questioning",
	StageLaboratoryTest:  "laboratory_test",
	StageResultsByDoctor: "results_by_doctor",
	StageDischarged:      "discharged",
}

var stagesByToken = func() map[string]Stage {
	m := make(map[string]Stage, len(stageTokens))
	for stage, token := range stageTokens {
		m[token] = stage
	}
	return m
}()

// Token returns the backend wire token for the stage.
func (s Stage) Token() string {
	return stageTokens[s]
}

// Valid reports whether s is one of the six defined stages.
func (s Stage) Valid() bool {
	_, ok := stageTokens[s]
	return ok
}

// StageFromToken maps a backend wire token to its stage. The bool is false
// for unknown tokens.
func StageFromToken(token string) (Stage, bool) {
	stage, ok := stagesByToken[token]
	return stage, ok
}

// Priority affects display ordering only, never stage eligibility.
type Priority string

const (
	PriorityStandard Priority = "Standard"
	PriorityUrgent   Priority = "Urgent"
)

// Token returns the backend wire token for the priority.
func (p Priority) Token() string {
	if p == PriorityUrgent {
		return "urgent"
	}
	return "standard"
}

// PriorityFromToken normalizes a backend priority token. Anything that is
// not "urgent" reads as Standard.
func PriorityFromToken(token string) Priority {
	if token == "urgent" {
		return PriorityUrgent
	}
	return PriorityStandard
}

// Patient is the canonical queue-side view of one patient and their current
// visit. The stage payload fields are populated only once the patient has
// passed through the corresponding stage.
type Patient struct {
	ID          string    `json:"id"`
	VisitID     string    `json:"visit_id,omitempty"`
	Name        string    `json:"name"`
	Gender      string    `json:"gender,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Stage       Stage     `json:"stage"`
	Priority    Priority  `json:"priority"`
	CheckInTime time.Time `json:"check_in_time"`

	RequestedLabTests []string `json:"requested_lab_tests,omitempty"`
	LabResults        string   `json:"lab_results,omitempty"`
	Diagnosis         string   `json:"diagnosis,omitempty"`
	Prescription      string   `json:"prescription,omitempty"`
}

// Visit is one episode of care, created at intake or re-admission and
// ending at discharge.
type Visit struct {
	ID        string
	PatientID string
	Stage     Stage
}

// Active reports whether the visit has not yet reached discharge.
func (v Visit) Active() bool {
	return v.Stage != StageDischarged
}

// Intake is the data collected when registering a new patient.
type Intake struct {
	FirstName string
	LastName  string
	Gender    string
	Phone     string
	Email     string
	Priority  Priority
}

// MovePayload carries the stage-specific fields attached to a transition.
type MovePayload struct {
	RequestedLabTests []string
	LabResults        string
	Diagnosis         string
	Prescription      string
}
