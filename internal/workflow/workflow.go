// Package workflow is the stage-transition policy for the patient queue:
// which role may move a patient out of which stage, what payload the
// transition requires, and which board columns each role may see.
package workflow

import (
	"errors"
	"strings"

	"github.com/wolfman30/clinicflow/internal/queue"
)

// Role identifies the acting user's function in the clinic.
type Role string

const (
	RoleReception  Role = "reception"
	RoleStaff      Role = "staff"
	RoleDoctor     Role = "doctor"
	RoleLaboratory Role = "laboratory"
	RoleAdmin      Role = "admin"
)

// ParseRole maps a claim value to a known role. The bool is false for
// unknown values.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleReception:
		return RoleReception, true
	case RoleStaff:
		return RoleStaff, true
	case RoleDoctor:
		return RoleDoctor, true
	case RoleLaboratory:
		return RoleLaboratory, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

var (
	// ErrNoTransition is returned when the role has no action for the
	// patient's current stage. Discharged is terminal for every role.
	ErrNoTransition = errors.New("no transition available for role at this stage")

	// ErrLabTestsRequired is returned when a move to LaboratoryTest carries
	// no requested tests
	ErrLabTestsRequired = errors.New("at least one requested lab test is required")

	// ErrLabResultsRequired is returned when a move to ResultsByDoctor
	// carries no results text
	ErrLabResultsRequired = errors.New("lab results are required")

	// ErrDischargeFieldsRequired is returned when a discharge is missing
	// diagnosis or prescription
	ErrDischargeFieldsRequired = errors.New("diagnosis and prescription are required")
)

// Rule is one row of the transition table.
type Rule struct {
	From  queue.Stage `json:"from"`
	Role  Role        `json:"role"`
	To    queue.Stage `json:"to"`
	Label string      `json:"label"`
}

// Exactly one rule per non-terminal stage. Admin appears nowhere: admins
// see every column but execute no transitions.
var rules = map[queue.Stage]Rule{
	queue.StageWaitingRoom:     {From: queue.StageWaitingRoom, Role: RoleReception, To: queue.StageTriage, Label: "Send to Triage"},
	queue.StageTriage:          {From: queue.StageTriage, Role: RoleStaff, To: queue.StageQuestioning, Label: "Start Questioning"},
	queue.StageQuestioning:     {From: queue.StageQuestioning, Role: RoleDoctor, To: queue.StageLaboratoryTest, Label: "Request Lab Tests"},
	queue.StageLaboratoryTest:  {From: queue.StageLaboratoryTest, Role: RoleLaboratory, To: queue.StageResultsByDoctor, Label: "Submit Lab Results"},
	queue.StageResultsByDoctor: {From: queue.StageResultsByDoctor, Role: RoleDoctor, To: queue.StageDischarged, Label: "Discharge"},
}

// ActionFor returns the transition available to role for patients at stage.
// When the role is not the one the table names for that stage there is no
// action at all, not a disabled one.
func ActionFor(role Role, stage queue.Stage) (Rule, bool) {
	rule, ok := rules[stage]
	if !ok || rule.Role != role {
		return Rule{}, false
	}
	return rule, true
}

// ValidatePayload checks the stage-specific fields the rule's transition
// requires. It runs before any backend call is issued.
func (r Rule) ValidatePayload(p queue.MovePayload) error {
	switch r.To {
	case queue.StageLaboratoryTest:
		if len(nonEmpty(p.RequestedLabTests)) == 0 {
			return ErrLabTestsRequired
		}
	case queue.StageResultsByDoctor:
		if strings.TrimSpace(p.LabResults) == "" {
			return ErrLabResultsRequired
		}
	case queue.StageDischarged:
		if strings.TrimSpace(p.Diagnosis) == "" || strings.TrimSpace(p.Prescription) == "" {
			return ErrDischargeFieldsRequired
		}
	}
	return nil
}

// Authorize resolves and validates the transition for role out of current.
// On success it returns the stage the patient advances to.
func Authorize(role Role, current queue.Stage, payload queue.MovePayload) (queue.Stage, error) {
	rule, ok := ActionFor(role, current)
	if !ok {
		return "", ErrNoTransition
	}
	if err := rule.ValidatePayload(payload); err != nil {
		return "", err
	}
	return rule.To, nil
}

// VisibleStages returns the board columns the role may see. This is a
// coarser policy than the transition table; visibility never grants
// execute rights.
func VisibleStages(role Role) []queue.Stage {
	switch role {
	case RoleReception:
		return []queue.Stage{queue.StageWaitingRoom}
	case RoleStaff:
		return []queue.Stage{queue.StageTriage}
	case RoleDoctor:
		return []queue.Stage{queue.StageQuestioning, queue.StageResultsByDoctor}
	case RoleLaboratory:
		return []queue.Stage{queue.StageLaboratoryTest}
	case RoleAdmin:
		stages := make([]queue.Stage, len(queue.Stages))
		copy(stages, queue.Stages)
		return stages
	}
	return nil
}

func nonEmpty(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
