package healthcare

import (
	"strings"
	"time"

	"github.com/wolfman30/clinicflow/internal/queue"
)

// Wire shapes of the healthcare backend. Everything outside this package
// sees the canonical queue types only; mapping happens here, at the fetch
// boundary.

type patientRecord struct {
	PatientID   string `json:"patient_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Gender      string `json:"gender,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Email       string `json:"email,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

type visitRecord struct {
	VisitID           string        `json:"visit_id"`
	CurrentStage      string        `json:"current_stage"`
	CheckInTime       string        `json:"check_in_time"`
	ChiefComplaint    string        `json:"chief_complaint,omitempty"`
	RequestedLabTests []string      `json:"requested_lab_tests,omitempty"`
	LabResults        string        `json:"lab_results,omitempty"`
	Diagnosis         string        `json:"diagnosis,omitempty"`
	Prescription      string        `json:"prescription,omitempty"`
	Patient           patientRecord `json:"patient"`
}

type visitSummary struct {
	VisitID      string `json:"visit_id"`
	PatientID    string `json:"patient_id"`
	CurrentStage string `json:"current_stage"`
}

type createPatientRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Gender      string `json:"gender,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Email       string `json:"email,omitempty"`
	Priority    string `json:"priority"`
}

type createPatientResponse struct {
	PatientID string `json:"patient_id"`
}

type createVisitRequest struct {
	PatientID      string `json:"patient_id"`
	ChiefComplaint string `json:"chief_complaint"`
}

type moveToStageRequest struct {
	Stage             string   `json:"stage"`
	RequestedLabTests []string `json:"requested_lab_tests,omitempty"`
	LabResults        string   `json:"lab_results,omitempty"`
	Diagnosis         string   `json:"diagnosis,omitempty"`
	Prescription      string   `json:"prescription,omitempty"`
}

// Appointment is a scheduled appointment as the backend reports it. Served
// to the board as-is.
type Appointment struct {
	ID           string `json:"appointment_id"`
	PatientID    string `json:"patient_id"`
	StaffID      string `json:"staff_id"`
	ScheduledFor string `json:"scheduled_for"`
	Reason       string `json:"reason,omitempty"`
	Status       string `json:"status,omitempty"`
}

// StaffMember is one clinic staff record.
type StaffMember struct {
	ID         string `json:"staff_id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

// MedicalRecord is one EHR entry for a patient.
type MedicalRecord struct {
	ID        string `json:"record_id"`
	PatientID string `json:"patient_id"`
	CreatedAt string `json:"created_at"`
	Title     string `json:"title"`
	Notes     string `json:"notes,omitempty"`
}

// mapVisitRecord flattens one visit-with-patient wire record into the
// canonical Patient shape. The bool is false when the record carries a
// stage token the queue does not know.
func mapVisitRecord(rec visitRecord) (queue.Patient, bool) {
	stage, ok := queue.StageFromToken(rec.CurrentStage)
	if !ok {
		return queue.Patient{}, false
	}

	checkIn, err := time.Parse(time.RFC3339, rec.CheckInTime)
	if err != nil {
		checkIn = time.Time{}
	}

	name := strings.TrimSpace(rec.Patient.FirstName + " " + rec.Patient.LastName)

	return queue.Patient{
		ID:                rec.Patient.PatientID,
		VisitID:           rec.VisitID,
		Name:              name,
		Gender:            rec.Patient.Gender,
		Phone:             rec.Patient.PhoneNumber,
		Stage:             stage,
		Priority:          queue.PriorityFromToken(rec.Patient.Priority),
		CheckInTime:       checkIn,
		RequestedLabTests: rec.RequestedLabTests,
		LabResults:        rec.LabResults,
		Diagnosis:         rec.Diagnosis,
		Prescription:      rec.Prescription,
	}, true
}
