// Package healthcare is the typed client for the clinic's REST backend.
package healthcare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/clinicflow/internal/queue"
	"github.com/wolfman30/clinicflow/pkg/logging"
)

const defaultTimeout = 20 * time.Second

// TokenSource yields the bearer token attached to every backend call.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// Client talks to the healthcare REST backend. It implements queue.Backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *logging.Logger
}

// NewClient creates a backend client. tokens may be nil when the backend
// requires no authentication.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration, logger *logging.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tokens: tokens,
		logger: logger.WithComponent("healthcare"),
	}
}

// FetchQueue returns the current active queue.
func (c *Client) FetchQueue(ctx context.Context) ([]queue.Patient, error) {
	return c.fetchPatients(ctx, "/healthcare/visits/queue/")
}

// FetchAllPatients returns the full patient history, discharged included.
func (c *Client) FetchAllPatients(ctx context.Context) ([]queue.Patient, error) {
	return c.fetchPatients(ctx, "/healthcare/visits/all_patients/")
}

func (c *Client) fetchPatients(ctx context.Context, path string) ([]queue.Patient, error) {
	var records []visitRecord
	if err := c.do(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	patients := make([]queue.Patient, 0, len(records))
	for _, rec := range records {
		p, ok := mapVisitRecord(rec)
		if !ok {
			c.logger.Warn("skipping record with unknown stage token",
				"visit_id", rec.VisitID,
				"stage", rec.CurrentStage,
			)
			continue
		}
		patients = append(patients, p)
	}
	return patients, nil
}

// CreatePatient registers a patient and returns the backend-assigned id.
func (c *Client) CreatePatient(ctx context.Context, intake queue.Intake) (string, error) {
	req := createPatientRequest{
		FirstName:   intake.FirstName,
		LastName:    intake.LastName,
		Gender:      intake.Gender,
		PhoneNumber: intake.Phone,
		Email:       intake.Email,
		Priority:    intake.Priority.Token(),
	}
	var resp createPatientResponse
	if err := c.do(ctx, http.MethodPost, "/healthcare/patients/", req, &resp); err != nil {
		return "", err
	}
	if resp.PatientID == "" {
		return "", fmt.Errorf("healthcare: create patient returned empty patient id")
	}
	return resp.PatientID, nil
}

// CreateVisit opens a visit for an existing patient. Used for fresh intake
// and for re-admission alike.
func (c *Client) CreateVisit(ctx context.Context, patientID, chiefComplaint string) error {
	req := createVisitRequest{PatientID: patientID, ChiefComplaint: chiefComplaint}
	return c.do(ctx, http.MethodPost, "/healthcare/visits/", req, nil)
}

// ListVisits returns every visit, used to resolve a patient's active visit.
func (c *Client) ListVisits(ctx context.Context) ([]queue.Visit, error) {
	var summaries []visitSummary
	if err := c.do(ctx, http.MethodGet, "/healthcare/visits/", nil, &summaries); err != nil {
		return nil, err
	}
	visits := make([]queue.Visit, 0, len(summaries))
	for _, s := range summaries {
		stage, ok := queue.StageFromToken(s.CurrentStage)
		if !ok {
			continue
		}
		visits = append(visits, queue.Visit{ID: s.VisitID, PatientID: s.PatientID, Stage: stage})
	}
	return visits, nil
}

// MoveToStage advances one visit to the given stage with its payload.
func (c *Client) MoveToStage(ctx context.Context, visitID string, next queue.Stage, payload queue.MovePayload) error {
	req := moveToStageRequest{
		Stage:             next.Token(),
		RequestedLabTests: payload.RequestedLabTests,
		LabResults:        payload.LabResults,
		Diagnosis:         payload.Diagnosis,
		Prescription:      payload.Prescription,
	}
	path := fmt.Sprintf("/healthcare/visits/%s/move_to_stage/", visitID)
	return c.do(ctx, http.MethodPost, path, req, nil)
}

// ListAppointments returns scheduled appointments.
func (c *Client) ListAppointments(ctx context.Context) ([]Appointment, error) {
	var out []Appointment
	if err := c.do(ctx, http.MethodGet, "/healthcare/appointments/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListStaff returns clinic staff records.
func (c *Client) ListStaff(ctx context.Context) ([]StaffMember, error) {
	var out []StaffMember
	if err := c.do(ctx, http.MethodGet, "/healthcare/staff/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMedicalRecords returns EHR entries for one patient.
func (c *Client) ListMedicalRecords(ctx context.Context, patientID string) ([]MedicalRecord, error) {
	var out []MedicalRecord
	path := fmt.Sprintf("/healthcare/patients/%s/records/", patientID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("healthcare: marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("healthcare: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("healthcare: resolve token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("healthcare: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("healthcare: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		if resp.StatusCode == http.StatusUnauthorized {
			c.logger.Warn("backend rejected credentials", "path", path)
		}
		return &APIError{StatusCode: resp.StatusCode, Body: msg}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("healthcare: unmarshal response: %w", err)
		}
	}
	return nil
}
