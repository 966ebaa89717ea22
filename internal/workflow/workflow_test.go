package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinicflow/internal/queue"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		stage queue.Stage
		role  Role
		next  queue.Stage
	}{
		{queue.StageWaitingRoom, RoleReception, queue.StageTriage},
		{queue.StageTriage, RoleStaff, queue.StageQuestioning},
		{queue.StageQuestioning, RoleDoctor, queue.StageLaboratoryTest},
		{queue.StageLaboratoryTest, RoleLaboratory, queue.StageResultsByDoctor},
		{queue.StageResultsByDoctor, RoleDoctor, queue.StageDischarged},
	}
	for _, tt := range tests {
		rule, ok := ActionFor(tt.role, tt.stage)
		require.True(t, ok, "%s at %s", tt.role, tt.stage)
		assert.Equal(t, tt.next, rule.To)
	}
}

func TestActionAbsentForOtherRoles(t *testing.T) {
	roles := []Role{RoleReception, RoleStaff, RoleDoctor, RoleLaboratory, RoleAdmin}
	for _, stage := range queue.Stages {
		permitted := map[Role]bool{}
		if rule, ok := rules[stage]; ok {
			permitted[rule.Role] = true
		}
		for _, role := range roles {
			_, ok := ActionFor(role, stage)
			assert.Equal(t, permitted[role], ok, "role %s at stage %s", role, stage)
		}
	}
}

func TestAdminNeverExecutes(t *testing.T) {
	for _, stage := range append(append([]queue.Stage{}, queue.Stages...), queue.StageDischarged) {
		_, ok := ActionFor(RoleAdmin, stage)
		assert.False(t, ok, "admin has visibility, not execute rights (stage %s)", stage)
	}
}

func TestDischargedIsTerminal(t *testing.T) {
	for _, role := range []Role{RoleReception, RoleStaff, RoleDoctor, RoleLaboratory, RoleAdmin} {
		_, err := Authorize(role, queue.StageDischarged, queue.MovePayload{})
		assert.ErrorIs(t, err, ErrNoTransition, "role %s", role)
	}
}

func TestAuthorizePayloadValidation(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		stage   queue.Stage
		payload queue.MovePayload
		wantErr error
		want    queue.Stage
	}{
		{
			name:    "lab tests required",
			role:    RoleDoctor,
			stage:   queue.StageQuestioning,
			payload: queue.MovePayload{RequestedLabTests: nil},
			wantErr: ErrLabTestsRequired,
		},
		{
			name:    "blank lab tests rejected",
			role:    RoleDoctor,
			stage:   queue.StageQuestioning,
			payload: queue.MovePayload{RequestedLabTests: []string{"  ", ""}},
			wantErr: ErrLabTestsRequired,
		},
		{
			name:    "lab tests accepted",
			role:    RoleDoctor,
			stage:   queue.StageQuestioning,
			payload: queue.MovePayload{RequestedLabTests: []string{"CBC"}},
			want:    queue.StageLaboratoryTest,
		},
		{
			name:    "lab results required",
			role:    RoleLaboratory,
			stage:   queue.StageLaboratoryTest,
			payload: queue.MovePayload{LabResults: "   "},
			wantErr: ErrLabResultsRequired,
		},
		{
			name:    "discharge needs diagnosis and prescription",
			role:    RoleDoctor,
			stage:   queue.StageResultsByDoctor,
			payload: queue.MovePayload{Diagnosis: "flu"},
			wantErr: ErrDischargeFieldsRequired,
		},
		{
			name:    "discharge accepted",
			role:    RoleDoctor,
			stage:   queue.StageResultsByDoctor,
			payload: queue.MovePayload{Diagnosis: "flu", Prescription: "rest"},
			want:    queue.StageDischarged,
		},
		{
			name:    "triage needs no payload",
			role:    RoleReception,
			stage:   queue.StageWaitingRoom,
			payload: queue.MovePayload{},
			want:    queue.StageTriage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Authorize(tt.role, tt.stage, tt.payload)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, next)
		})
	}
}

func TestVisibleStages(t *testing.T) {
	assert.Equal(t, []queue.Stage{queue.StageWaitingRoom}, VisibleStages(RoleReception))
	assert.Equal(t, []queue.Stage{queue.StageTriage}, VisibleStages(RoleStaff))
	assert.Equal(t, []queue.Stage{queue.StageQuestioning, queue.StageResultsByDoctor}, VisibleStages(RoleDoctor))
	assert.Equal(t, []queue.Stage{queue.StageLaboratoryTest}, VisibleStages(RoleLaboratory))
	assert.Len(t, VisibleStages(RoleAdmin), 5)
	assert.Nil(t, VisibleStages(Role("janitor")))
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole(" Doctor ")
	require.True(t, ok)
	assert.Equal(t, RoleDoctor, role)

	_, ok = ParseRole("janitor")
	assert.False(t, ok)
}
