package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barrister-bot/barrister/pkg/permissions"
	"github.com/barrister-bot/barrister/pkg/rules"
	"github.com/barrister-bot/barrister/pkg/staff"
)

type stubStaffCounter struct {
	count int
	calls int
}

func (s *stubStaffCounter) CountActive(ctx context.Context, guildID string, role staff.Role) (int, error) {
	s.calls++
	return s.count, nil
}

type stubCaseCounter struct {
	count int
}

func (s *stubCaseCounter) CountActiveForClient(ctx context.Context, guildID, clientID string) (int, error) {
	return s.count, nil
}

type stubPerms struct {
	lead bool
}

func (s *stubPerms) HasLeadAttorneyPermission(ctx context.Context, pctx permissions.Context) bool {
	return s.lead
}

func testContext() permissions.Context {
	return permissions.Context{GuildID: "G1", UserID: "U1"}
}

func newDefaultService(staffCount, caseCount int, lead bool) (*Service, *stubStaffCounter) {
	staffCounter := &stubStaffCounter{count: staffCount}
	ruleSvc := rules.NewService(staffCounter, &stubCaseCounter{count: caseCount}, &stubPerms{lead: lead}, nil, nil)
	return NewDefaultService(ruleSvc, nil), staffCounter
}

func TestValidateRejectsUnregisteredPair(t *testing.T) {
	svc := NewService(nil)
	result := svc.Validate(context.Background(), Request{
		Context:   testContext(),
		Entity:    EntityStaff,
		Operation: OperationHire,
	})
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "no validation registered")
}

func TestValidateRejectsInvalidContext(t *testing.T) {
	svc, _ := newDefaultService(0, 0, false)
	result := svc.Validate(context.Background(), Request{
		Context:   permissions.Context{GuildID: "G1"},
		Entity:    EntityStaff,
		Operation: OperationHire,
		Data:      map[string]interface{}{"user_id": "U2", "role": "Paralegal"},
	})
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "invalid permission context")
}

func TestSchemaFailureShortCircuitsBusinessRules(t *testing.T) {
	svc, staffCounter := newDefaultService(0, 0, false)
	result := svc.Validate(context.Background(), Request{
		Context:   testContext(),
		Entity:    EntityStaff,
		Operation: OperationHire,
		Data:      map[string]interface{}{"user_id": "U2"},
	})
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "missing or empty field: role")
	assert.Zero(t, staffCounter.calls, "business strategies must not run on schema failure")
}

func TestSchemaRejectsUnknownRole(t *testing.T) {
	svc, staffCounter := newDefaultService(0, 0, false)
	result := svc.Validate(context.Background(), Request{
		Context:   testContext(),
		Entity:    EntityStaff,
		Operation: OperationHire,
		Data:      map[string]interface{}{"user_id": "U2", "role": "Intern"},
	})
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "unknown staff role")
	assert.Zero(t, staffCounter.calls)
}

func TestHireDispatchChecksRoleLimit(t *testing.T) {
	svc, _ := newDefaultService(1, 0, false)
	result := svc.Validate(context.Background(), Request{
		Context:   testContext(),
		Entity:    EntityStaff,
		Operation: OperationHire,
		Data:      map[string]interface{}{"user_id": "U2", "role": "Managing Partner"},
	})
	require.False(t, result.Valid)
	assert.True(t, result.BypassAvailable)
	require.NotNil(t, result.CurrentCount)
	assert.Equal(t, 1, *result.CurrentCount)
	require.NotNil(t, result.MaxCount)
	assert.Equal(t, 1, *result.MaxCount)
}

func TestHireDispatchPassesUnderCap(t *testing.T) {
	svc, _ := newDefaultService(2, 0, false)
	result := svc.Validate(context.Background(), Request{
		Context:   testContext(),
		Entity:    EntityStaff,
		Operation: OperationHire,
		Data:      map[string]interface{}{"user_id": "U2", "role": "Senior Partner"},
	})
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestPromoteDispatchRejectsSelf(t *testing.T) {
	svc, _ := newDefaultService(0, 0, false)
	result := svc.Validate(context.Background(), Request{
		Context:   testContext(),
		Entity:    EntityStaff,
		Operation: OperationPromote,
		Data: map[string]interface{}{
			"user_id":      "U1",
			"current_role": "Junior Associate",
			"new_role":     "Senior Associate",
		},
	})
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "cannot promote themselves")
}

func TestDemoteDispatchChecksDirection(t *testing.T) {
	svc, _ := newDefaultService(0, 0, false)
	result := svc.Validate(context.Background(), Request{
		Context:   testContext(),
		Entity:    EntityStaff,
		Operation: OperationDemote,
		Data: map[string]interface{}{
			"user_id":      "U2",
			"current_role": "Paralegal",
			"new_role":     "Junior Associate",
		},
	})
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "must be lower than")
}

func TestCaseOpenDispatchWarnsNearCap(t *testing.T) {
	svc, _ := newDefaultService(0, 4, false)
	result := svc.Validate(context.Background(), Request{
		Context:   testContext(),
		Entity:    EntityCase,
		Operation: OperationOpen,
		Data:      map[string]interface{}{"client_id": "C1", "title": "dispute"},
	})
	require.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "approaching")
}

func TestCaseOpenDispatchRejectsAtCap(t *testing.T) {
	svc, _ := newDefaultService(0, 5, false)
	result := svc.Validate(context.Background(), Request{
		Context:   testContext(),
		Entity:    EntityCase,
		Operation: OperationOpen,
		Data:      map[string]interface{}{"client_id": "C1", "title": "dispute"},
	})
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "maximum active case limit (5)")
	assert.False(t, result.BypassAvailable)
}

func TestSetLeadDispatchRequiresAssignment(t *testing.T) {
	svc, _ := newDefaultService(0, 0, true)
	result := svc.Validate(context.Background(), Request{
		Context:   testContext(),
		Entity:    EntityCase,
		Operation: OperationSetLead,
		Data: map[string]interface{}{
			"case_number":      "2026-abcd1234",
			"user_id":          "L1",
			"assigned_lawyers": []string{"L2", "L3"},
		},
	})
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "not an assigned lawyer")
}

func TestSetLeadDispatchAcceptsAssignedLawyer(t *testing.T) {
	svc, _ := newDefaultService(0, 0, true)
	result := svc.Validate(context.Background(), Request{
		Context:   testContext(),
		Entity:    EntityCase,
		Operation: OperationSetLead,
		Data: map[string]interface{}{
			"case_number": "2026-abcd1234",
			"user_id":     "L1",
			// decoded JSON yields []interface{}
			"assigned_lawyers": []interface{}{"L1", "L2"},
		},
	})
	assert.True(t, result.Valid)
}

func TestCaseCloseDispatchRejectsUnknownResult(t *testing.T) {
	svc, _ := newDefaultService(0, 0, false)
	result := svc.Validate(context.Background(), Request{
		Context:   testContext(),
		Entity:    EntityCase,
		Operation: OperationClose,
		Data:      map[string]interface{}{"case_number": "2026-abcd1234", "result": "mistrial"},
	})
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "unknown case result")
}

func TestCustomStrategiesMerge(t *testing.T) {
	svc := NewService(nil)
	svc.RegisterSchema(EntityJob, OperationClose, RequireFields("job_id"))
	svc.RegisterBusiness(EntityJob, OperationClose, StrategyFunc{
		StrategyName: "advisory",
		Fn: func(ctx context.Context, req Request) rules.Result {
			return rules.OK().WithWarning("closing early").WithMeta("job_id", req.Data["job_id"])
		},
	})

	result := svc.Validate(context.Background(), Request{
		Context:   testContext(),
		Entity:    EntityJob,
		Operation: OperationClose,
		Data:      map[string]interface{}{"job_id": "J1"},
	})
	require.True(t, result.Valid)
	assert.Equal(t, []string{"closing early"}, result.Warnings)
	assert.Equal(t, "J1", result.Metadata["job_id"])
}
