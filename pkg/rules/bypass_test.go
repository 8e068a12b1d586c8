package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barrister-bot/barrister/pkg/audit"
	"github.com/barrister-bot/barrister/pkg/permissions"
	"github.com/barrister-bot/barrister/pkg/staff"
)

type capturingLogger struct {
	entries []*audit.Entry
}

func (c *capturingLogger) Log(ctx context.Context, entry *audit.Entry) error {
	c.entries = append(c.entries, entry)
	return nil
}

func limitResult(current, max int) Result {
	return FailWithCounts("the Managing Partner role is full", current, max)
}

func ownerCtx() permissions.Context {
	return permissions.Context{GuildID: "G1", UserID: "U-owner", IsGuildOwner: true}
}

func TestAuthorizeBypass(t *testing.T) {
	base := BypassRequest{
		Context:  ownerCtx(),
		TargetID: "U3",
		Role:     staff.RoleManagingPartner,
		Result:   limitResult(1, 1),
		Reason:   "interim appointment during restructure",
	}

	assert.NoError(t, AuthorizeBypass(base))

	nonOwner := base
	nonOwner.Context.IsGuildOwner = false
	assert.ErrorIs(t, AuthorizeBypass(nonOwner), ErrBypassNotAllowed)

	noReason := base
	noReason.Reason = ""
	assert.ErrorIs(t, AuthorizeBypass(noReason), ErrBypassReasonRequired)

	notEligible := base
	notEligible.Result = Fail("new role must be higher than Paralegal")
	assert.ErrorIs(t, AuthorizeBypass(notEligible), ErrBypassNotAllowed)
}

func TestRecordBypassWritesCriticalEntry(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	logger := &capturingLogger{}

	entry, err := svc.RecordBypass(context.Background(), logger, BypassRequest{
		Context:  ownerCtx(),
		TargetID: "U3",
		Role:     staff.RoleManagingPartner,
		Result:   limitResult(1, 1),
		Reason:   "interim appointment",
	})
	require.NoError(t, err)
	require.Len(t, logger.entries, 1)

	assert.Same(t, entry, logger.entries[0])
	assert.Equal(t, audit.ActionRoleLimitBypassed, entry.Action)
	assert.Equal(t, audit.SeverityCritical, entry.Severity)
	assert.True(t, entry.IsGuildOwnerBypass)
	assert.Equal(t, "U-owner", entry.ActorID)
	assert.Equal(t, "U3", entry.TargetID)
	require.NotNil(t, entry.Details.BypassInfo)
	assert.Equal(t, 1, entry.Details.BypassInfo.CurrentCount)
	assert.Equal(t, 1, entry.Details.BypassInfo.MaxCount)
	assert.Equal(t, "interim appointment", entry.Details.BypassInfo.Reason)
	assert.Equal(t, "Managing Partner", entry.Details.Metadata["role"])
}

func TestRecordBypassRejectsNonOwner(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	logger := &capturingLogger{}

	_, err := svc.RecordBypass(context.Background(), logger, BypassRequest{
		Context:  permissions.Context{GuildID: "G1", UserID: "U2"},
		TargetID: "U3",
		Role:     staff.RoleManagingPartner,
		Result:   limitResult(1, 1),
		Reason:   "trying anyway",
	})
	assert.ErrorIs(t, err, ErrBypassNotAllowed)
	assert.Empty(t, logger.entries)
}
