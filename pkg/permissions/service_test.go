package permissions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSource struct {
	cfg   *GuildConfig
	err   error
	calls int
}

func (f *fakeSource) Ensure(ctx context.Context, guildID string) (*GuildConfig, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.cfg, nil
}

func configWith(guildID string, mutate func(*GuildConfig)) *GuildConfig {
	cfg := DefaultGuildConfig(guildID)
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

func TestGuildOwnerOverridesEverything(t *testing.T) {
	svc := NewService(&fakeSource{cfg: configWith("G1", nil)}, nil, nil, nil)
	pctx := Context{GuildID: "G1", UserID: "U1", IsGuildOwner: true}

	for _, action := range AllActions() {
		assert.True(t, svc.HasActionPermission(context.Background(), pctx, action),
			"owner should hold %s", action)
	}
}

func TestAdminUserAndAdminRole(t *testing.T) {
	src := &fakeSource{cfg: configWith("G1", func(c *GuildConfig) {
		c.AdminUsers = []string{"U9"}
		c.AdminRoles = []string{"R-admin"}
	})}
	svc := NewService(src, nil, nil, nil)
	ctx := context.Background()

	assert.True(t, svc.HasActionPermission(ctx, Context{GuildID: "G1", UserID: "U9"}, ActionAdmin))
	assert.True(t, svc.HasActionPermission(ctx, Context{GuildID: "G1", UserID: "U2", UserRoles: []string{"R-admin"}}, ActionAdmin))
	assert.False(t, svc.HasActionPermission(ctx, Context{GuildID: "G1", UserID: "U3", UserRoles: []string{"R-other"}}, ActionAdmin))
}

func TestAdminDoesNotImplyLawyer(t *testing.T) {
	src := &fakeSource{cfg: configWith("G1", func(c *GuildConfig) {
		c.AdminRoles = []string{"R-admin"}
	})}
	svc := NewService(src, nil, nil, nil)
	ctx := context.Background()
	pctx := Context{GuildID: "G1", UserID: "U1", UserRoles: []string{"R-admin"}}

	assert.True(t, svc.IsAdmin(ctx, pctx))
	// the raw lawyer action is independent of admin status
	assert.False(t, svc.HasActionPermission(ctx, pctx, ActionLawyer))
	// but the composite helper folds admin in
	assert.True(t, svc.HasLawyerPermission(ctx, pctx))
}

func TestPerActionRoleList(t *testing.T) {
	src := &fakeSource{cfg: configWith("G1", func(c *GuildConfig) {
		c.ActionRoles[ActionCase] = []string{"R-case"}
		c.ActionRoles[ActionLeadAttorney] = []string{"R-lead"}
	})}
	svc := NewService(src, nil, nil, nil)
	ctx := context.Background()

	caseHolder := Context{GuildID: "G1", UserID: "U1", UserRoles: []string{"R-case"}}
	assert.True(t, svc.HasActionPermission(ctx, caseHolder, ActionCase))
	assert.False(t, svc.HasActionPermission(ctx, caseHolder, ActionLeadAttorney))
	assert.False(t, svc.HasLeadAttorneyPermission(ctx, caseHolder))

	leadHolder := Context{GuildID: "G1", UserID: "U2", UserRoles: []string{"R-lead"}}
	assert.True(t, svc.HasLeadAttorneyPermission(ctx, leadHolder))
}

func TestMalformedContextFailsClosed(t *testing.T) {
	svc := NewService(&fakeSource{cfg: configWith("G1", nil)}, nil, nil, nil)
	ctx := context.Background()

	assert.False(t, svc.HasActionPermission(ctx, Context{UserID: "U1"}, ActionAdmin))
	assert.False(t, svc.HasActionPermission(ctx, Context{GuildID: "G1"}, ActionAdmin))
	// owner flag does not rescue a malformed context
	assert.False(t, svc.HasActionPermission(ctx, Context{IsGuildOwner: true}, ActionAdmin))
}

func TestStoreErrorFailsClosed(t *testing.T) {
	svc := NewService(&fakeSource{err: errors.New("connection refused")}, nil, nil, nil)
	pctx := Context{GuildID: "G1", UserID: "U1", UserRoles: []string{"R-admin"}}

	assert.False(t, svc.HasActionPermission(context.Background(), pctx, ActionAdmin))
	assert.False(t, svc.IsAdmin(context.Background(), pctx))
}

func TestCheckIsIdempotent(t *testing.T) {
	src := &fakeSource{cfg: configWith("G1", func(c *GuildConfig) {
		c.ActionRoles[ActionLawyer] = []string{"R-law"}
	})}
	svc := NewService(src, nil, nil, nil)
	ctx := context.Background()
	pctx := Context{GuildID: "G1", UserID: "U1", UserRoles: []string{"R-law"}}

	first := svc.HasActionPermission(ctx, pctx, ActionLawyer)
	second := svc.HasActionPermission(ctx, pctx, ActionLawyer)
	assert.Equal(t, first, second)
	assert.True(t, first)
}

func TestCacheShortCircuitsSource(t *testing.T) {
	src := &fakeSource{cfg: configWith("G1", func(c *GuildConfig) {
		c.ActionRoles[ActionCase] = []string{"R-case"}
	})}
	cache := NewConfigCache(nil, 16, 0)
	svc := NewService(src, cache, nil, nil)
	ctx := context.Background()
	pctx := Context{GuildID: "G1", UserID: "U1", UserRoles: []string{"R-case"}}

	assert.True(t, svc.HasActionPermission(ctx, pctx, ActionCase))
	assert.True(t, svc.HasActionPermission(ctx, pctx, ActionCase))
	assert.Equal(t, 1, src.calls)
}

func TestInvalidateDropsRevokedGrant(t *testing.T) {
	src := &fakeSource{cfg: configWith("G1", func(c *GuildConfig) {
		c.ActionRoles[ActionLawyer] = []string{"R1"}
	})}
	cache := NewConfigCache(nil, 16, 0)
	svc := NewService(src, cache, nil, nil)
	ctx := context.Background()
	pctx := Context{GuildID: "G1", UserID: "U1", UserRoles: []string{"R1"}}

	assert.True(t, svc.HasActionPermission(ctx, pctx, ActionLawyer))

	// revoke the grant at the source; the cached config still authorizes
	src.cfg = configWith("G1", nil)
	assert.True(t, svc.HasActionPermission(ctx, pctx, ActionLawyer))

	// invalidation forces the next check back to the source
	cache.Invalidate(ctx, "G1")
	assert.False(t, svc.HasActionPermission(ctx, pctx, ActionLawyer))
}

func TestValidAction(t *testing.T) {
	assert.True(t, ValidAction("lead-attorney"))
	assert.True(t, ValidAction("repair"))
	assert.False(t, ValidAction("supreme-court"))
}

func TestNormalizeFillsMissingKeys(t *testing.T) {
	cfg := &GuildConfig{GuildID: "G1"}
	cfg.Normalize()

	assert.Len(t, cfg.ActionRoles, len(AllActions()))
	for _, a := range AllActions() {
		assert.NotNil(t, cfg.ActionRoles[a])
		assert.Empty(t, cfg.ActionRoles[a])
	}
	assert.NotNil(t, cfg.AdminRoles)
	assert.NotNil(t, cfg.AdminUsers)
}
