package firm

import (
	"context"

	"github.com/barrister-bot/barrister/pkg/audit"
	"github.com/barrister-bot/barrister/pkg/cases"
	"github.com/barrister-bot/barrister/pkg/permissions"
	"github.com/barrister-bot/barrister/pkg/rules"
	"github.com/barrister-bot/barrister/pkg/staff"
)

// memStaffStore is an in-memory StaffStore keyed by guild/user
type memStaffStore struct {
	records map[string]*staff.Record
	nextID  int64
}

func newMemStaffStore() *memStaffStore {
	return &memStaffStore{records: make(map[string]*staff.Record)}
}

func key(guildID, userID string) string {
	return guildID + "/" + userID
}

func (m *memStaffStore) CountActive(ctx context.Context, guildID string, role staff.Role) (int, error) {
	count := 0
	for _, r := range m.records {
		if r.GuildID == guildID && r.Role == role && r.IsActive() {
			count++
		}
	}
	return count, nil
}

func (m *memStaffStore) Get(ctx context.Context, guildID, userID string) (*staff.Record, error) {
	if r, ok := m.records[key(guildID, userID)]; ok {
		return r, nil
	}
	return nil, staff.ErrNotFound
}

func (m *memStaffStore) GetActive(ctx context.Context, guildID, userID string) (*staff.Record, error) {
	if r, ok := m.records[key(guildID, userID)]; ok && r.IsActive() {
		return r, nil
	}
	return nil, staff.ErrNotFound
}

func (m *memStaffStore) ListActive(ctx context.Context, guildID string) ([]*staff.Record, error) {
	var out []*staff.Record
	for _, r := range m.records {
		if r.GuildID == guildID && r.IsActive() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStaffStore) Insert(ctx context.Context, rec *staff.Record) error {
	m.nextID++
	rec.ID = m.nextID
	m.records[key(rec.GuildID, rec.UserID)] = rec
	return nil
}

func (m *memStaffStore) Update(ctx context.Context, rec *staff.Record) error {
	if _, ok := m.records[key(rec.GuildID, rec.UserID)]; !ok {
		return staff.ErrNotFound
	}
	m.records[key(rec.GuildID, rec.UserID)] = rec
	return nil
}

// memCaseStore is an in-memory CaseStore keyed by guild/case number
type memCaseStore struct {
	cases  map[string]*cases.Case
	nextID int64
}

func newMemCaseStore() *memCaseStore {
	return &memCaseStore{cases: make(map[string]*cases.Case)}
}

func (m *memCaseStore) CountActiveForClient(ctx context.Context, guildID, clientID string) (int, error) {
	count := 0
	for _, c := range m.cases {
		if c.GuildID == guildID && c.ClientID == clientID && !c.IsClosed() {
			count++
		}
	}
	return count, nil
}

func (m *memCaseStore) Get(ctx context.Context, guildID, caseNumber string) (*cases.Case, error) {
	if c, ok := m.cases[key(guildID, caseNumber)]; ok {
		return c, nil
	}
	return nil, cases.ErrNotFound
}

func (m *memCaseStore) Insert(ctx context.Context, c *cases.Case) error {
	m.nextID++
	c.ID = m.nextID
	m.cases[key(c.GuildID, c.CaseNumber)] = c
	return nil
}

func (m *memCaseStore) Update(ctx context.Context, c *cases.Case) error {
	if _, ok := m.cases[key(c.GuildID, c.CaseNumber)]; !ok {
		return cases.ErrNotFound
	}
	m.cases[key(c.GuildID, c.CaseNumber)] = c
	return nil
}

func (m *memCaseStore) ListForClient(ctx context.Context, guildID, clientID string) ([]*cases.Case, error) {
	var out []*cases.Case
	for _, c := range m.cases {
		if c.GuildID == guildID && c.ClientID == clientID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCaseStore) ListForLawyer(ctx context.Context, guildID, userID string) ([]*cases.Case, error) {
	var out []*cases.Case
	for _, c := range m.cases {
		if c.GuildID == guildID && c.HasLawyer(userID) && !c.IsClosed() {
			out = append(out, c)
		}
	}
	return out, nil
}

// fakePerms grants the listed capabilities unconditionally
type fakePerms struct {
	admin        bool
	seniorStaff  bool
	lawyer       bool
	leadAttorney bool
	caseAction   bool
}

func (f *fakePerms) HasActionPermission(ctx context.Context, pctx permissions.Context, action permissions.Action) bool {
	if pctx.IsGuildOwner {
		return true
	}
	switch action {
	case permissions.ActionCase:
		return f.caseAction
	case permissions.ActionSeniorStaff:
		return f.seniorStaff
	case permissions.ActionLawyer:
		return f.lawyer
	case permissions.ActionLeadAttorney:
		return f.leadAttorney
	case permissions.ActionAdmin:
		return f.admin
	}
	return false
}

func (f *fakePerms) IsAdmin(ctx context.Context, pctx permissions.Context) bool {
	return pctx.IsGuildOwner || f.admin
}

func (f *fakePerms) HasSeniorStaffPermission(ctx context.Context, pctx permissions.Context) bool {
	return f.IsAdmin(ctx, pctx) || f.seniorStaff
}

func (f *fakePerms) HasLawyerPermission(ctx context.Context, pctx permissions.Context) bool {
	return f.IsAdmin(ctx, pctx) || f.lawyer
}

func (f *fakePerms) HasLeadAttorneyPermission(ctx context.Context, pctx permissions.Context) bool {
	return f.IsAdmin(ctx, pctx) || f.leadAttorney
}

// capturingAudit collects entries for assertions
type capturingAudit struct {
	entries []*audit.Entry
}

func (c *capturingAudit) Log(ctx context.Context, entry *audit.Entry) error {
	c.entries = append(c.entries, entry)
	return nil
}

func (c *capturingAudit) byAction(action audit.Action) []*audit.Entry {
	var out []*audit.Entry
	for _, e := range c.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	svc        *Service
	staffStore *memStaffStore
	caseStore  *memCaseStore
	perms      *fakePerms
	auditLog   *capturingAudit
}

func newTestEnv(perms *fakePerms) *testEnv {
	staffStore := newMemStaffStore()
	caseStore := newMemCaseStore()
	auditLog := &capturingAudit{}
	ruleSvc := rules.NewService(staffStore, caseStore, perms, nil, nil)
	return &testEnv{
		svc:        NewService(staffStore, caseStore, perms, ruleSvc, auditLog, nil),
		staffStore: staffStore,
		caseStore:  caseStore,
		perms:      perms,
		auditLog:   auditLog,
	}
}
