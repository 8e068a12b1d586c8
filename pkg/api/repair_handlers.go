package api

import (
	"net/http"
	"time"

	"github.com/barrister-bot/barrister/pkg/httputil"
	"github.com/barrister-bot/barrister/pkg/permissions"
)

// RepairReport is the diagnostics result for a guild
type RepairReport struct {
	GuildID     string         `json:"guild_id"`
	StoreOK     bool           `json:"store_ok"`
	StoreError  string         `json:"store_error,omitempty"`
	Counts      map[string]int `json:"counts,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// repairTables maps report keys to the tables counted per guild
var repairTables = map[string]string{
	"staff_records": "staff_records",
	"cases":         "cases",
	"audit_entries": "audit_entries",
	"job_postings":  "job_postings",
	"retainers":     "retainers",
}

// repair handles POST /guilds/{guildID}/repair: an admin-only diagnostics
// pass that pings the store and reports per-table row counts for the guild.
// Requires the repair action or admin standing.
func (s *Server) repair(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Actor Actor `json:"actor"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	gid := guildID(r)
	pctx := req.Actor.context(gid)
	ctx := r.Context()
	if !s.perms.IsAdmin(ctx, pctx) && !s.perms.HasActionPermission(ctx, pctx, permissions.ActionRepair) {
		httputil.WriteForbidden(w, "repair permission required")
		return
	}

	report := RepairReport{
		GuildID:     gid,
		StoreOK:     true,
		Counts:      make(map[string]int),
		GeneratedAt: time.Now().UTC(),
	}

	if err := s.db.PingContext(ctx); err != nil {
		report.StoreOK = false
		report.StoreError = err.Error()
		httputil.WriteSuccess(w, report)
		return
	}

	for key, table := range repairTables {
		var count int
		// table names come from the static map above, never from input
		query := "SELECT COUNT(*) FROM " + table + " WHERE guild_id = $1"
		if err := s.db.QueryRowContext(ctx, query, gid).Scan(&count); err != nil {
			report.StoreOK = false
			report.StoreError = err.Error()
			break
		}
		report.Counts[key] = count
	}

	httputil.WriteSuccess(w, report)
}
