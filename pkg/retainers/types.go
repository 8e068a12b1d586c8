package retainers

import "time"

// Status represents the lifecycle state of a retainer agreement
type Status string

const (
	StatusPending   Status = "pending"
	StatusSigned    Status = "signed"
	StatusCancelled Status = "cancelled"
)

// Retainer is an agreement between the firm and a client. It is created
// pending by a lawyer and becomes binding when the client signs.
type Retainer struct {
	ID         string     `json:"id"`
	GuildID    string     `json:"guild_id"`
	ClientID   string     `json:"client_id"`
	LawyerID   string     `json:"lawyer_id"`
	Terms      string     `json:"terms,omitempty"`
	Status     Status     `json:"status"`
	SignedName string     `json:"signed_name,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	SignedAt   *time.Time `json:"signed_at,omitempty"`
}

// IsPending reports whether the retainer still awaits the client's signature
func (r *Retainer) IsPending() bool {
	return r.Status == StatusPending
}
