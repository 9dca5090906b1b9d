// Package telemetry is an observational audit log of server activity: it
// records query invocations and engine recomputation versions for later
// inspection, and never backs the live symbol index, graph, or ticket
// state itself (that state is rebuilt from disk on every process start).
package telemetry

import (
	"time"

	"gorm.io/datatypes"
)

// Session tracks one client connection to the server, mirroring the
// editor's lifecycle from initialize to shutdown.
type Session struct {
	ID        string    `gorm:"primaryKey;type:varchar(20)"`
	StartedAt time.Time `gorm:"autoCreateTime"`
	EndedAt   *time.Time

	RecomputeCount int `gorm:"default:0"`
	QueryCount     int `gorm:"default:0"`

	// ClientInfo holds whatever the initialize request's clientInfo
	// object carried, stored opaquely.
	ClientInfo datatypes.JSON `gorm:"type:jsonb"`
}

// Recompute records one engine snapshot rebuild: its version, the
// workspace-wide counts that came out of it, and how long it took.
type Recompute struct {
	ID        string `gorm:"primaryKey;type:varchar(20)"`
	SessionID string `gorm:"type:varchar(20);index"`

	Version    int `gorm:"index"`
	DurationMS int64

	FileCount        int
	ModuleCount      int
	FeatureCount     int
	RequirementCount int
	ConstraintCount  int
	EdgeCount        int
	ConflictCount    int

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// QueryInvocation records one LSP-style query's method name, the
// snapshot version it ran against, and its wall-clock cost.
type QueryInvocation struct {
	ID        string `gorm:"primaryKey;type:varchar(20)"`
	SessionID string `gorm:"type:varchar(20);index"`

	Method          string `gorm:"type:varchar(64);index"`
	SnapshotVersion int
	DurationMS      int64
	ResultCount     int

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName customizations for cleaner names.
func (Session) TableName() string         { return "sessions" }
func (Recompute) TableName() string       { return "recomputes" }
func (QueryInvocation) TableName() string { return "query_invocations" }
