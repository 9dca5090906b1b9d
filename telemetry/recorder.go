package telemetry

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recorder writes audit rows for one client session. It is safe to pass
// a nil *Recorder: every method becomes a no-op, so callers can wire
// telemetry in optionally without guarding every call site.
type Recorder struct {
	db        *gorm.DB
	sessionID string
}

// NewRecorder opens a session row and returns a Recorder scoped to it.
// clientInfo is stored opaquely as the initialize request carried it.
func NewRecorder(db *gorm.DB, clientInfo []byte) (*Recorder, error) {
	sess := &Session{
		ID:         generateID("ses"),
		ClientInfo: datatypes.JSON(clientInfo),
	}
	if err := db.Create(sess).Error; err != nil {
		return nil, err
	}
	return &Recorder{db: db, sessionID: sess.ID}, nil
}

// End marks the session as finished.
func (r *Recorder) End() error {
	if r == nil {
		return nil
	}
	now := time.Now()
	return r.db.Model(&Session{}).Where("id = ?", r.sessionID).Update("ended_at", &now).Error
}

// RecomputeStats is the subset of an engine snapshot's counts the audit
// log cares about; kept separate from internal/engine.Stats so this
// package never imports it.
type RecomputeStats struct {
	Files, Modules, Features, Requirements, Constraints, Edges, Conflicts int
}

// RecordRecompute logs one engine snapshot rebuild.
func (r *Recorder) RecordRecompute(version int, duration time.Duration, stats RecomputeStats) error {
	if r == nil {
		return nil
	}
	row := &Recompute{
		ID:               generateID("rcp"),
		SessionID:        r.sessionID,
		Version:          version,
		DurationMS:       duration.Milliseconds(),
		FileCount:        stats.Files,
		ModuleCount:      stats.Modules,
		FeatureCount:     stats.Features,
		RequirementCount: stats.Requirements,
		ConstraintCount:  stats.Constraints,
		EdgeCount:        stats.Edges,
		ConflictCount:    stats.Conflicts,
	}
	err := r.db.Create(row).Error
	if err == nil {
		r.db.Model(&Session{}).Where("id = ?", r.sessionID).UpdateColumn("recompute_count", gorm.Expr("recompute_count + 1"))
	}
	return err
}

// RecordQuery logs one query-layer invocation.
func (r *Recorder) RecordQuery(method string, snapshotVersion int, duration time.Duration, resultCount int) error {
	if r == nil {
		return nil
	}
	row := &QueryInvocation{
		ID:              generateID("qry"),
		SessionID:       r.sessionID,
		Method:          method,
		SnapshotVersion: snapshotVersion,
		DurationMS:      duration.Milliseconds(),
		ResultCount:     resultCount,
	}
	err := r.db.Create(row).Error
	if err == nil {
		r.db.Model(&Session{}).Where("id = ?", r.sessionID).UpdateColumn("query_count", gorm.Expr("query_count + 1"))
	}
	return err
}
