package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ForecastVersionModel is one immutable forecast version.
type ForecastVersionModel struct {
	bun.BaseModel `bun:"table:forecast_versions,alias:fv"`

	ID             uuid.UUID `bun:"id,pk,type:uuid"`
	Label          string    `bun:"label"`
	WeekAnchorDate time.Time `bun:"week_anchor_date"`
	InputHash      string    `bun:"input_hash"`
	Templates      []byte    `bun:"templates,type:jsonb"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// TourInstanceModel is one expanded tour instance of a forecast version.
type TourInstanceModel struct {
	bun.BaseModel `bun:"table:tour_instances,alias:ti"`

	InstanceID        string    `bun:"instance_id,pk"`
	ForecastVersionID uuid.UUID `bun:"forecast_version_id,pk,type:uuid"`
	Day               int       `bun:"day"`
	StartMin          int       `bun:"start_min"`
	EndMin            int       `bun:"end_min"`
	DurationMin       int       `bun:"duration_min"`
	CrossesMidnight   bool      `bun:"crosses_midnight"`
	Depot             string    `bun:"depot"`
}

// PlanVersionModel is one produced plan of a forecast version.
type PlanVersionModel struct {
	bun.BaseModel `bun:"table:plan_versions,alias:pv"`

	ID                uuid.UUID `bun:"id,pk,type:uuid"`
	ForecastVersionID uuid.UUID `bun:"forecast_version_id,type:uuid"`
	Status            string    `bun:"status"`
	InputHash         string    `bun:"input_hash"`
	ConfigHash        string    `bun:"config_hash"`
	OutputHash        string    `bun:"output_hash"`
	Result            []byte    `bun:"result,type:jsonb"`
	Locked            bool      `bun:"locked"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// AssignmentModel is one instance→driver/block row of a plan version.
type AssignmentModel struct {
	bun.BaseModel `bun:"table:assignments,alias:a"`

	PlanVersionID uuid.UUID `bun:"plan_version_id,pk,type:uuid"`
	InstanceID    string    `bun:"instance_id,pk"`
	DriverIndex   int       `bun:"driver_index"`
	BlockID       string    `bun:"block_id"`
}

// AuditLogModel is the stored audit report of a plan version.
type AuditLogModel struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	PlanVersionID uuid.UUID `bun:"plan_version_id,pk,type:uuid"`
	Report        []byte    `bun:"report,type:jsonb"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// FreezeOverrideModel records one freeze override event.
type FreezeOverrideModel struct {
	bun.BaseModel `bun:"table:freeze_override_events,alias:fo"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	Actor       string    `bun:"actor"`
	Reason      string    `bun:"reason"`
	InstanceIDs []byte    `bun:"instance_ids,type:jsonb"`
	At          time.Time `bun:"at"`
}
