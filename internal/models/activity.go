package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActionKind is the kind of auditable action recorded in the ledger.
type ActionKind string

const (
	ActionEnregistrement ActionKind = "ENREGISTREMENT"
	ActionConsultation   ActionKind = "CONSULTATION"
	ActionModification   ActionKind = "MODIFICATION"
)

// ActivityLog is an immutable audit record. The actor fields are a
// snapshot taken at write time so later changes to the user never rewrite
// history. Seq is assigned on insert and defines a total order even when
// timestamps collide; there is no update or delete path.
type ActivityLog struct {
	Seq       uint64            `gorm:"primaryKey;autoIncrement" json:"seq"`
	ID        string            `gorm:"size:36;uniqueIndex;not null" json:"id"`
	ActorID   string            `gorm:"size:36;not null" json:"actor_id"`
	ActorName string            `gorm:"size:128;not null" json:"actor_name"`
	ActorRole Role              `gorm:"size:32;not null" json:"actor_role"`
	Action    ActionKind        `gorm:"size:32;not null" json:"action"`
	DocID     string            `gorm:"size:64;index;not null" json:"doc_id"`
	DocTitle  string            `gorm:"size:255;not null" json:"doc_title"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
