package domain

import "time"

// Idempotency remembers which summary a keyed request produced, scoped by
// (client_id, scope, key). Replaying the same key inside the TTL returns the
// stored summary instead of calling the AI provider a second time.
type Idempotency struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	ClientID  string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_client_scope_key,priority:1"`
	Scope     string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_client_scope_key,priority:2"`
	Key       string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_client_scope_key,priority:3"`
	SummaryID string    `gorm:"type:char(36);not null"`
	Status    int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
