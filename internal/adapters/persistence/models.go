package persistence

import (
	"time"
)

// PlayerStateModel represents the player_states table: one row per player
// holding the serialized aggregate
type PlayerStateModel struct {
	PlayerID  string    `gorm:"column:player_id;primaryKey;size:64"`
	Document  string    `gorm:"column:document;type:text;not null"` // PlayerDocument JSON, stored verbatim
	Checksum  string    `gorm:"column:checksum;size:64;not null"`   // blake3 hex of Document
	Version   int64     `gorm:"column:version;not null;default:1"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (PlayerStateModel) TableName() string {
	return "player_states"
}
