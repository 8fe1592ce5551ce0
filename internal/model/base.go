package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel handles ID (UUID) and standard Audit Trails
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Audit User Tracking
	CreatedBy string `gorm:"type:varchar(64)" json:"createdBy,omitempty"`
	UpdatedBy string `gorm:"type:varchar(64)" json:"updatedBy,omitempty"`
}

// BeforeCreate generates the UUID unless the caller already assigned one
func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	return
}
