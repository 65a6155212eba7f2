package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Listing is a car-for-sale record owned by exactly one user.
// Tags is a flat JSON array of strings; Images is the ordered JSON array
// of upload paths (at most 10 entries). Deletion is permanent, so there is
// no soft-delete column here.
type Listing struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Tags        datatypes.JSON `json:"tags"`
	Images      datatypes.JSON `json:"images"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
