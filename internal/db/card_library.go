package db

import (
	"time"

	"gorm.io/datatypes"
)

// CardLibrary is one prompt card available to every match.
type CardLibrary struct {
	ID        uint           `gorm:"primaryKey"`
	LeftPole  string         `gorm:"size:80;not null;uniqueIndex:idx_card_library_poles"`
	RightPole string         `gorm:"size:80;not null;uniqueIndex:idx_card_library_poles"`
	Tags      datatypes.JSON `gorm:"type:jsonb"`
	Enabled   bool           `gorm:"not null;default:true"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

func (CardLibrary) TableName() string {
	return "card_library"
}
