package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SanghLevel string

const (
	LevelNational SanghLevel = "national"
	LevelState    SanghLevel = "state"
	LevelDistrict SanghLevel = "district"
	LevelCity     SanghLevel = "city"
)

type Sangh struct {
	ID        string         `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Level     SanghLevel     `gorm:"type:varchar(20);not null;index" json:"level"`
	ParentID  *string        `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	Members   []SanghMember  `gorm:"foreignKey:SanghID" json:"members,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Sangh) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
