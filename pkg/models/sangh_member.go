package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Office-bearer roles a member may post under.
const (
	MemberRolePresident     = "president"
	MemberRoleSecretary     = "secretary"
	MemberRoleTreasurer     = "treasurer"
	MemberRoleGeneralMember = "member"
)

type SanghMember struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	SanghID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_sangh_member" json:"sangh_id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_sangh_member;index" json:"user_id"`
	Role      string    `gorm:"type:varchar(30);not null;default:'member'" json:"role"`
	CanPost   bool      `gorm:"default:false" json:"can_post"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *SanghMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// MayPostAs reports whether the membership allows posting under role for the Sangh.
func (m *SanghMember) MayPostAs(role string) bool {
	return m.CanPost && m.Role == role
}
