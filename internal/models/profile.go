package models

import (
	"time"
)

// Profile represents a user identity, keyed by the identity provider's
// subject id. Profiles are created on first login and never deleted by the
// application itself.
type Profile struct {
	ID         string    `gorm:"column:id;primaryKey;size:64" json:"id"`
	Name       string    `gorm:"column:name;size:256;not null" json:"name"`
	Email      string    `gorm:"column:email;size:256;not null" json:"email"`
	Subject    string    `gorm:"column:subject;size:64;not null" json:"subject"`
	UserName   string    `gorm:"column:userName;size:256;not null" json:"userName"`
	Region     string    `gorm:"column:region;size:128;not null" json:"region"`
	UserPoolID string    `gorm:"column:userPoolId;size:128;not null" json:"userPoolId"`
	CreateTS   time.Time `gorm:"column:create_ts;autoCreateTime" json:"create_ts"`
	UpdateTS   time.Time `gorm:"column:update_ts;autoUpdateTime" json:"update_ts"`

	// Relationships
	Domains []Domain `gorm:"foreignKey:CreatorFK" json:"domains,omitempty"`
	Areas   []Area   `gorm:"foreignKey:CreatorFK" json:"areas,omitempty"`
	Tasks   []Task   `gorm:"foreignKey:CreatorFK" json:"tasks,omitempty"`
}

// TableName maps Profile to the production table name.
func (Profile) TableName() string { return "profiles" }
