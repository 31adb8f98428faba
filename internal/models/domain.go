package models

import (
	"time"
)

// Domain is a top-level grouping owned by exactly one profile. Closing a
// domain hides it from active views without deleting anything.
type Domain struct {
	ID         int       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	DomainName string    `gorm:"column:domain_name;size:32;not null" json:"domain_name"`
	CreatorFK  string    `gorm:"column:creator_fk;size:64;not null;index" json:"creator_fk"`
	Closed     bool      `gorm:"column:closed;not null;default:false" json:"closed"`
	SortOrder  *int16    `gorm:"column:sort_order" json:"sort_order"`
	CreateTS   time.Time `gorm:"column:create_ts;autoCreateTime" json:"create_ts"`
	UpdateTS   time.Time `gorm:"column:update_ts;autoUpdateTime" json:"update_ts"`

	// Relationships
	Creator Profile `gorm:"foreignKey:CreatorFK;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Areas   []Area  `gorm:"foreignKey:DomainFK" json:"areas,omitempty"`
}

// TableName maps Domain to the production table name.
func (Domain) TableName() string { return "domains" }
