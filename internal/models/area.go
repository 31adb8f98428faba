package models

import (
	"time"
)

// Sort modes for an area's task listing.
const (
	SortModePriority = "priority" // priority flag desc, then recency
	SortModeHand     = "hand"     // manual sort_order positions
)

// Area is a sub-grouping owned by a profile, optionally filed under a
// domain. An area with a nil DomainFK is unfiled, which is a valid state.
type Area struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	AreaName  string    `gorm:"column:area_name;size:32;not null" json:"area_name"`
	DomainFK  *int      `gorm:"column:domain_fk;index" json:"domain_fk"`
	CreatorFK string    `gorm:"column:creator_fk;size:64;not null;index" json:"creator_fk"`
	Closed    bool      `gorm:"column:closed;not null;default:false" json:"closed"`
	SortOrder *int16    `gorm:"column:sort_order" json:"sort_order"`
	SortMode  string    `gorm:"column:sort_mode;size:8;not null;default:priority" json:"sort_mode"`
	CreateTS  time.Time `gorm:"column:create_ts;autoCreateTime" json:"create_ts"`
	UpdateTS  time.Time `gorm:"column:update_ts;autoUpdateTime" json:"update_ts"`

	// Relationships
	Creator Profile `gorm:"foreignKey:CreatorFK;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Domain  *Domain `gorm:"foreignKey:DomainFK;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Tasks   []Task  `gorm:"foreignKey:AreaFK" json:"tasks,omitempty"`
}

// TableName maps Area to the production table name.
func (Area) TableName() string { return "areas" }
