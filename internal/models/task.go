package models

import (
	"time"
)

// MaxDescriptionLen is the column width of tasks.description.
const MaxDescriptionLen = 1024

// Task is a leaf work item owned by a profile, optionally filed under an
// area. DoneTS is set when Done flips from false to true.
type Task struct {
	ID          int        `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Priority    bool       `gorm:"column:priority;not null" json:"priority"`
	Done        bool       `gorm:"column:done;not null" json:"done"`
	Description string     `gorm:"column:description;size:1024;not null" json:"description"`
	AreaFK      *int       `gorm:"column:area_fk;index" json:"area_fk"`
	CreatorFK   string     `gorm:"column:creator_fk;size:64;not null;index" json:"creator_fk"`
	CreateTS    time.Time  `gorm:"column:create_ts;autoCreateTime" json:"create_ts"`
	UpdateTS    time.Time  `gorm:"column:update_ts;autoUpdateTime" json:"update_ts"`
	DoneTS      *time.Time `gorm:"column:done_ts" json:"done_ts"`
	SortOrder   *int16     `gorm:"column:sort_order" json:"sort_order"`

	// Relationships
	Creator Profile `gorm:"foreignKey:CreatorFK;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Area    *Area   `gorm:"foreignKey:AreaFK;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// TableName maps Task to the production table name.
func (Task) TableName() string { return "tasks" }
