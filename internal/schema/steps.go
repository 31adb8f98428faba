// Package schema holds the ordered migration steps that build the Darwin
// task-store schema, from the initial four tables through the data repairs
// that followed.
package schema

import (
	"time"

	"gorm.io/gorm"

	"github.com/darwinsql/darwinctl/internal/migrate"
)

// Steps returns the full migration sequence in apply order.
func Steps() []migrate.Step {
	return []migrate.Step{
		{ID: 1, Description: "initial tables", Run: initialTables},
		{ID: 2, Description: "closed flag on domains and areas", Run: closedFlags},
		{ID: 3, Description: "task completion timestamp", Run: taskDoneTS},
		{ID: 4, Description: "task sort order", Run: taskSortOrder},
		{ID: 5, Description: "area sort order and sort mode", Run: areaSorting},
		{ID: 6, Description: "domain sort order", Run: domainSortOrder},
		{ID: 7, Description: "widen task description", Run: widenDescription},
		{ID: 8, Description: "backfill completion timestamps", Run: backfillDoneTS},
	}
}

// Table shapes as of step 001. Later steps evolve them column by column, so
// these deliberately lack everything added afterwards.

type profile001 struct {
	ID         string     `gorm:"column:id;primaryKey;size:64"`
	Name       string     `gorm:"column:name;size:256;not null"`
	Email      string     `gorm:"column:email;size:256;not null"`
	Subject    string     `gorm:"column:subject;size:64;not null"`
	UserName   string     `gorm:"column:userName;size:256;not null"`
	Region     string     `gorm:"column:region;size:128;not null"`
	UserPoolID string     `gorm:"column:userPoolId;size:128;not null"`
	CreateTS   *time.Time `gorm:"column:create_ts;type:timestamp"`
	UpdateTS   *time.Time `gorm:"column:update_ts;type:timestamp"`
}

func (profile001) TableName() string { return "profiles" }

type domain001 struct {
	ID         int        `gorm:"column:id;primaryKey;autoIncrement"`
	DomainName string     `gorm:"column:domain_name;size:32;not null"`
	CreatorFK  string     `gorm:"column:creator_fk;size:64;not null;index"`
	CreateTS   *time.Time `gorm:"column:create_ts;type:timestamp"`
	UpdateTS   *time.Time `gorm:"column:update_ts;type:timestamp"`

	Creator profile001 `gorm:"foreignKey:CreatorFK;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (domain001) TableName() string { return "domains" }

type area001 struct {
	ID        int        `gorm:"column:id;primaryKey;autoIncrement"`
	AreaName  string     `gorm:"column:area_name;size:32;not null"`
	DomainFK  *int       `gorm:"column:domain_fk;index"`
	CreatorFK string     `gorm:"column:creator_fk;size:64;not null;index"`
	CreateTS  *time.Time `gorm:"column:create_ts;type:timestamp"`
	UpdateTS  *time.Time `gorm:"column:update_ts;type:timestamp"`

	Creator profile001 `gorm:"foreignKey:CreatorFK;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Domain  *domain001 `gorm:"foreignKey:DomainFK;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (area001) TableName() string { return "areas" }

type task001 struct {
	ID          int        `gorm:"column:id;primaryKey;autoIncrement"`
	Priority    bool       `gorm:"column:priority;not null"`
	Done        bool       `gorm:"column:done;not null"`
	Description string     `gorm:"column:description;size:256;not null"`
	AreaFK      *int       `gorm:"column:area_fk;index"`
	CreatorFK   string     `gorm:"column:creator_fk;size:64;not null;index"`
	CreateTS    *time.Time `gorm:"column:create_ts;type:timestamp"`
	UpdateTS    *time.Time `gorm:"column:update_ts;type:timestamp"`

	Creator profile001 `gorm:"foreignKey:CreatorFK;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Area    *area001   `gorm:"foreignKey:AreaFK;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (task001) TableName() string { return "tasks" }

func initialTables(tx *gorm.DB) error {
	return tx.Migrator().CreateTable(
		&profile001{}, &domain001{}, &area001{}, &task001{},
	)
}

// Column additions. Each helper struct names only the table and the column
// being added.

type domainClosed struct {
	Closed bool `gorm:"column:closed;not null;default:false"`
}

func (domainClosed) TableName() string { return "domains" }

type areaClosed struct {
	Closed bool `gorm:"column:closed;not null;default:false"`
}

func (areaClosed) TableName() string { return "areas" }

func closedFlags(tx *gorm.DB) error {
	if err := tx.Migrator().AddColumn(&domainClosed{}, "Closed"); err != nil {
		return err
	}
	return tx.Migrator().AddColumn(&areaClosed{}, "Closed")
}

type taskDone struct {
	DoneTS *time.Time `gorm:"column:done_ts;type:timestamp"`
}

func (taskDone) TableName() string { return "tasks" }

func taskDoneTS(tx *gorm.DB) error {
	return tx.Migrator().AddColumn(&taskDone{}, "DoneTS")
}

type taskSort struct {
	SortOrder *int16 `gorm:"column:sort_order"`
}

func (taskSort) TableName() string { return "tasks" }

func taskSortOrder(tx *gorm.DB) error {
	return tx.Migrator().AddColumn(&taskSort{}, "SortOrder")
}

type areaSort struct {
	SortOrder *int16 `gorm:"column:sort_order"`
	SortMode  string `gorm:"column:sort_mode;size:8;not null;default:priority"`
}

func (areaSort) TableName() string { return "areas" }

func areaSorting(tx *gorm.DB) error {
	if err := tx.Migrator().AddColumn(&areaSort{}, "SortOrder"); err != nil {
		return err
	}
	return tx.Migrator().AddColumn(&areaSort{}, "SortMode")
}

type domainSort struct {
	SortOrder *int16 `gorm:"column:sort_order"`
}

func (domainSort) TableName() string { return "domains" }

func domainSortOrder(tx *gorm.DB) error {
	return tx.Migrator().AddColumn(&domainSort{}, "SortOrder")
}

type taskWide struct {
	Description string `gorm:"column:description;size:1024;not null"`
}

func (taskWide) TableName() string { return "tasks" }

func widenDescription(tx *gorm.DB) error {
	return tx.Migrator().AlterColumn(&taskWide{}, "Description")
}

// backfillDoneTS is a pure data-repair step: done tasks predating step 003
// have no completion timestamp, so the last update stands in for it.
func backfillDoneTS(tx *gorm.DB) error {
	return tx.Table("tasks").
		Where("done = ? AND done_ts IS NULL", true).
		Update("done_ts", gorm.Expr("update_ts")).Error
}
