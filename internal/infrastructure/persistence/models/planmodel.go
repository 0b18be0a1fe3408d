package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlanModel represents the database persistence model for billing plans.
// This is the anti-corruption layer between domain and database.
type PlanModel struct {
	ID           uint   `gorm:"primarykey"`
	SID          string `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: plan_xxx"`
	Name         string `gorm:"not null;size:100"`
	Slug         string `gorm:"uniqueIndex;not null;size:100"`
	PriceMonthly uint64 `gorm:"not null;default:0;comment:cents"`
	PriceYearly  uint64 `gorm:"not null;default:0;comment:cents"`
	Currency     string `gorm:"not null;size:10;default:'ARS'"`
	TrialDays    int    `gorm:"not null;default:0"`
	Features     datatypes.JSON
	Limits       datatypes.JSON
	Status       string `gorm:"not null;size:20;index:idx_plan_status"`
	SortOrder    int    `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM
func (PlanModel) TableName() string {
	return "plans"
}
