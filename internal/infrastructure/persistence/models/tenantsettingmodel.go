package models

import "time"

// TenantSettingModel is a per-tenant key/value row for small operational
// state, such as the last business day a trial warning went out.
type TenantSettingModel struct {
	ID        uint   `gorm:"primarykey"`
	TenantID  uint   `gorm:"uniqueIndex:idx_tenant_setting,priority:1;not null"`
	Key       string `gorm:"uniqueIndex:idx_tenant_setting,priority:2;not null;size:64;column:setting_key"`
	Value     string `gorm:"not null;size:255;column:setting_value"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (TenantSettingModel) TableName() string {
	return "tenant_settings"
}
