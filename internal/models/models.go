package models

import (
	"time"

	"github.com/google/uuid"
)

type LicenseStatus string

const (
	LicenseStatusActive  LicenseStatus = "active"
	LicenseStatusPending LicenseStatus = "pending"
	LicenseStatusExpired LicenseStatus = "expired"
	LicenseStatusBlocked LicenseStatus = "blocked"
)

// Valid reports whether s is one of the stored statuses.
func (s LicenseStatus) Valid() bool {
	switch s {
	case LicenseStatusActive, LicenseStatusPending, LicenseStatusExpired, LicenseStatusBlocked:
		return true
	}
	return false
}

type License struct {
	ID          uuid.UUID     `json:"id"`
	Code        string        `json:"license_code"`
	Type        string        `json:"license_type"`
	ClientName  *string       `json:"client_name,omitempty"`
	ClientPhone *string       `json:"client_phone,omitempty"`
	Status      LicenseStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	EndDate     *time.Time    `json:"end_date,omitempty"`
	DeviceIDs   []string      `json:"device_ids"`
	MaxDevices  int           `json:"max_devices"`
	Notes       string        `json:"notes"`
}

// LicenseView is a License decorated with fields derived at request time.
type LicenseView struct {
	License
	DaysRemaining *int `json:"days_remaining"`
	ExpiringSoon  bool `json:"expiring_soon"`
}

// LicenseUpdate carries the fields an administrator may edit directly.
type LicenseUpdate struct {
	ClientName  *string
	ClientPhone *string
	Notes       string
	MaxDevices  int
}

type AdminLog struct {
	ID         uuid.UUID              `json:"id"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uuid.UUID             `json:"entity_id,omitempty"`
	Details    map[string]interface{} `json:"details"`
	CreatedAt  time.Time              `json:"created_at"`
}

// KPIs are inventory-wide counts, independent of any list filter.
type KPIs struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	Pending      int `json:"pending"`
	Expired      int `json:"expired"`
	Blocked      int `json:"blocked"`
	ExpiringSoon int `json:"expiring_soon"`
}

// NewLicense is the input to the license generation procedure.
type NewLicense struct {
	Type        string
	ClientName  *string
	ClientPhone *string
	DaysValid   int
	Notes       string
}

type DashboardStats struct {
	KPIs
	CreatedLast30Days int        `json:"created_last_30_days"`
	RecentAdminLogs   []AdminLog `json:"recent_admin_logs"`
}
