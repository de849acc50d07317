package model

// LandlordDashboard summarises a landlord's portfolio.
type LandlordDashboard struct {
	PropertiesByStatus     map[PropertyStatus]int      `json:"properties_by_status"`
	PropertyCount          int                         `json:"property_count"`
	TenantCount            int                         `json:"tenant_count"`
	ActiveLeases           int                         `json:"active_leases"`
	PendingLeases          int                         `json:"pending_leases"`
	ExpiringLeases         []*Lease                    `json:"expiring_leases"`
	OpenMaintenance        map[MaintenancePriority]int `json:"open_maintenance"`
	RentCollectedThisMonth int64                       `json:"rent_collected_this_month_cents"`
	PendingPayments        int                         `json:"pending_payments"`
	UnreadMessages         int                         `json:"unread_messages"`
}

// TenantDashboard summarises a tenant's tenancy.
type TenantDashboard struct {
	CurrentLease    *Lease        `json:"current_lease"`
	Balance         *LeaseBalance `json:"balance,omitempty"`
	OpenMaintenance int           `json:"open_maintenance"`
	UnreadMessages  int           `json:"unread_messages"`
}

// AdminDashboard summarises the whole platform.
type AdminDashboard struct {
	UsersByRole       map[string]int `json:"users_by_role"`
	PropertyCount     int            `json:"property_count"`
	ActiveLeases      int            `json:"active_leases"`
	OpenMaintenance   int            `json:"open_maintenance"`
	PaymentsThisMonth int64          `json:"payments_this_month_cents"`
}

// Dashboard is the role-specific payload served at /dashboard.
// Exactly one of the role sections is set.
type Dashboard struct {
	Role     string             `json:"role"`
	Landlord *LandlordDashboard `json:"landlord,omitempty"`
	Tenant   *TenantDashboard   `json:"tenant,omitempty"`
	Admin    *AdminDashboard    `json:"admin,omitempty"`
}
