package service

import (
	"context"
	"time"

	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/repository"
)

// Store is the persistence surface the services depend on.
// *repository.Repository satisfies it through NewStore.
type Store interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	ListUsers(ctx context.Context, filter repository.UserFilter, cursor string, limit int) ([]*model.User, string, error)
	CountUsersByRole(ctx context.Context) (map[string]int, error)

	CreateProperty(ctx context.Context, p *model.Property) error
	GetProperty(ctx context.Context, id string) (*model.Property, error)
	ListProperties(ctx context.Context, filter repository.PropertyFilter, cursor string, limit int) ([]*model.Property, string, error)
	UpdateProperty(ctx context.Context, p *model.Property) error
	SetPropertyStatus(ctx context.Context, id string, status model.PropertyStatus) error
	DeleteProperty(ctx context.Context, id string) error
	CountPropertiesByStatus(ctx context.Context, landlordID string) (map[model.PropertyStatus]int, error)

	CreateTenant(ctx context.Context, t *model.Tenant) error
	GetTenant(ctx context.Context, id string) (*model.Tenant, error)
	ListTenants(ctx context.Context, filter repository.TenantFilter, cursor string, limit int) ([]*model.Tenant, string, error)
	UpdateTenant(ctx context.Context, t *model.Tenant) error
	DeleteTenant(ctx context.Context, id string) error
	LinkTenantsToUser(ctx context.Context, email, userID string) (int64, error)
	ListTenantIDsForUser(ctx context.Context, userID string) ([]string, error)
	CountTenants(ctx context.Context, landlordID string) (int, error)

	CreateLease(ctx context.Context, l *model.Lease) error
	GetLease(ctx context.Context, id string) (*model.Lease, error)
	ListLeases(ctx context.Context, filter repository.LeaseFilter, cursor string, limit int) ([]*model.Lease, string, error)
	ListExpiringLeases(ctx context.Context, landlordID string, from, by model.Date) ([]*model.Lease, error)
	ListLeasesForTenants(ctx context.Context, tenantIDs []string) ([]*model.Lease, error)
	ListLeasesToSweep(ctx context.Context, today model.Date) ([]*model.Lease, error)
	UpdateLease(ctx context.Context, l *model.Lease) error
	DeleteLease(ctx context.Context, id string) error
	HasActiveLease(ctx context.Context, propertyID, excludeID string) (bool, error)
	HasOpenLease(ctx context.Context, propertyID, tenantID string) (bool, error)
	SharesLease(ctx context.Context, landlordID, tenantUserID string) (bool, error)
	LockProperty(ctx context.Context, propertyID string) error
	CountLeasesByStatus(ctx context.Context, landlordID string) (map[model.LeaseStatus]int, error)

	CreateMaintenanceRequest(ctx context.Context, m *model.MaintenanceRequest) error
	GetMaintenanceRequest(ctx context.Context, id string) (*model.MaintenanceRequest, error)
	ListMaintenanceRequests(ctx context.Context, filter repository.MaintenanceFilter, cursor string, limit int) ([]*model.MaintenanceRequest, string, error)
	UpdateMaintenanceRequest(ctx context.Context, m *model.MaintenanceRequest) error
	CountOpenMaintenanceByPriority(ctx context.Context, filter repository.MaintenanceFilter) (map[model.MaintenancePriority]int, error)

	CreateThread(ctx context.Context, t *model.Thread) error
	GetThread(ctx context.Context, id string) (*model.Thread, error)
	CreateMessage(ctx context.Context, m *model.Message) error
	ListMessages(ctx context.Context, threadID string) ([]*model.Message, error)
	ListThreadSummaries(ctx context.Context, userID, cursor string, limit int) ([]*model.ThreadSummary, string, error)
	MarkThreadRead(ctx context.Context, threadID, userID string, at time.Time) error
	CountUnreadMessages(ctx context.Context, userID string) (int, error)

	CreatePayment(ctx context.Context, p *model.Payment) error
	GetPayment(ctx context.Context, id string) (*model.Payment, error)
	ListPayments(ctx context.Context, filter repository.PaymentFilter, cursor string, limit int) ([]*model.Payment, string, error)
	UpdatePaymentStatus(ctx context.Context, p *model.Payment) error
	SumCompletedPayments(ctx context.Context, leaseID string) (int64, error)
	SumPaymentsPaidSince(ctx context.Context, landlordID string, since time.Time) (int64, error)
	CountPayments(ctx context.Context, filter repository.PaymentFilter) (int, error)

	ListNotifications(ctx context.Context, userID string, unreadOnly bool, cursor string, limit int) ([]*model.Notification, string, error)
	MarkNotificationRead(ctx context.Context, id, userID string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error)

	// WithTx runs fn against a Store bound to one transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// repoStore adapts *repository.Repository to Store.
type repoStore struct {
	*repository.Repository
}

// NewStore wraps a repository as a Store.
func NewStore(repo *repository.Repository) Store {
	return repoStore{Repository: repo}
}

func (s repoStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.Repository.WithTx(ctx, func(tx *repository.Repository) error {
		return fn(repoStore{Repository: tx})
	})
}
