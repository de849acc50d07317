package model

import "testing"

func TestMaintenanceStatus_CanTransitionTo(t *testing.T) {
	t.Parallel()

	allowed := []struct{ from, to MaintenanceStatus }{
		{MaintenanceStatusOpen, MaintenanceStatusInProgress},
		{MaintenanceStatusOpen, MaintenanceStatusCancelled},
		{MaintenanceStatusOpen, MaintenanceStatusCompleted},
		{MaintenanceStatusInProgress, MaintenanceStatusOnHold},
		{MaintenanceStatusOnHold, MaintenanceStatusInProgress},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to MaintenanceStatus }{
		{MaintenanceStatusCompleted, MaintenanceStatusOpen},
		{MaintenanceStatusCancelled, MaintenanceStatusInProgress},
		{MaintenanceStatusOnHold, MaintenanceStatusCompleted},
		{MaintenanceStatusInProgress, MaintenanceStatusOpen},
	}
	for _, tc := range denied {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be denied", tc.from, tc.to)
		}
	}
}

func TestMaintenancePriority_Rank(t *testing.T) {
	t.Parallel()

	if PriorityEmergency.Rank() <= PriorityHigh.Rank() {
		t.Error("emergency must outrank high")
	}
	if PriorityLow.Rank() >= PriorityMedium.Rank() {
		t.Error("medium must outrank low")
	}
	if MaintenancePriority("urgent").IsValid() {
		t.Error("unknown priority should be invalid")
	}
}
