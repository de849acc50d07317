package service

import (
	"math"

	"github.com/rentdesk/rentdesk/internal/model"
)

const (
	// DefaultRenewalTermMonths is used when a renewal names neither term nor end date.
	DefaultRenewalTermMonths = 12
	// MaxRenewalTermMonths caps renewal terms.
	MaxRenewalTermMonths = 60
	// DefaultPaymentDueDay is used when a lease omits its due day.
	DefaultPaymentDueDay = 1
	maxPaymentDueDay     = 28
)

// termEnd returns the last day of a term of months starting on start.
func termEnd(start model.Date, months int) model.Date {
	return start.AddMonths(months).AddDays(-1)
}

// applyIncrease raises rent by pct percent, rounded to the nearest cent.
func applyIncrease(rentCents int64, pct float64) int64 {
	return int64(math.Round(float64(rentCents) * (1 + pct/100)))
}

// renewalTerms is the computed shape of a renewal lease.
type renewalTerms struct {
	Start        model.Date
	End          model.Date
	RentCents    int64
	DepositCents int64
}

// computeRenewal derives the successor terms of old from the request.
func computeRenewal(old *model.Lease, in RenewLeaseInput) (renewalTerms, error) {
	var v validator
	terms := renewalTerms{
		Start:        old.EndDate.AddDays(1),
		RentCents:    old.RentCents,
		DepositCents: old.DepositCents,
	}

	switch {
	case in.EndDate != nil:
		terms.End = *in.EndDate
		v.check(terms.End.After(terms.Start), "end_date", "must be after the renewal start date "+terms.Start.String())
	default:
		months := DefaultRenewalTermMonths
		if in.TermMonths != nil {
			months = *in.TermMonths
		}
		if months < 1 || months > MaxRenewalTermMonths {
			v.add("term_months", "must be between 1 and 60")
		}
		terms.End = termEnd(terms.Start, months)
	}

	switch {
	case in.RentCents != nil && in.RentIncreasePercent != nil:
		v.add("rent_cents", "cannot be combined with rent_increase_percent")
	case in.RentCents != nil:
		v.check(*in.RentCents > 0, "rent_cents", "must be greater than zero")
		terms.RentCents = *in.RentCents
	case in.RentIncreasePercent != nil:
		pct := *in.RentIncreasePercent
		v.check(pct >= 0 && pct <= 100, "rent_increase_percent", "must be between 0 and 100")
		terms.RentCents = applyIncrease(old.RentCents, pct)
	}

	if in.DepositCents != nil {
		v.check(*in.DepositCents >= 0, "deposit_cents", "must not be negative")
		terms.DepositCents = *in.DepositCents
	}

	return terms, v.err()
}

// dueDateIn returns the due day of the month containing d.
func dueDateIn(d model.Date, dueDay int) model.Date {
	y, m, _ := d.Date()
	return model.NewDate(y, m, dueDay)
}

// firstDueDate is the first due date on or after the lease start.
func firstDueDate(l *model.Lease) model.Date {
	due := dueDateIn(l.StartDate, l.PaymentDueDay)
	if due.Before(l.StartDate) {
		due = dueDateIn(l.StartDate.AddMonths(1), l.PaymentDueDay)
	}
	return due
}

// computeBalance charges one month of rent on every due date from the lease
// start up to min(asOf, end) and subtracts completed payments.
func computeBalance(l *model.Lease, paidCents int64, asOf model.Date) *model.LeaseBalance {
	b := &model.LeaseBalance{
		LeaseID:   l.ID,
		AsOf:      asOf,
		PaidCents: paidCents,
	}

	until := asOf
	if l.EndDate.Before(until) {
		until = l.EndDate
	}

	due := firstDueDate(l)
	for !due.After(until) {
		b.ChargesCount++
		due = dueDateIn(due.AddMonths(1), l.PaymentDueDay)
	}
	b.ChargedCents = int64(b.ChargesCount) * l.RentCents
	b.BalanceCents = b.ChargedCents - paidCents

	if l.Status.IsOpen() && !due.After(l.EndDate) {
		b.NextDueDate = ptr(due)
		b.NextDueCents = l.RentCents
	}
	return b
}

// terminationDate is the requested effective date, or the later of today and
// the lease start when none was given.
func terminationDate(today, start model.Date, requested *model.Date) model.Date {
	if requested != nil {
		return *requested
	}
	if today.Before(start) {
		return start
	}
	return today
}
