package services

import (
	"fmt"
	"time"

	"github.com/quipufin/cajachica_backend/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Rules holds the configurable business thresholds the cash-box service
// consults. Services receive an explicit Rules value; there are no ambient
// globals.
type Rules struct {
	// ReserveThresholdPct is the share of the initial amount that must remain
	// in the drawer after any transaction, in percent.
	ReserveThresholdPct decimal.Decimal
	// AlertThresholdPct is the share of the initial amount under which the
	// remaining cash is flagged as low (informational, never blocking).
	AlertThresholdPct decimal.Decimal
	// AllowZeroOpening permits opening a box with a zero initial amount and an
	// empty count. Off by default; the zero-opening case is almost always an
	// input mistake.
	AllowZeroOpening bool
}

// DefaultRules returns the standard thresholds: 15% reserve, 50% alert.
func DefaultRules() Rules {
	return Rules{
		ReserveThresholdPct: decimal.NewFromInt(15),
		AlertThresholdPct:   decimal.NewFromInt(50),
	}
}

// RecordingPolicy is consulted by the cash-box service before accepting a new
// transaction. It exists so calendar rules stay pluggable instead of being
// baked into the state machine.
type RecordingPolicy interface {
	// AllowRecording returns a wrapped apperrors.ErrBusinessRule when recording
	// on the given date is blocked by policy, nil otherwise.
	AllowRecording(date time.Time) error
}

// DayOfMonthRecordingPolicy blocks new transactions once the day of month
// reaches the threshold, pushing late expenses into the next box period.
type DayOfMonthRecordingPolicy struct {
	Threshold int
}

func (p DayOfMonthRecordingPolicy) AllowRecording(date time.Time) error {
	if p.Threshold > 0 && date.Day() >= p.Threshold {
		return fmt.Errorf("%w: transactions are blocked from day %d of the month (date %s)",
			apperrors.ErrBusinessRule, p.Threshold, date.Format("2006-01-02"))
	}
	return nil
}

// AllowAlwaysPolicy accepts every recording date.
type AllowAlwaysPolicy struct{}

func (AllowAlwaysPolicy) AllowRecording(time.Time) error { return nil }
