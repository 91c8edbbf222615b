// Package icron answers scheduling questions about standard cron
// expressions, including descriptors such as @hourly.
package icron

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// TriggerInfo describes the next firing of a cron expression relative to a
// reference time.
type TriggerInfo struct {
	Expression string
	Next       time.Time
	UntilNext  time.Duration
}

// NextTrigger computes when the expression fires next after refTime.
func NextTrigger(cronExpr string, refTime time.Time) (*TriggerInfo, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}

	next := schedule.Next(refTime)
	return &TriggerInfo{
		Expression: cronExpr,
		Next:       next,
		UntilNext:  next.Sub(refTime),
	}, nil
}
