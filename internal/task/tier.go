package task

import (
	"fmt"
	"time"
)

// Tier is a reminder threshold expressed in whole hours before the deadline.
type Tier int

const (
	TierOneHour    Tier = 1
	TierTwoHours   Tier = 2
	TierThreeHours Tier = 3
)

// Tiers lists every tier in scan order.
var Tiers = []Tier{TierThreeHours, TierTwoHours, TierOneHour}

// Offset is how long before the deadline the tier becomes due.
func (t Tier) Offset() time.Duration {
	return time.Duration(t) * time.Hour
}

// Due reports whether the tier's threshold has been reached at now.
func (t Tier) Due(deadline, now time.Time) bool {
	return !deadline.Add(-t.Offset()).After(now)
}

func (t Tier) Valid() bool {
	return t == TierOneHour || t == TierTwoHours || t == TierThreeHours
}

func (t Tier) String() string {
	return fmt.Sprintf("h%d", int(t))
}
