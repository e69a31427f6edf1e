package conditions

import (
	"strings"
	"time"
)

type Condition string

const (
	CondDirty    Condition = "dirty"
	CondStarving Condition = "starving"
	CondHungry   Condition = "hungry"
	CondLonely   Condition = "lonely"
	CondHappy    Condition = "happy"
)

// DefaultActivityThreshold is how many activities must be completed in the
// last 24 hours for the companion not to feel lonely.
const DefaultActivityThreshold = 3

// HungryBelow is the hunger level under which the companion asks for food.
const HungryBelow = 50

// Care is the part of the care tracker the conditions depend on.
type Care interface {
	IsDirty(now time.Time) bool
	IsHungry(now time.Time) bool
	HungerLevel(now time.Time) float64
}

type DerivedStatus struct {
	Hunger     float64
	Conditions map[Condition]bool
	Primary    Condition
	AllOrdered []Condition
}

// DeriveStatus computes the companion's conditions from its care stamps and
// the completion times of recent activities.
func DeriveStatus(c Care, completed []time.Time, now time.Time, threshold int) DerivedStatus {
	conds := make(map[Condition]bool)
	var allOrdered []Condition
	add := func(cond Condition) {
		if !conds[cond] {
			conds[cond] = true
			allOrdered = append(allOrdered, cond)
		}
	}

	// Priority 1: dirty
	if c.IsDirty(now) {
		add(CondDirty)
	}

	// Priority 2: starving once the hunger window has run out, hungry
	// below half full
	hunger := c.HungerLevel(now)
	if c.IsHungry(now) || hunger <= 0 {
		add(CondStarving)
	} else if hunger < HungryBelow {
		add(CondHungry)
	}

	// Priority 3: lonely
	if isLonely(completed, now, threshold) {
		add(CondLonely)
	}

	// Priority 4: happy when nothing else applies
	if len(allOrdered) == 0 {
		add(CondHappy)
	}

	return DerivedStatus{
		Hunger:     hunger,
		Conditions: conds,
		Primary:    allOrdered[0],
		AllOrdered: allOrdered,
	}
}

func isLonely(completed []time.Time, now time.Time, threshold int) bool {
	if threshold <= 0 {
		threshold = DefaultActivityThreshold
	}

	count := 0
	cutoff := now.Add(-24 * time.Hour)
	for _, at := range completed {
		if at.After(cutoff) {
			count++
		}
	}
	return count < threshold
}

// FormatConditions joins conditions with commas. Returns "happy" if the
// slice is empty. Starving hides hungry.
func FormatConditions(conds []Condition) string {
	starving := false
	for _, c := range conds {
		if c == CondStarving {
			starving = true
		}
	}

	var parts []string
	for _, c := range conds {
		if starving && c == CondHungry {
			continue
		}
		parts = append(parts, string(c))
	}
	if len(parts) == 0 {
		return "happy"
	}
	return strings.Join(parts, ", ")
}
