package activity

import (
	"time"

	"github.com/sethgrid/pelioscope/internal/economy"
)

type FeedPhase int

const (
	FeedMenu FeedPhase = iota
	Pouring
	Eating
)

func (p FeedPhase) String() string {
	switch p {
	case FeedMenu:
		return "menu"
	case Pouring:
		return "pouring"
	case Eating:
		return "eating"
	}
	return "unknown"
}

const (
	pourStep     = 2
	pourInterval = 50 * time.Millisecond
	pourBandLow  = 60
	pourBandHigh = 80
	eatingTime   = 2500 * time.Millisecond
)

type FeedView struct {
	Phase FeedPhase
	Food  economy.Item
	Level int
}

// Feed is the feeding activity. Drinks must be poured into the 60..80 band
// before the companion gets them; everything else is eaten right away.
type Feed struct {
	s     *Session
	phase FeedPhase
	food  economy.Item
	level int
	pour  *handle
}

func (f *Feed) begin() {
	f.s.say("Pick something to eat!")
}

// Choose consumes one unit of itemID and serves it.
func (f *Feed) Choose(itemID string) error {
	var err error
	f.s.do(func() {
		if f.phase != FeedMenu {
			return
		}
		item, ok := economy.Lookup(itemID)
		if !ok || item.Category != economy.CategoryFood {
			err = ErrNotFood
			return
		}
		ledger := f.s.deps.Ledger
		if ledger == nil || !ledger.Owns(itemID) {
			err = ErrNotOwned
			return
		}
		f.food = item
		f.s.pending = append(f.s.pending, func() { ledger.Consume(itemID) })
		if item.Drink() {
			f.phase = Pouring
			f.s.say("Hold to pour!")
			return
		}
		f.eat()
	})
	return err
}

func (f *Feed) HoldPour() {
	f.s.do(func() {
		if f.phase != Pouring || f.pour != nil {
			return
		}
		f.pour = f.s.every(pourInterval, func() {
			f.level = min(f.level+pourStep, 100)
		})
	})
}

// ReleasePour stops pouring. A release inside the band serves the drink,
// anywhere else spills it and starts over.
func (f *Feed) ReleasePour() {
	f.s.do(func() {
		if f.phase != Pouring {
			return
		}
		f.s.stop(f.pour)
		f.pour = nil
		if f.level >= pourBandLow && f.level <= pourBandHigh {
			f.eat()
			return
		}
		f.level = 0
		f.s.say("Oops! Try again, stop between the lines.")
	})
}

func (f *Feed) View() FeedView {
	var v FeedView
	f.s.view(func() {
		v = FeedView{Phase: f.phase, Food: f.food, Level: f.level}
	})
	return v
}

func (f *Feed) eat() {
	f.phase = Eating
	if f.s.deps.Care != nil {
		f.s.deps.Care.MarkFed(f.s.now())
	}
	f.s.say("Yum! " + f.food.Icon)
	f.s.after(eatingTime, f.s.complete)
}
