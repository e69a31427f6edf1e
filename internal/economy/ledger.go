// Package economy tracks the companion's drachma balance, the owned-items
// multiset and the equipped gear slots.
//
// Every operation that checks and then mutates the balance runs inside a
// single critical section, so a Ledger can be shared by concurrent callers
// without ever overdrawing.
package economy

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	ErrInsufficientFunds = errors.New("not enough drachma")
	ErrUnknownItem       = errors.New("unknown item")
)

type Equipped struct {
	Hat     string `toml:"hat"`
	Clothes string `toml:"clothes"`
}

// Get returns the item id in a slot, "" when empty.
func (e Equipped) Get(s Slot) string {
	switch s {
	case SlotHat:
		return e.Hat
	case SlotClothes:
		return e.Clothes
	}
	return ""
}

func (e *Equipped) set(s Slot, id string) {
	switch s {
	case SlotHat:
		e.Hat = id
	case SlotClothes:
		e.Clothes = id
	}
}

// Snapshot is a copy of the ledger contents.
type Snapshot struct {
	Balance   int
	Inventory []string
	Equipped  Equipped
}

type Option func(*Ledger)

// WithOnChange registers a hook called after every mutation, outside the
// ledger lock, with the post-mutation snapshot.
func WithOnChange(fn func(Snapshot)) Option {
	return func(l *Ledger) { l.onChange = fn }
}

type Ledger struct {
	mu        sync.Mutex
	balance   int
	inventory []string
	equipped  Equipped
	onChange  func(Snapshot)
}

// NewLedger restores a ledger. A negative balance is clamped to zero.
func NewLedger(balance int, inventory []string, equipped Equipped, opts ...Option) *Ledger {
	if balance < 0 {
		balance = 0
	}
	l := &Ledger{
		balance:   balance,
		inventory: slices.Clone(inventory),
		equipped:  equipped,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) Balance() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Ledger) snapshotLocked() Snapshot {
	return Snapshot{
		Balance:   l.balance,
		Inventory: slices.Clone(l.inventory),
		Equipped:  l.equipped,
	}
}

// Earn credits amount. Non-positive amounts are ignored.
func (l *Ledger) Earn(amount int) {
	if amount <= 0 {
		return
	}
	l.mutate(func() bool {
		l.balance += amount
		return true
	})
}

// Spend debits amount if the balance covers it. It reports false and leaves
// the balance untouched otherwise.
func (l *Ledger) Spend(amount int) bool {
	if amount < 0 {
		return false
	}
	return l.mutate(func() bool {
		if l.balance < amount {
			return false
		}
		l.balance -= amount
		return true
	})
}

// Buy charges price and grants one unit of itemID as a single step. Gear
// that is already owned succeeds without charging. Ids missing from the
// catalog are treated as gear.
func (l *Ledger) Buy(itemID string, price int) bool {
	item, known := Lookup(itemID)
	consumable := known && item.Consumable()
	if price < 0 {
		return false
	}

	l.mu.Lock()
	if !consumable && slices.Contains(l.inventory, itemID) {
		l.mu.Unlock()
		return true
	}
	if l.balance < price {
		l.mu.Unlock()
		return false
	}
	l.balance -= price
	l.inventory = append(l.inventory, itemID)
	snap := l.snapshotLocked()
	l.mu.Unlock()

	l.notify(snap)
	return true
}

// Purchase buys a catalog item at its catalog price.
func (l *Ledger) Purchase(itemID string) (Item, error) {
	item, ok := Lookup(itemID)
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	if !l.Buy(item.ID, item.Price) {
		return item, fmt.Errorf("%w: %s costs %d", ErrInsufficientFunds, item.Name, item.Price)
	}
	return item, nil
}

// Consume removes one unit of itemID. Absent ids are a no-op. When the last
// unit of an equipped id leaves the inventory its slot is cleared.
func (l *Ledger) Consume(itemID string) {
	l.mutate(func() bool {
		idx := slices.Index(l.inventory, itemID)
		if idx < 0 {
			return false
		}
		l.inventory = slices.Delete(l.inventory, idx, idx+1)
		if !slices.Contains(l.inventory, itemID) {
			if l.equipped.Hat == itemID {
				l.equipped.Hat = ""
			}
			if l.equipped.Clothes == itemID {
				l.equipped.Clothes = ""
			}
		}
		return true
	})
}

// Equip sets a slot without checking ownership; callers verify with Owns.
// An empty itemID clears the slot.
func (l *Ledger) Equip(slot Slot, itemID string) {
	l.mutate(func() bool {
		l.equipped.set(slot, itemID)
		return true
	})
}

func (l *Ledger) Equipped() Equipped {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.equipped
}

func (l *Ledger) Owns(itemID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Contains(l.inventory, itemID)
}

// Count returns how many units of itemID are held.
func (l *Ledger) Count(itemID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, id := range l.inventory {
		if id == itemID {
			n++
		}
	}
	return n
}

// Foods returns owned consumables, one entry per distinct id, in catalog order.
func (l *Ledger) Foods() []Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Item
	for _, it := range ByCategory(CategoryFood) {
		if slices.Contains(l.inventory, it.ID) {
			out = append(out, it)
		}
	}
	return out
}

func (l *Ledger) mutate(fn func() bool) bool {
	l.mu.Lock()
	changed := fn()
	snap := l.snapshotLocked()
	l.mu.Unlock()
	if changed {
		l.notify(snap)
	}
	return changed
}

func (l *Ledger) notify(s Snapshot) {
	if l.onChange != nil {
		l.onChange(s)
	}
}
