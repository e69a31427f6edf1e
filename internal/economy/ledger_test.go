package economy

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpend(t *testing.T) {
	tests := []struct {
		name        string
		balance     int
		amount      int
		wantOK      bool
		wantBalance int
	}{
		{name: "exact balance", balance: 100, amount: 100, wantOK: true, wantBalance: 0},
		{name: "below balance", balance: 100, amount: 40, wantOK: true, wantBalance: 60},
		{name: "above balance", balance: 100, amount: 101, wantOK: false, wantBalance: 100},
		{name: "empty wallet", balance: 0, amount: 1, wantOK: false, wantBalance: 0},
		{name: "negative amount", balance: 10, amount: -5, wantOK: false, wantBalance: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger(tt.balance, nil, Equipped{})
			assert.Equal(t, tt.wantOK, l.Spend(tt.amount))
			assert.Equal(t, tt.wantBalance, l.Balance())
		})
	}
}

func TestBalanceNeverNegative(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	l := NewLedger(50, nil, Equipped{})

	for i := 0; i < 2000; i++ {
		amount := r.Intn(120) + 1
		before := l.Balance()
		switch r.Intn(3) {
		case 0:
			l.Earn(amount)
			assert.Equal(t, before+amount, l.Balance())
		case 1:
			ok := l.Spend(amount)
			if amount > before {
				require.False(t, ok)
				require.Equal(t, before, l.Balance())
			} else {
				require.True(t, ok)
			}
		case 2:
			l.Buy("apple", amount)
		}
		require.GreaterOrEqual(t, l.Balance(), 0)
	}
}

func TestConcurrentSpendersNeverOverdraw(t *testing.T) {
	l := NewLedger(1000, nil, Equipped{})
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if l.Spend(7) {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000/7, succeeded)
	assert.Equal(t, 1000%7, l.Balance())
}

func TestBuyGearIsIdempotent(t *testing.T) {
	l := NewLedger(1000, nil, Equipped{})

	require.True(t, l.Buy("hat_crown", 500))
	assert.Equal(t, 500, l.Balance())

	require.True(t, l.Buy("hat_crown", 500))
	assert.Equal(t, 500, l.Balance())
	assert.Equal(t, 1, l.Count("hat_crown"))
}

func TestBuyConsumableStacks(t *testing.T) {
	l := NewLedger(30, nil, Equipped{})

	require.True(t, l.Buy("apple", 10))
	require.True(t, l.Buy("apple", 10))
	require.True(t, l.Buy("apple", 10))
	require.False(t, l.Buy("apple", 10))

	assert.Equal(t, 3, l.Count("apple"))
	assert.Equal(t, 0, l.Balance())
}

func TestBuyInsufficientGrantsNothing(t *testing.T) {
	l := NewLedger(100, nil, Equipped{})

	assert.False(t, l.Buy("hat_cap", 200))
	assert.False(t, l.Owns("hat_cap"))
	assert.Equal(t, 100, l.Balance())
}

func TestPurchase(t *testing.T) {
	l := NewLedger(120, nil, Equipped{})

	item, err := l.Purchase("cloth_tie")
	require.NoError(t, err)
	assert.Equal(t, "Bow Tie", item.Name)
	assert.Equal(t, 20, l.Balance())

	_, err = l.Purchase("cloth_scarf")
	assert.True(t, errors.Is(err, ErrInsufficientFunds))

	_, err = l.Purchase("spaceship")
	assert.True(t, errors.Is(err, ErrUnknownItem))
}

func TestConsume(t *testing.T) {
	l := NewLedger(0, []string{"apple", "cake", "apple"}, Equipped{})

	l.Consume("apple")
	assert.Equal(t, 1, l.Count("apple"))

	l.Consume("burger")
	assert.Equal(t, []string{"cake", "apple"}, l.Snapshot().Inventory)
}

func TestConsumeClearsEquippedSlot(t *testing.T) {
	l := NewLedger(0, []string{"hat_bow"}, Equipped{Hat: "hat_bow"})

	l.Consume("hat_bow")
	assert.Empty(t, l.Equipped().Hat)
}

func TestEquipDoesNotCheckOwnership(t *testing.T) {
	l := NewLedger(0, nil, Equipped{})

	l.Equip(SlotHat, "hat_crown")
	assert.Equal(t, "hat_crown", l.Equipped().Get(SlotHat))

	l.Equip(SlotHat, "")
	assert.Empty(t, l.Equipped().Get(SlotHat))
}

func TestOnChangeSeesCommittedState(t *testing.T) {
	var got []Snapshot
	l := NewLedger(100, nil, Equipped{}, WithOnChange(func(s Snapshot) {
		got = append(got, s)
	}))

	l.Earn(10)
	l.Spend(500)
	l.Buy("water", 5)

	require.Len(t, got, 2)
	assert.Equal(t, 110, got[0].Balance)
	assert.Equal(t, 105, got[1].Balance)
	assert.Equal(t, []string{"water"}, got[1].Inventory)
}

func TestFoods(t *testing.T) {
	l := NewLedger(0, []string{"juice", "hat_cap", "apple", "juice"}, Equipped{})

	foods := l.Foods()
	require.Len(t, foods, 2)
	assert.Equal(t, "apple", foods[0].ID)
	assert.True(t, foods[1].Drink())
}
