package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sethgrid/pelioscope/internal/companion"
	"github.com/sethgrid/pelioscope/internal/economy"
)

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "List items for sale",
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeCompanionCommand(cmd, func(c *companion.Companion) error {
			fmt.Printf("Balance: %d drachma\n", c.Ledger.Balance())
			for _, cat := range []economy.Category{economy.CategoryHat, economy.CategoryClothes, economy.CategoryFood} {
				fmt.Printf("\n%s\n", cat)
				for _, it := range economy.ByCategory(cat) {
					owned := ""
					if n := c.Ledger.Count(it.ID); n > 0 {
						if it.Consumable() {
							owned = fmt.Sprintf(" (x%d)", n)
						} else {
							owned = " (owned)"
						}
					}
					fmt.Printf("  %s %-14s %-14s %4d%s\n", it.Icon, it.ID, it.Name, it.Price, owned)
				}
			}
			return nil
		})
	},
}

var buyCmd = &cobra.Command{
	Use:   "buy [item]",
	Short: "Buy an item from the shop",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeCompanionCommand(cmd, func(c *companion.Companion) error {
			item, err := c.Ledger.Purchase(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Bought %s %s! %d drachma left.\n", item.Icon, item.Name, c.Ledger.Balance())
			return nil
		})
	},
}

var equipCmd = &cobra.Command{
	Use:   "equip [item]",
	Short: "Put on a hat or clothes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeCompanionCommand(cmd, func(c *companion.Companion) error {
			item, ok := economy.Lookup(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", economy.ErrUnknownItem, args[0])
			}
			if item.Slot() == "" {
				return fmt.Errorf("%s can't be worn", item.Name)
			}
			if !c.Ledger.Owns(item.ID) {
				return fmt.Errorf("you don't own %s yet. Try 'pelioscope buy %s'", item.Name, item.ID)
			}
			c.Ledger.Equip(item.Slot(), item.ID)
			fmt.Printf("%s is wearing %s %s\n", c.CompanionName(), item.Icon, item.Name)
			return nil
		})
	},
}

var unequipCmd = &cobra.Command{
	Use:       "unequip [hat|clothes]",
	Short:     "Take off a hat or clothes",
	ValidArgs: []string{string(economy.SlotHat), string(economy.SlotClothes)},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeCompanionCommand(cmd, func(c *companion.Companion) error {
			c.Ledger.Equip(economy.Slot(args[0]), "")
			fmt.Printf("Took off the %s.\n", args[0])
			return nil
		})
	},
}

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Show owned items",
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeCompanionCommand(cmd, func(c *companion.Companion) error {
			snap := c.Ledger.Snapshot()
			fmt.Printf("Balance: %d drachma\n", snap.Balance)
			if len(snap.Inventory) == 0 {
				fmt.Println("Nothing yet. Visit the shop!")
				return nil
			}
			seen := map[string]bool{}
			for _, id := range snap.Inventory {
				if seen[id] {
					continue
				}
				seen[id] = true
				it, _ := economy.Lookup(id)
				worn := ""
				if snap.Equipped.Hat == id || snap.Equipped.Clothes == id {
					worn = " (wearing)"
				}
				fmt.Printf("  %s %s x%d%s\n", it.Icon, id, c.Ledger.Count(id), worn)
			}
			return nil
		})
	},
}
