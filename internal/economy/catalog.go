package economy

type Category string

const (
	CategoryHat     Category = "hat"
	CategoryClothes Category = "clothes"
	CategoryFood    Category = "food"
)

// Slot is an equip slot. Only gear categories have one.
type Slot string

const (
	SlotHat     Slot = "hat"
	SlotClothes Slot = "clothes"
)

type Item struct {
	ID       string
	Name     string
	Category Category
	Price    int
	Icon     string
}

// Consumable reports whether buying the item stacks another unit.
func (i Item) Consumable() bool {
	return i.Category == CategoryFood
}

// Drink reports whether the item goes through the pouring phase when fed.
func (i Item) Drink() bool {
	return i.ID == "water" || i.ID == "juice"
}

// Slot returns the equip slot for gear, or "" for consumables.
func (i Item) Slot() Slot {
	switch i.Category {
	case CategoryHat:
		return SlotHat
	case CategoryClothes:
		return SlotClothes
	default:
		return ""
	}
}

var Catalog = []Item{
	{ID: "hat_cap", Name: "Blue Cap", Category: CategoryHat, Price: 200, Icon: "🧢"},
	{ID: "hat_bow", Name: "Pink Bow", Category: CategoryHat, Price: 150, Icon: "🎀"},
	{ID: "hat_crown", Name: "Gold Crown", Category: CategoryHat, Price: 500, Icon: "👑"},
	{ID: "hat_cowboy", Name: "Cowboy Hat", Category: CategoryHat, Price: 300, Icon: "🤠"},
	{ID: "hat_beanie", Name: "Green Beanie", Category: CategoryHat, Price: 250, Icon: "🧶"},

	{ID: "cloth_tie", Name: "Bow Tie", Category: CategoryClothes, Price: 100, Icon: "👔"},
	{ID: "cloth_scarf", Name: "Cozy Scarf", Category: CategoryClothes, Price: 150, Icon: "🧣"},
	{ID: "cloth_glasses", Name: "Cool Shades", Category: CategoryClothes, Price: 250, Icon: "😎"},
	{ID: "cloth_flower", Name: "Flower Pin", Category: CategoryClothes, Price: 120, Icon: "🌸"},

	{ID: "apple", Name: "Apple", Category: CategoryFood, Price: 10, Icon: "🍎"},
	{ID: "burger", Name: "Burger", Category: CategoryFood, Price: 25, Icon: "🍔"},
	{ID: "cake", Name: "Cake", Category: CategoryFood, Price: 20, Icon: "🍰"},
	{ID: "water", Name: "Water", Category: CategoryFood, Price: 5, Icon: "💧"},
	{ID: "juice", Name: "Juice", Category: CategoryFood, Price: 15, Icon: "🧃"},
}

// Lookup finds a catalog item by id.
func Lookup(id string) (Item, bool) {
	for _, it := range Catalog {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// ByCategory returns catalog items of one category in catalog order.
func ByCategory(c Category) []Item {
	var out []Item
	for _, it := range Catalog {
		if it.Category == c {
			out = append(out, it)
		}
	}
	return out
}
