package chimera

// ItemCategory tags what an item is for
type ItemCategory string

// Item categories
const (
	ItemCategoryWeapon     ItemCategory = "weapon"
	ItemCategoryArmor      ItemCategory = "armor"
	ItemCategoryConsumable ItemCategory = "consumable"
	ItemCategoryDatachip   ItemCategory = "datachip"
	ItemCategoryKeycard    ItemCategory = "keycard"
	ItemCategoryMisc       ItemCategory = "misc"
	ItemCategoryCurrency   ItemCategory = "currency"
)

// IsValid checks if the category is one of the known categories
func (c ItemCategory) IsValid() bool {
	switch c {
	case ItemCategoryWeapon, ItemCategoryArmor, ItemCategoryConsumable, ItemCategoryDatachip,
		ItemCategoryKeycard, ItemCategoryMisc, ItemCategoryCurrency:
		return true
	default:
		return false
	}
}

// Item is a carried object
type Item struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Category    ItemCategory `json:"category" yaml:"category"`
	Quantity    int          `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Equipped    bool         `json:"equipped,omitempty" yaml:"equipped,omitempty"`
	Combat      *ItemCombat  `json:"combat,omitempty" yaml:"combat,omitempty"`
}

// ItemCombat holds the optional combat attributes of a weapon
type ItemCombat struct {
	// Damage is a dice expression such as "2d6"
	Damage       string `json:"damage,omitempty" yaml:"damage,omitempty"`
	AmmoCapacity int    `json:"ammo_capacity,omitempty" yaml:"ammo_capacity,omitempty"`
	AmmoCurrent  int    `json:"ammo_current,omitempty" yaml:"ammo_current,omitempty"`
}
