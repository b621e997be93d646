package domain

// Category classifies an entity type: the base objective, an extra reward or a cost.
type Category string

const (
	CategoryPrimary Category = "primary"
	CategoryBonus   Category = "bonus"
	CategoryPenalty Category = "penalty"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryPrimary, CategoryBonus, CategoryPenalty:
		return true
	}
	return false
}

// EntityTypeDef is one entry of the spawnable entity catalog. It is
// immutable for the lifetime of a session.
type EntityTypeDef struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Icon             string   `json:"icon"`
	Description      string   `json:"description"`
	Category         Category `json:"category"`
	Points           int      `json:"points"`
	AppearanceWeight float64  `json:"appearanceWeight"`
}
