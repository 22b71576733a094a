package enums

// Category represents the supermarket aisle an item belongs to.
type Category string

const (
	CategoryFruit         Category = "Fresh Produce - Fruit"
	CategoryVegetables    Category = "Fresh Produce - Vegetables"
	CategoryHerbsSalads   Category = "Fresh Produce - Herbs & Salads"
	CategoryMeatPoultry   Category = "Meat & Poultry"
	CategoryFishSeafood   Category = "Fish & Seafood"
	CategoryDairyEggs     Category = "Dairy & Eggs"
	CategoryBakeryBread   Category = "Bakery & Bread"
	CategoryFrozenFoods   Category = "Frozen Foods"
	CategoryPantryDry     Category = "Pantry & Dry Goods"
	CategoryCannedJarred  Category = "Canned & Jarred"
	CategorySnacks        Category = "Snacks & Confectionery"
	CategoryBeverages     Category = "Beverages"
	CategoryAlcoholWine   Category = "Alcohol & Wine"
	CategoryHealthBeauty  Category = "Health & Beauty"
	CategoryHousehold     Category = "Household & Cleaning"
	CategoryBabyChild     Category = "Baby & Child"
	CategoryUncategorized Category = "Uncategorized"
)

var validCategories = []Category{
	CategoryFruit,
	CategoryVegetables,
	CategoryHerbsSalads,
	CategoryMeatPoultry,
	CategoryFishSeafood,
	CategoryDairyEggs,
	CategoryBakeryBread,
	CategoryFrozenFoods,
	CategoryPantryDry,
	CategoryCannedJarred,
	CategorySnacks,
	CategoryBeverages,
	CategoryAlcoholWine,
	CategoryHealthBeauty,
	CategoryHousehold,
	CategoryBabyChild,
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// IsValid reports whether the value is a known aisle category.
// Uncategorized is valid as a stored value but is not part of the
// enrichment target set.
func (c Category) IsValid() bool {
	if c == CategoryUncategorized {
		return true
	}
	for _, candidate := range validCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// Categories returns the enrichment target set, excluding Uncategorized.
func Categories() []Category {
	out := make([]Category, len(validCategories))
	copy(out, validCategories)
	return out
}

// ParseCategory converts raw input into a Category, mapping unknown
// values to Uncategorized.
func ParseCategory(value string) Category {
	c := Category(value)
	for _, candidate := range validCategories {
		if candidate == c {
			return candidate
		}
	}
	return CategoryUncategorized
}
