package layout

import (
	"github.com/trolleyhq/trolley-backend/pkg/enums"
)

// UnknownPosition sorts categories without a layout entry after
// everything else.
const UnknownPosition = 99

// Layout maps a category name to its walking position in the store.
// Position 1 is closest to the entrance.
type Layout map[string]int

// Default returns the built-in supermarket layout used when no override
// has been saved.
func Default() Layout {
	return Layout{
		string(enums.CategoryHealthBeauty): 1,
		string(enums.CategoryHerbsSalads):  2,
		string(enums.CategoryFruit):        3,
		string(enums.CategoryVegetables):   4,
		string(enums.CategoryMeatPoultry):  5,
		string(enums.CategoryFishSeafood):  5,
		string(enums.CategoryHousehold):    6,
		string(enums.CategoryBabyChild):    6,
		string(enums.CategoryDairyEggs):    8,
		string(enums.CategoryBeverages):    9,
		string(enums.CategoryPantryDry):    10,
		string(enums.CategoryCannedJarred): 11,
		string(enums.CategoryBakeryBread):  12,
		string(enums.CategoryAlcoholWine):  13,
		string(enums.CategorySnacks):       14,
		string(enums.CategoryFrozenFoods):  16,
	}
}

// Position resolves a category to its layout position. Categories
// without an entry, including Uncategorized, sort last.
func (l Layout) Position(category enums.Category) int {
	if pos, ok := l[string(category)]; ok {
		return pos
	}
	return UnknownPosition
}
