package evaluation

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidateRubric enforces the rubric invariants: at least one category,
// criteria present in every category, weights within bounds, and category
// weights summing to exactly 100. Criteria weights are informational within
// their category and deliberately not cross-checked.
func ValidateRubric(categories []Category) error {
	if len(categories) == 0 {
		return fmt.Errorf("%w: at least one category is required", ErrValidation)
	}

	total := 0
	seen := map[string]bool{}
	for _, category := range categories {
		if category.Name == "" {
			return fmt.Errorf("%w: category name is required", ErrValidation)
		}
		if seen[category.Name] {
			return fmt.Errorf("%w: duplicate category name %q", ErrValidation, category.Name)
		}
		seen[category.Name] = true
		if category.Weight < 0 || category.Weight > WeightTotal {
			return fmt.Errorf("%w: category %q weight %d out of range", ErrValidation, category.Name, category.Weight)
		}
		if len(category.Criteria) == 0 {
			return fmt.Errorf("%w: category %q has no criteria", ErrValidation, category.Name)
		}
		for _, criterion := range category.Criteria {
			if criterion.Description == "" {
				return fmt.Errorf("%w: criterion description is required in category %q", ErrValidation, category.Name)
			}
			if criterion.Weight < 0 || criterion.Weight > WeightTotal {
				return fmt.Errorf("%w: criterion weight %d out of range in category %q", ErrValidation, criterion.Weight, category.Name)
			}
		}
		total += category.Weight
	}

	if total != WeightTotal {
		return fmt.Errorf("%w: category weights sum to %d, expected %d", ErrValidation, total, WeightTotal)
	}
	return nil
}

// AssignRubricIDs fills in ids for categories and criteria that lack them.
// Existing ids are preserved so in-flight feedback references stay valid
// across admin edits that only touch names or weights.
func AssignRubricIDs(categories []Category) {
	for i := range categories {
		if categories[i].ID == "" {
			categories[i].ID = uuid.NewString()
		}
		for j := range categories[i].Criteria {
			if categories[i].Criteria[j].ID == "" {
				categories[i].Criteria[j].ID = uuid.NewString()
			}
		}
	}
}
