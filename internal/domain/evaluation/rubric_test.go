package evaluation

import (
	"errors"
	"testing"
)

func validRubric() []Category {
	return []Category{
		{Name: "Technical", Weight: 60, Criteria: []Criterion{{Description: "Code quality", Weight: 100}}},
		{Name: "Soft", Weight: 40, Criteria: []Criterion{{Description: "Communication", Weight: 100}}},
	}
}

func TestValidateRubricAccepts(t *testing.T) {
	if err := ValidateRubric(validRubric()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRubricRejectsEmpty(t *testing.T) {
	if err := ValidateRubric(nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestValidateRubricRejectsBadWeightSum(t *testing.T) {
	categories := []Category{
		{Name: "A", Weight: 60, Criteria: []Criterion{{Description: "x"}}},
		{Name: "B", Weight: 30, Criteria: []Criterion{{Description: "y"}}},
	}
	if err := ValidateRubric(categories); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for sum 90, got %v", err)
	}

	// Exact integer equality, 101 is as wrong as 90.
	categories[1].Weight = 41
	if err := ValidateRubric(categories); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for sum 101, got %v", err)
	}
}

func TestValidateRubricRejectsCategoryWithoutCriteria(t *testing.T) {
	categories := []Category{
		{Name: "A", Weight: 100},
	}
	if err := ValidateRubric(categories); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestValidateRubricRejectsDuplicateNames(t *testing.T) {
	categories := []Category{
		{Name: "A", Weight: 50, Criteria: []Criterion{{Description: "x"}}},
		{Name: "A", Weight: 50, Criteria: []Criterion{{Description: "y"}}},
	}
	if err := ValidateRubric(categories); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestValidateRubricSkipsCriteriaWeightSum(t *testing.T) {
	// Criteria weights inside a category are not cross-checked.
	categories := []Category{
		{Name: "A", Weight: 100, Criteria: []Criterion{
			{Description: "x", Weight: 10},
			{Description: "y", Weight: 15},
		}},
	}
	if err := ValidateRubric(categories); err != nil {
		t.Fatalf("criteria weights must not be cross-checked: %v", err)
	}
}

func TestAssignRubricIDs(t *testing.T) {
	categories := validRubric()
	categories[0].ID = "keep-me"
	AssignRubricIDs(categories)

	if categories[0].ID != "keep-me" {
		t.Fatal("existing category id must be preserved")
	}
	if categories[1].ID == "" {
		t.Fatal("missing category id must be assigned")
	}
	if categories[0].Criteria[0].ID == "" || categories[1].Criteria[0].ID == "" {
		t.Fatal("missing criterion ids must be assigned")
	}
}
