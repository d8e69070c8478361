package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrCategoryNotFound  = fmt.Errorf("category %w", ErrNotFound)
	ErrFoodNotFound      = fmt.Errorf("food %w", ErrNotFound)
	ErrEventNotFound     = fmt.Errorf("event %w", ErrNotFound)
	ErrDuplicateCategory = errors.New("category already exists")
	ErrDuplicateFood     = errors.New("food already exists")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidFood       = errors.New("invalid food")
	ErrInvalidDay        = errors.New("invalid day")
)
