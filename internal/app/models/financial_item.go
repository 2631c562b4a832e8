package models

import (
	"time"

	"github.com/google/uuid"
)

// FinancialItem is a quiz question from the 'financial_items' table.
// Items are never removed; IsActive=false marks a soft delete.
type FinancialItem struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Category          string    `json:"category" db:"category"`
	MultiCategories   []string  `json:"multiCategories,omitempty" db:"multi_categories"`
	Explanation       string    `json:"explanation" db:"explanation"`
	Level             int       `json:"level" db:"level"`
	Difficulty        string    `json:"difficulty" db:"difficulty"`
	Tags              []string  `json:"tags,omitempty" db:"tags"`
	UsageCount        int       `json:"usageCount" db:"usage_count"`
	CorrectAnswerRate float64   `json:"correctAnswerRate" db:"correct_answer_rate"`
	IsActive          bool      `json:"isActive" db:"is_active"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}
