package helpers

import (
	"math"

	"github.com/MICA1991/financelitracy-quiz/internal/app/models/dto"
)

const DefaultPage = 1 // Default page is 1-based

// NewPaginationInfo creates a standard PaginationInfo DTO.
// page should be the 1-based page number. Pages is 0 when there are no items.
func NewPaginationInfo(totalItems int64, page, limit int) dto.PaginationInfo {
	if page < 1 {
		page = DefaultPage
	}

	totalPages := 0
	if totalItems > 0 && limit > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(limit)))
	}

	return dto.PaginationInfo{
		Page:  page,
		Limit: limit,
		Total: totalItems,
		Pages: totalPages,
	}
}

// CalculateSliceIndices calculates the start and end indices for slicing an array for pagination
func CalculateSliceIndices(page, size, totalItems int) (start, end int) {
	if size <= 0 {
		return 0, totalItems
	}
	if page < 1 {
		page = DefaultPage
	}

	// 1-based page to 0-based index
	start = (page - 1) * size
	end = start + size

	if start >= totalItems {
		return totalItems, totalItems
	}
	if end > totalItems {
		end = totalItems
	}

	return start, end
}
