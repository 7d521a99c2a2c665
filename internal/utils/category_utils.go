package utils

import (
	"context"

	"gorm.io/gorm"

	"github.com/Keoroanthony/farmmarket/internal/models"
)

// GetAllCategoryIDs returns rootID followed by every descendant category,
// breadth first.
func GetAllCategoryIDs(ctx context.Context, db *gorm.DB, rootID uint) ([]uint, error) {
	result := []uint{rootID}
	queue := []uint{rootID}
	seen := map[uint]bool{rootID: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		var children []models.Category
		if err := db.WithContext(ctx).Where("parent_id = ?", current).Find(&children).Error; err != nil {
			return nil, err
		}

		for _, child := range children {
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			result = append(result, child.ID)
			queue = append(queue, child.ID)
		}
	}
	return result, nil
}
