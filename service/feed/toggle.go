package feed

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/KBoadi/Ripple-server/cmd/models"
)

// toggleLike flips the viewer's like on a target inside one transaction.
// Delete-first: an affected row means the like existed and is now removed.
// Otherwise insert; if the insert trips the (user, target, type) unique
// constraint a concurrent toggle created the row first, so the delete is
// retried once and the call reports unliked. The caller verifies the target
// exists before toggling.
func toggleLike(db *gorm.DB, userID, targetID, targetType string) (bool, error) {
	var liked bool
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND target_id = ? AND target_type = ?", userID, targetID, targetType).
			Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return nil
		}

		like := models.Like{
			UserID:     userID,
			TargetID:   targetID,
			TargetType: targetType,
		}
		if err := tx.Create(&like).Error; err != nil {
			if !isUniqueViolation(err) {
				return err
			}
			res := tx.Where("user_id = ? AND target_id = ? AND target_type = ?", userID, targetID, targetType).
				Delete(&models.Like{})
			if res.Error != nil {
				return res.Error
			}
			liked = false
			return nil
		}

		liked = true
		return nil
	})
	return liked, err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
