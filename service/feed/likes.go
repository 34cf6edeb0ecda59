package feed

import (
	"gorm.io/gorm"

	"github.com/KBoadi/Ripple-server/cmd/models"
)

// DefaultPreviewLimit bounds the liked-by sample attached to each target.
const DefaultPreviewLimit = 10

// likeSummary is the per-target result of an aggregation pass.
type likeSummary struct {
	Count       int
	ViewerLiked bool
	Preview     []models.UserRef
}

// aggregateLikes computes like count, viewer-liked flag and a bounded
// newest-first liker preview for each target id. It issues at most two bulk
// queries regardless of how many targets are requested: one for the viewer's
// own likes over the id set, one for the like rows (or grouped counts when no
// preview is wanted). Every requested target appears in the result, with a
// zero summary when nobody has liked it.
func aggregateLikes(db *gorm.DB, targetIDs []string, targetType string, viewerID string, previewLimit int, withPreview bool) (map[string]likeSummary, error) {
	result := make(map[string]likeSummary, len(targetIDs))
	if len(targetIDs) == 0 {
		return result, nil
	}
	if previewLimit <= 0 {
		previewLimit = DefaultPreviewLimit
	}

	for _, id := range targetIDs {
		result[id] = likeSummary{}
	}

	if withPreview {
		var likes []models.Like
		err := db.Preload("User").
			Where("target_type = ? AND target_id IN ?", targetType, targetIDs).
			Order("created_at DESC").
			Find(&likes).Error
		if err != nil {
			return nil, err
		}

		for _, like := range likes {
			summary := result[like.TargetID]
			summary.Count++
			if len(summary.Preview) < previewLimit && like.User != nil {
				summary.Preview = append(summary.Preview, like.User.Ref())
			}
			result[like.TargetID] = summary
		}
	} else {
		type countRow struct {
			TargetID string
			Total    int
		}
		var counts []countRow
		err := db.Model(&models.Like{}).
			Select("target_id, COUNT(*) AS total").
			Where("target_type = ? AND target_id IN ?", targetType, targetIDs).
			Group("target_id").
			Scan(&counts).Error
		if err != nil {
			return nil, err
		}
		for _, row := range counts {
			result[row.TargetID] = likeSummary{Count: row.Total}
		}
	}

	if viewerID != "" {
		var likedIDs []string
		err := db.Model(&models.Like{}).
			Where("user_id = ? AND target_type = ? AND target_id IN ?", viewerID, targetType, targetIDs).
			Pluck("target_id", &likedIDs).Error
		if err != nil {
			return nil, err
		}
		for _, id := range likedIDs {
			summary := result[id]
			summary.ViewerLiked = true
			result[id] = summary
		}
	}

	return result, nil
}
