package feed

import (
	"gorm.io/gorm"

	"github.com/KBoadi/Ripple-server/cmd/models"
)

// getTree fetches the full comment tree for a post: all comments in creation
// order, each with its replies in creation order, merged with like summaries.
// One bulk read covers the comments and replies, and a single aggregation
// pass over the combined comment and reply id set covers every node's likes
// (comment and reply likes live in the same table under one target type).
func getTree(db *gorm.DB, postID string, viewerID string) ([]CommentView, error) {
	var comments []models.Comment
	err := db.Preload("Author").
		Preload("Replies", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("replies.created_at ASC")
		}).
		Preload("Replies.Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	var targetIDs []string
	for _, comment := range comments {
		targetIDs = append(targetIDs, comment.ID)
		for _, reply := range comment.Replies {
			targetIDs = append(targetIDs, reply.ID)
		}
	}

	summaries, err := aggregateLikes(db, targetIDs, models.TargetTypeComment, viewerID, DefaultPreviewLimit, true)
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, len(comments))
	for i, comment := range comments {
		replies := make([]ReplyView, len(comment.Replies))
		for j, reply := range comment.Replies {
			summary := summaries[reply.ID]
			replies[j] = ReplyView{
				ID:        reply.ID,
				Content:   reply.Content,
				CreatedAt: reply.CreatedAt,
				Author:    authorRef(reply.Author),
				LikeCount: summary.Count,
				IsLiked:   summary.ViewerLiked,
				LikedBy:   previewOrEmpty(summary.Preview),
			}
		}

		summary := summaries[comment.ID]
		views[i] = CommentView{
			ID:        comment.ID,
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt,
			Author:    authorRef(comment.Author),
			LikeCount: summary.Count,
			IsLiked:   summary.ViewerLiked,
			LikedBy:   previewOrEmpty(summary.Preview),
			Replies:   replies,
		}
	}

	return views, nil
}
