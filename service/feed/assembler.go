package feed

import (
	"gorm.io/gorm"

	"github.com/KBoadi/Ripple-server/cmd/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// getPage assembles one page of the feed: pageSize posts ordered
// (created_at DESC, id DESC) starting below the cursor boundary, each merged
// with its like summary for the viewer. It fetches pageSize+1 rows to decide
// hasMore, then batches like aggregation over the trimmed page so the number
// of queries stays constant regardless of page size. withPreview controls
// whether the liked-by sample is fetched; counts and viewer flags are always
// present.
func getPage(db *gorm.DB, cursorToken string, pageSize int, viewerID string, withPreview bool) (*FeedPage, error) {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	query := db.Preload("Author").
		Order("created_at DESC, id DESC").
		Limit(pageSize + 1)

	if cur := decodeCursor(cursorToken); cur != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cur.CreatedAt, cur.CreatedAt, cur.ID,
		)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}

	hasMore := len(posts) > pageSize
	if hasMore {
		posts = posts[:pageSize]
	}

	ids := make([]string, len(posts))
	for i, post := range posts {
		ids[i] = post.ID
	}

	summaries, err := aggregateLikes(db, ids, models.TargetTypePost, viewerID, DefaultPreviewLimit, withPreview)
	if err != nil {
		return nil, err
	}

	views := make([]PostView, len(posts))
	for i, post := range posts {
		summary := summaries[post.ID]
		views[i] = PostView{
			ID:        post.ID,
			Content:   post.Content,
			ImageURL:  post.ImageURL,
			CreatedAt: post.CreatedAt,
			UpdatedAt: post.UpdatedAt,
			Author:    authorRef(post.Author),
			LikeCount: summary.Count,
			IsLiked:   summary.ViewerLiked,
			LikedBy:   previewOrEmpty(summary.Preview),
		}
	}

	page := &FeedPage{
		Posts:      views,
		Pagination: Pagination{HasMore: hasMore},
	}
	if hasMore {
		token := encodeCursor(&posts[len(posts)-1])
		page.Pagination.NextCursor = &token
	}
	return page, nil
}
