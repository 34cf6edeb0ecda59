package feed

import (
	"time"

	"github.com/KBoadi/Ripple-server/cmd/models"
)

// PostView is the wire shape of a feed post enriched with like state.
type PostView struct {
	ID        string           `json:"id"`
	Content   *string          `json:"content"`
	ImageURL  *string          `json:"imageUrl"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Author    models.UserRef   `json:"author"`
	LikeCount int              `json:"likeCount"`
	IsLiked   bool             `json:"isLiked"`
	LikedBy   []models.UserRef `json:"likedBy"`
}

// ReplyView is the wire shape of a single reply node.
type ReplyView struct {
	ID        string           `json:"id"`
	Content   string           `json:"content"`
	CreatedAt time.Time        `json:"createdAt"`
	Author    models.UserRef   `json:"author"`
	LikeCount int              `json:"likeCount"`
	IsLiked   bool             `json:"isLiked"`
	LikedBy   []models.UserRef `json:"likedBy"`
}

// CommentView is a comment node with its ordered replies.
type CommentView struct {
	ID        string           `json:"id"`
	Content   string           `json:"content"`
	CreatedAt time.Time        `json:"createdAt"`
	Author    models.UserRef   `json:"author"`
	LikeCount int              `json:"likeCount"`
	IsLiked   bool             `json:"isLiked"`
	LikedBy   []models.UserRef `json:"likedBy"`
	Replies   []ReplyView      `json:"replies"`
}

// Pagination is the trailing pagination block of a feed page response.
type Pagination struct {
	NextCursor *string `json:"nextCursor"`
	HasMore    bool    `json:"hasMore"`
}

// FeedPage is one assembled page of the reverse-chronological feed.
type FeedPage struct {
	Posts      []PostView `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

func authorRef(u *models.User) models.UserRef {
	if u == nil {
		return models.UserRef{}
	}
	return u.Ref()
}

func previewOrEmpty(refs []models.UserRef) []models.UserRef {
	if refs == nil {
		return []models.UserRef{}
	}
	return refs
}
