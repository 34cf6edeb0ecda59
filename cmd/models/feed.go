package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like targets are addressed by bare id plus a type discriminator. Posts use
// TargetTypePost; comments and replies share TargetTypeComment (UUID ids keep
// the two id spaces collision-free in one table).
const (
	TargetTypePost    = "post"
	TargetTypeComment = "comment"
)

type Post struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	AuthorID  string    `gorm:"column:author_id;type:uuid;not null;index" json:"author_id"`
	Content   *string   `gorm:"column:content;type:text" json:"content"`
	ImageURL  *string   `gorm:"column:image_url;size:500" json:"image_url"`
	CreatedAt time.Time `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type Comment struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	PostID    string    `gorm:"column:post_id;type:uuid;not null;index" json:"post_id"`
	AuthorID  string    `gorm:"column:author_id;type:uuid;not null" json:"author_id"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Replies   []Reply   `gorm:"foreignKey:CommentID" json:"replies,omitempty"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Reply struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CommentID string    `gorm:"column:comment_id;type:uuid;not null;index" json:"comment_id"`
	AuthorID  string    `gorm:"column:author_id;type:uuid;not null" json:"author_id"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (r *Reply) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type Like struct {
	ID         string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID     string    `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_likes_user_target" json:"user_id"`
	TargetID   string    `gorm:"column:target_id;type:uuid;not null;uniqueIndex:idx_likes_user_target;index" json:"target_id"`
	TargetType string    `gorm:"column:target_type;size:20;not null;uniqueIndex:idx_likes_user_target" json:"target_type"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
