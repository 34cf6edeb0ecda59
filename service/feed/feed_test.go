package feed

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/KBoadi/Ripple-server/cmd/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "feed_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Reply{},
		&models.Like{},
	)
	require.NoError(t, err)

	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// createPostAt inserts a post with an explicit creation time so ordering and
// cursor boundaries are deterministic. Times should carry at most microsecond
// precision, matching what postgres persists.
func createPostAt(t *testing.T, db *gorm.DB, author models.User, content string, at time.Time) models.Post {
	t.Helper()
	post := models.Post{
		ID:        uuid.NewString(),
		AuthorID:  author.ID,
		Content:   &content,
		CreatedAt: at,
		UpdatedAt: at,
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}

func createComment(t *testing.T, db *gorm.DB, post models.Post, author models.User, content string, at time.Time) models.Comment {
	t.Helper()
	comment := models.Comment{
		ID:        uuid.NewString(),
		PostID:    post.ID,
		AuthorID:  author.ID,
		Content:   content,
		CreatedAt: at,
	}
	require.NoError(t, db.Create(&comment).Error)
	return comment
}

func createReply(t *testing.T, db *gorm.DB, comment models.Comment, author models.User, content string, at time.Time) models.Reply {
	t.Helper()
	reply := models.Reply{
		ID:        uuid.NewString(),
		CommentID: comment.ID,
		AuthorID:  author.ID,
		Content:   content,
		CreatedAt: at,
	}
	require.NoError(t, db.Create(&reply).Error)
	return reply
}

func createLikeAt(t *testing.T, db *gorm.DB, user models.User, targetID, targetType string, at time.Time) models.Like {
	t.Helper()
	like := models.Like{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		TargetID:   targetID,
		TargetType: targetType,
		CreatedAt:  at,
	}
	require.NoError(t, db.Create(&like).Error)
	return like
}

var testEpoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
