package feed

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KBoadi/Ripple-server/cmd/models"
)

func TestGetTree_EmptyPost(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author@example.com")
	post := createPostAt(t, db, author, "lonely post", testEpoch)

	tree, err := getTree(db, post.ID, "")
	require.NoError(t, err)
	assert.Empty(t, tree)
}

func TestGetTree_OrderedNesting(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author@example.com")
	post := createPostAt(t, db, author, "post", testEpoch)

	c1 := createComment(t, db, post, author, "first comment", testEpoch.Add(1*time.Minute))
	c2 := createComment(t, db, post, author, "second comment", testEpoch.Add(2*time.Minute))
	r2 := createReply(t, db, c1, author, "later reply", testEpoch.Add(5*time.Minute))
	r1 := createReply(t, db, c1, author, "earlier reply", testEpoch.Add(3*time.Minute))

	// A comment on another post must not leak in.
	otherPost := createPostAt(t, db, author, "other", testEpoch.Add(time.Second))
	createComment(t, db, otherPost, author, "unrelated", testEpoch.Add(4*time.Minute))

	tree, err := getTree(db, post.ID, "")
	require.NoError(t, err)

	require.Len(t, tree, 2)
	assert.Equal(t, c1.ID, tree[0].ID)
	assert.Equal(t, c2.ID, tree[1].ID)

	require.Len(t, tree[0].Replies, 2)
	assert.Equal(t, r1.ID, tree[0].Replies[0].ID, "replies must be oldest-first")
	assert.Equal(t, r2.ID, tree[0].Replies[1].ID)
	assert.Empty(t, tree[1].Replies)
}

func TestGetTree_MergesLikesAcrossCommentsAndReplies(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author@example.com")
	viewer := createUser(t, db, "viewer@example.com")
	post := createPostAt(t, db, author, "post", testEpoch)

	c1 := createComment(t, db, post, author, "C1", testEpoch.Add(1*time.Minute))
	r1 := createReply(t, db, c1, author, "R1", testEpoch.Add(2*time.Minute))
	r2 := createReply(t, db, c1, author, "R2", testEpoch.Add(3*time.Minute))

	for i := 0; i < 3; i++ {
		liker := createUser(t, db, fmt.Sprintf("liker%d@example.com", i))
		createLikeAt(t, db, liker, c1.ID, models.TargetTypeComment, testEpoch.Add(time.Duration(i)*time.Second))
	}
	createLikeAt(t, db, viewer, r2.ID, models.TargetTypeComment, testEpoch.Add(time.Minute))

	tree, err := getTree(db, post.ID, viewer.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)

	comment := tree[0]
	assert.Equal(t, 3, comment.LikeCount)
	assert.Len(t, comment.LikedBy, 3)
	assert.False(t, comment.IsLiked)

	require.Len(t, comment.Replies, 2)
	assert.Equal(t, r1.ID, comment.Replies[0].ID)
	assert.Equal(t, 0, comment.Replies[0].LikeCount)
	assert.Empty(t, comment.Replies[0].LikedBy)
	assert.False(t, comment.Replies[0].IsLiked)

	assert.Equal(t, r2.ID, comment.Replies[1].ID)
	assert.Equal(t, 1, comment.Replies[1].LikeCount)
	require.Len(t, comment.Replies[1].LikedBy, 1)
	assert.Equal(t, "viewer@example.com", comment.Replies[1].LikedBy[0].Email)
	assert.True(t, comment.Replies[1].IsLiked)
}

func TestGetTree_AuthorProjection(t *testing.T) {
	db := setupTestDB(t)
	poster := createUser(t, db, "poster@example.com")
	commenter := createUser(t, db, "commenter@example.com")
	post := createPostAt(t, db, poster, "post", testEpoch)
	createComment(t, db, post, commenter, "hello", testEpoch.Add(time.Minute))

	tree, err := getTree(db, post.ID, "")
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, commenter.ID, tree[0].Author.ID)
	assert.Equal(t, "commenter@example.com", tree[0].Author.Email)
}
