package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KBoadi/Ripple-server/cmd/models"
)

func TestToggleLike_Complementary(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author@example.com")
	user := createUser(t, db, "user@example.com")
	post := createPostAt(t, db, author, "post", testEpoch)

	liked, err := toggleLike(db, user.ID, post.ID, models.TargetTypePost)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = toggleLike(db, user.ID, post.ID, models.TargetTypePost)
	require.NoError(t, err)
	assert.False(t, liked)

	liked, err = toggleLike(db, user.ID, post.ID, models.TargetTypePost)
	require.NoError(t, err)
	assert.True(t, liked)

	var count int64
	db.Model(&models.Like{}).Where("target_id = ?", post.ID).Count(&count)
	assert.EqualValues(t, 1, count, "exactly one like row after an odd number of toggles")
}

func TestToggleLike_UsersAreIndependent(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author@example.com")
	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")
	post := createPostAt(t, db, author, "post", testEpoch)

	liked, err := toggleLike(db, alice.ID, post.ID, models.TargetTypePost)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = toggleLike(db, bob.ID, post.ID, models.TargetTypePost)
	require.NoError(t, err)
	assert.True(t, liked, "one user's like must not affect another's toggle")

	var count int64
	db.Model(&models.Like{}).Where("target_id = ?", post.ID).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestToggleLike_TargetTypesAreSeparate(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author@example.com")
	user := createUser(t, db, "user@example.com")
	post := createPostAt(t, db, author, "post", testEpoch)
	comment := createComment(t, db, post, author, "comment", testEpoch)

	liked, err := toggleLike(db, user.ID, post.ID, models.TargetTypePost)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = toggleLike(db, user.ID, comment.ID, models.TargetTypeComment)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = toggleLike(db, user.ID, post.ID, models.TargetTypePost)
	require.NoError(t, err)
	assert.False(t, liked, "unliking the post must leave the comment like intact")

	var count int64
	db.Model(&models.Like{}).Where("user_id = ? AND target_type = ?", user.ID, models.TargetTypeComment).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestToggleLike_ConcurrentInsertLosesGracefully(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author@example.com")
	user := createUser(t, db, "user@example.com")
	post := createPostAt(t, db, author, "post", testEpoch)

	// Simulate the race: the row appears between this call's delete check and
	// its insert. The unique constraint turns the duplicate insert into a
	// retried delete, so state stays consistent.
	createLikeAt(t, db, user, post.ID, models.TargetTypePost, testEpoch)
	dupe := models.Like{UserID: user.ID, TargetID: post.ID, TargetType: models.TargetTypePost}
	err := db.Create(&dupe).Error
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))

	var count int64
	db.Model(&models.Like{}).Where("target_id = ?", post.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}
