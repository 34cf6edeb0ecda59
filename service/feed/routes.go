package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/KBoadi/Ripple-server/cmd/models"
	"github.com/KBoadi/Ripple-server/cmd/utils"
	"github.com/KBoadi/Ripple-server/pkg/ratelimit"
)

// Per-user fixed-window budgets for mutation endpoints.
const (
	postCreateLimit    = 10
	commentCreateLimit = 30
	replyCreateLimit   = 30
	likeToggleLimit    = 60
	commentReadLimit   = 200
	limitWindow        = time.Minute
)

type Handler struct {
	db      *gorm.DB
	limiter ratelimit.Limiter
}

func NewHandler(db *gorm.DB, limiter ratelimit.Limiter) *Handler {
	return &Handler{db: db, limiter: limiter}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	// Post routes
	router.HandleFunc("/posts", h.GetPosts).Methods("GET")
	router.HandleFunc("/posts", utils.AuthMiddleware(h.CreatePost)).Methods("POST")
	router.HandleFunc("/posts/{postId}/like", utils.AuthMiddleware(h.TogglePostLike)).Methods("POST")

	// Comment routes
	router.HandleFunc("/posts/{postId}/comments", h.GetComments).Methods("GET")
	router.HandleFunc("/posts/{postId}/comments", utils.AuthMiddleware(h.AddComment)).Methods("POST")
	router.HandleFunc("/comments/{commentId}/replies", utils.AuthMiddleware(h.AddReply)).Methods("POST")
	router.HandleFunc("/comments/{commentId}/like", utils.AuthMiddleware(h.ToggleCommentLike)).Methods("POST")

	// Uploaded post images
	router.HandleFunc("/images/posts/{filename}", h.ServeImage).Methods("GET")
}

// GetPosts returns one cursor-paginated page of the feed.
func (h *Handler) GetPosts(w http.ResponseWriter, r *http.Request) {
	cursorToken := r.URL.Query().Get("cursor")

	pageSize := DefaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			switch {
			case n < 1:
				pageSize = 1
			case n > MaxPageSize:
				pageSize = MaxPageSize
			default:
				pageSize = n
			}
		}
	}

	viewerID := utils.ViewerID(r)

	page, err := getPage(h.db, cursorToken, pageSize, viewerID, true)
	if err != nil {
		logrus.WithError(err).Error("Error assembling feed page")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch posts")
		return
	}

	utils.WriteJSON(w, http.StatusOK, page)
}

type createPostForm struct {
	Content  *string
	ImageURL *string
}

func (f createPostForm) Validate() map[string]string {
	hasContent := f.Content != nil && *f.Content != ""
	hasImage := f.ImageURL != nil && *f.ImageURL != ""
	if !hasContent && !hasImage {
		return map[string]string{"content": "Either content or image is required"}
	}
	return nil
}

// CreatePost creates a new post from a multipart form with optional image.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if h.rateLimited(w, fmt.Sprintf("post:create:%s", userID), postCreateLimit) {
		return
	}

	if err := r.ParseMultipartForm(utils.MaxImageSize + 1<<20); err != nil {
		utils.WriteValidationErrors(w, "Validation failed", map[string]string{
			"form": "Invalid multipart form",
		})
		return
	}

	var form createPostForm
	if content := utils.SanitizeInput(r.FormValue("content")); content != "" {
		form.Content = &content
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		imageURL, err := utils.SaveImage(file, header)
		if err != nil {
			utils.WriteValidationErrors(w, "Validation failed", map[string]string{
				"image": err.Error(),
			})
			return
		}
		form.ImageURL = &imageURL
	}

	if fieldErrors := form.Validate(); fieldErrors != nil {
		if form.ImageURL != nil {
			utils.DeleteImage(*form.ImageURL)
		}
		utils.WriteValidationErrors(w, "Validation failed", fieldErrors)
		return
	}

	post := models.Post{
		AuthorID: userID,
		Content:  form.Content,
		ImageURL: form.ImageURL,
	}

	if err := h.db.Create(&post).Error; err != nil {
		logrus.WithError(err).Error("Error creating post")
		if form.ImageURL != nil {
			utils.DeleteImage(*form.ImageURL)
		}
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create post")
		return
	}

	var author models.User
	if err := h.db.First(&author, "id = ?", userID).Error; err != nil {
		logrus.WithError(err).Error("Error loading post author")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create post")
		return
	}

	view := PostView{
		ID:        post.ID,
		Content:   post.Content,
		ImageURL:  post.ImageURL,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
		Author:    author.Ref(),
		LikeCount: 0,
		IsLiked:   false,
		LikedBy:   []models.UserRef{},
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Post created successfully",
		"post":    view,
	})
}

// TogglePostLike flips the viewer's like on a post.
func (h *Handler) TogglePostLike(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	postID := mux.Vars(r)["postId"]

	var post models.Post
	if err := h.db.First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Post not found")
			return
		}
		logrus.WithError(err).Error("Error looking up post")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to toggle like")
		return
	}

	if h.rateLimited(w, fmt.Sprintf("like:%s", userID), likeToggleLimit) {
		return
	}

	h.toggle(w, userID, post.ID, models.TargetTypePost)
}

// ToggleCommentLike flips the viewer's like on a comment or reply.
func (h *Handler) ToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	commentID := mux.Vars(r)["commentId"]

	// Replies share the comment like namespace; accept either kind of id.
	if !h.commentTargetExists(commentID) {
		utils.WriteError(w, http.StatusNotFound, "Comment not found")
		return
	}

	if h.rateLimited(w, fmt.Sprintf("like:%s", userID), likeToggleLimit) {
		return
	}

	h.toggle(w, userID, commentID, models.TargetTypeComment)
}

func (h *Handler) commentTargetExists(id string) bool {
	var count int64
	h.db.Model(&models.Comment{}).Where("id = ?", id).Count(&count)
	if count > 0 {
		return true
	}
	h.db.Model(&models.Reply{}).Where("id = ?", id).Count(&count)
	return count > 0
}

func (h *Handler) toggle(w http.ResponseWriter, userID, targetID, targetType string) {
	liked, err := toggleLike(h.db, userID, targetID, targetType)
	if err != nil {
		logrus.WithError(err).Error("Error toggling like")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to toggle like")
		return
	}

	message := "Unliked"
	if liked {
		message = "Liked"
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": message,
		"liked":   liked,
	})
}

// GetComments returns the full comment tree for a post.
func (h *Handler) GetComments(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["postId"]
	viewerID := utils.ViewerID(r)

	clientID := viewerID
	if clientID == "" {
		clientID = r.Header.Get("X-Forwarded-For")
	}
	if clientID == "" {
		clientID = r.RemoteAddr
	}
	if h.rateLimited(w, fmt.Sprintf("comments:%s", clientID), commentReadLimit) {
		return
	}

	comments, err := getTree(h.db, postID, viewerID)
	if err != nil {
		logrus.WithError(err).Error("Error assembling comment tree")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch comments")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"comments": comments,
	})
}

type createCommentRequest struct {
	Content string `json:"content"`
}

func (req *createCommentRequest) Validate() map[string]string {
	if req.Content == "" {
		return map[string]string{"content": "Comment cannot be empty"}
	}
	return nil
}

// AddComment creates a comment on a post.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	postID := mux.Vars(r)["postId"]

	var post models.Post
	if err := h.db.First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Post not found")
			return
		}
		logrus.WithError(err).Error("Error looking up post")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create comment")
		return
	}

	if h.rateLimited(w, fmt.Sprintf("comment:create:%s", userID), commentCreateLimit) {
		return
	}

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteValidationErrors(w, "Validation failed", map[string]string{
			"body": "Invalid JSON payload",
		})
		return
	}
	req.Content = utils.SanitizeInput(req.Content)

	if fieldErrors := req.Validate(); fieldErrors != nil {
		utils.WriteValidationErrors(w, "Validation failed", fieldErrors)
		return
	}

	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: userID,
		Content:  req.Content,
	}

	if err := h.db.Create(&comment).Error; err != nil {
		logrus.WithError(err).Error("Error creating comment")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create comment")
		return
	}

	var author models.User
	if err := h.db.First(&author, "id = ?", userID).Error; err != nil {
		logrus.WithError(err).Error("Error loading comment author")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create comment")
		return
	}

	view := CommentView{
		ID:        comment.ID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		Author:    author.Ref(),
		LikeCount: 0,
		IsLiked:   false,
		LikedBy:   []models.UserRef{},
		Replies:   []ReplyView{},
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Comment created successfully",
		"comment": view,
	})
}

// AddReply creates a reply under a comment.
func (h *Handler) AddReply(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	commentID := mux.Vars(r)["commentId"]

	var comment models.Comment
	if err := h.db.First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Comment not found")
			return
		}
		logrus.WithError(err).Error("Error looking up comment")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create reply")
		return
	}

	if h.rateLimited(w, fmt.Sprintf("reply:create:%s", userID), replyCreateLimit) {
		return
	}

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteValidationErrors(w, "Validation failed", map[string]string{
			"body": "Invalid JSON payload",
		})
		return
	}
	req.Content = utils.SanitizeInput(req.Content)

	if req.Content == "" {
		utils.WriteValidationErrors(w, "Validation failed", map[string]string{
			"content": "Reply cannot be empty",
		})
		return
	}

	reply := models.Reply{
		CommentID: comment.ID,
		AuthorID:  userID,
		Content:   req.Content,
	}

	if err := h.db.Create(&reply).Error; err != nil {
		logrus.WithError(err).Error("Error creating reply")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create reply")
		return
	}

	var author models.User
	if err := h.db.First(&author, "id = ?", userID).Error; err != nil {
		logrus.WithError(err).Error("Error loading reply author")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create reply")
		return
	}

	view := ReplyView{
		ID:        reply.ID,
		Content:   reply.Content,
		CreatedAt: reply.CreatedAt,
		Author:    author.Ref(),
		LikeCount: 0,
		IsLiked:   false,
		LikedBy:   []models.UserRef{},
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Reply created successfully",
		"reply":   view,
	})
}

// ServeImage serves an uploaded post image.
func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	if containsDotDot(filename) {
		utils.WriteError(w, http.StatusBadRequest, "Invalid path")
		return
	}

	imagePath := filepath.Join(utils.ImagePath, filepath.Clean(filename))

	if _, err := os.Stat(imagePath); os.IsNotExist(err) {
		utils.WriteError(w, http.StatusNotFound, "Image not found")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, imagePath)
}

func containsDotDot(v string) bool {
	if !filepath.IsAbs(v) {
		v = filepath.Clean(filepath.Join("/", v))
	}
	return filepath.Clean(v) != v
}

// rateLimited consults the limiter and writes the 429 response when the
// window is exhausted.
func (h *Handler) rateLimited(w http.ResponseWriter, key string, max int) bool {
	res := h.limiter.Check(key, max, limitWindow)
	if res.Allowed {
		return false
	}

	retryAfter := int(time.Until(res.ResetTime).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	utils.WriteError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
	return true
}
