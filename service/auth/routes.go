package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/KBoadi/Ripple-server/cmd/models"
	"github.com/KBoadi/Ripple-server/cmd/utils"
)

const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/register", h.HandleRegister).Methods("POST")
	router.HandleFunc("/auth/login", h.HandleLogin).Methods("POST")
	router.HandleFunc("/auth/logout", h.HandleLogout).Methods("POST")
	router.HandleFunc("/auth/me", utils.AuthMiddleware(h.HandleMe)).Methods("GET")
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *credentialsRequest) Validate() map[string]string {
	fieldErrors := make(map[string]string)
	if req.Email == "" {
		fieldErrors["email"] = "Email is required"
	} else if !emailPattern.MatchString(req.Email) {
		fieldErrors["email"] = "Please enter a valid email address"
	}
	if req.Password == "" {
		fieldErrors["password"] = "Password is required"
	} else if len(req.Password) < 8 {
		fieldErrors["password"] = "Password must be at least 8 characters long"
	}
	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteValidationErrors(w, "Please fix the highlighted errors", map[string]string{
			"body": "Invalid JSON payload",
		})
		return
	}

	if fieldErrors := req.Validate(); fieldErrors != nil {
		utils.WriteValidationErrors(w, "Please fix the highlighted errors", fieldErrors)
		return
	}

	var existing models.User
	result := h.db.Where("email = ?", req.Email).First(&existing)
	if result.Error == nil {
		utils.WriteError(w, http.StatusConflict, "An account with this email already exists")
		return
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		logrus.WithError(result.Error).Error("Error checking existing user")
		utils.WriteError(w, http.StatusInternalServerError, "An error occurred during registration")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		logrus.WithError(err).Error("Error hashing password")
		utils.WriteError(w, http.StatusInternalServerError, "An error occurred during registration")
		return
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: string(passwordHash),
	}

	if err := h.db.Create(&user).Error; err != nil {
		logrus.WithError(err).Error("Error creating user")
		utils.WriteError(w, http.StatusInternalServerError, "An error occurred during registration")
		return
	}

	token, err := utils.CreateToken(user.ID, user.Email)
	if err != nil {
		logrus.WithError(err).Error("Error creating session token")
		utils.WriteError(w, http.StatusInternalServerError, "An error occurred during registration")
		return
	}

	utils.SetAuthCookie(w, token)
	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Registration successful",
		"user":    user.Ref(),
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteValidationErrors(w, "Please fix the highlighted errors", map[string]string{
			"body": "Invalid JSON payload",
		})
		return
	}

	if fieldErrors := req.Validate(); fieldErrors != nil {
		utils.WriteValidationErrors(w, "Please fix the highlighted errors", fieldErrors)
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		logrus.WithError(err).Error("Error looking up user")
		utils.WriteError(w, http.StatusInternalServerError, "An error occurred during login")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := utils.CreateToken(user.ID, user.Email)
	if err != nil {
		logrus.WithError(err).Error("Error creating session token")
		utils.WriteError(w, http.StatusInternalServerError, "An error occurred during login")
		return
	}

	utils.SetAuthCookie(w, token)
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"user":    user.Ref(),
	})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	utils.ClearAuthCookie(w)
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out",
	})
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		logrus.WithError(err).Error("Error loading user")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user": user.Ref(),
	})
}
