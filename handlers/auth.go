package handlers

import (
	"context"
	"errors"
	"net/http"

	"echochats/images"
	"echochats/models"
	"echochats/store"
	"echochats/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid username or password"

type SignupRequest struct {
	Email    string `form:"email" binding:"required"`
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		h.redirectWithFlash(c, "/signup", "All fields are required")
		return
	}

	file, err := c.FormFile("profile_pic")
	if err != nil || !images.AllowedFile(file.Filename) {
		h.redirectWithFlash(c, "/signup", "Please upload a valid image file (png, jpg, jpeg, gif)")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), uploadTimeout)
	defer cancel()

	// The unique index is the real guard; this check only avoids storing an
	// upload for a signup that is bound to fail.
	_, err = h.Users.FindByUsername(ctx, req.Username)
	if err == nil {
		h.redirectWithFlash(c, "/signup", "Username already exists")
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		h.pageError(c, err, "Failed to check username")
		return
	}

	profilePic, err := h.Images.Save(ctx, file)
	if err != nil {
		h.pageError(c, err, "Failed to store profile picture")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.discardUpload(ctx, profilePic)
		h.pageError(c, err, "Failed to hash password")
		return
	}

	user := &models.User{
		Email:      req.Email,
		Username:   req.Username,
		Password:   string(hashed),
		ProfilePic: profilePic,
	}
	err = h.Users.Create(ctx, user)
	if err != nil {
		h.discardUpload(ctx, profilePic)
	}
	if errors.Is(err, store.ErrUsernameTaken) {
		h.redirectWithFlash(c, "/signup", "Username already exists")
		return
	}
	if err != nil {
		h.pageError(c, err, "Failed to create user")
		return
	}

	utils.LogSuccessWithUser(user.Username, "User signed up")
	h.redirectWithFlash(c, "/login", "Signup successful, you can now log in")
}

// Login answers every failure with the same message so that unknown
// usernames and wrong passwords look alike.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.redirectWithFlash(c, "/login", invalidCredentials)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	user, err := h.Users.FindByUsername(ctx, req.Username)
	if errors.Is(err, store.ErrNotFound) {
		h.redirectWithFlash(c, "/login", invalidCredentials)
		return
	}
	if err != nil {
		h.pageError(c, err, "Failed to look up user")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		h.redirectWithFlash(c, "/login", invalidCredentials)
		return
	}

	if err := h.Sessions.Start(c, user.Username); err != nil {
		h.pageError(c, err, "Failed to start session")
		return
	}

	utils.LogSuccessWithUser(user.Username, "User logged in")
	h.redirectWithFlash(c, "/home", "Login successful!")
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.Sessions.End(c); err != nil {
		utils.LogError(err, "Failed to end session")
	}
	h.redirectWithFlash(c, "/login", "You have been logged out")
}

func (h *Handler) SignupPage(c *gin.Context) {
	h.render(c, "signup.html", "Sign up", nil)
}

func (h *Handler) LoginPage(c *gin.Context) {
	h.render(c, "login.html", "Log in", nil)
}

func (h *Handler) Index(c *gin.Context) {
	h.render(c, "index.html", "EchoChats", nil)
}

func (h *Handler) Home(c *gin.Context) {
	h.render(c, "home.html", "Home", nil)
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
