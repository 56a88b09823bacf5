package handlers

import (
	"context"
	"errors"

	"echochats/images"
	"echochats/middleware"
	"echochats/store"
	"echochats/utils"

	"github.com/gin-gonic/gin"
)

// Profile renders the logged-in user's page. Routes guard it with
// middleware.RequireLogin.
func (h *Handler) Profile(c *gin.Context) {
	username, _ := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	user, err := h.Users.FindByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		h.endStaleSession(c, username)
		return
	}
	if err != nil {
		h.pageError(c, err, "Failed to load profile")
		return
	}

	h.render(c, "user.html", user.Username, gin.H{"User": user})
}

func (h *Handler) ChangeProfilePic(c *gin.Context) {
	username, _ := middleware.CurrentUser(c)

	file, err := c.FormFile("new_profile_pic")
	if err != nil {
		h.redirectWithFlash(c, "/user", "No file uploaded")
		return
	}
	if !images.AllowedFile(file.Filename) {
		h.redirectWithFlash(c, "/user", "Invalid file type")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), uploadTimeout)
	defer cancel()

	profilePic, err := h.Images.Save(ctx, file)
	if err != nil {
		h.pageError(c, err, "Failed to store profile picture")
		return
	}

	if err := h.Users.UpdateProfilePic(ctx, username, profilePic); err != nil {
		h.discardUpload(ctx, profilePic)
		h.pageError(c, err, "Failed to update profile picture")
		return
	}

	utils.LogSuccessWithUser(username, "Profile picture updated")
	h.redirectWithFlash(c, "/user", "Profile picture updated successfully!")
}

// DeleteAccount removes the user record and every session it owns. Comments
// and replies already written stay on the board.
func (h *Handler) DeleteAccount(c *gin.Context) {
	username, _ := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if err := h.Users.Delete(ctx, username); err != nil {
		h.pageError(c, err, "Failed to delete account")
		return
	}
	if err := h.Sessions.EndAll(c, username); err != nil {
		utils.LogErrorWithUser(username, err, "Failed to end sessions of deleted account")
	}

	utils.LogSuccessWithUser(username, "Account deleted")
	h.redirectWithFlash(c, "/signup", "Your account has been deleted.")
}

// endStaleSession handles a live session whose user record is gone.
func (h *Handler) endStaleSession(c *gin.Context, username string) {
	if err := h.Sessions.EndAll(c, username); err != nil {
		utils.LogErrorWithUser(username, err, "Failed to end stale session")
	}
	h.redirectWithFlash(c, "/login", "Please log in first")
}
