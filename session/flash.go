package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const FlashCookieName = "flash"

// SetFlash stores a one-time message to show on the next rendered page.
func SetFlash(c *gin.Context, message string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookieName, message, 60, "/", "", false, true)
}

// PopFlash returns the pending message, if any, and clears it.
func PopFlash(c *gin.Context) string {
	message, err := c.Cookie(FlashCookieName)
	if err != nil || message == "" {
		return ""
	}
	c.SetCookie(FlashCookieName, "", -1, "/", "", false, true)
	return message
}
