package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"licensedesk/internal/api/web"
)

const (
	flashCookie = "licensedesk_flash"
	flashMaxAge = 60

	FlashSuccess = "success"
	FlashError   = "error"
)

// SetFlash stores a message to be shown on the next page render.
func SetFlash(c *gin.Context, kind, message string) {
	raw, err := json.Marshal(web.Flash{Kind: kind, Message: message})
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(raw), flashMaxAge, "/", "", false, true)
}

// PopFlash returns the pending message, if any, and clears it. A cookie that
// does not decode is dropped silently.
func PopFlash(c *gin.Context) *web.Flash {
	value, err := c.Cookie(flashCookie)
	if err != nil || value == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var f web.Flash
	if err := json.Unmarshal(raw, &f); err != nil || f.Message == "" {
		return nil
	}
	return &f
}

// redirectWithFlash finishes a form post: flash the outcome, then 303 back to
// the console.
func redirectWithFlash(c *gin.Context, kind, message string) {
	SetFlash(c, kind, message)
	c.Redirect(http.StatusSeeOther, "/")
}

func redirectWithError(c *gin.Context, prefix string, err error) {
	redirectWithFlash(c, FlashError, prefix+": "+describe(err))
}
