package handler

import (
	"errors"
	"fmt"
	"net/http"

	"link-service/internal/account"
	"link-service/internal/auth/linkage"
	"link-service/internal/logger"
	"link-service/internal/middleware"
	"link-service/internal/session"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	linker           *linkage.Orchestrator
	sessions         *session.Service
	loginRedirectURL string
}

func NewHandler(
	linker *linkage.Orchestrator,
	sessions *session.Service,
	loginRedirectURL string,
) *Handler {
	return &Handler{
		linker:           linker,
		sessions:         sessions,
		loginRedirectURL: loginRedirectURL,
	}
}

// RegisterRoutes mounts every route; requireAuth guards the ones that
// need a session.
func (h *Handler) RegisterRoutes(r *gin.Engine, requireAuth gin.HandlerFunc) {
	r.GET("/provider/login", h.providerLogin)
	r.GET("/provider/callback/:email", h.callback)
	r.DELETE("/provider/logout", h.providerLogout)

	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)

	r.GET("/me", requireAuth, h.Me)

	for _, route := range r.Routes() {
		logger.Debug("route registered", map[string]any{
			"method": route.Method,
			"path":   route.Path,
		})
	}
}

func (h *Handler) providerLogin(c *gin.Context) {
	loginURL, err := h.linker.LoginURL(c.Query("email"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"Error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"loginUrl": loginURL,
	})
}

func (h *Handler) callback(c *gin.Context) {
	email := c.Param("email")

	// User declined consent or the provider reported a failure
	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("provider callback returned error", map[string]any{
			"email": email,
			"error": errParam,
			"desc":  c.Query("error_description"),
		})

		c.JSON(http.StatusNotFound, gin.H{
			"Error": fmt.Sprintf("authorization denied: %s", errParam),
		})
		return
	}

	if _, err := h.linker.Link(c.Request.Context(), email, c.Query("code")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"Error": err.Error(),
		})
		return
	}

	c.Redirect(http.StatusFound, h.loginRedirectURL)
}

func (h *Handler) providerLogout(c *gin.Context) {
	acct, err := h.linker.Unlink(c.Request.Context(), c.Query("email"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"Error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, acct.Public())
}

// Me returns the account behind the current session.
func (h *Handler) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"Error": "unauthorized"})
		return
	}

	acct, err := h.sessions.Lookup(c.Request.Context(), claims)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, account.ErrNotFound) {
			status = http.StatusUnauthorized
		}
		c.JSON(status, gin.H{"Error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, acct.Public())
}
