package handler

import (
	"errors"
	"net/http"

	"link-service/internal/account"
	"link-service/internal/auth/credentials"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type loginResponse struct {
	account.Public
	SessionToken string `json:"sessionToken"`
	Error        string `json:"Error"`
	Login        bool   `json:"Login"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"Error": "invalid request", "Login": false})
		return
	}

	res, err := h.sessions.Login(
		c.Request.Context(),
		req.Email,
		req.Password,
	)

	if err != nil {
		switch {
		case errors.Is(err, account.ErrNotFound):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"Error": "user doesn't exist", "Login": false})
		case errors.Is(err, credentials.ErrBadCredentials):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"Error": "Password Incorrect", "Login": false})
		default:
			c.JSON(http.StatusNotFound, gin.H{"Error": err.Error(), "Login": false})
		}
		return
	}

	h.sessions.SetCookie(c.Writer, res)

	c.JSON(http.StatusOK, loginResponse{
		Public:       res.Account.Public(),
		SessionToken: res.Token,
		Error:        "None",
		Login:        true,
	})
}

// Logout drops the session cookie. Tokens are stateless, so a copy
// kept elsewhere stays valid until it expires.
func (h *Handler) Logout(c *gin.Context) {
	h.sessions.ClearCookie(c.Writer)

	// Idempotent response
	c.Status(http.StatusNoContent)
}
