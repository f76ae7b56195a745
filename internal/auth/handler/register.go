package handler

import (
	"errors"
	"net/http"

	"link-service/internal/account"
	"link-service/internal/session"

	"github.com/gin-gonic/gin"
)

type signupRequest struct {
	Email    string `json:"email" form:"email"`
	Name     string `json:"name" form:"name"`
	Password string `json:"password" form:"password"`
}

func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"Error": "invalid request"})
		return
	}

	_, err := h.sessions.Signup(
		c.Request.Context(),
		req.Email,
		req.Name,
		req.Password,
	)

	if err != nil {
		switch {
		case errors.Is(err, account.ErrDuplicateEmail):
			c.JSON(http.StatusInternalServerError, gin.H{"Error": "User already exists"})
		case errors.Is(err, session.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"Error": err.Error()})
		default:
			c.JSON(http.StatusNotFound, gin.H{"Error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"Error": "None"})
}
