package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type signUpRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type signInRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  signUpRequest  true  "Credentials"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /auth/sign-up [post]
func (h *Handler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	id, err := h.services.SignUp(req.Username, req.Password)
	if err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, "failed to sign up", "sign_up_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// @Summary      Obtain an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  signInRequest  true  "Credentials"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	token, err := h.services.GenerateToken(req.Username, req.Password)
	if err != nil {
		h.logAndJSONError(c, http.StatusUnauthorized, "invalid credentials", "sign_in_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
