package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chocomania/backend/internal/auth"
	"github.com/chocomania/backend/internal/domain/user"
)

type registerRequest struct {
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=6"`
	Nombre        string `json:"nombre"`
	Direccion     string `json:"direccion"`
	Comuna        string `json:"comuna"`
	Telefono      string `json:"telefono"`
	RecibirPromos bool   `json:"recibir_promos"`
}

type userResponse struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Rol    string `json:"rol"`
	Nombre string `json:"nombre"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Rol: string(u.Rol), Nombre: u.Nombre}
}

func (h *Handler) registerUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	u, err := h.auth.Register(c.Request.Context(), auth.RegisterInput{
		Email:         req.Email,
		Password:      req.Password,
		Nombre:        req.Nombre,
		Direccion:     req.Direccion,
		Comuna:        req.Comuna,
		Telefono:      req.Telefono,
		RecibirPromos: req.RecibirPromos,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(u))
}

type tokenRequest struct {
	Email    string `json:"email" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

func (h *Handler) issueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	token, u, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"usuario":      toUserResponse(u),
	})
}
