package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paylink_backend/internal/middleware"
	"paylink_backend/internal/services"
)

type WalletHandler struct {
	*BaseHandler
	wallets services.WalletDirectory
}

func NewWalletHandler(base *BaseHandler, wallets services.WalletDirectory) *WalletHandler {
	return &WalletHandler{
		BaseHandler: base,
		wallets:     wallets,
	}
}

func (h *WalletHandler) RegisterRoutes(r *gin.RouterGroup) {
	wallets := r.Group("/wallets")
	wallets.Use(middleware.AuthMiddleware())
	{
		wallets.PUT("", h.Set)
		wallets.GET("", h.List)
	}
}

type setWalletBody struct {
	Network string `json:"network" validate:"required"`
	Address string `json:"address" validate:"required"`
}

func (h *WalletHandler) Set(c *gin.Context) {
	var body setWalletBody
	if !h.BindAndValidateJSON(c, &body) {
		return
	}

	wallet, err := h.wallets.SetAddress(c.Request.Context(), middleware.CurrentUserID(c), body.Network, body.Address)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

func (h *WalletHandler) List(c *gin.Context) {
	wallets, err := h.wallets.List(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallets": wallets, "total": len(wallets)})
}
