package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/httperr"
)

type MeHandler struct {
	repo domain.Repository
}

func NewMeHandler(repo domain.Repository) *MeHandler {
	return &MeHandler{repo: repo}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	resp := gin.H{"role": p.Role, "id": p.ID}

	switch p.Role {
	case auth.RoleClient:
		client, err := h.repo.GetClient(c.Request.Context(), p.ID)
		if err != nil {
			httperr.Unauthorized(c, "account_not_found", "Account no longer exists.")
			return
		}
		resp["client"] = client

	case auth.RoleWasher:
		washer, err := h.repo.GetWasher(c.Request.Context(), p.ID)
		if err != nil {
			httperr.Unauthorized(c, "account_not_found", "Account no longer exists.")
			return
		}
		resp["washer"] = washer
	}

	c.JSON(http.StatusOK, resp)
}
