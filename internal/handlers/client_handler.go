package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/httpresp"
	ucAccount "github.com/Horridhunk/carmannagement/internal/usecase/account"
)

type ClientHandler struct {
	manage *ucAccount.ManageClients
}

func NewClientHandler(manage *ucAccount.ManageClients) *ClientHandler {
	return &ClientHandler{manage: manage}
}

// ======================================================
// LIST CLIENTS (ADMIN)
// ======================================================
func (h *ClientHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	clients, err := h.manage.List(c.Request.Context(), p)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, clients)
}

// ======================================================
// DELETE CLIENT (ADMIN)
// ======================================================
func (h *ClientHandler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.manage.Delete(c.Request.Context(), p, id); err != nil {
		httperr.Respond(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
