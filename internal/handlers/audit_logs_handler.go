package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/httperr"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	repo domain.Repository
}

func NewAuditLogsHandler(repo domain.Repository) *AuditLogsHandler {
	return &AuditLogsHandler{repo: repo}
}

// List is mounted behind the admin role check.
func (h *AuditLogsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	f := domain.AuditFilter{
		Action: c.Query("action"),
		Entity: c.Query("entity"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if raw := c.Query("entity_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_entity_id", "entity_id must be a positive integer.")
			return
		}
		eid := uint(id)
		f.EntityID = &eid
	}

	logs, total, err := h.repo.ListAuditLogs(c.Request.Context(), f)
	if err != nil {
		httperr.Internal(c, "audit_list_failed", "Could not list audit logs.")
		return
	}

	c.JSON(200, gin.H{
		"page":  page,
		"limit": limit,
		"total": total,
		"logs":  logs,
	})
}
