package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/httpresp"
	"github.com/Horridhunk/carmannagement/internal/reporting"
)

type ReportingHandler struct {
	reports *reporting.Service
}

func NewReportingHandler(reports *reporting.Service) *ReportingHandler {
	return &ReportingHandler{reports: reports}
}

func (h *ReportingHandler) Dashboard(c *gin.Context) {
	stats, err := h.reports.Dashboard(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, stats)
}

// Analytics accepts ?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *ReportingHandler) Analytics(c *gin.Context) {
	start, end, err := h.reports.ParseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	a, err := h.reports.Analytics(c.Request.Context(), start, end)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, a)
}
