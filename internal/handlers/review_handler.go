package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/httpresp"
	ucReview "github.com/Horridhunk/carmannagement/internal/usecase/review"
)

type ReviewHandler struct {
	reviews *ucReview.Service
}

func NewReviewHandler(reviews *ucReview.Service) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

type AddReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

func (h *ReviewHandler) Add(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req AddReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	r, err := h.reviews.Add(c.Request.Context(), p, orderID, req.Rating, req.Comment)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, r)
}

func (h *ReviewHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	reviews, err := h.reviews.List(c.Request.Context(), p)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, reviews)
}
