package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rahul/acadcore/internal/app/models"
	"github.com/rahul/acadcore/internal/app/models/dto"
	"github.com/rahul/acadcore/internal/app/repositories"
	"github.com/rahul/acadcore/internal/app/views"
	"github.com/rahul/acadcore/internal/middleware"
)

// MarkController exposes the mark collection with resolved display labels.
type MarkController struct {
	registry *views.Registry
}

// NewMarkController creates a new MarkController
func NewMarkController(registry *views.Registry) *MarkController {
	return &MarkController{registry: registry}
}

// List returns all marks, most recent first, with student and subject
// labels resolved from the freshly fetched collections.
func (c *MarkController) List(ctx *gin.Context) {
	sess := middleware.SessionFrom(ctx)
	view := c.registry.For(sess.UserID).Marks

	if err := view.Refresh(ctx.Request.Context(), sess); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewDataResponse(view.State().Records))
}

// Create records a mark. Faculty or admin.
func (c *MarkController) Create(ctx *gin.Context) {
	sess := middleware.SessionFrom(ctx)

	var mark models.Mark
	if err := ctx.ShouldBindJSON(&mark); err != nil {
		badRequest(ctx, "Invalid mark data", err)
		return
	}

	view := c.registry.For(sess.UserID).Marks
	if err := view.Create(ctx.Request.Context(), sess, mark); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewDataResponse(view.State().Records))
}

// Update applies a partial update. Faculty or admin.
func (c *MarkController) Update(ctx *gin.Context) {
	sess := middleware.SessionFrom(ctx)

	var patch repositories.MarkPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		badRequest(ctx, "Invalid mark patch", err)
		return
	}

	view := c.registry.For(sess.UserID).Marks
	if err := view.Update(ctx.Request.Context(), sess, ctx.Param("id"), patch); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewDataResponse(view.State().Records))
}

// Delete removes a mark. Faculty or admin.
func (c *MarkController) Delete(ctx *gin.Context) {
	sess := middleware.SessionFrom(ctx)

	view := c.registry.For(sess.UserID).Marks
	if err := view.Remove(ctx.Request.Context(), sess, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewDataResponse(view.State().Records))
}
