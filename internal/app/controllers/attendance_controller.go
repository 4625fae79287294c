package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rahul/acadcore/internal/app/models"
	"github.com/rahul/acadcore/internal/app/models/dto"
	"github.com/rahul/acadcore/internal/app/views"
	"github.com/rahul/acadcore/internal/middleware"
	"github.com/rahul/acadcore/internal/pkg/apperrors"
)

// AttendanceController exposes the attendance collection: list, natural-key
// save, per-record toggle and delete.
type AttendanceController struct {
	registry *views.Registry
}

// NewAttendanceController creates a new AttendanceController
func NewAttendanceController(registry *views.Registry) *AttendanceController {
	return &AttendanceController{registry: registry}
}

// List returns all attendance records, most recent date first, with labels.
func (c *AttendanceController) List(ctx *gin.Context) {
	sess := middleware.SessionFrom(ctx)
	view := c.registry.For(sess.UserID).Attendance

	if err := view.Refresh(ctx.Request.Context(), sess); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewDataResponse(view.State().Records))
}

// Save upserts the record for the request's (student, subject, date) triple.
// Saving the same triple twice overwrites the present flag instead of
// creating a second row.
func (c *AttendanceController) Save(ctx *gin.Context) {
	sess := middleware.SessionFrom(ctx)

	var req dto.SaveAttendanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid attendance data", err)
		return
	}

	date, err := time.Parse(models.DateLayout, req.Date)
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("date must be YYYY-MM-DD"))
		return
	}

	record := models.Attendance{
		StudentID: req.StudentID,
		SubjectID: req.SubjectID,
		Date:      date,
		Present:   req.Present,
	}

	view := c.registry.For(sess.UserID).Attendance
	if err := view.Save(ctx.Request.Context(), sess, record); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewDataResponse(view.State().Records))
}

// Toggle flips the present flag of an existing record.
func (c *AttendanceController) Toggle(ctx *gin.Context) {
	sess := middleware.SessionFrom(ctx)

	var req dto.ToggleAttendanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid toggle payload", err)
		return
	}

	record := models.Attendance{ID: ctx.Param("id"), Present: req.Present}

	view := c.registry.For(sess.UserID).Attendance
	if err := view.Toggle(ctx.Request.Context(), sess, record); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewDataResponse(view.State().Records))
}

// Delete removes an attendance record. Faculty or admin.
func (c *AttendanceController) Delete(ctx *gin.Context) {
	sess := middleware.SessionFrom(ctx)

	view := c.registry.For(sess.UserID).Attendance
	if err := view.Remove(ctx.Request.Context(), sess, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewDataResponse(view.State().Records))
}
