package repositories

import (
	"context"

	"github.com/rahul/acadcore/internal/app/models"
	"github.com/rahul/acadcore/internal/app/policy"
	"github.com/rahul/acadcore/internal/pkg/apperrors"
	"github.com/rahul/acadcore/internal/pkg/validation"
	"github.com/rahul/acadcore/internal/session"
	"github.com/rahul/acadcore/internal/store"
)

// AttendanceRepository handles store operations for attendance records,
// including the natural-key upsert.
type AttendanceRepository struct {
	store store.Store
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(st store.Store) *AttendanceRepository {
	return &AttendanceRepository{store: st}
}

// List retrieves all attendance records, most recent date first.
func (r *AttendanceRepository) List(ctx context.Context, sess session.Session) ([]models.Attendance, error) {
	if err := policy.Check(sess.Role, policy.ActionRead, policy.ResourceAttendance); err != nil {
		return nil, err
	}

	rows, err := r.store.Query(ctx, store.CollectionAttendance, store.Options{
		OrderBy: store.Desc("date"),
	})
	if err != nil {
		return nil, err
	}

	records := make([]models.Attendance, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.AttendanceFromRow(row))
	}
	return records, nil
}

// Upsert ensures exactly one attendance record exists for the record's
// (student, subject, date) triple: created when absent, its present flag
// overwritten when already there. One atomic store call keyed on the
// composite constraint, so two concurrent sessions marking the same triple
// cannot produce duplicate rows. Safe to retry.
func (r *AttendanceRepository) Upsert(ctx context.Context, sess session.Session, record models.Attendance) error {
	if err := policy.Check(sess.Role, policy.ActionCreate, policy.ResourceAttendance); err != nil {
		return err
	}

	if err := validation.Struct(record); err != nil {
		return err
	}
	if record.Date.IsZero() {
		return apperrors.NewValidationError("date is required")
	}

	_, err := r.store.Upsert(ctx, store.CollectionAttendance, record.ToRow(), models.AttendanceConflictColumns)
	return err
}

// Toggle flips the present flag of an existing record by id. Identity
// columns (student, subject, date) are never resent.
func (r *AttendanceRepository) Toggle(ctx context.Context, sess session.Session, record models.Attendance) error {
	if err := policy.Check(sess.Role, policy.ActionToggle, policy.ResourceAttendance); err != nil {
		return err
	}
	if record.ID == "" {
		return apperrors.NewValidationError("record id is required")
	}

	_, err := r.store.Update(ctx, store.CollectionAttendance, record.ID, store.Row{
		"present": !record.Present,
	})
	return err
}

// Delete removes an attendance record. Faculty or admin.
func (r *AttendanceRepository) Delete(ctx context.Context, sess session.Session, id string) error {
	if err := policy.Check(sess.Role, policy.ActionDelete, policy.ResourceAttendance); err != nil {
		return err
	}
	return r.store.Delete(ctx, store.CollectionAttendance, id)
}
