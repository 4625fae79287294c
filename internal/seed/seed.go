// Package seed creates default records on startup: the admin profile named
// in config and, when seeding is enabled, a small set of sample students and
// subjects for fresh installs.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rahul/acadcore/internal/app/models"
	"github.com/rahul/acadcore/internal/config"
	"github.com/rahul/acadcore/internal/pkg/apperrors"
	"github.com/rahul/acadcore/internal/pkg/logger"
	"github.com/rahul/acadcore/internal/store"
)

// CreateDefaultData seeds the admin profile and sample records. Conflicts
// with rows that already exist are skipped, so running it on every startup
// is safe.
func CreateDefaultData(ctx context.Context, st store.Store, cfg *config.Config) error {
	var finalErr error

	if cfg.Seed.AdminUserID != "" {
		if err := seedAdminProfile(ctx, st, cfg.Seed.AdminUserID, cfg.Seed.AdminEmail); err != nil {
			logger.Error().Err(err).Msg("Error seeding admin profile")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if cfg.Seed.Enabled {
		if err := seedSampleRecords(ctx, st); err != nil {
			logger.Error().Err(err).Msg("Error seeding sample records")
			finalErr = errors.Join(finalErr, err)
		}
	}

	return finalErr
}

// seedAdminProfile grants the admin role to the configured identity user.
// An existing profile for that user keeps its current role.
func seedAdminProfile(ctx context.Context, st store.Store, userID, email string) error {
	rows, err := st.Query(ctx, store.CollectionProfiles, store.Options{
		Filters: []store.Filter{store.Eq("id", userID)},
	})
	if err != nil {
		return fmt.Errorf("failed to look up admin profile: %w", err)
	}
	if len(rows) > 0 {
		logger.Debug().Str("userID", userID).Msg("Admin profile already exists, skipping")
		return nil
	}

	profile := models.Profile{
		ID:       userID,
		Email:    email,
		FullName: "Administrator",
		Role:     models.RoleAdmin,
	}
	if _, err := st.Insert(ctx, store.CollectionProfiles, profile.ToRow()); err != nil {
		if apperrors.KindOf(err) == apperrors.KindConflict {
			return nil
		}
		return fmt.Errorf("failed to create admin profile: %w", err)
	}

	logger.Info().Str("userID", userID).Msg("Default admin profile created")
	return nil
}

// seedSampleRecords inserts a handful of students and subjects so a fresh
// install has something to show. Duplicate admission numbers and subject
// codes are skipped.
func seedSampleRecords(ctx context.Context, st store.Store) error {
	logger.Info().Msg("Checking/Creating sample records...")
	var finalErr error

	students := []models.Student{
		{AdmissionNo: "ADM2024001", FirstName: "Asha", LastName: "Verma", Branch: "CSE", Year: 2},
		{AdmissionNo: "ADM2024002", FirstName: "Rohan", LastName: "Iyer", Branch: "ECE", Year: 1},
		{AdmissionNo: "ADM2024003", FirstName: "Meera", LastName: "Nair", Branch: "CSE", Year: 3},
	}
	for _, s := range students {
		if _, err := st.Insert(ctx, store.CollectionStudents, s.ToRow()); err != nil {
			if apperrors.KindOf(err) == apperrors.KindConflict {
				continue
			}
			logger.Error().Err(err).Str("admissionNo", s.AdmissionNo).Msg("Error creating sample student")
			finalErr = errors.Join(finalErr, err)
		}
	}

	subjects := []models.Subject{
		{Code: "CS101", Name: "Introduction to Programming", Credits: 4},
		{Code: "MA102", Name: "Linear Algebra", Credits: 3},
		{Code: "EC201", Name: "Digital Circuits", Credits: 3},
	}
	for _, s := range subjects {
		if _, err := st.Insert(ctx, store.CollectionSubjects, s.ToRow()); err != nil {
			if apperrors.KindOf(err) == apperrors.KindConflict {
				continue
			}
			logger.Error().Err(err).Str("code", s.Code).Msg("Error creating sample subject")
			finalErr = errors.Join(finalErr, err)
		}
	}

	logger.Info().Msg("Sample record check/creation finished")
	return finalErr
}
