// Package guestprofile reads raw guest rows from the property-management
// mirror database.
package guestprofile

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/stadlerhof/clover/pkg/database"
	"github.com/stadlerhof/clover/pkg/models"
	"github.com/stadlerhof/clover/pkg/tracing"
)

// Repository handles raw guest profile reads
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new guest profile repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// List returns every raw guest profile, newest first.
func (r *Repository) List(ctx context.Context) ([]models.GuestProfile, error) {
	ctx, span := tracing.StartSpan(ctx, "guestprofile.Repository.List")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(
		"gast",
		"COALESCE(vorn, '') AS vorn",
		"COALESCE(nacn, '') AS nacn",
		"COALESCE(mail, '') AS mail",
		"COALESCE(teln, '') AS teln",
		"COALESCE(stra, '') AS stra",
		"COALESCE(polz, '') AS polz",
		"COALESCE(ortb, '') AS ortb",
		"COALESCE(land, '') AS land",
	)
	sb.From("gkt")
	sb.OrderBy("gast").Desc()

	query, args := sb.Build()

	var profiles []models.GuestProfile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list guest profiles")
		return nil, fmt.Errorf("failed to list guest profiles: %w", err)
	}

	r.logger.WithContext(ctx).WithField("count", len(profiles)).Debug("Loaded guest profiles")
	return profiles, nil
}
