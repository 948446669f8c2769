// Package booking reads raw bookings and their summed account totals from
// the property-management mirror database.
package booking

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/stadlerhof/clover/pkg/database"
	"github.com/stadlerhof/clover/pkg/models"
	"github.com/stadlerhof/clover/pkg/tracing"
)

// Repository handles raw booking reads
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new booking repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ListWithTotals returns every booking with its account lines summed into a
// signed total. Credits keep their sign so they reduce aggregated revenue.
func (r *Repository) ListWithTotals(ctx context.Context) ([]models.Booking, error) {
	ctx, span := tracing.StartSpan(ctx, "booking.Repository.ListWithTotals")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(
		"b.resn",
		"b.gast",
		"COALESCE(to_char(b.andf, 'YYYY-MM-DD'), '') AS andf",
		"COALESCE(SUM(a.prei), 0) AS account_total",
	)
	sb.From("buc b")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "akz a", "a.resn = b.resn")
	sb.GroupBy("b.resn", "b.gast", "b.andf")
	sb.OrderBy("b.resn").Desc()

	query, args := sb.Build()

	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list bookings")
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	r.logger.WithContext(ctx).WithField("count", len(bookings)).Debug("Loaded bookings with totals")
	return bookings, nil
}
