package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/model"
)

// StatsRepo aggregates the counters shown on the admin dashboard.
type StatsRepo struct{ db *sql.DB }

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// MonthCount is one month's registration volume.
type MonthCount struct {
	Month string `json:"month"` // YYYY-MM-01
	Count int    `json:"count"`
}

// Dashboard is the admin stats payload.
type Dashboard struct {
	TotalUsers           int          `json:"total_users"`
	TotalRegistrations   int          `json:"total_registrations"`
	PendingRegistrations int          `json:"pending_registrations"`
	ActiveWarranties     int          `json:"active_warranties"`
	OpenTickets          int          `json:"open_tickets"`
	RegistrationsByMonth []MonthCount `json:"registrations_by_month"`
}

// Collect runs the dashboard counters and the 12-month registration
// histogram.
func (r *StatsRepo) Collect(ctx context.Context, now time.Time) (Dashboard, error) {
	var d Dashboard
	counts := []struct {
		dest  *int
		query string
		args  []interface{}
	}{
		{&d.TotalUsers, "SELECT COUNT(*) FROM users WHERE role=? AND deleted_at IS NULL", []interface{}{model.RoleCustomer}},
		{&d.TotalRegistrations, "SELECT COUNT(*) FROM product_registrations", nil},
		{&d.PendingRegistrations, "SELECT COUNT(*) FROM product_registrations WHERE registration_status=?", []interface{}{model.RegStatusPendingReview}},
		{&d.ActiveWarranties, "SELECT COUNT(*) FROM warranties WHERE status=?", []interface{}{model.WarrantyActive}},
		{&d.OpenTickets, "SELECT COUNT(*) FROM support_tickets WHERE status IN (?,?)", []interface{}{model.TicketOpen, model.TicketInProgress}},
	}
	for _, c := range counts {
		if err := r.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dest); err != nil {
			return d, err
		}
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT DATE_FORMAT(created_at, '%Y-%m-01') AS month, COUNT(*) AS count
        FROM product_registrations
        WHERE created_at >= ?
        GROUP BY month
        ORDER BY month DESC`, now.AddDate(0, -12, 0))
	if err != nil {
		return d, err
	}
	defer rows.Close()

	d.RegistrationsByMonth = []MonthCount{}
	for rows.Next() {
		var mc MonthCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return d, err
		}
		d.RegistrationsByMonth = append(d.RegistrationsByMonth, mc)
	}
	return d, rows.Err()
}
