package storage

import (
	"context"
	"fmt"
	"time"
)

// Retention is how long visitor rows are kept.
const Retention = 365 * 24 * time.Hour

// Visit is one tracked request. HashedIP is never a raw address.
type Visit struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	Country   string    `json:"country,omitempty"`
}

// PathStat counts visits to one path.
type PathStat struct {
	Path   string `json:"path"`
	Visits int64  `json:"visits"`
}

// Stats summarizes the visitor log for the admin endpoint.
type Stats struct {
	TotalVisitors    int64      `json:"total_visitors"`
	UniqueVisitors   int64      `json:"unique_visitors"`
	VisitorsToday    int64      `json:"visitors_today"`
	VisitorsThisWeek int64      `json:"visitors_this_week"`
	TopPaths         []PathStat `json:"top_paths"`
	RecentVisitors   []Visit    `json:"recent_visitors"`
}

// RecordVisit appends v to the log, stamping it now if it has no time.
func (d *DB) RecordVisit(ctx context.Context, v Visit) error {
	if v.Timestamp.IsZero() {
		v.Timestamp = d.now()
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, path, timestamp, country)
		VALUES (?, ?, ?, ?, ?)
	`, v.HashedIP, v.UserAgent, v.Path, v.Timestamp.UTC().Format(timeLayout), v.Country)
	if err != nil {
		return fmt.Errorf("recording visit: %w", err)
	}
	return nil
}

// CleanupVisitors deletes rows older than Retention and returns how many
// were removed.
func (d *DB) CleanupVisitors(ctx context.Context) (int64, error) {
	cutoff := d.now().Add(-Retention).UTC().Format(timeLayout)
	res, err := d.db.ExecContext(ctx, `DELETE FROM visitors WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleaning up visitors: %w", err)
	}
	return res.RowsAffected()
}

// RecentVisits returns up to limit visits, newest first.
func (d *DB) RecentVisits(ctx context.Context, limit int) ([]Visit, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), timestamp, COALESCE(country, '')
		FROM visitors
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		var ts string
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &ts, &v.Country); err != nil {
			continue
		}
		v.Timestamp, _ = time.Parse(timeLayout, ts)
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// Stats computes the admin summary.
func (d *DB) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	now := d.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{midnight.Format(timeLayout)}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{weekAgo.Format(timeLayout)}},
	}
	for _, c := range counts {
		if err := d.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, err
		}
	}

	var err error
	if stats.TopPaths, err = d.topPaths(ctx, 10); err != nil {
		return nil, err
	}
	stats.RecentVisitors, err = d.RecentVisits(ctx, 50)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (d *DB) topPaths(ctx context.Context, limit int) ([]PathStat, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT COALESCE(path, ''), COUNT(*) AS visits
		FROM visitors
		GROUP BY path
		ORDER BY visits DESC, path
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []PathStat
	for rows.Next() {
		var p PathStat
		if err := rows.Scan(&p.Path, &p.Visits); err != nil {
			continue
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
