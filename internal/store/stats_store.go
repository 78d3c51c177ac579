package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"licensedesk/internal/models"
	"licensedesk/internal/query"
)

type StatsStore interface {
	// GetDashboardStats characterizes the whole inventory; list filters never
	// apply here.
	GetDashboardStats(ctx context.Context, now time.Time) (*models.DashboardStats, error)
}

type PostgresStatsStore struct {
	DB     *pgxpool.Pool
	Window time.Duration
}

func NewPostgresStatsStore(db *pgxpool.Pool, window time.Duration) *PostgresStatsStore {
	if window <= 0 {
		window = query.DefaultExpiringWindow
	}
	return &PostgresStatsStore{DB: db, Window: window}
}

func (s *PostgresStatsStore) GetDashboardStats(ctx context.Context, now time.Time) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	// 1. Status buckets, including the derived expiring-soon bucket
	kpiQuery := `
		SELECT
			count(*),
			count(*) FILTER (WHERE status = 'active'),
			count(*) FILTER (WHERE status = 'pending'),
			count(*) FILTER (WHERE status = 'expired'),
			count(*) FILTER (WHERE status = 'blocked'),
			count(*) FILTER (WHERE status = 'active' AND end_date > $1 AND end_date <= $2),
			count(*) FILTER (WHERE created_at >= $3)
		FROM licenses
	`
	if err := s.DB.QueryRow(ctx, kpiQuery, now, now.Add(s.Window), now.AddDate(0, 0, -30)).Scan(
		&stats.Total,
		&stats.Active,
		&stats.Pending,
		&stats.Expired,
		&stats.Blocked,
		&stats.ExpiringSoon,
		&stats.CreatedLast30Days,
	); err != nil {
		return nil, fmt.Errorf("failed to count licenses: %w", err)
	}

	// 2. Recent Admin Logs (Last 3)
	rows, err := s.DB.Query(ctx, `
		SELECT id, action, entity_type, entity_id, details, created_at
		FROM admin_logs
		ORDER BY created_at DESC
		LIMIT 3
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent admin logs: %w", err)
	}
	defer rows.Close()

	recentLogs := []models.AdminLog{}
	for rows.Next() {
		var log models.AdminLog
		var detailsJSON []byte
		if err := rows.Scan(
			&log.ID,
			&log.Action,
			&log.EntityType,
			&log.EntityID,
			&detailsJSON,
			&log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan admin log: %w", err)
		}
		if err := json.Unmarshal(detailsJSON, &log.Details); err != nil {
			return nil, fmt.Errorf("failed to unmarshal details: %w", err)
		}
		recentLogs = append(recentLogs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating admin logs: %w", err)
	}
	stats.RecentAdminLogs = recentLogs

	return stats, nil
}
