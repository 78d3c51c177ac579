package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"licensedesk/internal/models"
)

type LogStore interface {
	CreateAdminLog(ctx context.Context, log *models.AdminLog) error
	// ListAdminLogs lists audit entries newest first, optionally for one license.
	ListAdminLogs(ctx context.Context, entityID *uuid.UUID, pagination models.PaginationParams) ([]models.AdminLog, int, error)
}

type PostgresLogStore struct {
	DB *pgxpool.Pool
}

func NewPostgresLogStore(db *pgxpool.Pool) *PostgresLogStore {
	return &PostgresLogStore{DB: db}
}

func (s *PostgresLogStore) CreateAdminLog(ctx context.Context, log *models.AdminLog) error {
	query := `
		INSERT INTO admin_logs (action, entity_type, entity_id, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	detailsJSON, err := json.Marshal(log.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal details: %w", err)
	}

	return s.DB.QueryRow(
		ctx,
		query,
		log.Action,
		log.EntityType,
		log.EntityID,
		detailsJSON,
	).Scan(&log.ID, &log.CreatedAt)
}

func (s *PostgresLogStore) ListAdminLogs(ctx context.Context, entityID *uuid.UUID, pagination models.PaginationParams) ([]models.AdminLog, int, error) {
	query := `
		SELECT id, action, entity_type, entity_id, details, created_at
		FROM admin_logs
	`
	countQuery := `SELECT count(*) FROM admin_logs`
	var args []interface{}
	if entityID != nil {
		query += ` WHERE entity_id = $1`
		countQuery += ` WHERE entity_id = $1`
		args = append(args, *entityID)
	}
	query += ` ORDER BY created_at DESC, id`

	limit := pagination.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := models.PaginationParams{Page: pagination.Page, Limit: limit}.Offset()

	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var totalCount int
	err := s.DB.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&totalCount)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get total count of admin logs: %w", err)
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query admin logs: %w", err)
	}
	defer rows.Close()

	logs := []models.AdminLog{}
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
			return nil, 0, fmt.Errorf("failed to scan admin log: %w", err)
		}

		if err := json.Unmarshal(detailsJSON, &log.Details); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal details: %w", err)
		}

		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating admin logs: %w", err)
	}

	return logs, totalCount, nil
}
