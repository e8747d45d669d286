package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/denzelpenzel/skillswap/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const requestColumns = `sr.id, sr.requester_id, sr.skill_owner_id, sr.skill_id, sr.requested_skill,
	sr.offered_skill, sr.message, sr.status, sr.created_at, sr.updated_at`

// RequestRepository persists skill requests and their status history
type RequestRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *pgxpool.Pool, logger *zap.Logger) *RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger,
	}
}

// CreateRequest inserts a pending request and its initial history entry in one transaction
func (r *RequestRepository) CreateRequest(ctx context.Context, params models.CreateRequestParams) (*models.SkillRequest, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO skill_requests AS sr (requester_id, skill_owner_id, skill_id, requested_skill, offered_skill, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + requestColumns

	request, err := scanRequest(tx.QueryRow(ctx, query,
		params.RequesterID,
		params.SkillOwnerID,
		params.SkillID,
		params.RequestedSkill,
		params.OfferedSkill,
		params.Message,
		string(models.StatusPending),
	))
	if err != nil {
		r.logger.Error("Failed to create request", zap.Error(err), zap.Int64("skill_id", params.SkillID))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if err := insertHistory(ctx, tx, request.ID, nil, models.StatusPending, params.RequesterID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit request: %w", err)
	}

	return request, nil
}

// ListReceivedRequests returns requests addressed to ownerID with the requester's names, newest first
func (r *RequestRepository) ListReceivedRequests(ctx context.Context, ownerID int64) ([]*models.SkillRequest, error) {
	query := `
		SELECT ` + requestColumns + `, u.username, u.full_name
		FROM skill_requests sr
		JOIN users u ON sr.requester_id = u.id
		WHERE sr.skill_owner_id = $1
		ORDER BY sr.created_at DESC, sr.id DESC
	`

	return r.listRequests(ctx, query, ownerID, func(req *models.SkillRequest) []any {
		return []any{&req.RequesterUsername, &req.RequesterName}
	})
}

// ListSentRequests returns requests made by requesterID with the owner's names, newest first
func (r *RequestRepository) ListSentRequests(ctx context.Context, requesterID int64) ([]*models.SkillRequest, error) {
	query := `
		SELECT ` + requestColumns + `, u.username, u.full_name
		FROM skill_requests sr
		JOIN users u ON sr.skill_owner_id = u.id
		WHERE sr.requester_id = $1
		ORDER BY sr.created_at DESC, sr.id DESC
	`

	return r.listRequests(ctx, query, requesterID, func(req *models.SkillRequest) []any {
		return []any{&req.OwnerUsername, &req.OwnerName}
	})
}

func (r *RequestRepository) listRequests(ctx context.Context, query string, userID int64, extra func(*models.SkillRequest) []any) ([]*models.SkillRequest, error) {
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query requests", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	requests := []*models.SkillRequest{}
	for rows.Next() {
		req := &models.SkillRequest{}
		dest := append(requestDest(req), extra(req)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate requests: %w", err)
	}

	return requests, nil
}

// TransitionStatus moves a request owned by t.OwnerID to t.To when its current
// status is one of t.AllowedFrom. The row is locked for the duration of the
// check, and the change is recorded in the status history.
func (r *RequestRepository) TransitionStatus(ctx context.Context, t models.StatusTransition) (*models.SkillRequest, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current models.RequestStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM skill_requests WHERE id = $1 AND skill_owner_id = $2 FOR UPDATE`,
		t.RequestID, t.OwnerID,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFoundOrForbidden
		}
		return nil, fmt.Errorf("failed to lock request: %w", err)
	}

	if !slices.Contains(t.AllowedFrom, current) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, current, t.To)
	}

	query := `
		UPDATE skill_requests AS sr
		SET status = $2, updated_at = NOW()
		WHERE sr.id = $1
		RETURNING ` + requestColumns

	request, err := scanRequest(tx.QueryRow(ctx, query, t.RequestID, string(t.To)))
	if err != nil {
		r.logger.Error("Failed to update request status", zap.Error(err), zap.Int64("request_id", t.RequestID))
		return nil, fmt.Errorf("failed to update request status: %w", err)
	}

	if err := insertHistory(ctx, tx, t.RequestID, &current, t.To, t.OwnerID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status change: %w", err)
	}

	return request, nil
}

// ListStatusHistory returns the history of a request, oldest first, when
// userID is its requester or skill owner
func (r *RequestRepository) ListStatusHistory(ctx context.Context, requestID, userID int64) ([]*models.StatusChange, error) {
	var visible bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM skill_requests WHERE id = $1 AND (requester_id = $2 OR skill_owner_id = $2))`,
		requestID, userID,
	).Scan(&visible)
	if err != nil {
		return nil, fmt.Errorf("failed to check request access: %w", err)
	}
	if !visible {
		return nil, models.ErrNotFoundOrForbidden
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, request_id, from_status, to_status, changed_by, changed_at
		FROM request_status_history
		WHERE request_id = $1
		ORDER BY changed_at, id
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}
	defer rows.Close()

	history := []*models.StatusChange{}
	for rows.Next() {
		var (
			change models.StatusChange
			from   *string
			to     string
		)
		if err := rows.Scan(&change.ID, &change.RequestID, &from, &to, &change.ChangedBy, &change.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status change: %w", err)
		}
		if from != nil {
			s := models.RequestStatus(*from)
			change.FromStatus = &s
		}
		change.ToStatus = models.RequestStatus(to)
		history = append(history, &change)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status history: %w", err)
	}

	return history, nil
}

func insertHistory(ctx context.Context, tx pgx.Tx, requestID int64, from *models.RequestStatus, to models.RequestStatus, actorID int64) error {
	var fromStr *string
	if from != nil {
		s := string(*from)
		fromStr = &s
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO request_status_history (request_id, from_status, to_status, changed_by)
		VALUES ($1, $2, $3, $4)
	`, requestID, fromStr, string(to), actorID)
	if err != nil {
		return fmt.Errorf("failed to record status history: %w", err)
	}
	return nil
}

func requestDest(req *models.SkillRequest) []any {
	return []any{
		&req.ID,
		&req.RequesterID,
		&req.SkillOwnerID,
		&req.SkillID,
		&req.RequestedSkill,
		&req.OfferedSkill,
		&req.Message,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	}
}

func scanRequest(row pgx.Row) (*models.SkillRequest, error) {
	req := &models.SkillRequest{}
	if err := row.Scan(requestDest(req)...); err != nil {
		return nil, err
	}
	return req, nil
}
