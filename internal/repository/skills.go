package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/denzelpenzel/skillswap/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const skillColumns = `s.id, s.user_id, s.skill_name, s.description, s.proficiency_level, s.category, s.available, s.created_at`

// SkillRepository persists skill listings
type SkillRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewSkillRepository creates a new skill repository
func NewSkillRepository(db *pgxpool.Pool, logger *zap.Logger) *SkillRepository {
	return &SkillRepository{
		db:     db,
		logger: logger,
	}
}

// ListAvailableSkills returns available listings joined with their owners, newest first
func (r *SkillRepository) ListAvailableSkills(ctx context.Context, filter models.SkillFilter) ([]*models.CatalogSkill, error) {
	var query strings.Builder
	query.WriteString(`
		SELECT ` + skillColumns + `, u.username, u.full_name, u.location
		FROM skills s
		JOIN users u ON s.user_id = u.id
		WHERE s.available = TRUE
	`)
	var args []any

	if filter.Category != "" {
		args = append(args, filter.Category)
		query.WriteString(" AND s.category = $" + strconv.Itoa(len(args)))
	}

	if filter.Search != "" {
		args = append(args, containsPattern(filter.Search))
		n := strconv.Itoa(len(args))
		query.WriteString(" AND (s.skill_name ILIKE $" + n + " OR s.description ILIKE $" + n + ")")
	}

	query.WriteString(" ORDER BY s.created_at DESC, s.id DESC")

	rows, err := r.db.Query(ctx, query.String(), args...)
	if err != nil {
		r.logger.Error("Failed to query catalog", zap.Error(err))
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	skills := []*models.CatalogSkill{}
	for rows.Next() {
		skill := &models.CatalogSkill{}
		err := rows.Scan(
			&skill.ID,
			&skill.UserID,
			&skill.Name,
			&skill.Description,
			&skill.ProficiencyLevel,
			&skill.Category,
			&skill.Available,
			&skill.CreatedAt,
			&skill.Username,
			&skill.FullName,
			&skill.Location,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		skills = append(skills, skill)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate skills: %w", err)
	}

	return skills, nil
}

// ListSkillsByOwner returns every listing owned by userID regardless of availability
func (r *SkillRepository) ListSkillsByOwner(ctx context.Context, userID int64) ([]*models.Skill, error) {
	query := `
		SELECT ` + skillColumns + `
		FROM skills s
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC, s.id DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query owned skills", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to list owned skills: %w", err)
	}
	defer rows.Close()

	skills := []*models.Skill{}
	for rows.Next() {
		skill, err := scanSkill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		skills = append(skills, skill)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate skills: %w", err)
	}

	return skills, nil
}

// GetSkillByID retrieves a listing regardless of availability
func (r *SkillRepository) GetSkillByID(ctx context.Context, skillID int64) (*models.Skill, error) {
	query := `SELECT ` + skillColumns + ` FROM skills s WHERE s.id = $1`

	skill, err := scanSkill(r.db.QueryRow(ctx, query, skillID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get skill: %w", err)
	}

	return skill, nil
}

// CreateSkill inserts a listing; availability defaults to true
func (r *SkillRepository) CreateSkill(ctx context.Context, params models.CreateSkillParams) (*models.Skill, error) {
	query := `
		INSERT INTO skills AS s (user_id, skill_name, description, proficiency_level, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + skillColumns

	skill, err := scanSkill(r.db.QueryRow(ctx, query,
		params.UserID,
		params.Name,
		params.Description,
		string(params.ProficiencyLevel),
		params.Category,
	))
	if err != nil {
		r.logger.Error("Failed to create skill", zap.Error(err), zap.Int64("user_id", params.UserID))
		return nil, fmt.Errorf("failed to create skill: %w", err)
	}

	return skill, nil
}

// UpdateSkill applies a partial update to a listing owned by userID.
// It returns models.ErrNotFoundOrForbidden when no such row exists.
func (r *SkillRepository) UpdateSkill(ctx context.Context, skillID, userID int64, upd models.SkillUpdate) error {
	query := `
		UPDATE skills
		SET skill_name        = COALESCE($3::text, skill_name),
		    description       = COALESCE($4::text, description),
		    proficiency_level = COALESCE($5::text, proficiency_level),
		    category          = COALESCE($6::text, category),
		    available         = COALESCE($7::boolean, available)
		WHERE id = $1 AND user_id = $2
	`

	var level *string
	if upd.ProficiencyLevel != nil {
		l := string(*upd.ProficiencyLevel)
		level = &l
	}

	result, err := r.db.Exec(ctx, query,
		skillID,
		userID,
		upd.Name,
		upd.Description,
		level,
		upd.Category,
		upd.Available,
	)
	if err != nil {
		r.logger.Error("Failed to update skill", zap.Error(err), zap.Int64("skill_id", skillID))
		return fmt.Errorf("failed to update skill: %w", err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFoundOrForbidden
	}

	return nil
}

// DeleteSkill removes a listing owned by userID. Requests against it are kept
// with their name snapshot and a NULL skill_id.
func (r *SkillRepository) DeleteSkill(ctx context.Context, skillID, userID int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM skills WHERE id = $1 AND user_id = $2`, skillID, userID)
	if err != nil {
		r.logger.Error("Failed to delete skill", zap.Error(err), zap.Int64("skill_id", skillID))
		return fmt.Errorf("failed to delete skill: %w", err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFoundOrForbidden
	}

	return nil
}

// ListCategories returns the distinct non-empty categories across all listings
func (r *SkillRepository) ListCategories(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT category
		FROM skills
		WHERE category IS NOT NULL AND category <> ''
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query categories", zap.Error(err))
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect categories: %w", err)
	}
	if categories == nil {
		categories = []string{}
	}

	return categories, nil
}

func scanSkill(row pgx.Row) (*models.Skill, error) {
	skill := &models.Skill{}
	err := row.Scan(
		&skill.ID,
		&skill.UserID,
		&skill.Name,
		&skill.Description,
		&skill.ProficiencyLevel,
		&skill.Category,
		&skill.Available,
		&skill.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return skill, nil
}
