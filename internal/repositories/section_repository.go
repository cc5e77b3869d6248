package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/elimu-hub/backend/internal/models"
)

type sectionRepository struct {
	db *sql.DB
}

// NewSectionRepository creates a new section repository
func NewSectionRepository(db *sql.DB) *sectionRepository {
	return &sectionRepository{
		db: db,
	}
}

// GetAll retrieves all active sections ordered by display order, each annotated
// with a file count. When approvedOnly is true only APPROVED files are counted.
func (r *sectionRepository) GetAll(ctx context.Context, approvedOnly bool) ([]models.Section, error) {
	query := `
		SELECT s.id, s.name, s.description, s.display_order, s.is_active, s.created_at,
			(SELECT COUNT(*) FROM library_files f WHERE f.section_id = s.id`
	if approvedOnly {
		query += ` AND f.status = 'APPROVED'`
	}
	query += `) as file_count
		FROM sections s
		WHERE s.is_active = 1
		ORDER BY s.display_order
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer rows.Close()

	var sections []models.Section
	for rows.Next() {
		var section models.Section
		var description sql.NullString
		err := rows.Scan(
			&section.ID,
			&section.Name,
			&description,
			&section.DisplayOrder,
			&section.IsActive,
			&section.CreatedAt,
			&section.FileCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		section.Description = description.String
		sections = append(sections, section)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return sections, nil
}

// GetByID retrieves a section by its ID
func (r *sectionRepository) GetByID(ctx context.Context, id int) (*models.Section, error) {
	query := `
		SELECT id, name, description, display_order, is_active, created_at
		FROM sections
		WHERE id = ?
		LIMIT 1
	`

	var section models.Section
	var description sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&section.ID,
		&section.Name,
		&description,
		&section.DisplayOrder,
		&section.IsActive,
		&section.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("section not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get section by id: %w", err)
	}

	section.Description = description.String
	return &section, nil
}

// ExistsByName checks if a section with the given name exists
func (r *sectionRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM sections WHERE name = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check section name existence: %w", err)
	}

	return exists, nil
}

// Create inserts a new section at the end of the display order
func (r *sectionRepository) Create(ctx context.Context, section *models.Section) error {
	// Append to the end of the current order
	var maxOrder sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT MAX(display_order) FROM sections`).Scan(&maxOrder)
	if err != nil {
		return fmt.Errorf("failed to get max display order: %w", err)
	}
	section.DisplayOrder = int(maxOrder.Int64) + 1

	query := `
		INSERT INTO sections (name, description, display_order, is_active)
		VALUES (?, ?, ?, 1)
	`

	result, err := r.db.ExecContext(ctx, query, section.Name, section.Description, section.DisplayOrder)
	if err != nil {
		return fmt.Errorf("failed to create section: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	section.ID = int(id)
	section.IsActive = true
	return nil
}
