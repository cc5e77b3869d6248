package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/elimu-hub/backend/internal/models"
)

type subfolderRepository struct {
	db *sql.DB
}

// NewSubfolderRepository creates a new subfolder repository
func NewSubfolderRepository(db *sql.DB) *subfolderRepository {
	return &subfolderRepository{
		db: db,
	}
}

// GetAll retrieves all subfolders ordered by section and display order
func (r *subfolderRepository) GetAll(ctx context.Context) ([]models.Subfolder, error) {
	query := `
		SELECT id, section_id, name, display_order
		FROM subfolders
		ORDER BY section_id, display_order
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query subfolders: %w", err)
	}
	defer rows.Close()

	var subfolders []models.Subfolder
	for rows.Next() {
		var subfolder models.Subfolder
		err := rows.Scan(
			&subfolder.ID,
			&subfolder.SectionID,
			&subfolder.Name,
			&subfolder.DisplayOrder,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subfolder: %w", err)
		}
		subfolders = append(subfolders, subfolder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return subfolders, nil
}

// GetByID retrieves a subfolder by its ID
func (r *subfolderRepository) GetByID(ctx context.Context, id int) (*models.Subfolder, error) {
	query := `
		SELECT id, section_id, name, display_order
		FROM subfolders
		WHERE id = ?
		LIMIT 1
	`

	var subfolder models.Subfolder
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&subfolder.ID,
		&subfolder.SectionID,
		&subfolder.Name,
		&subfolder.DisplayOrder,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("subfolder not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subfolder by id: %w", err)
	}

	return &subfolder, nil
}

// Create inserts a new subfolder at the end of its section's display order
func (r *subfolderRepository) Create(ctx context.Context, subfolder *models.Subfolder) error {
	var maxOrder sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(display_order) FROM subfolders WHERE section_id = ?`,
		subfolder.SectionID,
	).Scan(&maxOrder)
	if err != nil {
		return fmt.Errorf("failed to get max display order: %w", err)
	}
	subfolder.DisplayOrder = int(maxOrder.Int64) + 1

	query := `
		INSERT INTO subfolders (section_id, name, display_order)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, subfolder.SectionID, subfolder.Name, subfolder.DisplayOrder)
	if err != nil {
		return fmt.Errorf("failed to create subfolder: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	subfolder.ID = int(id)
	return nil
}
