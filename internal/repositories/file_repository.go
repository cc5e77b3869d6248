package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/elimu-hub/backend/internal/models"
)

type fileRepository struct {
	db *sql.DB
}

// NewFileRepository creates a new file repository
func NewFileRepository(db *sql.DB) *fileRepository {
	return &fileRepository{
		db: db,
	}
}

const fileColumns = `id, stored_filename, original_filename, file_type, file_size, mime_type,
			status, section_id, subfolder_id, uploaded_by, approved_by, description, tags,
			created_at, updated_at`

// Create inserts a new file record into the database
func (r *fileRepository) Create(ctx context.Context, file *models.FileRecord) error {
	var tagsJSON sql.NullString
	if len(file.Tags) > 0 {
		data, err := json.Marshal(file.Tags)
		if err != nil {
			return fmt.Errorf("failed to marshal tags: %w", err)
		}
		tagsJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO library_files (id, stored_filename, original_filename, file_type, file_size,
			mime_type, status, section_id, subfolder_id, uploaded_by, approved_by, description, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		file.ID,
		file.StoredFilename,
		file.OriginalFilename,
		file.FileType,
		file.FileSize,
		file.MimeType,
		file.Status,
		file.SectionID,
		file.SubfolderID,
		file.UploadedBy,
		file.ApprovedBy,
		file.Description,
		tagsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to create file record: %w", err)
	}

	return nil
}

// scanFile scans a single file record row
func scanFile(scan func(dest ...any) error) (*models.FileRecord, error) {
	var file models.FileRecord
	var subfolderID sql.NullInt64
	var approvedBy sql.NullInt64
	var description sql.NullString
	var tagsJSON sql.NullString

	err := scan(
		&file.ID,
		&file.StoredFilename,
		&file.OriginalFilename,
		&file.FileType,
		&file.FileSize,
		&file.MimeType,
		&file.Status,
		&file.SectionID,
		&subfolderID,
		&file.UploadedBy,
		&approvedBy,
		&description,
		&tagsJSON,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if subfolderID.Valid {
		id := int(subfolderID.Int64)
		file.SubfolderID = &id
	}
	if approvedBy.Valid {
		id := int(approvedBy.Int64)
		file.ApprovedBy = &id
	}
	file.Description = description.String
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &file.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}

	return &file, nil
}

// GetByID retrieves a file record by its ID
func (r *fileRepository) GetByID(ctx context.Context, id string) (*models.FileRecord, error) {
	query := `
		SELECT ` + fileColumns + `
		FROM library_files
		WHERE id = ?
		LIMIT 1
	`

	row := r.db.QueryRowContext(ctx, query, id)
	file, err := scanFile(row.Scan)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("file not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file by id: %w", err)
	}

	return file, nil
}

// GetByStoredFilename retrieves a file record by its stored filename
func (r *fileRepository) GetByStoredFilename(ctx context.Context, filename string) (*models.FileRecord, error) {
	query := `
		SELECT ` + fileColumns + `
		FROM library_files
		WHERE stored_filename = ?
		LIMIT 1
	`

	row := r.db.QueryRowContext(ctx, query, filename)
	file, err := scanFile(row.Scan)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("file not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file by stored filename: %w", err)
	}

	return file, nil
}

// GetByFilter retrieves file records for a section scope with optional
// subfolder and status narrowing and the requested sort policy
func (r *fileRepository) GetByFilter(ctx context.Context, filter models.FileFilter) ([]models.FileRecord, error) {
	query := `
		SELECT ` + fileColumns + `
		FROM library_files
		WHERE section_id = ?
	`
	args := []any{filter.SectionID}

	if filter.SubfolderID != nil {
		query += ` AND subfolder_id = ?`
		args = append(args, *filter.SubfolderID)
	}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, *filter.Status)
	}

	switch filter.Sort {
	case models.FileSortOldest:
		query += ` ORDER BY created_at ASC`
	case models.FileSortName:
		query += ` ORDER BY original_filename ASC`
	case models.FileSortSize:
		query += ` ORDER BY file_size DESC`
	default:
		query += ` ORDER BY created_at DESC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []models.FileRecord
	for rows.Next() {
		file, err := scanFile(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, *file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return files, nil
}

// UpdateStatus transitions a PENDING file to the given terminal status
// Returns an error if the file is missing or no longer pending
func (r *fileRepository) UpdateStatus(ctx context.Context, id string, status models.FileStatus, approvedBy int) error {
	query := `
		UPDATE library_files
		SET status = ?, approved_by = ?
		WHERE id = ? AND status = 'PENDING'
	`

	result, err := r.db.ExecContext(ctx, query, status, approvedBy, id)
	if err != nil {
		return fmt.Errorf("failed to update file status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("file is not pending review")
	}

	return nil
}

// Delete removes a file record permanently
func (r *fileRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM library_files WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("file not found")
	}

	return nil
}

// GetStats aggregates library-wide counts for the admin stats endpoint
func (r *fileRepository) GetStats(ctx context.Context) (*models.LibraryStats, error) {
	stats := &models.LibraryStats{
		ByStatus: make(map[string]int),
		ByType:   make(map[string]int),
	}

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(file_size), 0) FROM library_files`,
	).Scan(&stats.TotalFiles, &stats.TotalBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to get file totals: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM library_files GROUP BY status`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get status counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		stats.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	stats.PendingReview = stats.ByStatus[string(models.FileStatusPending)]

	typeRows, err := r.db.QueryContext(ctx,
		`SELECT file_type, COUNT(*) FROM library_files GROUP BY file_type`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get type counts: %w", err)
	}
	defer typeRows.Close()

	for typeRows.Next() {
		var fileType string
		var count int
		if err := typeRows.Scan(&fileType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan type count: %w", err)
		}
		stats.ByType[fileType] = count
	}
	if err := typeRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sections WHERE is_active = 1`,
	).Scan(&stats.SectionCount)
	if err != nil {
		return nil, fmt.Errorf("failed to get section count: %w", err)
	}

	return stats, nil
}
