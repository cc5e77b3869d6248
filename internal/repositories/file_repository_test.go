package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elimu-hub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupFileTestRepository creates a file repository with a mock database
func setupFileTestRepository(t *testing.T) (*fileRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewFileRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

// fileRowColumns mirrors the column order used by the repository queries
var fileRowColumns = []string{
	"id", "stored_filename", "original_filename", "file_type", "file_size", "mime_type",
	"status", "section_id", "subfolder_id", "uploaded_by", "approved_by", "description", "tags",
	"created_at", "updated_at",
}

func TestNewFileRepository(t *testing.T) {
	db := &sql.DB{}

	repo := NewFileRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestFileRepository_Create(t *testing.T) {
	subfolderID := 3

	tests := []struct {
		name          string
		file          *models.FileRecord
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		errorContains string
	}{
		{
			name: "success - with tags and subfolder",
			file: &models.FileRecord{
				ID:               "a1b2c3d4-0000-0000-0000-000000000001",
				StoredFilename:   "a1b2c3d4.pdf",
				OriginalFilename: "algebra-notes.pdf",
				FileType:         models.FileTypePDF,
				FileSize:         2 * 1024 * 1024,
				MimeType:         "application/pdf",
				Status:           models.FileStatusPending,
				SectionID:        1,
				SubfolderID:      &subfolderID,
				UploadedBy:       7,
				Description:      "Algebra revision notes",
				Tags:             []string{"algebra", "grade-8"},
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO library_files`).
					WithArgs(
						"a1b2c3d4-0000-0000-0000-000000000001",
						"a1b2c3d4.pdf",
						"algebra-notes.pdf",
						models.FileTypePDF,
						int64(2*1024*1024),
						"application/pdf",
						models.FileStatusPending,
						1,
						&subfolderID,
						7,
						nil,
						"Algebra revision notes",
						sql.NullString{String: `["algebra","grade-8"]`, Valid: true},
					).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "success - no tags, section root",
			file: &models.FileRecord{
				ID:               "a1b2c3d4-0000-0000-0000-000000000002",
				StoredFilename:   "a1b2c3d5.mp4",
				OriginalFilename: "lesson.mp4",
				FileType:         models.FileTypeVideo,
				FileSize:         1024,
				MimeType:         "video/mp4",
				Status:           models.FileStatusPending,
				SectionID:        2,
				UploadedBy:       7,
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO library_files`).
					WithArgs(
						"a1b2c3d4-0000-0000-0000-000000000002",
						"a1b2c3d5.mp4",
						"lesson.mp4",
						models.FileTypeVideo,
						int64(1024),
						"video/mp4",
						models.FileStatusPending,
						2,
						nil,
						7,
						nil,
						"",
						sql.NullString{},
					).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "database error",
			file: &models.FileRecord{
				ID:             "a1b2c3d4-0000-0000-0000-000000000003",
				StoredFilename: "x.pdf",
				Status:         models.FileStatusPending,
				SectionID:      1,
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO library_files`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
			errorContains: "failed to create file record",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupFileTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Create(context.Background(), tt.file)

			if tt.expectedError {
				assert.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFileRepository_GetByID(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name          string
		id            string
		setupMock     func(sqlmock.Sqlmock)
		check         func(*testing.T, *models.FileRecord)
		expectedError bool
		errorContains string
	}{
		{
			name: "success - full row",
			id:   "file-1",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(fileRowColumns).
					AddRow("file-1", "stored.pdf", "orig.pdf", "PDF", 2048, "application/pdf",
						"APPROVED", 1, 3, 7, 2, "notes", `["algebra"]`, now, now)
				mock.ExpectQuery(`FROM library_files WHERE id = \?`).
					WithArgs("file-1").
					WillReturnRows(rows)
			},
			check: func(t *testing.T, file *models.FileRecord) {
				assert.Equal(t, models.FileStatusApproved, file.Status)
				require.NotNil(t, file.SubfolderID)
				assert.Equal(t, 3, *file.SubfolderID)
				require.NotNil(t, file.ApprovedBy)
				assert.Equal(t, 2, *file.ApprovedBy)
				assert.Equal(t, []string{"algebra"}, file.Tags)
			},
		},
		{
			name: "success - null optionals",
			id:   "file-2",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(fileRowColumns).
					AddRow("file-2", "stored.pdf", "orig.pdf", "PDF", 2048, "application/pdf",
						"PENDING", 1, nil, 7, nil, nil, nil, now, now)
				mock.ExpectQuery(`FROM library_files WHERE id = \?`).
					WithArgs("file-2").
					WillReturnRows(rows)
			},
			check: func(t *testing.T, file *models.FileRecord) {
				assert.Equal(t, models.FileStatusPending, file.Status)
				assert.Nil(t, file.SubfolderID)
				assert.Nil(t, file.ApprovedBy)
				assert.Empty(t, file.Tags)
				assert.Empty(t, file.Description)
			},
		},
		{
			name: "file not found",
			id:   "missing",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM library_files WHERE id = \?`).
					WithArgs("missing").
					WillReturnError(sql.ErrNoRows)
			},
			expectedError: true,
			errorContains: "file not found",
		},
		{
			name: "database error",
			id:   "file-1",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM library_files WHERE id = \?`).
					WithArgs("file-1").
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
			errorContains: "failed to get file by id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupFileTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			file, err := repo.GetByID(context.Background(), tt.id)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, file)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
			} else {
				assert.NoError(t, err)
				require.NotNil(t, file)
				assert.Equal(t, tt.id, file.ID)
				if tt.check != nil {
					tt.check(t, file)
				}
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFileRepository_GetByStoredFilename(t *testing.T) {
	now := time.Now()

	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupFileTestRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows(fileRowColumns).
			AddRow("file-1", "stored.pdf", "orig.pdf", "PDF", 2048, "application/pdf",
				"APPROVED", 1, nil, 7, nil, nil, nil, now, now)
		mock.ExpectQuery(`FROM library_files WHERE stored_filename = \?`).
			WithArgs("stored.pdf").
			WillReturnRows(rows)

		file, err := repo.GetByStoredFilename(context.Background(), "stored.pdf")
		require.NoError(t, err)
		assert.Equal(t, "file-1", file.ID)
		assert.Equal(t, "orig.pdf", file.OriginalFilename)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("file not found", func(t *testing.T) {
		repo, mock, cleanup := setupFileTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`FROM library_files WHERE stored_filename = \?`).
			WithArgs("missing.pdf").
			WillReturnError(sql.ErrNoRows)

		file, err := repo.GetByStoredFilename(context.Background(), "missing.pdf")
		assert.Error(t, err)
		assert.Nil(t, file)
		assert.Contains(t, err.Error(), "file not found")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFileRepository_GetByFilter(t *testing.T) {
	now := time.Now()
	subfolderID := 3
	approved := models.FileStatusApproved

	makeRows := func(ids ...string) *sqlmock.Rows {
		rows := sqlmock.NewRows(fileRowColumns)
		for _, id := range ids {
			rows.AddRow(id, id+".pdf", id+"-orig.pdf", "PDF", 2048, "application/pdf",
				"APPROVED", 1, nil, 7, nil, nil, nil, now, now)
		}
		return rows
	}

	tests := []struct {
		name          string
		filter        models.FileFilter
		setupMock     func(sqlmock.Sqlmock)
		expectedCount int
		expectedError bool
	}{
		{
			name:   "section scope - default newest sort",
			filter: models.FileFilter{SectionID: 1},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE section_id = \? ORDER BY created_at DESC`).
					WithArgs(1).
					WillReturnRows(makeRows("file-1", "file-2"))
			},
			expectedCount: 2,
		},
		{
			name:   "subfolder and status narrowing",
			filter: models.FileFilter{SectionID: 1, SubfolderID: &subfolderID, Status: &approved},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE section_id = \? AND subfolder_id = \? AND status = \?`).
					WithArgs(1, 3, approved).
					WillReturnRows(makeRows("file-1"))
			},
			expectedCount: 1,
		},
		{
			name:   "oldest sort",
			filter: models.FileFilter{SectionID: 1, Sort: models.FileSortOldest},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`ORDER BY created_at ASC`).
					WithArgs(1).
					WillReturnRows(makeRows("file-1"))
			},
			expectedCount: 1,
		},
		{
			name:   "name sort",
			filter: models.FileFilter{SectionID: 1, Sort: models.FileSortName},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`ORDER BY original_filename ASC`).
					WithArgs(1).
					WillReturnRows(makeRows("file-1"))
			},
			expectedCount: 1,
		},
		{
			name:   "size sort",
			filter: models.FileFilter{SectionID: 1, Sort: models.FileSortSize},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`ORDER BY file_size DESC`).
					WithArgs(1).
					WillReturnRows(makeRows("file-1"))
			},
			expectedCount: 1,
		},
		{
			name:   "empty scope returns no files",
			filter: models.FileFilter{SectionID: 9},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE section_id = \?`).
					WithArgs(9).
					WillReturnRows(makeRows())
			},
			expectedCount: 0,
		},
		{
			name:   "database error",
			filter: models.FileFilter{SectionID: 1},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE section_id = \?`).
					WithArgs(1).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupFileTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			files, err := repo.GetByFilter(context.Background(), tt.filter)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Len(t, files, tt.expectedCount)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFileRepository_UpdateStatus(t *testing.T) {
	tests := []struct {
		name          string
		id            string
		status        models.FileStatus
		approvedBy    int
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		errorContains string
	}{
		{
			name:       "success - approve pending file",
			id:         "file-1",
			status:     models.FileStatusApproved,
			approvedBy: 2,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE library_files SET status = \?, approved_by = \? WHERE id = \? AND status = 'PENDING'`).
					WithArgs(models.FileStatusApproved, 2, "file-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:       "success - decline pending file",
			id:         "file-1",
			status:     models.FileStatusDeclined,
			approvedBy: 2,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE library_files`).
					WithArgs(models.FileStatusDeclined, 2, "file-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:       "file already reviewed",
			id:         "file-1",
			status:     models.FileStatusApproved,
			approvedBy: 2,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE library_files`).
					WithArgs(models.FileStatusApproved, 2, "file-1").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedError: true,
			errorContains: "file is not pending review",
		},
		{
			name:       "database error",
			id:         "file-1",
			status:     models.FileStatusApproved,
			approvedBy: 2,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE library_files`).
					WithArgs(models.FileStatusApproved, 2, "file-1").
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
			errorContains: "failed to update file status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupFileTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.UpdateStatus(context.Background(), tt.id, tt.status, tt.approvedBy)

			if tt.expectedError {
				assert.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFileRepository_Delete(t *testing.T) {
	tests := []struct {
		name          string
		id            string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		errorContains string
	}{
		{
			name: "success",
			id:   "file-1",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM library_files WHERE id = \?`).
					WithArgs("file-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "file not found",
			id:   "missing",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM library_files WHERE id = \?`).
					WithArgs("missing").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedError: true,
			errorContains: "file not found",
		},
		{
			name: "database error",
			id:   "file-1",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM library_files WHERE id = \?`).
					WithArgs("file-1").
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
			errorContains: "failed to delete file record",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupFileTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Delete(context.Background(), tt.id)

			if tt.expectedError {
				assert.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFileRepository_GetStats(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupFileTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(file_size\), 0\) FROM library_files`).
			WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(10, 52428800))
		mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM library_files GROUP BY status`).
			WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
				AddRow("APPROVED", 6).
				AddRow("PENDING", 3).
				AddRow("DECLINED", 1))
		mock.ExpectQuery(`SELECT file_type, COUNT\(\*\) FROM library_files GROUP BY file_type`).
			WillReturnRows(sqlmock.NewRows([]string{"file_type", "count"}).
				AddRow("PDF", 8).
				AddRow("VIDEO", 2))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM sections WHERE is_active = 1`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

		stats, err := repo.GetStats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 10, stats.TotalFiles)
		assert.Equal(t, int64(52428800), stats.TotalBytes)
		assert.Equal(t, 6, stats.ByStatus["APPROVED"])
		assert.Equal(t, 3, stats.PendingReview)
		assert.Equal(t, 8, stats.ByType["PDF"])
		assert.Equal(t, 4, stats.SectionCount)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("totals query error", func(t *testing.T) {
		repo, mock, cleanup := setupFileTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(file_size\), 0\) FROM library_files`).
			WillReturnError(errors.New("database error"))

		stats, err := repo.GetStats(context.Background())
		assert.Error(t, err)
		assert.Nil(t, stats)
		assert.Contains(t, err.Error(), "failed to get file totals")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
