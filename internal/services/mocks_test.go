package services

import (
	"context"
	"io"
	"os"

	"github.com/elimu-hub/backend/internal/models"
)

// mockSectionRepository is a mock implementation of SectionRepository
type mockSectionRepository struct {
	sections     []models.Section
	section      *models.Section
	exists       bool
	err          error
	getByIDErr   error
	existsErr    error
	createErr    error
	lastApproved bool
}

func (m *mockSectionRepository) GetAll(ctx context.Context, approvedOnly bool) ([]models.Section, error) {
	m.lastApproved = approvedOnly
	if m.err != nil {
		return nil, m.err
	}
	return m.sections, nil
}

func (m *mockSectionRepository) GetByID(ctx context.Context, id int) (*models.Section, error) {
	if m.getByIDErr != nil {
		return nil, m.getByIDErr
	}
	return m.section, nil
}

func (m *mockSectionRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.exists, nil
}

func (m *mockSectionRepository) Create(ctx context.Context, section *models.Section) error {
	if m.createErr != nil {
		return m.createErr
	}
	section.ID = 1
	section.DisplayOrder = 1
	section.IsActive = true
	return nil
}

// mockSubfolderRepository is a mock implementation of SubfolderRepository
type mockSubfolderRepository struct {
	subfolders []models.Subfolder
	subfolder  *models.Subfolder
	err        error
	getByIDErr error
	createErr  error
}

func (m *mockSubfolderRepository) GetAll(ctx context.Context) ([]models.Subfolder, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.subfolders, nil
}

func (m *mockSubfolderRepository) GetByID(ctx context.Context, id int) (*models.Subfolder, error) {
	if m.getByIDErr != nil {
		return nil, m.getByIDErr
	}
	return m.subfolder, nil
}

func (m *mockSubfolderRepository) Create(ctx context.Context, subfolder *models.Subfolder) error {
	if m.createErr != nil {
		return m.createErr
	}
	subfolder.ID = 1
	subfolder.DisplayOrder = 1
	return nil
}

// mockFileRepository is a mock implementation of FileRepository
type mockFileRepository struct {
	files           []models.FileRecord
	file            *models.FileRecord
	stats           *models.LibraryStats
	err             error
	getByIDErr      error
	createErr       error
	updateErr       error
	deleteErr       error
	created         *models.FileRecord
	deleteCalled    bool
	lastFilter      models.FileFilter
	updatedStatus   models.FileStatus
	updatedReviewer int
}

func (m *mockFileRepository) Create(ctx context.Context, file *models.FileRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = file
	return nil
}

func (m *mockFileRepository) GetByID(ctx context.Context, id string) (*models.FileRecord, error) {
	if m.getByIDErr != nil {
		return nil, m.getByIDErr
	}
	return m.file, nil
}

func (m *mockFileRepository) GetByStoredFilename(ctx context.Context, filename string) (*models.FileRecord, error) {
	if m.getByIDErr != nil {
		return nil, m.getByIDErr
	}
	return m.file, nil
}

func (m *mockFileRepository) GetByFilter(ctx context.Context, filter models.FileFilter) ([]models.FileRecord, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	return m.files, nil
}

func (m *mockFileRepository) UpdateStatus(ctx context.Context, id string, status models.FileStatus, approvedBy int) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updatedStatus = status
	m.updatedReviewer = approvedBy
	return nil
}

func (m *mockFileRepository) Delete(ctx context.Context, id string) error {
	m.deleteCalled = true
	return m.deleteErr
}

func (m *mockFileRepository) GetStats(ctx context.Context) (*models.LibraryStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}

// mockStorage is a mock implementation of Storage
type mockStorage struct {
	createErr    error
	openErr      error
	openFileErr  error
	deleteErr    error
	writeCloser  io.WriteCloser
	readCloser   io.ReadCloser
	file         *os.File
	deleteCalled bool
	deletedName  string
}

func (m *mockStorage) Create(filename string) (io.WriteCloser, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	if m.writeCloser != nil {
		return m.writeCloser, nil
	}
	return &mockWriteCloser{}, nil
}

func (m *mockStorage) Open(filename string) (io.ReadCloser, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	return m.readCloser, nil
}

func (m *mockStorage) OpenFile(filename string) (*os.File, error) {
	if m.openFileErr != nil {
		return nil, m.openFileErr
	}
	return m.file, nil
}

func (m *mockStorage) Delete(filename string) error {
	m.deleteCalled = true
	m.deletedName = filename
	if m.deleteErr != nil {
		return m.deleteErr
	}
	return nil
}

// mockWriteCloser is a mock implementation of io.WriteCloser
type mockWriteCloser struct {
	writeErr error
	closeErr error
	written  []byte
}

func (m *mockWriteCloser) Write(p []byte) (int, error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	m.written = append(m.written, p...)
	return len(p), nil
}

func (m *mockWriteCloser) Close() error {
	return m.closeErr
}

// mockUserRepository is a mock implementation of UserRepository
type mockUserRepository struct {
	user             *models.User
	getErr           error
	createErr        error
	existsByEmail    bool
	existsByUsername bool
	existsErr        error
	created          *models.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = 1
	m.created = user
	return nil
}

func (m *mockUserRepository) GetByEmailOrUsername(ctx context.Context, login string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.user, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.user, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.existsByEmail, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.existsByUsername, nil
}
