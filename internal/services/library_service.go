package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/elimu-hub/backend/internal/models"
)

// SectionRepository defines methods for section data access
type SectionRepository interface {
	// GetAll retrieves all active sections ordered by display order
	//
	// "ctx" is the context for the request.
	// "approvedOnly" restricts the per-section file count to APPROVED files.
	//
	// Returns a list of sections and an error if any.
	GetAll(ctx context.Context, approvedOnly bool) ([]models.Section, error)
	// GetByID retrieves a section by ID
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the section.
	//
	// Returns the section and an error if any.
	GetByID(ctx context.Context, id int) (*models.Section, error)
	// ExistsByName checks if a section with the given name exists
	//
	// "ctx" is the context for the request.
	// "name" is the name of the section.
	//
	// Returns a boolean and an error if any.
	ExistsByName(ctx context.Context, name string) (bool, error)
	// Create creates a new section at the end of the display order
	//
	// "ctx" is the context for the request.
	// "section" is the section to create.
	//
	// Returns an error if any.
	Create(ctx context.Context, section *models.Section) error
}

// SubfolderRepository defines methods for subfolder data access
type SubfolderRepository interface {
	// GetAll retrieves all subfolders ordered by section and display order
	//
	// "ctx" is the context for the request.
	//
	// Returns a list of subfolders and an error if any.
	GetAll(ctx context.Context) ([]models.Subfolder, error)
	// GetByID retrieves a subfolder by ID
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the subfolder.
	//
	// Returns the subfolder and an error if any.
	GetByID(ctx context.Context, id int) (*models.Subfolder, error)
	// Create creates a new subfolder under its section
	//
	// "ctx" is the context for the request.
	// "subfolder" is the subfolder to create.
	//
	// Returns an error if any.
	Create(ctx context.Context, subfolder *models.Subfolder) error
}

// FileRepository defines methods for file record data access
type FileRepository interface {
	// Create inserts a new file record
	//
	// "ctx" is the context for the request.
	// "file" is the file record to create.
	//
	// Returns an error if any.
	Create(ctx context.Context, file *models.FileRecord) error
	// GetByID retrieves a file record by ID
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the file record.
	//
	// Returns the file record and an error if any.
	GetByID(ctx context.Context, id string) (*models.FileRecord, error)
	// GetByStoredFilename retrieves a file record by its stored filename
	//
	// "ctx" is the context for the request.
	// "filename" is the stored filename.
	//
	// Returns the file record and an error if any.
	GetByStoredFilename(ctx context.Context, filename string) (*models.FileRecord, error)
	// GetByFilter retrieves file records matching the given scope
	//
	// "ctx" is the context for the request.
	// "filter" is the listing scope, status narrowing and sort policy.
	//
	// Returns a list of file records and an error if any.
	GetByFilter(ctx context.Context, filter models.FileFilter) ([]models.FileRecord, error)
	// UpdateStatus transitions a PENDING file to a terminal status
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the file record.
	// "status" is the terminal status to set.
	// "approvedBy" is the ID of the reviewing admin.
	//
	// Returns an error if the file is missing or no longer pending.
	UpdateStatus(ctx context.Context, id string, status models.FileStatus, approvedBy int) error
	// Delete removes a file record permanently
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the file record.
	//
	// Returns an error if any.
	Delete(ctx context.Context, id string) error
	// GetStats aggregates library-wide counts
	//
	// "ctx" is the context for the request.
	//
	// Returns the stats and an error if any.
	GetStats(ctx context.Context) (*models.LibraryStats, error)
}

// LibraryService handles the content tree, authoring and the moderation gate
type LibraryService struct {
	sectionRepo   SectionRepository
	subfolderRepo SubfolderRepository
	fileRepo      FileRepository
	baseURL       string
}

// NewLibraryService creates a new library service
func NewLibraryService(sectionRepo SectionRepository, subfolderRepo SubfolderRepository, fileRepo FileRepository, baseURL string) *LibraryService {
	return &LibraryService{
		sectionRepo:   sectionRepo,
		subfolderRepo: subfolderRepo,
		fileRepo:      fileRepo,
		baseURL:       baseURL,
	}
}

// GetSections retrieves the section tree with nested subfolders and file counts
// Non-admin callers get counts restricted to APPROVED files
func (s *LibraryService) GetSections(ctx context.Context, isAdmin bool) ([]models.Section, error) {
	sections, err := s.sectionRepo.GetAll(ctx, !isAdmin)
	if err != nil {
		return nil, err
	}

	subfolders, err := s.subfolderRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	// Group subfolders under their sections
	bySection := make(map[int][]models.Subfolder)
	for _, subfolder := range subfolders {
		bySection[subfolder.SectionID] = append(bySection[subfolder.SectionID], subfolder)
	}
	for i := range sections {
		children := bySection[sections[i].ID]
		if children == nil {
			children = []models.Subfolder{}
		}
		sections[i].Subfolders = children
	}

	return sections, nil
}

// GetFiles retrieves files in a scope
// Non-admin callers are pinned to APPROVED files regardless of the requested status
func (s *LibraryService) GetFiles(ctx context.Context, filter models.FileFilter, isAdmin bool) ([]models.FileRecord, error) {
	if !isAdmin {
		approved := models.FileStatusApproved
		filter.Status = &approved
	}

	files, err := s.fileRepo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	for i := range files {
		files[i].DownloadURL = s.downloadURL(files[i].StoredFilename)
	}

	return files, nil
}

// GetFileByID retrieves a single file record
// Non-admin callers can only see APPROVED files
func (s *LibraryService) GetFileByID(ctx context.Context, id string, isAdmin bool) (*models.FileRecord, error) {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isAdmin && file.Status != models.FileStatusApproved {
		return nil, fmt.Errorf("file not found")
	}

	file.DownloadURL = s.downloadURL(file.StoredFilename)
	return file, nil
}

// CreateSection creates a new section appended to the end of the display order
func (s *LibraryService) CreateSection(ctx context.Context, req *models.CreateSectionRequest) (*models.Section, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("section name is required")
	}

	exists, err := s.sectionRepo.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("section with this name already exists")
	}

	section := &models.Section{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Subfolders:  []models.Subfolder{},
	}
	if err := s.sectionRepo.Create(ctx, section); err != nil {
		return nil, err
	}

	return section, nil
}

// CreateSubfolder creates a new subfolder under an existing section
func (s *LibraryService) CreateSubfolder(ctx context.Context, req *models.CreateSubfolderRequest) (*models.Subfolder, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("subfolder name is required")
	}

	// Parent section must exist
	if _, err := s.sectionRepo.GetByID(ctx, req.SectionID); err != nil {
		return nil, err
	}

	subfolder := &models.Subfolder{
		SectionID: req.SectionID,
		Name:      name,
	}
	if err := s.subfolderRepo.Create(ctx, subfolder); err != nil {
		return nil, err
	}

	return subfolder, nil
}

// ApproveFile transitions a PENDING file to APPROVED
func (s *LibraryService) ApproveFile(ctx context.Context, id string, reviewerID int) error {
	return s.reviewFile(ctx, id, models.FileStatusApproved, reviewerID)
}

// DeclineFile transitions a PENDING file to DECLINED
func (s *LibraryService) DeclineFile(ctx context.Context, id string, reviewerID int) error {
	return s.reviewFile(ctx, id, models.FileStatusDeclined, reviewerID)
}

// reviewFile applies a terminal moderation status to a pending file
// APPROVED and DECLINED are terminal: re-review attempts are rejected
func (s *LibraryService) reviewFile(ctx context.Context, id string, status models.FileStatus, reviewerID int) error {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if file.Status != models.FileStatusPending {
		return fmt.Errorf("file is not pending review")
	}

	return s.fileRepo.UpdateStatus(ctx, id, status, reviewerID)
}

// GetStats aggregates library-wide counts for administrators
func (s *LibraryService) GetStats(ctx context.Context) (*models.LibraryStats, error) {
	return s.fileRepo.GetStats(ctx)
}

// downloadURL builds the static download path for a stored filename
func (s *LibraryService) downloadURL(storedFilename string) string {
	return fmt.Sprintf("%s/uploads/library/%s", s.baseURL, storedFilename)
}
