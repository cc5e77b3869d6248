package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/elimu-hub/backend/internal/models"
	"github.com/elimu-hub/backend/internal/storage"
)

// Storage defines the interface for file storage operations
type Storage interface {
	// Create creates a new file and returns a WriteCloser
	// The file path is generated from the stored filename
	Create(filename string) (io.WriteCloser, error)

	// Open opens a file for reading and returns a ReadCloser
	Open(filename string) (io.ReadCloser, error)

	// OpenFile opens a file and returns *os.File for use with http.ServeContent
	OpenFile(filename string) (*os.File, error)

	// Delete removes a file
	Delete(filename string) error
}

// UploadRequest carries the metadata of an incoming library upload
type UploadRequest struct {
	OriginalFilename string
	ContentType      string
	SectionID        int
	SubfolderID      *int
	Description      string
	Tags             []string
	UploaderID       int
	UploaderRole     models.Role
}

// FileService handles upload, download and deletion of library files
type FileService struct {
	fileRepo      FileRepository
	sectionRepo   SectionRepository
	subfolderRepo SubfolderRepository
	storage       Storage
}

// NewFileService creates a new file service
func NewFileService(fileRepo FileRepository, sectionRepo SectionRepository, subfolderRepo SubfolderRepository, fileStorage Storage) *FileService {
	return &FileService{
		fileRepo:      fileRepo,
		sectionRepo:   sectionRepo,
		subfolderRepo: subfolderRepo,
		storage:       fileStorage,
	}
}

// UploadFile stores the file content and creates its record in the moderation gate
// Uploads enter PENDING; uploads by an admin are auto-approved
func (s *FileService) UploadFile(ctx context.Context, reader io.Reader, req *UploadRequest) (*models.FileRecord, error) {
	// Target section must exist
	if _, err := s.sectionRepo.GetByID(ctx, req.SectionID); err != nil {
		return nil, err
	}

	// A subfolder, when given, must belong to the target section
	if req.SubfolderID != nil {
		subfolder, err := s.subfolderRepo.GetByID(ctx, *req.SubfolderID)
		if err != nil {
			return nil, err
		}
		if subfolder.SectionID != req.SectionID {
			return nil, fmt.Errorf("subfolder does not belong to section")
		}
	}

	// Generate new stored filename with the original extension
	ext := filepath.Ext(req.OriginalFilename)
	if ext == "" {
		ext = InferExtensionFromContentType(req.ContentType)
	}
	storedFilename := storage.GenerateFileName(ext)

	// Create SizeWriter to track bytes
	sizeWriter := storage.NewSizeWriter()

	// Create TeeReader to count bytes while copying
	teeReader := io.TeeReader(reader, sizeWriter)

	writeCloser, err := s.storage.Create(storedFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer writeCloser.Close()

	_, err = io.Copy(writeCloser, teeReader)
	if err != nil {
		// Cleanup: delete the file if copy fails
		s.storage.Delete(storedFilename)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	if sizeWriter.Size() == 0 {
		s.storage.Delete(storedFilename)
		return nil, fmt.Errorf("file is empty")
	}

	file := &models.FileRecord{
		ID:               storage.GenerateFileName(""),
		StoredFilename:   storedFilename,
		OriginalFilename: req.OriginalFilename,
		FileType:         InferFileType(req.ContentType, ext),
		FileSize:         sizeWriter.Size(),
		MimeType:         req.ContentType,
		Status:           models.FileStatusPending,
		SectionID:        req.SectionID,
		SubfolderID:      req.SubfolderID,
		UploadedBy:       req.UploaderID,
		Description:      strings.TrimSpace(req.Description),
		Tags:             req.Tags,
	}

	// Admin uploads skip the moderation queue
	if req.UploaderRole == models.RoleAdmin {
		file.Status = models.FileStatusApproved
		uploaderID := req.UploaderID
		file.ApprovedBy = &uploaderID
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		// Cleanup: delete the file if record creation fails
		s.storage.Delete(storedFilename)
		return nil, err
	}

	return file, nil
}

// DeleteFile removes a file record and its stored content permanently
func (s *FileService) DeleteFile(ctx context.Context, id string) error {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Remove content first; a missing file on disk is not fatal for the record delete
	if err := s.storage.Delete(file.StoredFilename); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return s.fileRepo.Delete(ctx, id)
}

// GetFileByStoredFilename retrieves the record backing a stored filename
func (s *FileService) GetFileByStoredFilename(ctx context.Context, filename string) (*models.FileRecord, error) {
	return s.fileRepo.GetByStoredFilename(ctx, filename)
}

// GetFile returns an *os.File for use with http.ServeContent
func (s *FileService) GetFile(filename string) (*os.File, error) {
	return s.storage.OpenFile(filename)
}

// InferExtensionFromContentType infers the extension from the content type
//
// "contentType" parameter is the content type to infer the extension from.
//
// Returns the inferred extension, or empty string if the extension cannot be inferred.
func InferExtensionFromContentType(contentType string) string {
	// Simple content type to extension mapping
	contentTypeMap := map[string]string{
		"image/jpeg":      ".jpg",
		"image/png":       ".png",
		"image/gif":       ".gif",
		"image/webp":      ".webp",
		"audio/mpeg":      ".mp3",
		"audio/wav":       ".wav",
		"audio/ogg":       ".ogg",
		"video/mp4":       ".mp4",
		"video/webm":      ".webm",
		"application/pdf": ".pdf",
		"text/plain":      ".txt",
	}

	if ext, ok := contentTypeMap[contentType]; ok {
		return ext
	}
	return ""
}

// InferFileType maps a MIME type (with extension fallback) to a library file type tag
func InferFileType(contentType, ext string) models.FileType {
	switch {
	case contentType == "application/pdf" || strings.EqualFold(ext, ".pdf"):
		return models.FileTypePDF
	case strings.HasPrefix(contentType, "video/"):
		return models.FileTypeVideo
	case strings.HasPrefix(contentType, "audio/"):
		return models.FileTypeAudio
	case strings.HasPrefix(contentType, "image/"):
		return models.FileTypeImage
	default:
		return models.FileTypeDocument
	}
}
