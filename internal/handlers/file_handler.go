package handlers

import (
	"context"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	authMiddleware "github.com/elimu-hub/backend/internal/auth/middleware"
	"github.com/elimu-hub/backend/internal/models"
	"github.com/elimu-hub/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FileService defines the interface for file upload and retrieval operations
type FileService interface {
	// UploadFile stores the file content and creates its record in the moderation gate.
	//
	// "reader" parameter is the file content to upload.
	// "req" parameter carries the upload metadata and uploader identity.
	//
	// If some error will occur during file upload, the error will be returned together with "nil" value.
	UploadFile(ctx context.Context, reader io.Reader, req *services.UploadRequest) (*models.FileRecord, error)
	// GetFileByStoredFilename retrieves the record backing a stored filename.
	//
	// If some error will occur during data retrieve, the error will be returned together with "nil" value.
	GetFileByStoredFilename(ctx context.Context, filename string) (*models.FileRecord, error)
	// GetFile retrieves a file from storage for serving.
	//
	// "filename" parameter is the stored name of the file to retrieve.
	//
	// If some error will occur during file retrieval, the error will be returned together with "nil" value.
	GetFile(filename string) (*os.File, error)
}

// FileHandler handles file upload and download HTTP requests
type FileHandler struct {
	BaseHandler
	fileService FileService
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService FileService, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		BaseHandler: BaseHandler{Logger: logger},
		fileService: fileService,
	}
}

// UploadFile handles POST /library/upload
// @Summary Upload a library file
// @Description Upload a file into a section/subfolder scope. The file enters the moderation queue as PENDING; admin uploads are auto-approved.
// @Tags library
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param sectionId formData int true "Section ID"
// @Param subfolderId formData int false "Subfolder ID"
// @Param description formData string false "Description"
// @Param tags formData string false "Comma-separated tags"
// @Success 201 {object} models.FileRecord
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Section or subfolder not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /library/upload [post]
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	uploaderID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	role, _ := authMiddleware.GetUserRole(r.Context())

	// Parse multipart form (limit to 50MB)
	err := r.ParseMultipartForm(50 << 20) // 50MB
	if err != nil {
		h.Logger.Error("failed to parse multipart form", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "failed to parse request")
		return
	}

	// Get file from form
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		h.Logger.Error("failed to get file from form", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	sectionID, err := strconv.Atoi(r.FormValue("sectionId"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid section ID")
		return
	}

	var subfolderID *int
	if subfolderIDStr := r.FormValue("subfolderId"); subfolderIDStr != "" {
		id, err := strconv.Atoi(subfolderIDStr)
		if err != nil {
			h.RespondError(w, http.StatusBadRequest, "invalid subfolder ID")
			return
		}
		subfolderID = &id
	}

	// Get content type from form file header
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var tags []string
	if tagsStr := r.FormValue("tags"); tagsStr != "" {
		for _, tag := range strings.Split(tagsStr, ",") {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	record, err := h.fileService.UploadFile(r.Context(), file, &services.UploadRequest{
		OriginalFilename: fileHeader.Filename,
		ContentType:      contentType,
		SectionID:        sectionID,
		SubfolderID:      subfolderID,
		Description:      r.FormValue("description"),
		Tags:             tags,
		UploaderID:       uploaderID,
		UploaderRole:     models.Role(role),
	})
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		if strings.Contains(err.Error(), "does not belong") || strings.Contains(err.Error(), "is empty") {
			h.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("failed to upload file", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to upload file")
		return
	}

	h.RespondJSON(w, http.StatusCreated, record)
}

// DownloadFile handles GET /uploads/library/{filename}
// @Summary Download a library file
// @Description Download a stored file by its stored filename. Only approved files are served to non-admin callers. Supports range requests.
// @Tags library
// @Produce application/octet-stream
// @Param filename path string true "Stored filename"
// @Param Range header string false "Range"
// @Success 200 "File content"
// @Success 206 "Partial file content (for range requests)"
// @Failure 404 {object} map[string]string "File not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /uploads/library/{filename} [get]
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	record, err := h.fileService.GetFileByStoredFilename(r.Context(), filename)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, "file not found")
			return
		}
		h.Logger.Error("failed to get file record for download", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to get file")
		return
	}

	// Unapproved content is only visible to admins
	if record.Status != models.FileStatusApproved && !isAdmin(r.Context()) {
		h.RespondError(w, http.StatusNotFound, "file not found")
		return
	}

	file, err := h.fileService.GetFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			h.RespondError(w, http.StatusNotFound, "file not found")
			return
		}
		h.Logger.Error("failed to open file", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to open file")
		return
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		h.Logger.Error("failed to get file info", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to get file info")
		return
	}

	w.Header().Set("Content-Type", record.MimeType)

	// Serve content with range support
	http.ServeContent(w, r, record.OriginalFilename, fileInfo.ModTime(), file)
}
