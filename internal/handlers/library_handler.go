package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	authMiddleware "github.com/elimu-hub/backend/internal/auth/middleware"
	"github.com/elimu-hub/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LibraryService defines the interface for library content tree operations
type LibraryService interface {
	// GetSections retrieves the section tree with nested subfolders and file counts.
	//
	// "isAdmin" controls whether pending/declined files are included in the counts.
	//
	// If some error will occur during data retrieve, the error will be returned together with "nil" value.
	GetSections(ctx context.Context, isAdmin bool) ([]models.Section, error)
	// GetFiles retrieves files in a scope.
	//
	// Non-admin callers are pinned to APPROVED files regardless of the requested status.
	//
	// If some error will occur during data retrieve, the error will be returned together with "nil" value.
	GetFiles(ctx context.Context, filter models.FileFilter, isAdmin bool) ([]models.FileRecord, error)
	// GetFileByID retrieves a single file record.
	//
	// Non-admin callers can only see APPROVED files.
	//
	// If some error will occur during data retrieve, the error will be returned together with "nil" value.
	GetFileByID(ctx context.Context, id string, isAdmin bool) (*models.FileRecord, error)
	// CreateSection creates a new section appended to the end of the display order.
	//
	// If some error will occur during creation, the error will be returned together with "nil" value.
	CreateSection(ctx context.Context, req *models.CreateSectionRequest) (*models.Section, error)
	// CreateSubfolder creates a new subfolder under an existing section.
	//
	// If some error will occur during creation, the error will be returned together with "nil" value.
	CreateSubfolder(ctx context.Context, req *models.CreateSubfolderRequest) (*models.Subfolder, error)
	// ApproveFile transitions a PENDING file to APPROVED.
	//
	// If the file is missing or already reviewed, an error will be returned.
	ApproveFile(ctx context.Context, id string, reviewerID int) error
	// DeclineFile transitions a PENDING file to DECLINED.
	//
	// If the file is missing or already reviewed, an error will be returned.
	DeclineFile(ctx context.Context, id string, reviewerID int) error
	// GetStats aggregates library-wide counts for administrators.
	//
	// If some error will occur during data retrieve, the error will be returned together with "nil" value.
	GetStats(ctx context.Context) (*models.LibraryStats, error)
}

// FileDeleter removes a file record and its stored content
type FileDeleter interface {
	// DeleteFile removes a file record and its stored content permanently.
	//
	// If the file does not exist, an error will be returned.
	DeleteFile(ctx context.Context, id string) error
}

// LibraryHandler handles library content tree HTTP requests
type LibraryHandler struct {
	BaseHandler
	libraryService LibraryService
	fileDeleter    FileDeleter
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(libraryService LibraryService, fileDeleter FileDeleter, logger *zap.Logger) *LibraryHandler {
	return &LibraryHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		libraryService: libraryService,
		fileDeleter:    fileDeleter,
	}
}

// isAdmin reports whether the request carries a validated admin identity
func isAdmin(ctx context.Context) bool {
	role, ok := authMiddleware.GetUserRole(ctx)
	return ok && models.Role(role) >= models.RoleAdmin
}

// GetSections handles GET /library/sections
// @Summary List library sections
// @Description Get all active sections ordered by display order, with nested subfolders and file counts
// @Tags library
// @Accept json
// @Produce json
// @Success 200 {array} models.Section
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /library/sections [get]
func (h *LibraryHandler) GetSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.libraryService.GetSections(r.Context(), isAdmin(r.Context()))
	if err != nil {
		h.Logger.Error("failed to get sections", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to get sections")
		return
	}

	if sections == nil {
		sections = []models.Section{}
	}
	h.RespondJSON(w, http.StatusOK, sections)
}

// GetFiles handles GET /library/files
// @Summary List library files
// @Description Get files in a section or subfolder scope. Non-admin callers only see approved files.
// @Tags library
// @Accept json
// @Produce json
// @Param sectionId query int true "Section ID"
// @Param subfolderId query int false "Subfolder ID"
// @Param status query string false "Status filter (PENDING, APPROVED, DECLINED; admin only)"
// @Param sort query string false "Sort policy (newest, oldest, name, size)"
// @Success 200 {array} models.FileRecord
// @Failure 400 {object} map[string]string "Invalid request parameters"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /library/files [get]
func (h *LibraryHandler) GetFiles(w http.ResponseWriter, r *http.Request) {
	sectionIDStr := r.URL.Query().Get("sectionId")
	sectionID, err := strconv.Atoi(sectionIDStr)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid section ID")
		return
	}

	filter := models.FileFilter{SectionID: sectionID}

	if subfolderIDStr := r.URL.Query().Get("subfolderId"); subfolderIDStr != "" {
		subfolderID, err := strconv.Atoi(subfolderIDStr)
		if err != nil {
			h.RespondError(w, http.StatusBadRequest, "invalid subfolder ID")
			return
		}
		filter.SubfolderID = &subfolderID
	}

	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := models.FileStatus(strings.ToUpper(statusStr))
		switch status {
		case models.FileStatusPending, models.FileStatusApproved, models.FileStatusDeclined:
			filter.Status = &status
		default:
			h.RespondError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
	}

	if sortStr := r.URL.Query().Get("sort"); sortStr != "" {
		sort := models.FileSort(sortStr)
		switch sort {
		case models.FileSortNewest, models.FileSortOldest, models.FileSortName, models.FileSortSize:
			filter.Sort = sort
		default:
			h.RespondError(w, http.StatusBadRequest, "invalid sort policy")
			return
		}
	}

	files, err := h.libraryService.GetFiles(r.Context(), filter, isAdmin(r.Context()))
	if err != nil {
		h.Logger.Error("failed to get files", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to get files")
		return
	}

	if files == nil {
		files = []models.FileRecord{}
	}
	h.RespondJSON(w, http.StatusOK, files)
}

// GetFileMetadata handles GET /library/files/{id}
// @Summary Get file metadata
// @Description Retrieve metadata for a single library file
// @Tags library
// @Accept json
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} models.FileRecord
// @Failure 404 {object} map[string]string "File not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /library/files/{id} [get]
func (h *LibraryHandler) GetFileMetadata(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	file, err := h.libraryService.GetFileByID(r.Context(), id, isAdmin(r.Context()))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, "file not found")
			return
		}
		h.Logger.Error("failed to get file", zap.Error(err), zap.String("id", id))
		h.RespondError(w, http.StatusInternalServerError, "failed to get file")
		return
	}

	h.RespondJSON(w, http.StatusOK, file)
}

// CreateSection handles POST /library/sections
// @Summary Create a section
// @Description Create a new top-level library section (admin only)
// @Tags library
// @Accept json
// @Produce json
// @Param request body models.CreateSectionRequest true "Section creation request"
// @Success 201 {object} models.Section
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Router /library/sections [post]
func (h *LibraryHandler) CreateSection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	section, err := h.libraryService.CreateSection(r.Context(), &req)
	if err != nil {
		h.Logger.Error("failed to create section", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusCreated, section)
}

// CreateSubfolder handles POST /library/subfolders
// @Summary Create a subfolder
// @Description Create a new subfolder under an existing section (admin only)
// @Tags library
// @Accept json
// @Produce json
// @Param request body models.CreateSubfolderRequest true "Subfolder creation request"
// @Success 201 {object} models.Subfolder
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 404 {object} map[string]string "Section not found"
// @Router /library/subfolders [post]
func (h *LibraryHandler) CreateSubfolder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSubfolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	subfolder, err := h.libraryService.CreateSubfolder(r.Context(), &req)
	if err != nil {
		h.Logger.Error("failed to create subfolder", zap.Error(err))
		errStatus := http.StatusBadRequest
		if strings.Contains(err.Error(), "not found") {
			errStatus = http.StatusNotFound
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusCreated, subfolder)
}

// ApproveFile handles POST /library/files/{id}/approve
// @Summary Approve a pending file
// @Description Transition a pending file to APPROVED (admin only)
// @Tags library
// @Accept json
// @Produce json
// @Param id path string true "File ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "File not found"
// @Failure 409 {object} map[string]string "File is not pending review"
// @Router /library/files/{id}/approve [post]
func (h *LibraryHandler) ApproveFile(w http.ResponseWriter, r *http.Request) {
	h.reviewFile(w, r, h.libraryService.ApproveFile)
}

// DeclineFile handles POST /library/files/{id}/decline
// @Summary Decline a pending file
// @Description Transition a pending file to DECLINED (admin only)
// @Tags library
// @Accept json
// @Produce json
// @Param id path string true "File ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "File not found"
// @Failure 409 {object} map[string]string "File is not pending review"
// @Router /library/files/{id}/decline [post]
func (h *LibraryHandler) DeclineFile(w http.ResponseWriter, r *http.Request) {
	h.reviewFile(w, r, h.libraryService.DeclineFile)
}

// reviewFile applies a moderation transition using the reviewer identity from the token
func (h *LibraryHandler) reviewFile(w http.ResponseWriter, r *http.Request, transition func(ctx context.Context, id string, reviewerID int) error) {
	id := chi.URLParam(r, "id")

	reviewerID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	err := transition(r.Context(), id, reviewerID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, "file not found")
			return
		}
		if strings.Contains(err.Error(), "not pending") {
			h.RespondError(w, http.StatusConflict, err.Error())
			return
		}
		h.Logger.Error("failed to review file", zap.Error(err), zap.String("id", id))
		h.RespondError(w, http.StatusInternalServerError, "failed to review file")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteFile handles DELETE /library/files/{id}
// @Summary Delete a file
// @Description Permanently delete a file record and its stored content (admin only)
// @Tags library
// @Accept json
// @Produce json
// @Param id path string true "File ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "File not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /library/files/{id} [delete]
func (h *LibraryHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.fileDeleter.DeleteFile(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, "file not found")
			return
		}
		h.Logger.Error("failed to delete file", zap.Error(err), zap.String("id", id))
		h.RespondError(w, http.StatusInternalServerError, "failed to delete file")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetStats handles GET /library/stats
// @Summary Get library statistics
// @Description Aggregate counts per status and type plus storage usage (admin only)
// @Tags library
// @Accept json
// @Produce json
// @Success 200 {object} models.LibraryStats
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /library/stats [get]
func (h *LibraryHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.libraryService.GetStats(r.Context())
	if err != nil {
		h.Logger.Error("failed to get stats", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	h.RespondJSON(w, http.StatusOK, stats)
}
