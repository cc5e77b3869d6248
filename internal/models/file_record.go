package models

import "time"

// FileStatus represents the moderation status of a library file
type FileStatus string

const (
	FileStatusPending  FileStatus = "PENDING"
	FileStatusApproved FileStatus = "APPROVED"
	FileStatusDeclined FileStatus = "DECLINED"
)

// FileType represents the coarse content type tag of a library file
type FileType string

const (
	FileTypePDF      FileType = "PDF"
	FileTypeVideo    FileType = "VIDEO"
	FileTypeAudio    FileType = "AUDIO"
	FileTypeImage    FileType = "IMAGE"
	FileTypeDocument FileType = "DOCUMENT"
)

// FileRecord represents an uploaded library resource
type FileRecord struct {
	ID               string     `json:"id"`
	StoredFilename   string     `json:"storedFilename"`
	OriginalFilename string     `json:"originalFilename"`
	FileType         FileType   `json:"fileType"`
	FileSize         int64      `json:"fileSize"`
	MimeType         string     `json:"mimeType"`
	Status           FileStatus `json:"status"`
	SectionID        int        `json:"sectionId"`
	SubfolderID      *int       `json:"subfolderId,omitempty"`
	UploadedBy       int        `json:"uploadedBy"`
	ApprovedBy       *int       `json:"approvedBy,omitempty"`
	Description      string     `json:"description,omitempty"`
	Tags             []string   `json:"tags,omitempty"`
	DownloadURL      string     `json:"downloadUrl,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// FileSort represents a file listing sort policy
type FileSort string

const (
	FileSortNewest FileSort = "newest"
	FileSortOldest FileSort = "oldest"
	FileSortName   FileSort = "name"
	FileSortSize   FileSort = "size"
)

// FileFilter narrows a file listing to a scope
type FileFilter struct {
	SectionID   int
	SubfolderID *int
	Status      *FileStatus
	Sort        FileSort
}

// LibraryStats summarizes the state of the library for admins
type LibraryStats struct {
	TotalFiles    int            `json:"totalFiles"`
	TotalBytes    int64          `json:"totalBytes"`
	ByStatus      map[string]int `json:"byStatus"`
	ByType        map[string]int `json:"byType"`
	SectionCount  int            `json:"sectionCount"`
	PendingReview int            `json:"pendingReview"`
}
