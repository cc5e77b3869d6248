package models

import "time"

// Section is a top-level library category (e.g. "Mathematics")
type Section struct {
	ID           int         `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	DisplayOrder int         `json:"displayOrder"`
	IsActive     bool        `json:"isActive"`
	FileCount    int         `json:"fileCount"`
	Subfolders   []Subfolder `json:"subfolders"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// Subfolder is a second-level grouping that always belongs to one section
type Subfolder struct {
	ID           int    `json:"id"`
	SectionID    int    `json:"sectionId"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"displayOrder"`
}

// CreateSectionRequest represents a section creation payload
type CreateSectionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateSubfolderRequest represents a subfolder creation payload
type CreateSubfolderRequest struct {
	Name      string `json:"name"`
	SectionID int    `json:"sectionId"`
}
