package models

import "time"

// Deliverable is the single file a seller hands in for a project.
// Re-uploads replace the file reference, there is never a second row.
type Deliverable struct {
	ID         int       `json:"id"`
	ProjectID  int       `json:"project_id"`
	FileURL    string    `json:"file_url"`
	FileName   string    `json:"file_name"`
	UploadedAt time.Time `json:"uploaded_at"`
}
