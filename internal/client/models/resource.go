package models

import "time"

// Resource is an uploaded learning resource.
//
// File fields (FileName, FileType, FileSizeBytes) are immutable after
// creation; edits only touch the descriptive fields.
type Resource struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	FileName      string    `json:"fileName"`
	FileType      string    `json:"fileType"`
	FileSizeBytes int64     `json:"fileSizeBytes"`
	OwnerName     string    `json:"ownerName"`
	Category      string    `json:"category,omitempty"`
	Difficulty    string    `json:"difficulty,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	ModifiedAt    time.Time `json:"modifiedAt"`
}

// ResourceInput is the caller-supplied part of a new Resource.
type ResourceInput struct {
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description"`
	FileName      string `json:"fileName" validate:"required"`
	FileType      string `json:"fileType"`
	FileSizeBytes int64  `json:"fileSizeBytes" validate:"gte=0"`
	OwnerName     string `json:"ownerName"`
	Category      string `json:"category,omitempty"`
	Difficulty    string `json:"difficulty,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
}

// ResourcePatch lists the editable fields; nil means "leave unchanged".
type ResourcePatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Difficulty  *string `json:"difficulty,omitempty"`
}

// Apply merges p into r and returns the result.
func (p ResourcePatch) Apply(r Resource) Resource {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Difficulty != nil {
		r.Difficulty = *p.Difficulty
	}
	return r
}

// AccessRecord is one entry of the per-identity history ring.
type AccessRecord struct {
	Resource   Resource  `json:"resource"`
	AccessedAt time.Time `json:"accessedAt"`
}

// Settings are the per-identity preferences.
type Settings struct {
	EmailNotifications bool   `json:"emailNotifications"`
	ResourceUpdates    bool   `json:"resourceUpdates"`
	AcademicReminders  bool   `json:"academicReminders"`
	ProfileVisibility  string `json:"profileVisibility" validate:"oneof=public private"`
	ShowEmail          bool   `json:"showEmail"`
	SessionTimeout     string `json:"sessionTimeout" validate:"oneof=1h 8h 24h 7d"`
}

// DefaultSettings is used when nothing was stored for an identity.
func DefaultSettings() Settings {
	return Settings{
		EmailNotifications: true,
		ResourceUpdates:    true,
		AcademicReminders:  true,
		ProfileVisibility:  "public",
		SessionTimeout:     "24h",
	}
}
