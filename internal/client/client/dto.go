package client

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/edusync/edusync-client/internal/client/models"
)

// envelope is the backend's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// flexID accepts ids encoded as JSON numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type userDTO struct {
	ID             flexID  `json:"id"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Email          string  `json:"email"`
	Role           string  `json:"role"`
	ProfilePicture *string `json:"profilePicture"`
}

func (u userDTO) identity() models.Identity {
	id := models.Identity{
		ID:          string(u.ID),
		DisplayName: strings.TrimSpace(u.FirstName + " " + u.LastName),
		Email:       u.Email,
		Role:        models.NormalizeRole(models.Role(u.Role)),
	}
	if u.ProfilePicture != nil {
		id.AvatarRef = models.AvatarRef(*u.ProfilePicture)
	}
	return id
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         userDTO `json:"user"`
	SessionToken string  `json:"sessionToken"`
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

type registerResponse struct {
	User userDTO `json:"user"`
}

type resourceDTO struct {
	ID           flexID `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	FileName     string `json:"fileName"`
	FileSize     int64  `json:"fileSize"`
	FileType     string `json:"fileType"`
	UploadedBy   flexID `json:"uploadedBy"`
	UploaderName string `json:"uploaderName"`
	UploadedAt   string `json:"uploadedAt"`
	UpdatedAt    string `json:"updatedAt"`
	Category     string `json:"category"`
	Difficulty   string `json:"difficulty"`
}

func (r resourceDTO) resource() models.Resource {
	owner := r.UploaderName
	if owner == "" {
		owner = string(r.UploadedBy)
	}
	created := parseTime(r.UploadedAt)
	modified := parseTime(r.UpdatedAt)
	if modified.Before(created) {
		modified = created
	}
	return models.Resource{
		ID:            string(r.ID),
		Title:         r.Title,
		Description:   r.Description,
		FileName:      r.FileName,
		FileType:      r.FileType,
		FileSizeBytes: r.FileSize,
		OwnerName:     owner,
		Category:      r.Category,
		Difficulty:    r.Difficulty,
		CreatedAt:     created,
		ModifiedAt:    modified,
	}
}

type resourceUpdateRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Difficulty  *string `json:"difficulty,omitempty"`
}

type searchHitDTO struct {
	ID          flexID  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Difficulty  string  `json:"difficulty"`
	Relevance   float64 `json:"relevanceScore"`
}

func (h searchHitDTO) candidate() models.Candidate {
	typ := h.Type
	if typ == "" {
		typ = "resource"
	}
	return models.Candidate{
		ID:          string(h.ID),
		Title:       h.Title,
		Description: h.Description,
		Type:        typ,
		Category:    h.Category,
		Difficulty:  h.Difficulty,
		Relevance:   h.Relevance,
	}
}

type avatarResponse struct {
	ProfilePicture string `json:"profilePicture"`
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05"}

// parseTime returns the zero time for empty or unrecognized values.
func parseTime(s string) time.Time {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
