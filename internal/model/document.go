package model

import "time"

// Document is the relational ownership record for an uploaded file.
// The wider portal schema owns this table; the gateway only reads it for
// authorization fallbacks and removes the row after a successful delete.
type Document struct {
	ID          string    `json:"id"`
	FileKey     string    `json:"file_key"`
	FileName    string    `json:"file_name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Upload is the result of a successful upload: the generated key plus the
// attributes echoed back to the caller.
type Upload struct {
	FileKey     string `json:"fileKey"`
	FileName    string `json:"fileName"`
	Size        int64  `json:"fileSize"`
	ContentType string `json:"fileType"`
}

// SignedLink is a time-boxed URL granting access to one object.
// It is generated fresh per request and never stored.
type SignedLink struct {
	URL       string `json:"signedUrl"`
	ExpiresIn int    `json:"expiresIn"`
}
