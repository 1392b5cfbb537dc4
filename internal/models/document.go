package models

import "time"

// DocumentStatus is the verification state of a submitted document.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentApproved DocumentStatus = "approved"
	DocumentRejected DocumentStatus = "rejected"
)

// Reviewed reports whether the document has left the pending state.
func (s DocumentStatus) Reviewed() bool {
	return s == DocumentApproved || s == DocumentRejected
}

// Document is a file record attached to an application.
type Document struct {
	ID            string         `db:"id" json:"id"`
	ApplicationID string         `db:"application_id" json:"applicationId"`
	Category      string         `db:"category" json:"category"`
	Status        DocumentStatus `db:"status" json:"status"`
	FileName      string         `db:"file_name" json:"fileName"`
	FileURL       *string        `db:"file_url" json:"fileUrl,omitempty"`
	MimeType      *string        `db:"mime_type" json:"mimeType,omitempty"`
	SizeBytes     int64          `db:"size_bytes" json:"sizeBytes"`
	ReviewedBy    *string        `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time     `db:"reviewed_at" json:"reviewedAt,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`
}

// DocumentCounts aggregates document statuses for one or more applications.
type DocumentCounts struct {
	ApplicationID string `db:"application_id" json:"applicationId,omitempty"`
	Total         int    `db:"total" json:"totalDocs"`
	Approved      int    `db:"approved" json:"approvedDocs"`
	Rejected      int    `db:"rejected" json:"rejectedDocs"`
	Pending       int    `db:"pending" json:"pendingDocs"`
}

// DocumentProgress is the review-completion view of an application's documents.
type DocumentProgress struct {
	DocumentCounts
	VerificationProgress int `json:"verificationProgress"`
}
