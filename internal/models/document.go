package models

import (
	"time"
)

// DocumentKind classifies an uploaded visa document.
type DocumentKind string

const (
	DocPassport     DocumentKind = "passport"
	DocI20          DocumentKind = "i20"
	DocVisaStamp    DocumentKind = "visa_stamp"
	DocSevisReceipt DocumentKind = "sevis_receipt"
	DocDS160        DocumentKind = "ds160"
	DocFinancial    DocumentKind = "financial"
	DocOther        DocumentKind = "other"
)

// ValidKind reports whether k is a known document kind.
func ValidKind(k DocumentKind) bool {
	switch k {
	case DocPassport, DocI20, DocVisaStamp, DocSevisReceipt, DocDS160, DocFinancial, DocOther:
		return true
	}
	return false
}

// Document is the relational record for one uploaded file. The file bytes
// themselves live in object storage under StorageKey; only their wrapped
// content key is stored here.
type Document struct {
	ID        string       `gorm:"primaryKey;type:text" json:"id"`
	UserID    string       `gorm:"index;not null" json:"user_id"`
	Kind      DocumentKind `gorm:"index" json:"kind"`
	Filename  string       `json:"filename"`
	Size      int64        `json:"size"`
	MimeType  string       `json:"mime_type"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	// StorageKey locates the encrypted blob in object storage.
	StorageKey string `gorm:"uniqueIndex;not null" json:"-"`

	// WrappedKey is the base64-encoded content key, sealed under the
	// user's key-wrapping key. The unwrapped key exists nowhere at rest.
	WrappedKey string `gorm:"not null" json:"-"`

	// Extraction holds AI-extracted text for this document, sealed by the
	// artifact codec. May be a legacy plaintext payload on old rows.
	Extraction []byte `json:"-"`
}
