package types

import "time"

// ApplicationDocument represents a file uploaded in support of an application
type ApplicationDocument struct {
	ID            string    `db:"id" json:"id"`
	ApplicationID string    `db:"application_id" json:"applicationId"`
	UserID        string    `db:"user_id" json:"userId"`
	DocumentType  string    `db:"document_type" json:"documentType" form:"document_type"`
	FileName      string    `db:"file_name" json:"fileName"`
	FileSizeBytes int64     `db:"file_size_bytes" json:"fileSizeBytes"`
	MimeType      string    `db:"mime_type" json:"mimeType"`
	StorageKey    string    `db:"storage_key" json:"-"`
	UploadedAt    time.Time `db:"uploaded_at" json:"uploadedAt"`
}

// Document type constants
const (
	DocTypeBusinessPlan            = "business_plan"
	DocTypeRegistrationCertificate = "registration_certificate"
	DocTypeFinancialStatement      = "financial_statement"
	DocTypeNationalID              = "national_id"
	DocTypeOther                   = "other"
)

var DocumentTypes = []string{
	DocTypeBusinessPlan,
	DocTypeRegistrationCertificate,
	DocTypeFinancialStatement,
	DocTypeNationalID,
	DocTypeOther,
}
