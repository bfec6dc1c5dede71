package models

import "time"

// Project groups one uploaded document with its chat and analysis context.
type Project struct {
	ID        string
	Name      string
	Code      string
	Owner     string
	Summary   string
	FileID    int64 // backend document id, 0 until a document is attached
	CreatedAt time.Time
	Synthetic bool // the injected default project, never persisted
}

// Document is the backend's authoritative record of an uploaded file.
type Document struct {
	FileID          int64  `json:"file_id"`
	Filename        string `json:"filename"`
	UploadTimestamp string `json:"upload_timestamp"`
}

// ProjectDocument is the locally cached copy of a project's uploaded file,
// kept so the document can be re-rendered without a round trip. The backend
// copy, addressed by file id, stays authoritative for analysis.
type ProjectDocument struct {
	FileID       int64
	Name         string
	MimeType     string
	Data         string // full data URI, base64-encoded content
	LastModified int64
	UploadedAt   time.Time
}

// ChatMessage is a single turn of an in-memory transcript.
type ChatMessage struct {
	Role    string // "user" or "assistant"
	Content string
}

// UploadResult is the backend's response to a document upload.
type UploadResult struct {
	Message string `json:"message"`
	FileID  int64  `json:"file_id"`
}

// ChatResponse is the backend's response to a chat turn.
type ChatResponse struct {
	Answer         string  `json:"answer"`
	Model          string  `json:"model"`
	ProcessingTime float64 `json:"processing_time"`
}

// CleanupResult summarizes a server-side document cleanup.
type CleanupResult struct {
	KeptDocument string `json:"kept_document"`
	DeletedCount int    `json:"deleted_count"`
}

// Breakdown is the structured security analysis generated for a document.
type Breakdown struct {
	MajorComponents []Component   `json:"major_components"`
	Diagrams        []Diagram     `json:"diagrams"`
	APIContracts    []APIContract `json:"api_contracts"`
	PIIData         PIIData       `json:"pii_data"`
}

// Component describes one major component identified in the document.
type Component struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	KeyFunctions []string `json:"key_functions"`
}

// Diagram describes a diagram found or proposed by the analysis.
type Diagram struct {
	Type             string   `json:"type"`
	Purpose          string   `json:"purpose"`
	RelationToSystem string   `json:"relation_to_system"`
	KeyElements      []string `json:"key_elements"`
}

// APIContract describes one API surface extracted from the document.
type APIContract struct {
	Endpoint        string      `json:"endpoint"`
	Method          string      `json:"method"`
	Parameters      []Parameter `json:"parameters"`
	SuccessResponse string      `json:"success_response"`
	ErrorCodes      []string    `json:"error_codes"`
}

// Parameter is a single parameter of an API contract.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// PIIData lists personally identifiable information findings.
type PIIData struct {
	IdentifiedFields    []string `json:"identified_fields"`
	HandlingProcedures  string   `json:"handling_procedures"`
	ComplianceStandards []string `json:"compliance_standards"`
}

// DefaultModel is used whenever no preference is stored or an unsupported
// model identifier is supplied.
const DefaultModel = "gemini-2.0-flash"

// SupportedModels is the allow-list checked before a chat request is sent.
var SupportedModels = []string{"gemini-2.0-flash", "gemini-2.0-pro"}

// ValidModel returns model if it is on the allow-list, DefaultModel otherwise.
func ValidModel(model string) string {
	for _, m := range SupportedModels {
		if m == model {
			return model
		}
	}
	return DefaultModel
}
