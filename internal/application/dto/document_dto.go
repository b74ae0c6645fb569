package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateDocumentRequest body para POST /api/documents.
// document_type y priority se validan contra el catálogo en el caso de uso.
type CreateDocumentRequest struct {
	DocumentType   string          `json:"document_type" validate:"required"`
	DocumentNumber string          `json:"document_number" validate:"required,min=1,max=100"`
	SupplierName   string          `json:"supplier_name" validate:"required,min=1,max=200"`
	DocumentDate   string          `json:"document_date" validate:"required,datetime=2006-01-02"`
	DocumentValue  decimal.Decimal `json:"document_value"`
	Currency       string          `json:"currency" validate:"required,len=3,alpha"`
	Priority       string          `json:"priority" validate:"omitempty"`
	ApproverID     string          `json:"approver_id" validate:"omitempty,uuid"`
	Remarks        string          `json:"remarks" validate:"max=2000"`
}

// UpdateDocumentRequest body para PUT /api/documents/:id (solo Draft).
type UpdateDocumentRequest struct {
	DocumentType   *string          `json:"document_type"`
	DocumentNumber *string          `json:"document_number" validate:"omitempty,min=1,max=100"`
	SupplierName   *string          `json:"supplier_name" validate:"omitempty,min=1,max=200"`
	DocumentDate   *string          `json:"document_date" validate:"omitempty,datetime=2006-01-02"`
	DocumentValue  *decimal.Decimal `json:"document_value"`
	Currency       *string          `json:"currency" validate:"omitempty,len=3,alpha"`
	Priority       *string          `json:"priority"`
	ApproverID     *string          `json:"approver_id" validate:"omitempty,uuid"`
	Remarks        *string          `json:"remarks" validate:"omitempty,max=2000"`
}

// ApproveRequest body opcional para POST /api/documents/:id/approve.
type ApproveRequest struct {
	Remarks string `json:"remarks" validate:"max=2000"`
}

// RejectRequest body para POST /api/documents/:id/reject. Un motivo vacío se rechaza en el caso de uso.
type RejectRequest struct {
	Reason string `json:"reason" validate:"max=2000"`
}

// DocumentFilterQuery query params de GET /api/documents.
type DocumentFilterQuery struct {
	Search   string `query:"search"`
	Status   string `query:"status"`
	Type     string `query:"type"`
	Priority string `query:"priority"`
}

// DocumentResponse salida de un documento.
type DocumentResponse struct {
	ID              string          `json:"id"`
	DocumentType    string          `json:"document_type"`
	DocumentNumber  string          `json:"document_number"`
	SupplierName    string          `json:"supplier_name"`
	DocumentDate    string          `json:"document_date"`
	DocumentValue   decimal.Decimal `json:"document_value"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	Priority        string          `json:"priority"`
	ApproverID      string          `json:"approver_id,omitempty"`
	CreatedBy       string          `json:"created_by"`
	Remarks         string          `json:"remarks,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// DocumentListResponse lista filtrada de documentos.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Total int                `json:"total"`
}

// HistoryEntryResponse entrada del historial (más reciente primero).
type HistoryEntryResponse struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"document_id"`
	ActionType  string    `json:"action_type"`
	OldStatus   *string   `json:"old_status"`
	NewStatus   string    `json:"new_status"`
	PerformedBy string    `json:"performed_by"`
	Remarks     string    `json:"remarks,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DocumentActionsResponse acciones que el usuario actual puede ejecutar sobre el documento.
type DocumentActionsResponse struct {
	DocumentID string   `json:"document_id"`
	Status     string   `json:"status"`
	Actions    []string `json:"actions"`
	Terminal   bool     `json:"terminal"`
}

// DocumentFileResponse metadatos de un adjunto.
type DocumentFileResponse struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"document_id"`
	FileName    string    `json:"file_name"`
	StoragePath string    `json:"storage_path"`
	FileSize    int64     `json:"file_size"`
	FileType    string    `json:"file_type"`
	UploadedBy  string    `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// DocumentStatusChangedEvent payload publicado en el topic de cambios de estado.
type DocumentStatusChangedEvent struct {
	DocumentID     string    `json:"document_id"`
	DocumentNumber string    `json:"document_number"`
	DocumentType   string    `json:"document_type"`
	Action         string    `json:"action"`
	OldStatus      string    `json:"old_status"`
	NewStatus      string    `json:"new_status"`
	PerformedBy    string    `json:"performed_by"`
	Remarks        string    `json:"remarks,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
