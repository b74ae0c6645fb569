package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del flujo de aprobación.
const (
	DocumentStatusDraft    = "Draft"
	DocumentStatusPending  = "Pending"
	DocumentStatusApproved = "Approved"
	DocumentStatusRejected = "Rejected"
	DocumentStatusClosed   = "Closed" // existe en el modelo; ninguna operación lo produce
)

// Tipos de documento de importación.
const (
	DocumentTypePurchaseOrder      = "Purchase Order"
	DocumentTypeCommercialInvoice  = "Commercial Invoice"
	DocumentTypeGoodsReceipt       = "Goods Receipt"
	DocumentTypePackingList        = "Packing List"
	DocumentTypeBillOfLading       = "Bill of Lading"
	DocumentTypeCustomsDeclaration = "Customs Declaration"
)

// Prioridades.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
	PriorityUrgent = "Urgent"
)

// Document representa un documento de importación sujeto al flujo de aprobación.
type Document struct {
	ID              string
	DocumentType    string
	DocumentNumber  string // único global
	SupplierName    string
	DocumentDate    time.Time
	DocumentValue   decimal.Decimal
	Currency        string
	Status          string
	Priority        string
	ApproverID      string // vacío si no hay aprobador asignado
	CreatedBy       string
	Remarks         string
	RejectionReason string // solo con Status = Rejected
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ValidDocumentType indica si t es un tipo de documento conocido.
func ValidDocumentType(t string) bool {
	switch t {
	case DocumentTypePurchaseOrder, DocumentTypeCommercialInvoice, DocumentTypeGoodsReceipt,
		DocumentTypePackingList, DocumentTypeBillOfLading, DocumentTypeCustomsDeclaration:
		return true
	}
	return false
}

// ValidPriority indica si p es una prioridad conocida.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ValidDocumentStatus indica si s es un estado conocido.
func ValidDocumentStatus(s string) bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusPending, DocumentStatusApproved,
		DocumentStatusRejected, DocumentStatusClosed:
		return true
	}
	return false
}
