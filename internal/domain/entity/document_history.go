package entity

import "time"

// Acciones registradas en el historial.
const (
	HistoryActionCreated      = "Created"
	HistoryActionUpdated      = "Updated"
	HistoryActionSubmitted    = "Submitted"
	HistoryActionApproved     = "Approved"
	HistoryActionRejected     = "Rejected"
	HistoryActionFileUploaded = "FileUploaded"
	HistoryActionFileDeleted  = "FileDeleted"
)

// DocumentHistory es una entrada inmutable del historial de un documento.
// OldStatus vacío significa que no había estado previo (creación).
type DocumentHistory struct {
	ID          string
	DocumentID  string
	ActionType  string
	OldStatus   string
	NewStatus   string
	PerformedBy string
	Remarks     string
	CreatedAt   time.Time
}
