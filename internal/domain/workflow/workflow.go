// Package workflow contiene la máquina de estados de los documentos:
// Draft → Pending → {Approved, Rejected}. Approved y Rejected son terminales.
package workflow

import (
	"github.com/jhoicas/Importaciones-api/internal/domain"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
)

// Action operación que un actor puede pedir sobre un documento.
type Action string

const (
	ActionView       Action = "view"
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionSubmit     Action = "submit"
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionUploadFile Action = "upload_file"
	ActionDeleteFile Action = "delete_file"
)

// DocumentActions todas las acciones sobre un documento existente, en el orden en que se
// presentan al cliente.
var DocumentActions = []Action{
	ActionView, ActionUpdate, ActionDelete, ActionSubmit, ActionApprove, ActionReject,
	ActionUploadFile, ActionDeleteFile,
}

type edge struct {
	from, to string
	history  string
}

var transitions = map[Action]edge{
	ActionSubmit:  {from: entity.DocumentStatusDraft, to: entity.DocumentStatusPending, history: entity.HistoryActionSubmitted},
	ActionApprove: {from: entity.DocumentStatusPending, to: entity.DocumentStatusApproved, history: entity.HistoryActionApproved},
	ActionReject:  {from: entity.DocumentStatusPending, to: entity.DocumentStatusRejected, history: entity.HistoryActionRejected},
}

// Next devuelve el estado destino de aplicar action sobre un documento en status.
// ErrInvalidTransition si la acción no es una transición o no parte de status.
func Next(status string, action Action) (string, error) {
	e, ok := transitions[action]
	if !ok || e.from != status {
		return "", domain.ErrInvalidTransition
	}
	return e.to, nil
}

// HistoryAction tipo de entrada de historial que registra una transición.
func HistoryAction(action Action) string {
	return transitions[action].history
}

// IsTerminal indica si ningún actor puede sacar al documento de status.
func IsTerminal(status string) bool {
	switch status {
	case entity.DocumentStatusApproved, entity.DocumentStatusRejected, entity.DocumentStatusClosed:
		return true
	}
	return false
}

// Editable indica si los campos del documento se pueden modificar.
func Editable(status string) bool {
	return status == entity.DocumentStatusDraft
}
