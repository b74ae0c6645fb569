// Package document contiene los casos de uso del flujo de aprobación de documentos,
// sus adjuntos y sus exportaciones.
package document

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Importaciones-api/internal/application/dto"
	"github.com/jhoicas/Importaciones-api/internal/domain"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/domain/listing"
	"github.com/jhoicas/Importaciones-api/internal/domain/policy"
	"github.com/jhoicas/Importaciones-api/internal/domain/repository"
	"github.com/jhoicas/Importaciones-api/internal/domain/workflow"
	"github.com/jhoicas/Importaciones-api/pkg/logger"
)

// DefaultStatusTopic topic de Kafka para los cambios de estado.
const DefaultStatusTopic = "documents.status_changed"

// WorkflowUseCase motor del flujo Draft → Pending → Approved/Rejected.
//
// Cada transición bloquea la fila del documento (SELECT FOR UPDATE), re-evalúa la
// precondición sobre la fila bloqueada y escribe estado + historial + outbox en una sola
// transacción. De dos aprobaciones concurrentes una gana y la otra recibe ErrInvalidTransition.
type WorkflowUseCase struct {
	tx          TxRunner
	docRepo     repository.DocumentRepository
	historyRepo repository.DocumentHistoryRepository
	userRepo    repository.UserRepository
	blobs       BlobStore
	policy      *policy.Policy
	topic       string
	log         *logger.Logger
	now         func() time.Time
}

// NewWorkflowUseCase construye el caso de uso. blobs puede ser nil (sin limpieza de adjuntos).
func NewWorkflowUseCase(
	tx TxRunner,
	docRepo repository.DocumentRepository,
	historyRepo repository.DocumentHistoryRepository,
	userRepo repository.UserRepository,
	blobs BlobStore,
	pol *policy.Policy,
	topic string,
	log *logger.Logger,
) *WorkflowUseCase {
	if topic == "" {
		topic = DefaultStatusTopic
	}
	if log == nil {
		log = logger.Nop()
	}
	return &WorkflowUseCase{
		tx:          tx,
		docRepo:     docRepo,
		historyRepo: historyRepo,
		userRepo:    userRepo,
		blobs:       blobs,
		policy:      pol,
		topic:       topic,
		log:         log.Named("document.workflow"),
		now:         time.Now,
	}
}

// Create registra un documento en Draft con su entrada de historial Created.
func (uc *WorkflowUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	if !uc.policy.CanCreateDocument(actor) {
		return nil, domain.ErrForbidden
	}
	date, err := time.Parse(dto.DateLayout, in.DocumentDate)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	priority := in.Priority
	if priority == "" {
		priority = entity.PriorityMedium
	}
	if !entity.ValidDocumentType(in.DocumentType) || !entity.ValidPriority(priority) {
		return nil, domain.ErrInvalidInput
	}
	if !validDocumentValue(in.DocumentValue) || strings.TrimSpace(in.DocumentNumber) == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.checkApprover(ctx, in.ApproverID); err != nil {
		return nil, err
	}

	now := uc.now()
	doc := &entity.Document{
		ID:             uuid.New().String(),
		DocumentType:   in.DocumentType,
		DocumentNumber: strings.TrimSpace(in.DocumentNumber),
		SupplierName:   strings.TrimSpace(in.SupplierName),
		DocumentDate:   date,
		DocumentValue:  in.DocumentValue,
		Currency:       strings.ToUpper(in.Currency),
		Status:         entity.DocumentStatusDraft,
		Priority:       priority,
		ApproverID:     in.ApproverID,
		CreatedBy:      actor.UserID,
		Remarks:        in.Remarks,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = uc.tx.RunDocument(ctx, func(tx DocumentTx) error {
		if err := tx.Documents.Create(ctx, doc); err != nil {
			return err
		}
		return tx.History.Append(ctx, &entity.DocumentHistory{
			ID:          uuid.New().String(),
			DocumentID:  doc.ID,
			ActionType:  entity.HistoryActionCreated,
			NewStatus:   entity.DocumentStatusDraft,
			PerformedBy: actor.UserID,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return nil, err
	}
	out := dto.DocumentFromEntity(doc)
	return &out, nil
}

// SubmitForApproval Draft → Pending. Solo el creador.
func (uc *WorkflowUseCase) SubmitForApproval(ctx context.Context, actor entity.Actor, id string) (*dto.DocumentResponse, error) {
	return uc.transition(ctx, actor, id, workflow.ActionSubmit, "", nil)
}

// Approve Pending → Approved. Roles Approver y Admin.
func (uc *WorkflowUseCase) Approve(ctx context.Context, actor entity.Actor, id, remarks string) (*dto.DocumentResponse, error) {
	return uc.transition(ctx, actor, id, workflow.ActionApprove, strings.TrimSpace(remarks), nil)
}

// Reject Pending → Rejected con motivo obligatorio. Un motivo vacío no escribe nada.
func (uc *WorkflowUseCase) Reject(ctx context.Context, actor entity.Actor, id, reason string) (*dto.DocumentResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.transition(ctx, actor, id, workflow.ActionReject, reason, func(d *entity.Document) {
		d.RejectionReason = reason
	})
}

func (uc *WorkflowUseCase) transition(
	ctx context.Context,
	actor entity.Actor,
	id string,
	action workflow.Action,
	remarks string,
	apply func(*entity.Document),
) (*dto.DocumentResponse, error) {
	var doc *entity.Document
	err := uc.tx.RunDocument(ctx, func(tx DocumentTx) error {
		var err error
		doc, err = uc.lockVisible(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		next, err := workflow.Next(doc.Status, action)
		if err != nil {
			return err
		}
		if !uc.policy.CanOnDocument(actor, doc, action) {
			return domain.ErrForbidden
		}

		now := uc.now()
		old := doc.Status
		doc.Status = next
		doc.UpdatedAt = now
		if apply != nil {
			apply(doc)
		}
		if err := tx.Documents.Update(ctx, doc); err != nil {
			return err
		}
		entry := &entity.DocumentHistory{
			ID:          uuid.New().String(),
			DocumentID:  doc.ID,
			ActionType:  workflow.HistoryAction(action),
			OldStatus:   old,
			NewStatus:   next,
			PerformedBy: actor.UserID,
			Remarks:     remarks,
			CreatedAt:   now,
		}
		if err := tx.History.Append(ctx, entry); err != nil {
			return err
		}
		return uc.enqueue(ctx, tx.Outbox, doc, entry)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("document_id", doc.ID).
		Str("action", string(action)).
		Str("status", doc.Status).
		Str("user_id", actor.UserID).
		Msg("transición de documento")
	out := dto.DocumentFromEntity(doc)
	return &out, nil
}

func (uc *WorkflowUseCase) enqueue(ctx context.Context, outbox repository.OutboxRepository, doc *entity.Document, h *entity.DocumentHistory) error {
	payload, err := json.Marshal(dto.DocumentStatusChangedEvent{
		DocumentID:     doc.ID,
		DocumentNumber: doc.DocumentNumber,
		DocumentType:   doc.DocumentType,
		Action:         h.ActionType,
		OldStatus:      h.OldStatus,
		NewStatus:      h.NewStatus,
		PerformedBy:    h.PerformedBy,
		Remarks:        h.Remarks,
		OccurredAt:     h.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("serializar evento: %w", err)
	}
	return outbox.Create(ctx, &entity.OutboxEvent{
		ID:            uuid.New().String(),
		AggregateType: entity.AggregateDocument,
		AggregateID:   doc.ID,
		EventType:     entity.EventDocumentStatusChanged,
		Topic:         uc.topic,
		Payload:       payload,
		Status:        entity.OutboxStatusPending,
		CreatedAt:     h.CreatedAt,
	})
}

// UpdateDraft modifica los campos de un documento en Draft. Solo el creador.
func (uc *WorkflowUseCase) UpdateDraft(ctx context.Context, actor entity.Actor, id string, in dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	if in.ApproverID != nil {
		if err := uc.checkApprover(ctx, *in.ApproverID); err != nil {
			return nil, err
		}
	}
	var doc *entity.Document
	err := uc.tx.RunDocument(ctx, func(tx DocumentTx) error {
		var err error
		doc, err = uc.lockVisible(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if !workflow.Editable(doc.Status) {
			return domain.ErrInvalidTransition
		}
		if !uc.policy.CanOnDocument(actor, doc, workflow.ActionUpdate) {
			return domain.ErrForbidden
		}
		if err := applyUpdate(doc, in); err != nil {
			return err
		}
		now := uc.now()
		doc.UpdatedAt = now
		if err := tx.Documents.Update(ctx, doc); err != nil {
			return err
		}
		return tx.History.Append(ctx, &entity.DocumentHistory{
			ID:          uuid.New().String(),
			DocumentID:  doc.ID,
			ActionType:  entity.HistoryActionUpdated,
			OldStatus:   doc.Status,
			NewStatus:   doc.Status,
			PerformedBy: actor.UserID,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return nil, err
	}
	out := dto.DocumentFromEntity(doc)
	return &out, nil
}

func applyUpdate(doc *entity.Document, in dto.UpdateDocumentRequest) error {
	if in.DocumentType != nil {
		if !entity.ValidDocumentType(*in.DocumentType) {
			return domain.ErrInvalidInput
		}
		doc.DocumentType = *in.DocumentType
	}
	if in.DocumentNumber != nil {
		n := strings.TrimSpace(*in.DocumentNumber)
		if n == "" {
			return domain.ErrInvalidInput
		}
		doc.DocumentNumber = n
	}
	if in.SupplierName != nil {
		doc.SupplierName = strings.TrimSpace(*in.SupplierName)
	}
	if in.DocumentDate != nil {
		date, err := time.Parse(dto.DateLayout, *in.DocumentDate)
		if err != nil {
			return domain.ErrInvalidInput
		}
		doc.DocumentDate = date
	}
	if in.DocumentValue != nil {
		if !validDocumentValue(*in.DocumentValue) {
			return domain.ErrInvalidInput
		}
		doc.DocumentValue = *in.DocumentValue
	}
	if in.Currency != nil {
		doc.Currency = strings.ToUpper(*in.Currency)
	}
	if in.Priority != nil {
		if !entity.ValidPriority(*in.Priority) {
			return domain.ErrInvalidInput
		}
		doc.Priority = *in.Priority
	}
	if in.ApproverID != nil {
		doc.ApproverID = *in.ApproverID
	}
	if in.Remarks != nil {
		doc.Remarks = *in.Remarks
	}
	return nil
}

// DeleteDraft elimina un documento (creador en Draft, o Admin). Historial y adjuntos se
// eliminan en cascada; los binarios se borran después del commit sin fallar la operación.
func (uc *WorkflowUseCase) DeleteDraft(ctx context.Context, actor entity.Actor, id string) error {
	var files []*entity.DocumentFile
	err := uc.tx.RunDocument(ctx, func(tx DocumentTx) error {
		doc, err := uc.lockVisible(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if !uc.policy.CanOnDocument(actor, doc, workflow.ActionDelete) {
			if policy.Relation(actor, doc) == policy.RelOwner && !workflow.Editable(doc.Status) {
				return domain.ErrInvalidTransition
			}
			return domain.ErrForbidden
		}
		files, err = tx.Files.ListByDocument(ctx, doc.ID)
		if err != nil {
			return err
		}
		return tx.Documents.Delete(ctx, doc.ID)
	})
	if err != nil {
		return err
	}
	if uc.blobs == nil {
		return nil
	}
	for _, f := range files {
		if err := uc.blobs.Delete(ctx, f.StoragePath); err != nil {
			uc.log.Warn().Err(err).Str("path", f.StoragePath).Msg("no se pudo borrar el adjunto")
		}
	}
	return nil
}

// Get devuelve un documento visible para el actor.
func (uc *WorkflowUseCase) Get(ctx context.Context, actor entity.Actor, id string) (*dto.DocumentResponse, error) {
	doc, err := uc.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	out := dto.DocumentFromEntity(doc)
	return &out, nil
}

// Entity devuelve el documento de dominio visible para el actor (exportaciones).
func (uc *WorkflowUseCase) Entity(ctx context.Context, actor entity.Actor, id string) (*entity.Document, error) {
	return uc.loadVisible(ctx, actor, id)
}

// List devuelve los documentos visibles para el actor filtrados en memoria.
func (uc *WorkflowUseCase) List(ctx context.Context, actor entity.Actor, q dto.DocumentFilterQuery) (*dto.DocumentListResponse, error) {
	docs, err := uc.Visible(ctx, actor)
	if err != nil {
		return nil, err
	}
	filtered := listing.FilterDocuments(docs, listing.DocumentFilter{
		Search:       q.Search,
		Status:       q.Status,
		DocumentType: q.Type,
		Priority:     q.Priority,
	})
	return &dto.DocumentListResponse{
		Items: dto.DocumentsFromEntities(filtered),
		Total: len(filtered),
	}, nil
}

// Visible carga la colección completa visible para el actor (created_at DESC).
func (uc *WorkflowUseCase) Visible(ctx context.Context, actor entity.Actor) ([]*entity.Document, error) {
	q := repository.DocumentQuery{}
	if !actor.SeesAllDocuments() {
		q.VisibleTo = actor.UserID
	}
	return uc.docRepo.List(ctx, q)
}

// History devuelve el historial del documento, más reciente primero.
func (uc *WorkflowUseCase) History(ctx context.Context, actor entity.Actor, id string) ([]dto.HistoryEntryResponse, error) {
	if _, err := uc.loadVisible(ctx, actor, id); err != nil {
		return nil, err
	}
	entries, err := uc.historyRepo.ListByDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, h := range entries {
		out = append(out, toHistoryResponse(h))
	}
	return out, nil
}

// AllowedActions acciones disponibles para el actor según la misma política que aplica el motor.
func (uc *WorkflowUseCase) AllowedActions(ctx context.Context, actor entity.Actor, id string) (*dto.DocumentActionsResponse, error) {
	doc, err := uc.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	actions := uc.policy.AllowedActions(actor, doc)
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		names = append(names, string(a))
	}
	return &dto.DocumentActionsResponse{
		DocumentID: doc.ID,
		Status:     doc.Status,
		Actions:    names,
		Terminal:   workflow.IsTerminal(doc.Status),
	}, nil
}

// loadVisible devuelve ErrNotFound tanto si no existe como si el actor no puede verlo.
func (uc *WorkflowUseCase) loadVisible(ctx context.Context, actor entity.Actor, id string) (*entity.Document, error) {
	doc, err := uc.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil || !uc.policy.CanOnDocument(actor, doc, workflow.ActionView) {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (uc *WorkflowUseCase) lockVisible(ctx context.Context, tx DocumentTx, actor entity.Actor, id string) (*entity.Document, error) {
	doc, err := tx.Documents.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil || !uc.policy.CanOnDocument(actor, doc, workflow.ActionView) {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// checkApprover valida que el aprobador asignado exista y pueda aprobar.
func (uc *WorkflowUseCase) checkApprover(ctx context.Context, approverID string) error {
	if approverID == "" {
		return nil
	}
	u, err := uc.userRepo.GetByID(ctx, approverID)
	if err != nil {
		return err
	}
	if u == nil || u.Status != entity.UserStatusActive {
		return domain.ErrInvalidInput
	}
	if !(entity.Actor{UserID: u.ID, Role: u.Role}).HasRole(entity.RoleApprover, entity.RoleAdmin) {
		return domain.ErrInvalidInput
	}
	return nil
}

func toHistoryResponse(h *entity.DocumentHistory) dto.HistoryEntryResponse {
	r := dto.HistoryEntryResponse{
		ID:          h.ID,
		DocumentID:  h.DocumentID,
		ActionType:  h.ActionType,
		NewStatus:   h.NewStatus,
		PerformedBy: h.PerformedBy,
		Remarks:     h.Remarks,
		CreatedAt:   h.CreatedAt,
	}
	if h.OldStatus != "" {
		old := h.OldStatus
		r.OldStatus = &old
	}
	return r
}

// validDocumentValue no negativo y con a lo sumo dos decimales (NUMERIC(18,2)).
func validDocumentValue(v decimal.Decimal) bool {
	return !v.IsNegative() && entity.FitsScale(v, entity.DocumentValueScale)
}
