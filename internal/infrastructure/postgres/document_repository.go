package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Importaciones-api/internal/domain"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/domain/repository"
)

var (
	_ repository.DocumentRepository        = (*DocumentRepo)(nil)
	_ repository.DocumentHistoryRepository = (*DocumentHistoryRepo)(nil)
	_ repository.DocumentFileRepository    = (*DocumentFileRepo)(nil)
)

const documentColumns = `id, document_type, document_number, supplier_name, document_date, document_value,
	currency, status, priority, approver_id, created_by, remarks, rejection_reason, created_at, updated_at`

// DocumentRepo documentos de importación sobre PostgreSQL (usable con pool o tx).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// Create persiste un documento. Número duplicado => ErrDuplicate.
func (r *DocumentRepo) Create(ctx context.Context, d *entity.Document) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.DocumentType, d.DocumentNumber, d.SupplierName, d.DocumentDate, d.DocumentValue,
		d.Currency, d.Status, d.Priority, nullIfEmpty(d.ApproverID), d.CreatedBy, d.Remarks,
		nullIfEmpty(d.RejectionReason), d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetByID obtiene un documento por ID.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	return r.getOne(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
}

// GetForUpdate obtiene el documento y bloquea la fila (SELECT FOR UPDATE).
func (r *DocumentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.getOne(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1 FOR UPDATE`, id)
}

// Update reescribe los campos editables y el estado.
func (r *DocumentRepo) Update(ctx context.Context, d *entity.Document) error {
	query := `
		UPDATE documents SET document_type = $2, document_number = $3, supplier_name = $4,
			document_date = $5, document_value = $6, currency = $7, status = $8, priority = $9,
			approver_id = $10, remarks = $11, rejection_reason = $12, updated_at = $13
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		d.ID, d.DocumentType, d.DocumentNumber, d.SupplierName, d.DocumentDate, d.DocumentValue,
		d.Currency, d.Status, d.Priority, nullIfEmpty(d.ApproverID), d.Remarks,
		nullIfEmpty(d.RejectionReason), d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update document: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra el documento; historial y adjuntos caen por ON DELETE CASCADE.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List documentos ordenados por created_at DESC. VisibleTo restringe a creador o aprobador.
func (r *DocumentRepo) List(ctx context.Context, q repository.DocumentQuery) ([]*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	var args []any
	if q.VisibleTo != "" {
		args = append(args, q.VisibleTo)
		query += ` WHERE created_by = $1 OR approver_id = $1`
	}
	query += ` ORDER BY created_at DESC`
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	var out []*entity.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DocumentRepo) getOne(ctx context.Context, query, id string) (*entity.Document, error) {
	d, err := scanDocument(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var d entity.Document
	var approverID, rejection *string
	err := row.Scan(&d.ID, &d.DocumentType, &d.DocumentNumber, &d.SupplierName, &d.DocumentDate,
		&d.DocumentValue, &d.Currency, &d.Status, &d.Priority, &approverID, &d.CreatedBy, &d.Remarks,
		&rejection, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.ApproverID = deref(approverID)
	d.RejectionReason = deref(rejection)
	return &d, nil
}

// ── Historial ────────────────────────────────────────────────────────────────

// DocumentHistoryRepo historial de acciones (solo inserción).
type DocumentHistoryRepo struct {
	q Querier
}

// NewDocumentHistoryRepository construye el adaptador.
func NewDocumentHistoryRepository(q Querier) *DocumentHistoryRepo {
	return &DocumentHistoryRepo{q: q}
}

const historyColumns = `id, document_id, action_type, old_status, new_status, performed_by, remarks, created_at`

// Append inserta una entrada.
func (r *DocumentHistoryRepo) Append(ctx context.Context, h *entity.DocumentHistory) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO document_history (`+historyColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		h.ID, h.DocumentID, h.ActionType, nullIfEmpty(h.OldStatus), h.NewStatus, h.PerformedBy,
		nullIfEmpty(h.Remarks), h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document history: %w", err)
	}
	return nil
}

// ListByDocument entradas de un documento, más reciente primero. Con created_at igual
// decide seq, el orden de inserción.
func (r *DocumentHistoryRepo) ListByDocument(ctx context.Context, documentID string) ([]*entity.DocumentHistory, error) {
	return r.list(ctx,
		`SELECT `+historyColumns+` FROM document_history WHERE document_id = $1 ORDER BY created_at DESC, seq DESC`,
		documentID)
}

// ListByActions entradas de las acciones indicadas desde since, en orden cronológico.
func (r *DocumentHistoryRepo) ListByActions(ctx context.Context, actions []string, since time.Time) ([]*entity.DocumentHistory, error) {
	return r.list(ctx,
		`SELECT `+historyColumns+` FROM document_history
		WHERE action_type = ANY($1) AND created_at >= $2 ORDER BY created_at, seq`,
		actions, since)
}

func (r *DocumentHistoryRepo) list(ctx context.Context, query string, args ...any) ([]*entity.DocumentHistory, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list document history: %w", err)
	}
	defer rows.Close()
	var out []*entity.DocumentHistory
	for rows.Next() {
		var h entity.DocumentHistory
		var oldStatus, remarks *string
		if err := rows.Scan(&h.ID, &h.DocumentID, &h.ActionType, &oldStatus, &h.NewStatus,
			&h.PerformedBy, &remarks, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document history: %w", err)
		}
		h.OldStatus = deref(oldStatus)
		h.Remarks = deref(remarks)
		out = append(out, &h)
	}
	return out, rows.Err()
}

// ── Adjuntos ─────────────────────────────────────────────────────────────────

// DocumentFileRepo metadatos de adjuntos.
type DocumentFileRepo struct {
	q Querier
}

// NewDocumentFileRepository construye el adaptador.
func NewDocumentFileRepository(q Querier) *DocumentFileRepo {
	return &DocumentFileRepo{q: q}
}

const fileColumns = `id, document_id, file_name, storage_path, file_size, file_type, uploaded_by, uploaded_at`

// Create inserta los metadatos de un adjunto ya subido.
func (r *DocumentFileRepo) Create(ctx context.Context, f *entity.DocumentFile) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO document_files (`+fileColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		f.ID, f.DocumentID, f.FileName, f.StoragePath, f.FileSize, f.FileType, f.UploadedBy, f.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document file: %w", err)
	}
	return nil
}

// GetByID obtiene los metadatos de un adjunto.
func (r *DocumentFileRepo) GetByID(ctx context.Context, id string) (*entity.DocumentFile, error) {
	var f entity.DocumentFile
	err := r.q.QueryRow(ctx, `SELECT `+fileColumns+` FROM document_files WHERE id = $1`, id).Scan(
		&f.ID, &f.DocumentID, &f.FileName, &f.StoragePath, &f.FileSize, &f.FileType, &f.UploadedBy, &f.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document file: %w", err)
	}
	return &f, nil
}

// ListByDocument adjuntos del documento, más reciente primero.
func (r *DocumentFileRepo) ListByDocument(ctx context.Context, documentID string) ([]*entity.DocumentFile, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+fileColumns+` FROM document_files WHERE document_id = $1 ORDER BY uploaded_at DESC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document files: %w", err)
	}
	defer rows.Close()
	var out []*entity.DocumentFile
	for rows.Next() {
		var f entity.DocumentFile
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.FileName, &f.StoragePath, &f.FileSize, &f.FileType,
			&f.UploadedBy, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan document file: %w", err)
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

// Delete borra los metadatos de un adjunto.
func (r *DocumentFileRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM document_files WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete document file: %w", err)
	}
	return nil
}
