package document

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Importaciones-api/internal/application/dto"
	"github.com/jhoicas/Importaciones-api/internal/domain"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/domain/policy"
	"github.com/jhoicas/Importaciones-api/internal/domain/repository"
	"github.com/jhoicas/Importaciones-api/internal/domain/workflow"
	"github.com/jhoicas/Importaciones-api/pkg/logger"
)

// UploadInput archivo recibido por HTTP.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// FileUseCase adjuntos de documentos: binario en BlobStore, metadatos en PostgreSQL.
// La fila de metadatos solo se escribe si el Put fue exitoso; si la fila falla, el binario se borra.
type FileUseCase struct {
	tx       TxRunner
	docRepo  repository.DocumentRepository
	fileRepo repository.DocumentFileRepository
	blobs    BlobStore
	policy   *policy.Policy
	maxBytes int64
	log      *logger.Logger
	now      func() time.Time
}

// NewFileUseCase construye el caso de uso. maxBytes <= 0 desactiva el límite.
func NewFileUseCase(
	tx TxRunner,
	docRepo repository.DocumentRepository,
	fileRepo repository.DocumentFileRepository,
	blobs BlobStore,
	pol *policy.Policy,
	maxBytes int64,
	log *logger.Logger,
) *FileUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &FileUseCase{
		tx:       tx,
		docRepo:  docRepo,
		fileRepo: fileRepo,
		blobs:    blobs,
		policy:   pol,
		maxBytes: maxBytes,
		log:      log.Named("document.files"),
		now:      time.Now,
	}
}

// Upload sube el binario y registra metadatos + historial FileUploaded.
func (uc *FileUseCase) Upload(ctx context.Context, actor entity.Actor, documentID string, in UploadInput) (*dto.DocumentFileResponse, error) {
	name := sanitizeFileName(in.FileName)
	if name == "" || in.Content == nil {
		return nil, domain.ErrInvalidInput
	}
	if uc.maxBytes > 0 && in.Size > uc.maxBytes {
		return nil, domain.ErrInvalidInput
	}
	doc, err := uc.visible(ctx, actor, documentID)
	if err != nil {
		return nil, err
	}
	if !uc.policy.CanOnDocument(actor, doc, workflow.ActionUploadFile) {
		return nil, domain.ErrForbidden
	}

	fileID := uuid.New().String()
	stored, err := uc.blobs.Put(ctx, path.Join("documents", doc.ID, fileID+"_"+name), in.Content, in.ContentType)
	if err != nil {
		return nil, fmt.Errorf("subir adjunto: %w", err)
	}

	now := uc.now()
	file := &entity.DocumentFile{
		ID:          fileID,
		DocumentID:  doc.ID,
		FileName:    name,
		StoragePath: stored,
		FileSize:    in.Size,
		FileType:    in.ContentType,
		UploadedBy:  actor.UserID,
		UploadedAt:  now,
	}
	err = uc.tx.RunDocument(ctx, func(tx DocumentTx) error {
		if err := tx.Files.Create(ctx, file); err != nil {
			return err
		}
		return tx.History.Append(ctx, &entity.DocumentHistory{
			ID:          uuid.New().String(),
			DocumentID:  doc.ID,
			ActionType:  entity.HistoryActionFileUploaded,
			OldStatus:   doc.Status,
			NewStatus:   doc.Status,
			PerformedBy: actor.UserID,
			Remarks:     name,
			CreatedAt:   now,
		})
	})
	if err != nil {
		if derr := uc.blobs.Delete(ctx, stored); derr != nil {
			uc.log.Error().Err(derr).Str("path", stored).Msg("adjunto huérfano: no se pudo borrar tras fallo de metadatos")
		}
		return nil, err
	}
	out := toFileResponse(file)
	return &out, nil
}

// List metadatos de los adjuntos del documento.
func (uc *FileUseCase) List(ctx context.Context, actor entity.Actor, documentID string) ([]dto.DocumentFileResponse, error) {
	if _, err := uc.visible(ctx, actor, documentID); err != nil {
		return nil, err
	}
	files, err := uc.fileRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DocumentFileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, toFileResponse(f))
	}
	return out, nil
}

// Open abre el binario de un adjunto. El caller cierra el ReadCloser.
func (uc *FileUseCase) Open(ctx context.Context, actor entity.Actor, documentID, fileID string) (*dto.DocumentFileResponse, io.ReadCloser, error) {
	if _, err := uc.visible(ctx, actor, documentID); err != nil {
		return nil, nil, err
	}
	f, err := uc.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	if f == nil || f.DocumentID != documentID {
		return nil, nil, domain.ErrNotFound
	}
	rc, err := uc.blobs.Open(ctx, f.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	meta := toFileResponse(f)
	return &meta, rc, nil
}

// Delete elimina metadatos (con historial FileDeleted) y luego el binario.
func (uc *FileUseCase) Delete(ctx context.Context, actor entity.Actor, documentID, fileID string) error {
	doc, err := uc.visible(ctx, actor, documentID)
	if err != nil {
		return err
	}
	if !uc.policy.CanOnDocument(actor, doc, workflow.ActionDeleteFile) {
		return domain.ErrForbidden
	}
	var file *entity.DocumentFile
	err = uc.tx.RunDocument(ctx, func(tx DocumentTx) error {
		f, err := tx.Files.GetByID(ctx, fileID)
		if err != nil {
			return err
		}
		if f == nil || f.DocumentID != documentID {
			return domain.ErrNotFound
		}
		file = f
		if err := tx.Files.Delete(ctx, f.ID); err != nil {
			return err
		}
		return tx.History.Append(ctx, &entity.DocumentHistory{
			ID:          uuid.New().String(),
			DocumentID:  doc.ID,
			ActionType:  entity.HistoryActionFileDeleted,
			OldStatus:   doc.Status,
			NewStatus:   doc.Status,
			PerformedBy: actor.UserID,
			Remarks:     f.FileName,
			CreatedAt:   uc.now(),
		})
	})
	if err != nil {
		return err
	}
	if err := uc.blobs.Delete(ctx, file.StoragePath); err != nil {
		uc.log.Warn().Err(err).Str("path", file.StoragePath).Msg("no se pudo borrar el binario del adjunto")
	}
	return nil
}

func (uc *FileUseCase) visible(ctx context.Context, actor entity.Actor, id string) (*entity.Document, error) {
	doc, err := uc.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil || !uc.policy.CanOnDocument(actor, doc, workflow.ActionView) {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// sanitizeFileName conserva solo el nombre base y reemplaza separadores.
func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == '"', r == '\'':
			return -1
		case r == ' ':
			return '_'
		}
		return r
	}, name)
}

func toFileResponse(f *entity.DocumentFile) dto.DocumentFileResponse {
	return dto.DocumentFileResponse{
		ID:          f.ID,
		DocumentID:  f.DocumentID,
		FileName:    f.FileName,
		StoragePath: f.StoragePath,
		FileSize:    f.FileSize,
		FileType:    f.FileType,
		UploadedBy:  f.UploadedBy,
		UploadedAt:  f.UploadedAt,
	}
}
