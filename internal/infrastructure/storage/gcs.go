// Package storage adaptadores del BlobStore de adjuntos: Google Cloud Storage y disco local.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/jhoicas/Importaciones-api/internal/application/document"
	"github.com/jhoicas/Importaciones-api/internal/domain"
)

var _ document.BlobStore = (*GCSStore)(nil)

// GCSStore guarda los adjuntos en un bucket de GCS. Las rutas son las claves del objeto.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore crea el cliente. Con credentialsJSON vacío usa ADC (cuenta de servicio o
// GOOGLE_APPLICATION_CREDENTIALS) y valida que el bucket sea accesible.
func NewGCSStore(ctx context.Context, bucket, credentialsJSON string) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("gcs: bucket requerido")
	}
	var opts []option.ClientOption
	if strings.TrimSpace(credentialsJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: cliente: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("gcs: bucket %q no encontrado o inaccesible: %w", bucket, err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

// Put sube el contenido. Si el Close del writer falla el objeto no queda creado.
func (s *GCSStore) Put(ctx context.Context, path string, content io.Reader, contentType string) (string, error) {
	wc := s.client.Bucket(s.bucket).Object(path).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := io.Copy(wc, content); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("gcs: subir %s: %w", path, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("gcs: cerrar writer %s: %w", path, err)
	}
	return path, nil
}

// Open abre el objeto para lectura. Objeto inexistente => domain.ErrNotFound.
func (s *GCSStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	rc, err := s.client.Bucket(s.bucket).Object(path).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("gcs: leer %s: %w", path, err)
	}
	return rc, nil
}

// Delete borra el objeto; si ya no existe no es error.
func (s *GCSStore) Delete(ctx context.Context, path string) error {
	err := s.client.Bucket(s.bucket).Object(path).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs: borrar %s: %w", path, err)
	}
	return nil
}

// Close libera el cliente.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
