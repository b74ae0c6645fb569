package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/jhoicas/Importaciones-api/internal/application/document"
	"github.com/jhoicas/Importaciones-api/internal/domain"
)

var _ document.BlobStore = (*LocalStore)(nil)

// LocalStore guarda los adjuntos bajo un directorio raíz de un afero.Fs
// (disco en desarrollo, memoria en pruebas).
type LocalStore struct {
	fs afero.Fs
}

// NewLocalStore usa el disco bajo dir.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("storage: directorio local requerido")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear %s: %w", dir, err)
	}
	return NewFsStore(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

// NewFsStore usa el sistema de archivos dado.
func NewFsStore(fs afero.Fs) *LocalStore {
	return &LocalStore{fs: fs}
}

func (s *LocalStore) Put(_ context.Context, path string, content io.Reader, _ string) (string, error) {
	clean, err := cleanPath(path)
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return "", fmt.Errorf("storage: crear directorio: %w", err)
	}
	f, err := s.fs.Create(clean)
	if err != nil {
		return "", fmt.Errorf("storage: crear %s: %w", clean, err)
	}
	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(clean)
		return "", fmt.Errorf("storage: escribir %s: %w", clean, err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(clean)
		return "", fmt.Errorf("storage: cerrar %s: %w", clean, err)
	}
	return clean, nil
}

func (s *LocalStore) Open(_ context.Context, path string) (io.ReadCloser, error) {
	clean, err := cleanPath(path)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(clean)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("storage: abrir %s: %w", clean, err)
	}
	return f, nil
}

func (s *LocalStore) Delete(_ context.Context, path string) error {
	clean, err := cleanPath(path)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(clean); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: borrar %s: %w", clean, err)
	}
	return nil
}

// cleanPath normaliza a ruta relativa con "/" y rechaza salir de la raíz.
func cleanPath(path string) (string, error) {
	clean := filepath.ToSlash(filepath.Clean("/" + path))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", domain.ErrInvalidInput
	}
	return clean, nil
}
