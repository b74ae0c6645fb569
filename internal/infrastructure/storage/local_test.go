package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Importaciones-api/internal/domain"
	"github.com/jhoicas/Importaciones-api/internal/infrastructure/storage"
)

func TestLocalStore_PutOpenDelete(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := storage.NewFsStore(fs)
	ctx := context.Background()

	path, err := store.Put(ctx, "documents/d1/f1_factura.pdf", strings.NewReader("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "documents/d1/f1_factura.pdf", path)

	rc, err := store.Open(ctx, path)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "%PDF-1.4", string(body))

	require.NoError(t, store.Delete(ctx, path))
	_, err = store.Open(ctx, path)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// borrar dos veces no es error
	assert.NoError(t, store.Delete(ctx, path))
}

func TestLocalStore_NoSaleDeLaRaiz(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := storage.NewFsStore(fs)

	path, err := store.Put(context.Background(), "../../etc/passwd", strings.NewReader("x"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "etc/passwd", path)

	_, err = store.Put(context.Background(), "..", strings.NewReader("x"), "text/plain")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
