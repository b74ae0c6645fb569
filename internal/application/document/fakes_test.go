package document_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Importaciones-api/internal/application/document"
	"github.com/jhoicas/Importaciones-api/internal/domain"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Almacén en memoria con transacciones (snapshot + restore en error)
// ──────────────────────────────────────────────────────────────────────────────

var errBoom = errors.New("fallo simulado")

type memStore struct {
	txMu sync.Mutex // serializa transacciones, equivale al bloqueo de fila
	mu   sync.Mutex

	docs    map[string]entity.Document
	history []entity.DocumentHistory
	files   map[string]entity.DocumentFile
	outbox  []entity.OutboxEvent
	users   map[string]entity.User

	failHistory    bool
	failFileCreate bool
}

func newMemStore() *memStore {
	return &memStore{
		docs:  make(map[string]entity.Document),
		files: make(map[string]entity.DocumentFile),
		users: make(map[string]entity.User),
	}
}

type snapshot struct {
	docs    map[string]entity.Document
	history []entity.DocumentHistory
	files   map[string]entity.DocumentFile
	outbox  []entity.OutboxEvent
}

func (s *memStore) snap() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn := snapshot{
		docs:    make(map[string]entity.Document, len(s.docs)),
		history: append([]entity.DocumentHistory(nil), s.history...),
		files:   make(map[string]entity.DocumentFile, len(s.files)),
		outbox:  append([]entity.OutboxEvent(nil), s.outbox...),
	}
	for k, v := range s.docs {
		sn.docs[k] = v
	}
	for k, v := range s.files {
		sn.files[k] = v
	}
	return sn
}

func (s *memStore) restore(sn snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs, s.history, s.files, s.outbox = sn.docs, sn.history, sn.files, sn.outbox
}

// RunDocument implementa document.TxRunner.
func (s *memStore) RunDocument(ctx context.Context, fn func(tx document.DocumentTx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	sn := s.snap()
	if err := fn(document.DocumentTx{
		Documents: memDocs{s},
		History:   memHistory{s},
		Files:     memFiles{s},
		Outbox:    memOutbox{s},
	}); err != nil {
		s.restore(sn)
		return err
	}
	return nil
}

func (s *memStore) historyFor(docID string) []entity.DocumentHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.DocumentHistory
	for _, h := range s.history {
		if h.DocumentID == docID {
			out = append(out, h)
		}
	}
	return out
}

func (s *memStore) outboxCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.outbox)
}

func (s *memStore) fileCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

func (s *memStore) doc(id string) (entity.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	return d, ok
}

func (s *memStore) addUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// ── Documents ────────────────────────────────────────────────────────────────

type memDocs struct{ s *memStore }

var _ repository.DocumentRepository = memDocs{}

func (r memDocs) Create(_ context.Context, d *entity.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.docs {
		if existing.DocumentNumber == d.DocumentNumber {
			return domain.ErrDuplicate
		}
	}
	r.s.docs[d.ID] = *d
	return nil
}

func (r memDocs) GetByID(_ context.Context, id string) (*entity.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.docs[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r memDocs) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.GetByID(ctx, id)
}

func (r memDocs) Update(_ context.Context, d *entity.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.docs[d.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.docs[d.ID] = *d
	return nil
}

func (r memDocs) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.docs, id)
	kept := r.s.history[:0]
	for _, h := range r.s.history {
		if h.DocumentID != id {
			kept = append(kept, h)
		}
	}
	r.s.history = kept
	for fid, f := range r.s.files {
		if f.DocumentID == id {
			delete(r.s.files, fid)
		}
	}
	return nil
}

func (r memDocs) List(_ context.Context, q repository.DocumentQuery) ([]*entity.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Document, 0, len(r.s.docs))
	for _, d := range r.s.docs {
		if q.VisibleTo != "" && d.CreatedBy != q.VisibleTo && d.ApproverID != q.VisibleTo {
			continue
		}
		d := d
		out = append(out, &d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].DocumentNumber < out[j].DocumentNumber
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ── History ──────────────────────────────────────────────────────────────────

type memHistory struct{ s *memStore }

var _ repository.DocumentHistoryRepository = memHistory{}

func (r memHistory) Append(_ context.Context, h *entity.DocumentHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failHistory {
		return errBoom
	}
	r.s.history = append(r.s.history, *h)
	return nil
}

// ListByDocument created_at DESC; a igual tiempo, el último insertado primero.
func (r memHistory) ListByDocument(_ context.Context, docID string) ([]*entity.DocumentHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.DocumentHistory
	for i := len(r.s.history) - 1; i >= 0; i-- {
		if h := r.s.history[i]; h.DocumentID == docID {
			out = append(out, &h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memHistory) ListByActions(_ context.Context, actions []string, since time.Time) ([]*entity.DocumentHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.DocumentHistory
	for _, h := range r.s.history {
		if !since.IsZero() && h.CreatedAt.Before(since) {
			continue
		}
		for _, a := range actions {
			if h.ActionType == a {
				h := h
				out = append(out, &h)
				break
			}
		}
	}
	return out, nil
}

// ── Files ────────────────────────────────────────────────────────────────────

type memFiles struct{ s *memStore }

var _ repository.DocumentFileRepository = memFiles{}

func (r memFiles) Create(_ context.Context, f *entity.DocumentFile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failFileCreate {
		return errBoom
	}
	r.s.files[f.ID] = *f
	return nil
}

func (r memFiles) GetByID(_ context.Context, id string) (*entity.DocumentFile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.files[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (r memFiles) ListByDocument(_ context.Context, docID string) ([]*entity.DocumentFile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.DocumentFile
	for _, f := range r.s.files {
		if f.DocumentID == docID {
			f := f
			out = append(out, &f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FileName < out[j].FileName })
	return out, nil
}

func (r memFiles) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.files, id)
	return nil
}

// ── Outbox ───────────────────────────────────────────────────────────────────

type memOutbox struct{ s *memStore }

var _ repository.OutboxRepository = memOutbox{}

func (r memOutbox) Create(_ context.Context, e *entity.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.outbox = append(r.s.outbox, *e)
	return nil
}

func (r memOutbox) ListPending(context.Context, int) ([]*entity.OutboxEvent, error) {
	return nil, nil
}

func (r memOutbox) MarkSent(context.Context, string) error { return nil }

func (r memOutbox) MarkFailed(context.Context, string, string) error { return nil }

// ── Users ────────────────────────────────────────────────────────────────────

type memUsers struct{ s *memStore }

var _ repository.UserRepository = memUsers{}

func (r memUsers) Create(_ context.Context, u *entity.User) error {
	r.s.addUser(*u)
	return nil
}

func (r memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r memUsers) UpdateProfile(_ context.Context, u *entity.User) error {
	r.s.addUser(*u)
	return nil
}

func (r memUsers) ListByRole(_ context.Context, roles ...string) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.User
	for _, u := range r.s.users {
		for _, role := range roles {
			if u.Role == role {
				u := u
				out = append(out, &u)
				break
			}
		}
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// BlobStore en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memBlobs struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
	failPut bool
}

func newMemBlobs() *memBlobs { return &memBlobs{data: make(map[string][]byte)} }

var _ document.BlobStore = (*memBlobs)(nil)

func (b *memBlobs) Put(_ context.Context, path string, content io.Reader, _ string) (string, error) {
	if b.failPut {
		return "", errBoom
	}
	raw, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[path] = raw
	return path, nil
}

func (b *memBlobs) Open(_ context.Context, path string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	raw, ok := b.data[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (b *memBlobs) Delete(_ context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, path)
	b.deleted = append(b.deleted, path)
	return nil
}

func (b *memBlobs) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}
