package photos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/facilitydesk/backend/config"
	"github.com/facilitydesk/backend/internal/access"
	"github.com/facilitydesk/backend/internal/models"
)

// memPhotoStore keeps photo rows in a map, standing in for the Postgres
// repository.
type memPhotoStore struct {
	rows map[uuid.UUID]*models.RequestPhoto
}

func newMemPhotoStore() *memPhotoStore {
	return &memPhotoStore{rows: make(map[uuid.UUID]*models.RequestPhoto)}
}

func (m *memPhotoStore) CreatePending(_ context.Context, p *models.RequestPhoto) error {
	cp := *p
	cp.State = models.PhotoStatePending
	cp.CreatedAt = time.Now()
	m.rows[p.ID] = &cp
	return nil
}

func (m *memPhotoStore) Confirm(_ context.Context, id uuid.UUID) error {
	row, ok := m.rows[id]
	if !ok || row.State != models.PhotoStatePending {
		return fmt.Errorf("no pending row %s", id)
	}
	row.State = models.PhotoStateConfirmed
	return nil
}

func (m *memPhotoStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.rows, id)
	return nil
}

func (m *memPhotoStore) GetByID(_ context.Context, id uuid.UUID) (*models.RequestPhoto, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, fmt.Errorf("no row %s", id)
	}
	cp := *row
	return &cp, nil
}

func (m *memPhotoStore) ListConfirmed(_ context.Context, requestID uuid.UUID) ([]models.RequestPhoto, error) {
	out := []models.RequestPhoto{}
	for _, row := range m.rows {
		if row.RequestID == requestID && row.State == models.PhotoStateConfirmed {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memPhotoStore) ListStalePending(_ context.Context, cutoff time.Time) ([]models.RequestPhoto, error) {
	out := []models.RequestPhoto{}
	for _, row := range m.rows {
		if row.State == models.PhotoStatePending && row.CreatedAt.Before(cutoff) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memPhotoStore) only(t *testing.T) *models.RequestPhoto {
	t.Helper()
	require.Len(t, m.rows, 1)
	for _, row := range m.rows {
		return row
	}
	return nil
}

// fakeObjectStore records uploads in memory and can be told to fail them.
type fakeObjectStore struct {
	objects   map[string][]byte
	uploadErr error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = b
	return nil
}

func (f *fakeObjectStore) ObjectExists(_ context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeObjectStore) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://example.com/" + key, nil
}

func (f *fakeObjectStore) PresignExpire() time.Duration { return 15 * time.Minute }

func fileHeader(t *testing.T, name, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photos"; filename=%q`, name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["photos"][0]
}

func uploadCfg() config.UploadConfig {
	return config.UploadConfig{MaxPhotoBytes: 1 << 20, MaxPhotosPerUpload: 3, ConfirmWindowMinutes: 30}
}

func testRequest() *models.Request {
	return &models.Request{ID: uuid.New(), OrganizationID: uuid.New(), RequestorID: uuid.New()}
}

func testActor(req *models.Request) access.Actor {
	org := req.OrganizationID
	return access.Actor{UserID: req.RequestorID, Role: models.RoleRequester, OrganizationID: &org}
}

func TestAttachConfirmsRowAfterUpload(t *testing.T) {
	repo := newMemPhotoStore()
	store := newFakeObjectStore()
	svc := NewService(repo, store, uploadCfg(), zap.NewNop())
	req := testRequest()

	attached, failures := svc.Attach(context.Background(), testActor(req), req,
		[]*multipart.FileHeader{fileHeader(t, "leak.jpg", "image/jpeg", []byte("jpegdata"))})

	require.Empty(t, failures)
	require.Len(t, attached, 1)
	assert.Equal(t, models.PhotoStateConfirmed, attached[0].State)
	assert.Equal(t, models.PhotoStateConfirmed, repo.only(t).State)
	assert.Contains(t, store.objects, attached[0].ObjectKey)
}

func TestAttachStorageFailureLeavesPendingRow(t *testing.T) {
	repo := newMemPhotoStore()
	store := newFakeObjectStore()
	store.uploadErr = errors.New("connection reset")
	svc := NewService(repo, store, uploadCfg(), zap.NewNop())
	req := testRequest()

	attached, failures := svc.Attach(context.Background(), testActor(req), req,
		[]*multipart.FileHeader{fileHeader(t, "leak.jpg", "image/jpeg", []byte("jpegdata"))})

	assert.Empty(t, attached)
	require.Len(t, failures, 1)
	assert.Equal(t, "leak.jpg", failures[0].Filename)

	// The row stays pending for the reconcile sweep and never surfaces to
	// readers.
	row := repo.only(t)
	assert.Equal(t, models.PhotoStatePending, row.State)
	visible, err := svc.ListByRequest(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestAttachRejectsOversizedAndUnsupportedFiles(t *testing.T) {
	repo := newMemPhotoStore()
	store := newFakeObjectStore()
	cfg := uploadCfg()
	cfg.MaxPhotoBytes = 4
	svc := NewService(repo, store, cfg, zap.NewNop())
	req := testRequest()

	attached, failures := svc.Attach(context.Background(), testActor(req), req,
		[]*multipart.FileHeader{
			fileHeader(t, "big.jpg", "image/jpeg", []byte("way too large")),
			fileHeader(t, "doc.pdf", "application/pdf", []byte("pdf")),
		})

	assert.Empty(t, attached)
	assert.Len(t, failures, 2)
	assert.Empty(t, repo.rows)
}

func TestAttachCapsBatchSize(t *testing.T) {
	repo := newMemPhotoStore()
	store := newFakeObjectStore()
	cfg := uploadCfg()
	cfg.MaxPhotosPerUpload = 1
	svc := NewService(repo, store, cfg, zap.NewNop())
	req := testRequest()

	attached, failures := svc.Attach(context.Background(), testActor(req), req,
		[]*multipart.FileHeader{
			fileHeader(t, "one.jpg", "image/jpeg", []byte("a")),
			fileHeader(t, "two.jpg", "image/jpeg", []byte("b")),
		})

	assert.Len(t, attached, 1)
	require.Len(t, failures, 1)
	assert.Equal(t, "two.jpg", failures[0].Filename)
}

func TestReconcileConfirmsRowWhenObjectLanded(t *testing.T) {
	repo := newMemPhotoStore()
	store := newFakeObjectStore()
	svc := NewService(repo, store, uploadCfg(), zap.NewNop())

	// Pending row whose upload actually succeeded before the confirm was
	// lost.
	photo := &models.RequestPhoto{ID: uuid.New(), RequestID: uuid.New(), ObjectKey: "photos/o/r/p.jpg"}
	require.NoError(t, repo.CreatePending(context.Background(), photo))
	store.objects[photo.ObjectKey] = []byte("jpegdata")

	require.NoError(t, svc.Reconcile(context.Background(), photo.ID))
	assert.Equal(t, models.PhotoStateConfirmed, repo.only(t).State)
}

func TestReconcileDropsRowWhenObjectMissing(t *testing.T) {
	repo := newMemPhotoStore()
	store := newFakeObjectStore()
	svc := NewService(repo, store, uploadCfg(), zap.NewNop())

	photo := &models.RequestPhoto{ID: uuid.New(), RequestID: uuid.New(), ObjectKey: "photos/o/r/p.jpg"}
	require.NoError(t, repo.CreatePending(context.Background(), photo))

	require.NoError(t, svc.Reconcile(context.Background(), photo.ID))
	assert.Empty(t, repo.rows)
}

func TestSweepResolvesOnlyStaleRows(t *testing.T) {
	repo := newMemPhotoStore()
	store := newFakeObjectStore()
	svc := NewService(repo, store, uploadCfg(), zap.NewNop())

	stale := &models.RequestPhoto{ID: uuid.New(), RequestID: uuid.New(), ObjectKey: "photos/o/r/stale.jpg"}
	require.NoError(t, repo.CreatePending(context.Background(), stale))
	repo.rows[stale.ID].CreatedAt = time.Now().Add(-2 * time.Hour)

	fresh := &models.RequestPhoto{ID: uuid.New(), RequestID: uuid.New(), ObjectKey: "photos/o/r/fresh.jpg"}
	require.NoError(t, repo.CreatePending(context.Background(), fresh))

	resolved, err := svc.SweepStalePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)

	_, staleGone := repo.rows[stale.ID]
	assert.False(t, staleGone)
	assert.Equal(t, models.PhotoStatePending, repo.rows[fresh.ID].State)
}
