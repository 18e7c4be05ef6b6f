package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/imagekeeper/internal/common"
	"github.com/dmitrijs2005/imagekeeper/internal/dbx"
	"github.com/dmitrijs2005/imagekeeper/internal/filex"
	"github.com/dmitrijs2005/imagekeeper/internal/server/auth"
	"github.com/dmitrijs2005/imagekeeper/internal/server/config"
	"github.com/dmitrijs2005/imagekeeper/internal/server/models"
	"github.com/dmitrijs2005/imagekeeper/internal/server/notify"
	"github.com/dmitrijs2005/imagekeeper/internal/server/otp"
	"github.com/dmitrijs2005/imagekeeper/internal/server/pending"
	"github.com/dmitrijs2005/imagekeeper/internal/server/repositories/images"
	"github.com/dmitrijs2005/imagekeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/imagekeeper/internal/server/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// --- users ---

type fakeUsersRepo struct {
	mu        sync.Mutex
	byID      map[string]*models.User
	createErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}}
}

func (f *fakeUsersRepo) find(email string) *models.User {
	for _, u := range f.byID {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (f *fakeUsersRepo) add(u *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	c := *u
	f.byID[u.ID] = &c
	return u
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.find(u.Email) != nil {
		return nil, common.ErrAlreadyExists
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	c := *u
	f.byID[u.ID] = &c
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u := f.find(email); u != nil {
		c := *u
		return &c, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) UpdateProfile(_ context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if upd.Email != nil {
		if other := f.find(*upd.Email); other != nil && other.ID != id {
			return nil, common.ErrAlreadyExists
		}
		u.Email = *upd.Email
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.ProfilePictureURL != nil {
		pic := *upd.ProfilePictureURL
		u.ProfilePictureURL = &pic
	}
	c := *u
	return &c, nil
}

func (f *fakeUsersRepo) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

// --- images ---

type fakeImagesRepo struct {
	mu        sync.Mutex
	byID      map[string]*models.Image
	createErr error
}

func newFakeImagesRepo() *fakeImagesRepo {
	return &fakeImagesRepo{byID: map[string]*models.Image{}}
}

func (f *fakeImagesRepo) Create(_ context.Context, img *models.Image) (*models.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	img.ID = uuid.NewString()
	img.CreatedAt = time.Now()
	c := *img
	f.byID[img.ID] = &c
	return img, nil
}

func (f *fakeImagesRepo) ListByOwner(_ context.Context, ownerID string) ([]*models.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Image, 0)
	for _, img := range f.byID {
		if img.OwnerUserID == ownerID {
			c := *img
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeImagesRepo) GetByID(_ context.Context, id, ownerID string) (*models.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	img, ok := f.byID[id]
	if !ok || img.OwnerUserID != ownerID {
		return nil, common.ErrorNotFound
	}
	c := *img
	return &c, nil
}

func (f *fakeImagesRepo) Delete(_ context.Context, id, ownerID string) (*models.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	img, ok := f.byID[id]
	if !ok || img.OwnerUserID != ownerID {
		return nil, common.ErrorNotFound
	}
	delete(f.byID, id)
	return img, nil
}

type fakeRepoManager struct {
	users  *fakeUsersRepo
	images *fakeImagesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return m.users }
func (m *fakeRepoManager) Images(dbx.DBTX) images.Repository           { return m.images }

// --- collaborators ---

type fakeNotifier struct {
	mu    sync.Mutex
	codes map[string][]string
	err   error
	calls int
}

func (n *fakeNotifier) SendOTP(_ context.Context, to, code string, _ time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if n.err != nil {
		return n.err
	}
	if n.codes == nil {
		n.codes = map[string][]string{}
	}
	n.codes[to] = append(n.codes[to], code)
	return nil
}

func (n *fakeNotifier) last(to string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := n.codes[to]
	if len(c) == 0 {
		return ""
	}
	return c[len(c)-1]
}

type fakeMedia struct {
	mu        sync.Mutex
	objects   map[string]string
	uploadErr error
	deleted   []string
	seenPath  string
}

func (m *fakeMedia) Upload(_ context.Context, folder, filename string, body io.ReadSeeker, _ int64, _ string) (*storage.RemoteObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := body.(*filex.TempFile); ok {
		m.seenPath = f.Name()
	}
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	if m.objects == nil {
		m.objects = map[string]string{}
	}
	key := storage.ObjectKey(folder, filename, time.Now())
	m.objects[key] = "https://cdn.test/" + key
	return &storage.RemoteObject{URL: m.objects[key], ObjectID: key}, nil
}

func (m *fakeMedia) Delete(_ context.Context, objectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectID)
	m.deleted = append(m.deleted, objectID)
	return nil
}

// --- fixture ---

type fixture struct {
	svc      *UserService
	images   *ImageService
	rm       *fakeRepoManager
	store    *pending.MemoryStore
	notifier *fakeNotifier
	media    *fakeMedia
	mock     sqlmock.Sqlmock
	clock    time.Time
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

func newFixture(t *testing.T, cfg *config.Config, withMailer bool) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		rm:       &fakeRepoManager{users: newFakeUsersRepo(), images: newFakeImagesRepo()},
		store:    pending.NewMemoryStore(),
		notifier: &fakeNotifier{},
		media:    &fakeMedia{},
		mock:     mock,
		clock:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	var n notify.Notifier
	if withMailer {
		n = f.notifier
	}

	f.svc = NewUserService(db, f.rm, cfg, UserDeps{
		Pending:    f.store,
		OTP:        otp.NewGenerator(cfg.OTPLength),
		Tokens:     auth.NewIssuer([]byte(cfg.SecretKey), time.Hour),
		Dispatcher: notify.NewDispatcher(n, 2, time.Millisecond, time.Second),
		Media:      f.media,
	})
	f.svc.now = func() time.Time { return f.clock }

	f.images = NewImageService(db, f.rm, f.media, nil)
	return f
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func spooled(t *testing.T, name string, data []byte) *Upload {
	t.Helper()
	tf, err := filex.Spool(t.TempDir(), "upload-*", bytes.NewReader(data), 1<<20)
	require.NoError(t, err)
	return &Upload{Filename: name, File: tf}
}

var errBoom = errors.New("boom")
