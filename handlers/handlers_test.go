package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basit/fileshare-catalog/auth"
	"github.com/basit/fileshare-catalog/catalog"
	"github.com/basit/fileshare-catalog/categories"
	"github.com/basit/fileshare-catalog/common"
	"github.com/basit/fileshare-catalog/handlers"
	"github.com/basit/fileshare-catalog/logging"
	"github.com/basit/fileshare-catalog/models"
	"github.com/basit/fileshare-catalog/routes"
	"github.com/basit/fileshare-catalog/storage"
	"github.com/basit/fileshare-catalog/uploads"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// store is an in-memory stand-in for every repository the server uses.
type store struct {
	mu      sync.Mutex
	files   map[uuid.UUID]models.File
	cats    map[uuid.UUID]models.Category
	users   map[uuid.UUID]models.User
	refresh map[string]models.RefreshToken
	events  []models.DownloadEvent
}

func newStore() *store {
	return &store{
		files:   map[uuid.UUID]models.File{},
		cats:    map[uuid.UUID]models.Category{},
		users:   map[uuid.UUID]models.User{},
		refresh: map[string]models.RefreshToken{},
	}
}

type fileRepo struct{ *store }

func (r fileRepo) withCategory(f models.File) models.File {
	if f.CategoryID != nil {
		if c, ok := r.cats[*f.CategoryID]; ok {
			f.Category = &c
		}
	}
	return f
}

func (r fileRepo) ListWithCategory(ctx context.Context) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.File, 0, len(r.files))
	for _, f := range r.files {
		out = append(out, r.withCategory(f))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r fileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	f = r.withCategory(f)
	return &f, nil
}

func (r fileRepo) GetBySlug(ctx context.Context, slug string) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files {
		if f.DownloadSlug == slug {
			f = r.withCategory(f)
			return &f, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r fileRepo) Create(ctx context.Context, f *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[f.ID] = *f
	return nil
}

func (r fileRepo) IncrementDownloads(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return common.ErrNotFound
	}
	f.DownloadCount++
	r.files[id] = f
	return nil
}

func (r fileRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.files, id)
	return nil
}

func (r fileRepo) ExistingStoragePaths(ctx context.Context, paths []string) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

type catRepo struct{ *store }

func (r catRepo) ListOrdered(ctx context.Context) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Category, 0, len(r.cats))
	for _, c := range r.cats {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r catRepo) Create(ctx context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.cats {
		if existing.Name == c.Name {
			return common.ErrConflict
		}
	}
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.cats[c.ID] = *c
	return nil
}

func (r catRepo) Update(ctx context.Context, id uuid.UUID, name, color string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cats[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c.Name, c.Color = name, color
	c.UpdatedAt = time.Now()
	r.cats[id] = c
	return &c, nil
}

func (r catRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cats, id)
	for fid, f := range r.files {
		if f.CategoryID != nil && *f.CategoryID == id {
			f.CategoryID = nil
			r.files[fid] = f
		}
	}
	return nil
}

type eventRepo struct{ *store }

func (r eventRepo) Create(ctx context.Context, e *models.DownloadEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *e)
	return nil
}

type userRepo struct{ *store }

func (r userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r userRepo) GetByProviderID(ctx context.Context, provider, id string) (*models.User, error) {
	return nil, common.ErrNotFound
}

func (r userRepo) Create(ctx context.Context, u *models.User) error {
	if _, err := r.GetByEmail(ctx, u.Email); err == nil {
		return common.ErrConflict
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = uuid.New()
	r.users[u.ID] = *u
	return nil
}

func (r userRepo) Save(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	return nil
}

type refreshRepo struct{ *store }

func (r refreshRepo) Create(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh[token] = models.RefreshToken{Token: token, UserID: userID, ExpiresAt: time.Now().Add(ttl)}
	return nil
}

func (r refreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.refresh[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &rt, nil
}

func (r refreshRepo) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.refresh, token)
	return nil
}

type memObjects struct {
	storage.ObjectStorage

	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memObjects) Put(ctx context.Context, path string, r io.Reader, size int64, contentType, filename string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = b
	return nil
}

func (m *memObjects) DownloadURL(ctx context.Context, path, filename string) (string, error) {
	return "https://cdn.example/" + path + "?filename=" + url.QueryEscape(filename), nil
}

func (m *memObjects) Remove(ctx context.Context, paths []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range paths {
		delete(m.objects, p)
	}
	return nil
}

type server struct {
	router  *gin.Engine
	store   *store
	objects *memObjects
	auth    *auth.Service
	batches chan uploads.Summary
}

func newServer(t *testing.T) *server {
	t.Helper()
	logger := logging.Discard()
	st := newStore()
	objects := &memObjects{objects: map[string][]byte{}}

	hub := auth.NewHub()
	authSvc := auth.NewService(userRepo{st}, refreshRepo{st}, auth.NewTokenIssuer("test", time.Hour, 24*time.Hour), hub, logger)
	catalogSvc := catalog.NewService(fileRepo{st}, eventRepo{st}, objects, logger)
	catSvc := categories.NewService(catRepo{st}, logger)

	queue := uploads.NewQueue(fileRepo{st}, objects, logger, 1)
	batches := make(chan uploads.Summary, 4)
	queue.OnBatchComplete(func(s uploads.Summary) { batches <- s })
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		queue.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("secret"))))
	routes.RegisterFileRoutes(r, handlers.NewFileHandler(catalogSvc), handlers.NewShareHandler(catalogSvc, "https://files.example", logger), authSvc)
	routes.RegisterCategoryRoutes(r, handlers.NewCategoryHandler(catSvc), authSvc)
	routes.RegisterAdminRoutes(r,
		handlers.NewAdminHandler(catalogSvc, catSvc, queue),
		handlers.NewUploadHandler(queue, t.TempDir(), 1<<20, logger),
		handlers.NewUploadStream(queue, hub, "https://app.example", logger),
		authSvc, "https://app.example")
	routes.RegisterAuthRoutes(r, handlers.NewAuthHandler(authSvc, false, logger), nil, authSvc)

	return &server{router: r, store: st, objects: objects, auth: authSvc, batches: batches}
}

func (s *server) token(t *testing.T, email string, admin bool) string {
	t.Helper()
	ctx := context.Background()
	tokens, err := s.auth.SignUp(ctx, email, "password1")
	require.NoError(t, err)
	if admin {
		_, _, err = s.auth.EnsureAdmin(ctx, email, "")
		require.NoError(t, err)
	}
	return tokens.AccessToken
}

func (s *server) do(method, target, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *server) addFile(name string, downloads int64, cat *uuid.UUID) models.File {
	f := models.File{
		ID:            uuid.New(),
		Name:          uuid.NewString() + ".bin",
		OriginalName:  name,
		Size:          2048,
		StoragePath:   "uploads/" + uuid.NewString(),
		DownloadCount: downloads,
		DownloadSlug:  "slug-" + name,
		CategoryID:    cat,
		CreatedAt:     time.Now(),
	}
	s.store.files[f.ID] = f
	return f
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestListFilesFilters(t *testing.T) {
	s := newServer(t)
	docs := uuid.New()
	s.store.cats[docs] = models.Category{ID: docs, Name: "Docs", Color: "#6366f1"}
	s.addFile("Quarterly Report.pdf", 0, &docs)
	s.addFile("report-draft.txt", 0, nil)
	s.addFile("holiday.png", 0, &docs)

	w := s.do(http.MethodGet, "/api/files?q=REPORT&category="+docs.String(), "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	files := decode(t, w)["files"].([]any)
	require.Len(t, files, 1)
	f := files[0].(map[string]any)
	assert.Equal(t, "Quarterly Report.pdf", f["original_name"])
	assert.Equal(t, "PDF", f["extension"])
	assert.Equal(t, "2 KB", f["size_label"])
	assert.Equal(t, map[string]any{"name": "Docs", "color": "#6366f1"}, f["category"])

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/files?category=nope", "", nil, "").Code)
}

func TestDownloadPatchesOnlyTarget(t *testing.T) {
	s := newServer(t)
	target := s.addFile("a.pdf", 2, nil)
	other := s.addFile("b.pdf", 9, nil)

	w := s.do(http.MethodPost, "/api/files/"+target.ID.String()+"/download", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "https://cdn.example/"+target.StoragePath+"?filename=a.pdf", body["url"])
	assert.EqualValues(t, 3, body["file"].(map[string]any)["download_count"])

	assert.EqualValues(t, 3, s.store.files[target.ID].DownloadCount)
	assert.EqualValues(t, 9, s.store.files[other.ID].DownloadCount)
	require.Len(t, s.store.events, 1)

	w = s.do(http.MethodGet, "/api/files/"+target.ID.String()+"/download", "", nil, "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://cdn.example/"+target.StoragePath+"?filename=a.pdf", w.Header().Get("Location"))
	assert.EqualValues(t, 4, s.store.files[target.ID].DownloadCount)

	w = s.do(http.MethodGet, "/s/"+target.DownloadSlug, "", nil, "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.EqualValues(t, 5, s.store.files[target.ID].DownloadCount)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/files/"+uuid.NewString()+"/download", "", nil, "").Code)
}

func TestDeleteFileRequiresAdminAndConfirm(t *testing.T) {
	s := newServer(t)
	f := s.addFile("a.pdf", 0, nil)
	path := "/api/files/" + f.ID.String()

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodDelete, path+"?confirm=true", "", nil, "").Code)
	member := s.token(t, "member@example.com", false)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, path+"?confirm=true", member, nil, "").Code)

	admin := s.token(t, "admin@example.com", true)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, path, admin, nil, "").Code)
	assert.Contains(t, s.store.files, f.ID)

	w := s.do(http.MethodDelete, path+"?confirm=true", admin, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, s.store.files, f.ID)
}

func TestCategoryEndpoints(t *testing.T) {
	s := newServer(t)
	admin := s.token(t, "admin@example.com", true)

	w := s.do(http.MethodPost, "/api/categories", admin, strings.NewReader(`{"name":"  "}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please enter a category name", decode(t, w)["error"])

	w = s.do(http.MethodPost, "/api/categories", admin, strings.NewReader(`{"name":"Docs"}`), "application/json")
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)["category"].(map[string]any)
	assert.Equal(t, "#6366f1", created["color"])

	w = s.do(http.MethodPost, "/api/categories", admin, strings.NewReader(`{"name":"Docs","color":"#22c55e"}`), "application/json")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "This category name already exists", decode(t, w)["error"])

	w = s.do(http.MethodGet, "/api/categories", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["categories"], 1)

	w = s.do(http.MethodPut, "/api/categories/"+created["id"].(string), admin,
		strings.NewReader(`{"name":"Documents","color":"#ef4444"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	renamed := decode(t, w)["category"].(map[string]any)
	assert.Equal(t, "Documents", renamed["name"])
	assert.Equal(t, created["created_at"], renamed["created_at"])
	assert.NotEqual(t, "0001-01-01T00:00:00Z", renamed["updated_at"])

	member := s.token(t, "member@example.com", false)
	w = s.do(http.MethodPost, "/api/categories", member, strings.NewReader(`{"name":"X"}`), "application/json")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, "/api/categories/"+created["id"].(string)+"?confirm=true", admin, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/categories/palette", "", nil, "")
	assert.Len(t, decode(t, w)["colors"], 8)
}

func TestAdminGate(t *testing.T) {
	s := newServer(t)
	member := s.token(t, "member@example.com", false)
	admin := s.token(t, "admin@example.com", true)

	w := s.do(http.MethodGet, "/admin", "", nil, "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://app.example/auth", w.Header().Get("Location"))

	w = s.do(http.MethodGet, "/admin", member, nil, "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://app.example/?notice=admin_required", w.Header().Get("Location"))

	w = s.do(http.MethodGet, "/admin", admin, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "granted", decode(t, w)["state"])

	w = s.do(http.MethodGet, "/api/admin/dashboard", member, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You do not have administrator privileges", decode(t, w)["error"])
}

func TestDashboard(t *testing.T) {
	s := newServer(t)
	admin := s.token(t, "admin@example.com", true)
	s.addFile("a", 3, nil)
	s.addFile("b", 4, nil)

	w := s.do(http.MethodGet, "/api/admin/dashboard", admin, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, map[string]any{"total_files": 2.0, "total_downloads": 7.0, "total_size": 4096.0}, body["stats"])
	assert.Len(t, body["files"], 2)
	assert.Contains(t, body, "categories")
	assert.Contains(t, body, "uploads")
}

func multipartBody(t *testing.T, files map[string]string, categoryID string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, name := range names {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
		h.Set("Content-Type", "text/plain")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	if categoryID != "" {
		require.NoError(t, mw.WriteField("category_id", categoryID))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadFlow(t *testing.T) {
	s := newServer(t)
	admin := s.token(t, "admin@example.com", true)
	cat := uuid.New()
	s.store.cats[cat] = models.Category{ID: cat, Name: "Docs", Color: "#6366f1"}

	body, ct := multipartBody(t, map[string]string{"a.txt": "alpha", "b.txt": "bravo"}, cat.String())
	w := s.do(http.MethodPost, "/api/admin/uploads", admin, body, ct)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Len(t, decode(t, w)["items"], 2)

	select {
	case summary := <-s.batches:
		assert.Equal(t, 2, summary.Completed)
	case <-time.After(5 * time.Second):
		t.Fatal("upload batch did not finish")
	}

	w = s.do(http.MethodGet, "/api/files", "", nil, "")
	files := decode(t, w)["files"].([]any)
	require.Len(t, files, 2)
	for _, f := range files {
		m := f.(map[string]any)
		assert.Equal(t, cat.String(), m["category_id"])
		assert.True(t, strings.HasPrefix(m["storage_path"].(string), "uploads/"))
	}

	w = s.do(http.MethodGet, "/api/admin/uploads", admin, nil, "")
	items := decode(t, w)["items"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "complete", first["status"])

	w = s.do(http.MethodDelete, "/api/admin/uploads/items/"+first["id"].(string), admin, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodPost, "/api/admin/uploads/clear", admin, nil, "")
	assert.EqualValues(t, 1, decode(t, w)["removed"])

	w = s.do(http.MethodPost, "/api/admin/uploads", admin, strings.NewReader(""), "multipart/form-data; boundary=x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShareQRCode(t *testing.T) {
	s := newServer(t)
	f := s.addFile("a.pdf", 0, nil)

	w := s.do(http.MethodGet, "/api/files/"+f.ID.String()+"/share", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://files.example/s/"+f.DownloadSlug, decode(t, w)["url"])

	w = s.do(http.MethodGet, "/api/files/"+f.ID.String()+"/qr", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}

func TestAuthFlow(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodPost, "/api/auth/signup", "", strings.NewReader(`{"email":"new@example.com","password":"secret1"}`), "application/json")
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/api/auth/signup", "", strings.NewReader(`{"email":"new@example.com","password":"secret1"}`), "application/json")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/auth/signin", "", strings.NewReader(`{"email":"new@example.com","password":"nope"}`), "application/json")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/auth/signin", "", strings.NewReader(`{"email":"new@example.com","password":"secret1"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["access_token"].(string)

	var refresh *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "refresh_token" {
			refresh = ck
		}
	}
	require.NotNil(t, refresh)

	w = s.do(http.MethodGet, "/api/auth/session", token, nil, "")
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "new@example.com", user["email"])
	assert.Equal(t, false, user["is_admin"])

	w = s.do(http.MethodGet, "/api/auth/session", "", nil, "")
	assert.Nil(t, decode(t, w)["user"])

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(refresh)
	rw := httptest.NewRecorder()
	s.router.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/auth/signout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rw = httptest.NewRecorder()
	s.router.ServeHTTP(rw, req)
	assert.Equal(t, http.StatusOK, rw.Code)
}

func TestUploadStreamClosesOnSignOut(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	admin := s.token(t, "admin@example.com", true)

	ts := httptest.NewServer(s.router)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/admin/uploads/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Authorization": {"Bearer " + admin}})
	require.NoError(t, err)
	defer conn.Close()

	var first map[string]any
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "snapshot", first["type"])

	snap, err := s.auth.Resolve(ctx, admin)
	require.NoError(t, err)
	require.NoError(t, s.auth.SignOut(ctx, snap.UserID, ""))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
}

func TestUploadStreamRejectsNonAdmin(t *testing.T) {
	s := newServer(t)
	member := s.token(t, "member@example.com", false)

	ts := httptest.NewServer(s.router)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/admin/uploads/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Authorization": {"Bearer " + member}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
