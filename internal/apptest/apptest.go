// Package apptest builds a fully wired app on top of an in-memory SQLite
// database, an in-memory object store and a fake identity platform
package apptest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"piclips/video-api/app"
	"piclips/video-api/config"
	"piclips/video-api/db"
	"piclips/video-api/internal"
	"piclips/video-api/internal/identity"
	"piclips/video-api/internal/model"
	"piclips/video-api/internal/service"
	"piclips/video-api/internal/storage"
	"piclips/video-api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

// MP4 is the smallest payload that sniffs as video/mp4
var MP4 = append([]byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2"), make([]byte, 64)...)

// PNG sniffs as image/png
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

var dbSeq atomic.Int64

// FakeVerifier accepts the access tokens registered with Add
type FakeVerifier struct {
	mu     sync.Mutex
	tokens map[string]identity.Identity
}

func (f *FakeVerifier) Add(accessToken, uid, username string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tokens[accessToken] = identity.Identity{UID: uid, Username: username}
}

func (f *FakeVerifier) Verify(ctx context.Context, accessToken string) (*identity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.tokens[accessToken]
	if !ok {
		return nil, identity.Error.New("unknown access token")
	}

	return &id, nil
}

type Env struct {
	T        *testing.T
	Deps     *internal.Deps
	Store    *storage.Memory
	Identity *FakeVerifier
	Router   *gin.Engine
}

// New returns a fresh environment. viper is reset when the test ends.
func New(t *testing.T) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	viper.Reset()
	config.SetDefaults()
	viper.Set("jwt.secret", "test-secret")
	viper.Set("storage.type", "memory")
	viper.Set("cache.ttl", 0)
	viper.Set("upload.max_size", 1)
	viper.Set("avatar.max_size", 1)
	viper.Set("upload.dir", t.TempDir())
	t.Cleanup(viper.Reset)

	dsn := fmt.Sprintf("file:apptest%d?mode=memory&cache=shared", dbSeq.Add(1))

	database, err := db.Open(sqlite.Open(dsn))
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	avatars, err := storage.NewLocalDir(viper.GetString("upload.dir")+"/avatars", "/uploads/avatars")
	require.NoError(t, err)

	store := storage.NewMemory()
	verifier := &FakeVerifier{tokens: map[string]identity.Identity{}}

	d := &internal.Deps{
		DB:       database,
		Store:    store,
		Avatars:  avatars,
		Identity: verifier,
		Sessions: security.NewSessions(viper.GetString("jwt.secret"), config.Duration("jwt.expiry")),
		Uploader: service.NewUploader(database, store),
	}

	return &Env{
		T:        t,
		Deps:     d,
		Store:    store,
		Identity: verifier,
		Router:   app.NewRouter(d),
	}
}

// User creates a user holding balance tokens and returns it with a session token
func (e *Env) User(username string, balance int64) (*model.User, string) {
	e.T.Helper()

	u, err := service.FindOrCreateUser(context.Background(), e.Deps.DB, "uid-"+username, username)
	require.NoError(e.T, err)

	if balance != 0 {
		require.NoError(e.T, e.Deps.DB.Model(u).Update("token_balance", balance).Error)
		u.TokenBalance = balance
	}

	token, err := e.Deps.Sessions.Issue(u.ID)
	require.NoError(e.T, err)

	return u, token
}

// Video uploads a small video owned by owner
func (e *Env) Video(owner *model.User, privacy string) *model.Video {
	e.T.Helper()

	v, err := e.Deps.Uploader.Do(context.Background(), &service.NewVideo{
		UserID:      owner.ID,
		Title:       "clip by " + owner.Username,
		Privacy:     privacy,
		Filename:    "clip.mp4",
		ContentType: "video/mp4",
		Size:        int64(len(MP4)),
		Body:        bytes.NewReader(MP4),
	})
	require.NoError(e.T, err)

	return v
}

// Reload fetches the current state of u
func (e *Env) Reload(u *model.User) *model.User {
	e.T.Helper()

	var fresh model.User
	require.NoError(e.T, e.Deps.DB.Where("id = ?", u.ID).First(&fresh).Error)

	return &fresh
}

// Count returns the number of rows of m matching the condition
func (e *Env) Count(m any, query string, args ...any) int64 {
	e.T.Helper()

	var n int64
	require.NoError(e.T, e.Deps.DB.Model(m).Where(query, args...).Count(&n).Error)

	return n
}

// Do sends a JSON request. body may be nil, token may be empty.
func (e *Env) Do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.T.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.T, err)
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return e.send(req, token)
}

// Upload sends a multipart form. files maps field names to file contents.
func (e *Env) Upload(path, token string, fields map[string]string, files map[string][]byte) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(e.T, w.WriteField(k, v))
	}

	for field, data := range files {
		fw, err := w.CreateFormFile(field, field+".bin")
		require.NoError(e.T, err)
		_, err = fw.Write(data)
		require.NoError(e.T, err)
	}

	require.NoError(e.T, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return e.send(req, token)
}

func (e *Env) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)

	return rec
}

// Decode unmarshals a response body into v
func Decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), strings.TrimSpace(rec.Body.String()))

	return v
}
