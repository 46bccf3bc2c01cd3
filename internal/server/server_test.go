package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/crtfolio/internal/catalog"
	"github.com/Zachkp/crtfolio/internal/chat"
	"github.com/Zachkp/crtfolio/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	defaultWait = 2 * time.Second
	defaultTick = 10 * time.Millisecond
)

type fakeTwin struct {
	deltas []string
	err    error // returned after the deltas

	mu  sync.Mutex
	got []chat.Message
}

func (f *fakeTwin) Reply(_ context.Context, msgs []chat.Message, onDelta func(string) error) error {
	f.mu.Lock()
	f.got = msgs
	f.mu.Unlock()
	if len(msgs) == 0 {
		return chat.ErrEmptyHistory
	}
	for _, d := range f.deltas {
		if err := onDelta(d); err != nil {
			return err
		}
	}
	return f.err
}

type fakeLocator struct{ ips []string }

func (f *fakeLocator) City(_ context.Context, ip string) string {
	f.ips = append(f.ips, ip)
	return "BILBAO"
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []ContactMessage
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg ContactMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func chatRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

const helloBody = `{"messages":[{"role":"user","content":"hello"}]}`

func TestChat_StreamsDeltasThenDone(t *testing.T) {
	twin := &fakeTwin{deltas: []string{"Hel", "lo"}}
	srv := httptest.NewServer(New(Options{Twin: twin}).Handler())
	defer srv.Close()

	var updates []string
	err := chat.NewClient(srv.URL).Stream(context.Background(),
		[]chat.Message{{Role: chat.RoleUser, Content: "hello"}},
		func(full string) { updates = append(updates, full) })
	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "Hello"}, updates)
	twin.mu.Lock()
	defer twin.mu.Unlock()
	assert.Equal(t, "hello", twin.got[0].Content)
}

func TestChat_ContentTypeAndEvents(t *testing.T) {
	s := New(Options{Twin: &fakeTwin{deltas: []string{"hi"}}})
	w := do(t, s.Handler(), chatRequest(helloBody))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	body := w.Body.String()
	assert.Contains(t, body, "event:delta")
	assert.Contains(t, body, `{"text":"hi"}`)
	assert.True(t, strings.Index(body, "event:done") > strings.Index(body, "event:delta"))
}

func TestChat_FailureBeforeStreamingIs500(t *testing.T) {
	s := New(Options{Twin: &fakeTwin{err: chat.ErrNotConfigured}})
	w := do(t, s.Handler(), chatRequest(helloBody))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp chat.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to process chat request", resp.Error)
	assert.Equal(t, chat.ErrNotConfigured.Error(), resp.Details)
}

func TestChat_NoTwinIs500(t *testing.T) {
	w := do(t, New(Options{}).Handler(), chatRequest(helloBody))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestChat_FailureAfterStreamingIsErrorEvent(t *testing.T) {
	twin := &fakeTwin{deltas: []string{"par"}, err: errors.New("upstream reset")}
	srv := httptest.NewServer(New(Options{Twin: twin}).Handler())
	defer srv.Close()

	var last string
	err := chat.NewClient(srv.URL).Stream(context.Background(),
		[]chat.Message{{Role: chat.RoleUser, Content: "hello"}},
		func(full string) { last = full })

	var se *chat.StreamError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "par", last)
	assert.Equal(t, "upstream reset", chat.ErrorText(err))
}

func TestChat_BadRequests(t *testing.T) {
	s := New(Options{Twin: &fakeTwin{}})
	tests := map[string]string{
		"malformed json": `{"messages":`,
		"empty history":  `{"messages":[]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w := do(t, s.Handler(), chatRequest(body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestChat_RateLimited(t *testing.T) {
	s := New(Options{Twin: &fakeTwin{deltas: []string{"ok"}}, RatePerMinute: 1})

	assert.Equal(t, http.StatusOK, do(t, s.Handler(), chatRequest(helloBody)).Code)
	w := do(t, s.Handler(), chatRequest(helloBody))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestResume(t *testing.T) {
	s := New(Options{})
	resume := catalog.Default().Resume

	for _, q := range []string{"", "?format=json", "?format=pdf"} {
		w := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/resume"+q, nil))
		require.Equal(t, http.StatusOK, w.Code, q)
		var got catalog.Resume
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got), q)
		assert.Equal(t, resume.Name, got.Name)
	}

	w := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/resume?format=txt", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="gorka_molero_resume.txt"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.Equal(t, resume.Text(), w.Body.String())
}

func TestWhereAmI(t *testing.T) {
	loc := &fakeLocator{}
	w := do(t, New(Options{Locator: loc}).Handler(), httptest.NewRequest(http.MethodGet, "/whereami", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"city":"BILBAO"}`, w.Body.String())
	require.Len(t, loc.ips, 1)

	w = do(t, New(Options{}).Handler(), httptest.NewRequest(http.MethodGet, "/whereami", nil))
	assert.JSONEq(t, `{"city":"UNKNOWN"}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	h := New(Options{}).Handler()
	w := do(t, h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "6f1c2b8e-3d7a-4c1e-9f0b-2a4d5e6f7a8b")
	w = do(t, h, req)
	assert.Equal(t, "6f1c2b8e-3d7a-4c1e-9f0b-2a4d5e6f7a8b", w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not a uuid")
	w = do(t, h, req)
	assert.NotEqual(t, "not a uuid", w.Header().Get(RequestIDHeader))
}

func openDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAdmin_RequiresToken(t *testing.T) {
	s := New(Options{Visitors: openDB(t), AdminToken: "secret"})

	w := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, do(t, s.Handler(), req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil)
	req.Header.Set("Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, do(t, s.Handler(), req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil)
	req.AddCookie(&http.Cookie{Name: adminCookie, Value: "secret"})
	assert.Equal(t, http.StatusOK, do(t, s.Handler(), req).Code)
}

func TestAdmin_Login(t *testing.T) {
	s := New(Options{AdminToken: "secret"})

	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"token":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusUnauthorized, do(t, s.Handler(), req).Code)

	req = httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"token":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	w := do(t, s.Handler(), req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), adminCookie+"=secret")
}

func TestVisitorTracking(t *testing.T) {
	db := openDB(t)
	s := New(Options{Visitors: db, AdminToken: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/resume", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	do(t, s.Handler(), req)

	dnt := httptest.NewRequest(http.MethodGet, "/resume", nil)
	dnt.Header.Set("DNT", "1")
	do(t, s.Handler(), dnt)

	require.Eventually(t, func() bool {
		stats, err := db.Stats(context.Background())
		return err == nil && stats.TotalVisitors == 1
	}, defaultWait, defaultTick)

	admin := httptest.NewRequest(http.MethodGet, "/admin/export/stats", nil)
	admin.Header.Set("Authorization", "Bearer secret")
	w := do(t, s.Handler(), admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=admin-stats.json", w.Header().Get("Content-Disposition"))

	var stats storage.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Len(t, stats.RecentVisitors, 1)
	v := stats.RecentVisitors[0]
	assert.Equal(t, "/resume", v.Path)
	assert.Len(t, v.HashedIP, 16)
	assert.NotContains(t, v.HashedIP, "203.0.113.7")
}

func TestAdmin_Cleanup(t *testing.T) {
	s := New(Options{Visitors: openDB(t), AdminToken: "secret"})
	req := httptest.NewRequest(http.MethodPost, "/admin/privacy/cleanup", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := do(t, s.Handler(), req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Privacy cleanup complete","removed":0}`, w.Body.String())
}

func TestHashIP(t *testing.T) {
	a := hashIP("198.51.100.1", "salt")
	assert.Len(t, a, 16)
	assert.Equal(t, a, hashIP("198.51.100.1", "salt"))
	assert.NotEqual(t, a, hashIP("198.51.100.1", "pepper"))
	assert.NotEqual(t, a, hashIP("198.51.100.2", "salt"))
}

func TestContact(t *testing.T) {
	mailer := &fakeMailer{}
	s := New(Options{Mailer: mailer})

	form := "fullName=Ada&email=ada%40example.com&message=Hi+there"
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := do(t, s.Handler(), req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, ContactMessage{Name: "Ada", Email: "ada@example.com", Message: "Hi there"}, mailer.sent[0])

	req = httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(`{"name":"Ada","email":"nope","message":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, do(t, s.Handler(), req).Code)

	mailer.err = errors.New("smtp down")
	req = httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(`{"name":"Ada","email":"ada@example.com","message":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadGateway, do(t, s.Handler(), req).Code)
}

func TestContact_Disabled(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusServiceUnavailable, do(t, New(Options{}).Handler(), req).Code)
}

func TestSMTPMailer_Compose(t *testing.T) {
	m := SMTPMailer{User: "me@example.com"}
	raw := string(m.compose("me@example.com", ContactMessage{
		Name:    "Eve\r\nBcc: victim@example.com",
		Email:   "eve@example.com",
		Message: "line one\nline two",
	}))
	assert.Contains(t, raw, "Subject: Portfolio Contact: Eve  Bcc: victim@example.com\r\n")
	assert.NotContains(t, raw, "\r\nBcc:")
	assert.Contains(t, raw, "Reply-To: eve@example.com\r\n")
	assert.Contains(t, raw, "line one\nline two")

	require.Error(t, SMTPMailer{}.Send(context.Background(), ContactMessage{}))
}
