package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/evcraddock/nearby/internal/client"
	"github.com/evcraddock/nearby/internal/localstore"
	"github.com/evcraddock/nearby/internal/notify"
	"github.com/evcraddock/nearby/internal/page"
	"github.com/evcraddock/nearby/internal/session"
	"github.com/evcraddock/nearby/internal/user"
	"github.com/evcraddock/nearby/internal/view"
)

// fakeAPI serves the marketplace API routes registered on its mux and
// records every request as "METHOD /path?query".
type fakeAPI struct {
	*httptest.Server
	Mux *http.ServeMux

	mu       sync.Mutex
	requests []string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{Mux: http.NewServeMux()}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		line := r.Method + " " + r.URL.Path
		if r.URL.RawQuery != "" {
			line += "?" + r.URL.RawQuery
		}
		f.mu.Lock()
		f.requests = append(f.requests, line)
		f.mu.Unlock()
		f.Mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAPI) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeAPI) Count(prefix string) int {
	n := 0
	for _, r := range f.Requests() {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

// expectRequests fails t unless exactly want were served, in order.
func (f *fakeAPI) expectRequests(t *testing.T, want ...string) {
	t.Helper()
	got := f.Requests()
	if len(got) != len(want) {
		t.Errorf("requests = %q, want %q", got, want)
		return
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("requests = %q, want %q", got, want)
			return
		}
	}
}

func (f *fakeAPI) JSON(pattern string, status int, body interface{}) {
	f.Mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, body)
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type testEnv struct {
	app     *App
	api     *fakeAPI
	store   *localstore.Memory
	rec     *notify.Recorder
	page    *page.Page
	session *session.Store
}

func newTestEnv(t *testing.T, mutate ...func(*Options)) *testEnv {
	t.Helper()
	api := newFakeAPI(t)
	store := localstore.NewMemory()
	sess := session.New(store)
	pg := page.New()
	rec := &notify.Recorder{}
	notifier := notify.Multi(pg, rec)

	c := client.New(api.URL+"/api", sess, notifier)
	r, err := view.New(c.Origin(), view.DefaultLocale)
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	r.SetLocation(time.UTC)

	opts := Options{
		Session:  sess,
		Client:   c,
		Renderer: r,
		Page:     pg,
		Notifier: notifier,
	}
	for _, fn := range mutate {
		fn(&opts)
	}

	a := New(opts)
	t.Cleanup(func() { _ = a.Close() })
	return &testEnv{app: a, api: api, store: store, rec: rec, page: pg, session: sess}
}

func (e *testEnv) loginAs(t *testing.T, u *user.User) {
	t.Helper()
	if err := e.session.Login("tok", u); err != nil {
		t.Fatalf("login: %v", err)
	}
}

var (
	student = &user.User{ID: 1, Name: "Ana", UserType: user.Student}
	owner   = &user.User{ID: 2, Name: "Olga", UserType: user.Owner}
)

// waitFor polls cond until it holds or the timeout passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
