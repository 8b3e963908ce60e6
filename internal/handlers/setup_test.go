package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/KAMDEMJERRY/cadastre-backend/internal/accounts"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/auth"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/db"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/models"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/roles"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/server"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv bundles a fully wired router with direct handles on the database
// and the accounts service for fixture setup.
type testEnv struct {
	handler http.Handler
	db      *gorm.DB
	svc     *accounts.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.EnsureRoles(conn); err != nil {
		t.Fatalf("seed roles: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	return &testEnv{handler: server.New(conn, log), db: conn, svc: accounts.NewService(conn)}
}

var userSeq atomic.Uint32

// createUser provisions an active account with the given role memberships.
func (e *testEnv) createUser(t *testing.T, email string, roleNames ...string) *models.User {
	t.Helper()
	n := userSeq.Add(1)
	u, err := e.svc.CreateUser(accounts.CreateUserParams{
		Email:        email,
		Password:     "secret123",
		NumCNI:       fmt.Sprintf("CNI-%s-%d", email, n),
		IDCadastrale: fmt.Sprintf("CAD-%s-%d", email, n),
		NumTelephone: fmt.Sprintf("6%08d", n),
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	for _, name := range roleNames {
		if u, err = e.svc.AssignRole(u.ID, name); err != nil {
			t.Fatalf("assign role %s: %v", name, err)
		}
	}
	return u
}

func (e *testEnv) createAdmin(t *testing.T, email string) *models.User {
	return e.createUser(t, email, roles.AdministrateursCadastraux)
}

func (e *testEnv) createOwner(t *testing.T, email string) *models.User {
	return e.createUser(t, email, roles.Proprietaires)
}

// sessionCookie produces the signed cookie the auth middleware expects.
func sessionCookie(userID uint) *http.Cookie {
	rec := httptest.NewRecorder()
	auth.CreateSession(rec, userID)
	return rec.Result().Cookies()[0]
}

// do runs a request through the full middleware chain. A nil caller sends
// the request anonymously.
func (e *testEnv) do(t *testing.T, caller *models.User, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != nil {
		req.AddCookie(sessionCookie(caller.ID))
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// seedParcelle creates the lotissement/bloc chain around a parcelle.
func (e *testEnv) seedParcelle(t *testing.T, owner *models.User) *models.Parcelle {
	t.Helper()
	lot := models.Lotissement{Name: fmt.Sprintf("Lot-%d", userSeq.Add(1))}
	if err := e.db.Create(&lot).Error; err != nil {
		t.Fatalf("lotissement: %v", err)
	}
	bloc := models.Bloc{Name: "A", LotissementID: lot.ID}
	if err := e.db.Create(&bloc).Error; err != nil {
		t.Fatalf("bloc: %v", err)
	}
	p := models.Parcelle{BlocID: bloc.ID, ProprietaireID: owner.ID, Superficie: 400, Perimetre: 80}
	if err := e.db.Create(&p).Error; err != nil {
		t.Fatalf("parcelle: %v", err)
	}
	return &p
}
