package user

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anurajthakur333/backend/cmd/models"
	"github.com/anurajthakur333/backend/cmd/worker"
)

type stubIdentity struct {
	err    error
	called []string
}

func (s *stubIdentity) DeleteUser(userID string) error {
	s.called = append(s.called, userID)
	return s.err
}

// cascadeStore only cares about DeleteByUser; the rest of the Store interface
// is inert.
type cascadeStore struct {
	mu    sync.Mutex
	calls []string
	errs  []error // consumed one per call, nil once exhausted
}

func (s *cascadeStore) DeleteByUser(userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, userID)
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return 0, err
	}
	return 1, nil
}

func (s *cascadeStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *cascadeStore) Create(tx *models.Transaction) error              { return nil }
func (s *cascadeStore) ListAll() ([]models.Transaction, error)           { return nil, nil }
func (s *cascadeStore) ListByUser(string) ([]models.Transaction, error)  { return nil, nil }
func (s *cascadeStore) Search(string) ([]models.Transaction, error)      { return nil, nil }
func (s *cascadeStore) UpdateStatus(string, string) (*models.Transaction, error) {
	return nil, nil
}
func (s *cascadeStore) Delete(string) (*models.Transaction, error) { return nil, nil }

func newCascadeHandler(identity IdentityClient, store *cascadeStore, pool *worker.Pool) *Handler {
	h := NewHandler(identity, store, pool)
	h.retryDelay = 0
	return h
}

func deleteUserRequest(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodDelete, "/api/users/"+userID, nil)
	return mux.SetURLVars(req, map[string]string{"id": userID})
}

func TestDeleteUser_IdentityFailureTouchesNoTransactions(t *testing.T) {
	identity := &stubIdentity{err: errors.New("provider down")}
	store := &cascadeStore{}
	pool := worker.NewPool(1)

	h := newCascadeHandler(identity, store, pool)

	rec := httptest.NewRecorder()
	h.DeleteUser(rec, deleteUserRequest("user_2abc"))
	pool.Stop()

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "message")
	assert.Contains(t, rec.Body.String(), "error")
	assert.Equal(t, 0, store.callCount(), "no transaction may be deleted when the provider call fails")
}

func TestDeleteUser_CascadesAfterIdentitySuccess(t *testing.T) {
	identity := &stubIdentity{}
	store := &cascadeStore{}
	pool := worker.NewPool(1)

	h := newCascadeHandler(identity, store, pool)

	rec := httptest.NewRecorder()
	h.DeleteUser(rec, deleteUserRequest("user_2abc"))
	pool.Stop()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"user_2abc"}, identity.called)
	assert.Equal(t, 1, store.callCount())
}

func TestDeleteUser_RetriesCascadeDelete(t *testing.T) {
	identity := &stubIdentity{}
	store := &cascadeStore{errs: []error{errors.New("deadlock"), errors.New("deadlock")}}
	pool := worker.NewPool(1)

	h := newCascadeHandler(identity, store, pool)

	rec := httptest.NewRecorder()
	h.DeleteUser(rec, deleteUserRequest("user_2abc"))
	pool.Stop()

	assert.Equal(t, http.StatusOK, rec.Code, "response reflects the identity step only")
	assert.Equal(t, 3, store.callCount(), "bulk delete retries until it succeeds")
}

func TestDeleteUser_GivesUpAfterRetryBudget(t *testing.T) {
	identity := &stubIdentity{}
	store := &cascadeStore{errs: []error{
		errors.New("down"), errors.New("down"), errors.New("down"), errors.New("down"),
	}}
	pool := worker.NewPool(1)

	h := newCascadeHandler(identity, store, pool)

	rec := httptest.NewRecorder()
	h.DeleteUser(rec, deleteUserRequest("user_2abc"))
	pool.Stop()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, deleteRetries, store.callCount())
}

func TestDeleteUser_RouteRequiresAuth(t *testing.T) {
	router := mux.NewRouter()
	sub := router.PathPrefix("/api").Subrouter()

	pool := worker.NewPool(1)
	defer pool.Stop()
	NewHandler(&stubIdentity{}, &cascadeStore{}, pool).RegisterRoutes(sub)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/user_2abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
