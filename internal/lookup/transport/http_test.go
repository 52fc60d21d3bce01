package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prgi-labs/titlechain/internal/lookup/domain"
	"github.com/prgi-labs/titlechain/internal/validation"
)

type fakeService struct {
	result   *domain.Result
	err      error
	lastHash string
}

func (f *fakeService) Lookup(_ context.Context, hashText string) (*domain.Result, error) {
	f.lastHash = hashText
	return f.result, f.err
}

func getLookup(t *testing.T, svc Service, hash string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lookup/"+hash, nil))
	return rec
}

func TestHandleLookup_Registered(t *testing.T) {
	hash := "0x" + strings.Repeat("ab", 32)
	svc := &fakeService{result: &domain.Result{QueriedHash: hash, IsRegistered: true}}

	rec := getLookup(t, svc, hash)
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.IsRegistered)
	assert.Equal(t, hash, result.QueriedHash)
	assert.Equal(t, hash, svc.lastHash)
}

func TestHandleLookup_InvalidHash(t *testing.T) {
	svc := &fakeService{err: validation.ErrInvalidHashFormat}

	rec := getLookup(t, svc, "0x123")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_HASH")
}

func TestHandleLookup_QueryFailure(t *testing.T) {
	svc := &fakeService{err: domain.ErrLookupFailed}

	rec := getLookup(t, svc, "0x"+strings.Repeat("ab", 32))
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "LOOKUP_FAILED")
}
