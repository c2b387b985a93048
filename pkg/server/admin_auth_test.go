package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upsertBody = `[{"id":9,"category":"houses","district":"C","rooms":4,"dealType":"SALE","price":3000000,"status":"active"}]`

func putListings(h http.Handler, header, value string) int {
	req := httptest.NewRequest(http.MethodPut, "/admin/listings", strings.NewReader(upsertBody))
	if header != "" {
		req.Header.Set(header, value)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestAdminAuth(t *testing.T) {
	secret := []byte("test-secret")
	ws, _ := newTestServer(t)
	ws.Auth = &AdminAuth{ApiKey: "key-1", Secret: secret}
	h := ws.Handle()

	assert.Equal(t, http.StatusUnauthorized, putListings(h, "", ""))
	assert.Equal(t, http.StatusUnauthorized, putListings(h, "Authorization", "wrong"))
	assert.Equal(t, http.StatusOK, putListings(h, "Authorization", "key-1"))

	admin, err := CreateAdminToken(secret, "ops", "admin", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, putListings(h, "Authorization", "Bearer "+admin))

	viewer, err := CreateAdminToken(secret, "ops", "viewer", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, putListings(h, "Authorization", "Bearer "+viewer))

	expired, err := CreateAdminToken(secret, "ops", "admin", -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, putListings(h, "Cookie", TokenCookieName+"="+expired))

	forged, err := CreateAdminToken([]byte("other"), "ops", "admin", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, putListings(h, "Authorization", "Bearer "+forged))
}

func TestAdminAuthDisabled(t *testing.T) {
	ws, _ := newTestServer(t)
	ws.Auth = &AdminAuth{}
	assert.Equal(t, http.StatusOK, putListings(ws.Handle(), "", ""))
}
