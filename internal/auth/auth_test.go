package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyKinds(t *testing.T) {
	j := NewJWT("secret", "mail-secret")

	pair, err := j.SignPair(42)
	require.NoError(t, err)

	c, err := j.Verify(pair.AccessToken, KindAccess)
	require.NoError(t, err)
	id, err := c.AvatarID()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	_, err = j.Verify(pair.AccessToken, KindRefresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = j.Verify(pair.RefreshToken, KindRefresh)
	assert.NoError(t, err)

	mail, err := j.SignMail(42, "a@b.c")
	require.NoError(t, err)
	c, err = j.Verify(mail, KindMail)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", c.Email)

	// mail tokens use their own secret
	_, err = NewJWT("secret", "other").Verify(mail, KindMail)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyExpired(t *testing.T) {
	j := NewJWT("secret", "")
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return issued }
	tok, err := j.Sign(1, KindAccess)
	require.NoError(t, err)

	j.now = func() time.Time { return issued.Add(AccessTTL + time.Minute) }
	_, err = j.Verify(tok, KindAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = j.Verify("not-a-token", KindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, ComparePassword(h, "hunter22"))
	assert.False(t, ComparePassword(h, "hunter23"))
}

func decodePattern(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()
	var body struct {
		OK      bool `json:"ok"`
		Pattern int  `json:"pattern"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.OK)
	return body.Pattern
}

func TestRequireAuth(t *testing.T) {
	j := NewJWT("secret", "")
	r := chi.NewRouter()
	r.With(RequireAuth(j, KindAccess), RequireOwner("avatar_id")).
		Get("/avatar/{avatar_id}", func(w http.ResponseWriter, r *http.Request) {
			id, _ := AvatarIDFromContext(r.Context())
			assert.Equal(t, uint64(7), id)
			w.WriteHeader(http.StatusNoContent)
		})

	do := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := do("/avatar/7", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do("/avatar/7", "garbage")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 11, decodePattern(t, rec))

	issued := time.Now().Add(-2 * AccessTTL)
	old := NewJWT("secret", "")
	old.now = func() time.Time { return issued }
	expired, err := old.Sign(7, KindAccess)
	require.NoError(t, err)
	rec = do("/avatar/7", expired)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 12, decodePattern(t, rec))

	tok, err := j.Sign(7, KindAccess)
	require.NoError(t, err)
	rec = do("/avatar/8", tok)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do("/avatar/7", tok)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
