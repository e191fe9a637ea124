package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

func makeJWT(t *testing.T, sub string, key []byte, method jwt.SigningMethod, iat time.Time, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(iat),
		NotBefore: jwt.NewNumericDate(iat),
		ExpiresAt: jwt.NewNumericDate(iat.Add(ttl)),
	}
	token := jwt.NewWithClaims(method, claims)
	s, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return s
}

func Test_bearerToken_OkAndErrors(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer abc.def.ghi")
	got, err := bearerToken(r)
	if err != nil || got != "abc.def.ghi" {
		t.Fatalf("ok: got=%q err=%v", got, err)
	}

	r.Header.Set("Authorization", "bearer abc")
	if got, err := bearerToken(r); err != nil || got != "abc" {
		t.Fatalf("case-insensitive scheme: got=%q err=%v", got, err)
	}

	r.Header.Set("Authorization", "Basic foo")
	if _, err := bearerToken(r); err == nil {
		t.Fatalf("want error on non-bearer")
	}

	r.Header.Set("Authorization", "Bearer   ")
	if _, err := bearerToken(r); err == nil {
		t.Fatalf("want error on empty token")
	}

	r.Header.Del("Authorization")
	if _, err := bearerToken(r); err == nil {
		t.Fatalf("want error on missing header")
	}
}

func TestParseToken(t *testing.T) {
	t.Parallel()

	key := []byte("k")
	uid := uuid.Must(uuid.NewV4())
	now := time.Now()

	got, err := ParseToken(makeJWT(t, uid.String(), key, jwt.SigningMethodHS256, now, time.Hour), key)
	if err != nil || got != uid {
		t.Fatalf("valid: got=%v err=%v", got, err)
	}

	cases := map[string]string{
		"wrong key":   makeJWT(t, uid.String(), []byte("other"), jwt.SigningMethodHS256, now, time.Hour),
		"wrong alg":   makeJWT(t, uid.String(), key, jwt.SigningMethodHS384, now, time.Hour),
		"expired":     makeJWT(t, uid.String(), key, jwt.SigningMethodHS256, now.Add(-2*time.Hour), time.Hour),
		"bad subject": makeJWT(t, "not-a-uuid", key, jwt.SigningMethodHS256, now, time.Hour),
		"garbage":     "x.y.z",
	}
	for name, tok := range cases {
		if _, err := ParseToken(tok, key); err == nil {
			t.Fatalf("%s: want error", name)
		}
	}
}

func TestParseToken_LeewayAcceptsSlightSkew(t *testing.T) {
	t.Parallel()

	key := []byte("k")
	uid := uuid.Must(uuid.NewV4())
	// not-before 10s in the future is inside the 30s leeway
	tok := makeJWT(t, uid.String(), key, jwt.SigningMethodHS256, time.Now().Add(10*time.Second), time.Hour)
	if _, err := ParseToken(tok, key); err != nil {
		t.Fatalf("want accepted within leeway, got %v", err)
	}
}

func TestRequireAuth_SetsUserID(t *testing.T) {
	t.Parallel()

	key := []byte("k")
	uid := uuid.Must(uuid.NewV4())
	var seen uuid.UUID
	h := requireAuth(key)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromCtx(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/days", nil)
	r.Header.Set("Authorization", "Bearer "+makeJWT(t, uid.String(), key, jwt.SigningMethodHS256, time.Now(), time.Hour))
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusNoContent || seen != uid {
		t.Fatalf("code=%d seen=%v", rec.Code, seen)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/days", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 without token, got %d", rec.Code)
	}
}

func TestUserIDFromCtx_Missing(t *testing.T) {
	t.Parallel()

	if _, ok := UserIDFromCtx(context.Background()); ok {
		t.Fatalf("want missing")
	}
	uid := uuid.Must(uuid.NewV4())
	if got, ok := UserIDFromCtx(WithUserID(context.Background(), uid)); !ok || got != uid {
		t.Fatalf("roundtrip: got=%v ok=%v", got, ok)
	}
}
