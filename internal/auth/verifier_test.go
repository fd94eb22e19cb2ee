package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKeyID    = "test-key"
	testAudience = "test-audience"
)

// keyServer はテスト用のJWKSエンドポイント。
type keyServer struct {
	*httptest.Server
	key     *rsa.PrivateKey
	fetches atomic.Int32
}

// newKeyServer はRSA鍵を生成し、その公開鍵をJWKSとして配信するサーバーを起動する。
func newKeyServer(t *testing.T) *keyServer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	ks := &keyServer{key: key}
	ks.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ks.fetches.Add(1)
		set := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{
			Key:       &key.PublicKey,
			KeyID:     testKeyID,
			Algorithm: string(jose.RS256),
			Use:       "sig",
		}}}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(ks.Close)
	return ks
}

// issuer はテスト用のissuer。
func (ks *keyServer) issuer() string {
	return ks.URL + "/"
}

// sign はクレームにRS256で署名したトークンを返す。
func (ks *keyServer) sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKeyID
	signed, err := token.SignedString(ks.key)
	require.NoError(t, err)
	return signed
}

// validClaims は検証に通るクレームを返す。
func (ks *keyServer) validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":      ks.issuer(),
		"aud":      []string{testAudience, "https://test-domain.auth0.com/userinfo"},
		"sub":      "auth0|123",
		"email":    "user@example.com",
		"username": "user123",
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
}

func (ks *keyServer) verifier(t *testing.T) *RemoteVerifier {
	t.Helper()
	return NewRemoteVerifier(t.Context(), RemoteVerifierConfig{
		Issuer:     ks.issuer(),
		Audience:   testAudience,
		KeySetURL:  ks.URL + "/.well-known/jwks.json",
		HTTPClient: ks.Client(),
	})
}

func TestRemoteVerifier(t *testing.T) {
	t.Parallel()

	t.Run("正しく署名されたトークンのクレームを返す", func(t *testing.T) {
		t.Parallel()
		ks := newKeyServer(t)
		v := ks.verifier(t)

		claims, err := v.Verify(t.Context(), ks.sign(t, ks.validClaims()))
		require.NoError(t, err)
		assert.Equal(t, "auth0|123", claims.Subject)
		require.NotNil(t, claims.Email)
		assert.Equal(t, "user@example.com", *claims.Email)
		require.NotNil(t, claims.Username)
		assert.Equal(t, "user123", *claims.Username)
		assert.Equal(t, ks.issuer(), claims.Issuer)
		assert.Contains(t, claims.Audience, testAudience)
	})

	t.Run("公開鍵セットは一度だけ取得されキャッシュされる", func(t *testing.T) {
		t.Parallel()
		ks := newKeyServer(t)
		v := ks.verifier(t)

		for range 3 {
			_, err := v.Verify(t.Context(), ks.sign(t, ks.validClaims()))
			require.NoError(t, err)
		}
		assert.Equal(t, int32(1), ks.fetches.Load())
	})

	t.Run("emailとusernameが無い場合はnilになる", func(t *testing.T) {
		t.Parallel()
		ks := newKeyServer(t)
		v := ks.verifier(t)

		claims := ks.validClaims()
		delete(claims, "email")
		delete(claims, "username")

		got, err := v.Verify(t.Context(), ks.sign(t, claims))
		require.NoError(t, err)
		assert.Nil(t, got.Email)
		assert.Nil(t, got.Username)
	})

	t.Run("不正なトークンは拒否される", func(t *testing.T) {
		t.Parallel()
		ks := newKeyServer(t)
		v := ks.verifier(t)
		other := newKeyServer(t)

		expired := ks.validClaims()
		expired["exp"] = time.Now().Add(-time.Hour).Unix()

		wrongAudience := ks.validClaims()
		wrongAudience["aud"] = "someone-else"

		wrongIssuer := ks.validClaims()
		wrongIssuer["iss"] = "https://evil.example.com/"

		tests := map[string]string{
			"期限切れ":         ks.sign(t, expired),
			"audienceが異なる": ks.sign(t, wrongAudience),
			"issuerが異なる":   ks.sign(t, wrongIssuer),
			"署名鍵が異なる":      other.sign(t, ks.validClaims()),
			"JWTではない":      "not-a-jwt",
		}
		for name, token := range tests {
			_, err := v.Verify(t.Context(), token)
			assert.Error(t, err, name)
		}
	})

	t.Run("HS256で署名されたトークンは拒否される", func(t *testing.T) {
		t.Parallel()
		ks := newKeyServer(t)
		v := ks.verifier(t)

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, ks.validClaims())
		signed, err := token.SignedString([]byte("shared-secret"))
		require.NoError(t, err)

		_, err = v.Verify(t.Context(), signed)
		assert.Error(t, err)
	})
}
