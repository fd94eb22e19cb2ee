package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Claims は検証済みアクセストークンから取り出したクレーム。
type Claims struct {
	// Subject は外部IDプロバイダ上のユーザー識別子（subクレーム）。
	Subject string `json:"sub"`
	// Email はemailクレーム。トークンに含まれない場合はnil。
	Email *string `json:"email,omitempty"`
	// Username はusernameクレーム。トークンに含まれない場合はnil。
	Username *string `json:"username,omitempty"`
	// Issuer はトークンの発行者。
	Issuer string `json:"iss"`
	// Audience はトークンの対象者。
	Audience []string `json:"aud"`
	// Expiry はトークンの有効期限。
	Expiry time.Time `json:"exp"`
}

// Verifier はベアラートークンの署名とクレームを検証する。
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}

// RemoteVerifierConfig はRemoteVerifierの設定。
type RemoteVerifierConfig struct {
	// Issuer はトークンに期待するissuer（例: https://example.auth0.com/）。
	Issuer string
	// Audience はトークンに期待するaudience。
	Audience string
	// KeySetURL は公開鍵セット（JWKS）のURL。
	KeySetURL string
	// HTTPClient は公開鍵セットの取得に使うクライアント。nilの場合は既定のクライアントを使う。
	HTTPClient *http.Client
}

// RemoteVerifier はリモートの公開鍵セットでRS256トークンを検証する。
// 鍵は最初の検証時に取得され、未知のkidが現れるまでgo-oidcがキャッシュする。
type RemoteVerifier struct {
	verifier *oidc.IDTokenVerifier
}

var _ Verifier = (*RemoteVerifier)(nil)

// NewRemoteVerifier は新しいRemoteVerifierを生成する。
// ctxは公開鍵セットの取得に使われ続けるため、サーバーの寿命と同じコンテキストを渡す。
func NewRemoteVerifier(ctx context.Context, cfg RemoteVerifierConfig) *RemoteVerifier {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	keySet := oidc.NewRemoteKeySet(oidc.ClientContext(ctx, client), cfg.KeySetURL)
	return &RemoteVerifier{
		verifier: oidc.NewVerifier(cfg.Issuer, keySet, &oidc.Config{
			ClientID:             cfg.Audience,
			SupportedSigningAlgs: []string{oidc.RS256},
		}),
	}
}

// Verify は署名、issuer、audience、有効期限を検証し、クレームを返す。
func (v *RemoteVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("トークンの検証に失敗: %w", err)
	}

	var extra struct {
		Email    *string `json:"email"`
		Username *string `json:"username"`
	}
	if err := token.Claims(&extra); err != nil {
		return nil, fmt.Errorf("クレームのデコードに失敗: %w", err)
	}

	return &Claims{
		Subject:  token.Subject,
		Email:    extra.Email,
		Username: extra.Username,
		Issuer:   token.Issuer,
		Audience: token.Audience,
		Expiry:   token.Expiry,
	}, nil
}
