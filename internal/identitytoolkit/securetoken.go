package identitytoolkit

import (
	"context"
)

// RefreshTokenSource manufactures ID tokens from a caller-held refresh
// token. It keeps no state: every Token call performs a refresh grant,
// whatever forceRefresh says.
type RefreshTokenSource struct {
	client       *Client
	refreshToken string
}

// NewRefreshTokenSource binds refreshToken to client.
func NewRefreshTokenSource(client *Client, refreshToken string) *RefreshTokenSource {
	return &RefreshTokenSource{client: client, refreshToken: refreshToken}
}

// Token exchanges the refresh token for a fresh ID token.
func (s *RefreshTokenSource) Token(ctx context.Context, _ bool) (string, error) {
	resp, err := s.client.RefreshToken(ctx, s.refreshToken)
	if err != nil {
		return "", err
	}
	return resp.IDToken, nil
}
