package middleware

import (
	"context"
	"strings"

	"github.com/koinonia-lab/backend/internal/model"
	"github.com/koinonia-lab/backend/pkg/authenticator"
	"github.com/koinonia-lab/backend/pkg/errorx"
	"github.com/koinonia-lab/backend/pkg/router"
	"github.com/koinonia-lab/backend/pkg/xcontext"
)

// AuthVerifier reads the access token of a request and stores its user id in
// the context.
type AuthVerifier struct {
	tokenEngine authenticator.TokenEngine[model.AccessToken]
	required    bool
}

func NewAuthVerifier(tokenEngine authenticator.TokenEngine[model.AccessToken]) *AuthVerifier {
	return &AuthVerifier{tokenEngine: tokenEngine}
}

// Required makes a request without a valid token fail.
func (a *AuthVerifier) Required() *AuthVerifier {
	return &AuthVerifier{tokenEngine: a.tokenEngine, required: true}
}

func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		token := extractToken(ctx)
		if token == "" {
			if a.required {
				return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
			}

			return ctx, nil
		}

		info, err := a.tokenEngine.Verify(token)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Invalid access token: %v", err)
			return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		if info.ID == "" {
			return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		return xcontext.WithRequestUserID(ctx, info.ID), nil
	}
}

// extractToken reads the bearer token from the Authorization header. Browsers
// cannot set headers on a websocket handshake, so the access_token query
// parameter is accepted as well.
func extractToken(ctx context.Context) string {
	req := xcontext.HTTPRequest(ctx)

	authorization := req.Header.Get("Authorization")
	if scheme, token, found := strings.Cut(authorization, " "); found && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}

	return req.URL.Query().Get(xcontext.Configs(ctx).Auth.AccessToken.Name)
}
