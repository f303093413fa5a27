package middleware

import (
	"crypto/rsa"
	"log/slog"
	"net/http"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/asianpilots/volunteer-manager/pkg/token/helper"
	"github.com/gin-gonic/gin"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// AccessTokenCookie is the cookie holding the signed access token issued on sign-in.
const AccessTokenCookie = "accessToken"

func NewAuthentication(logger *slog.Logger, publicKey *rsa.PublicKey) AuthenticationMiddleware {
	return AuthenticationMiddleware{
		logger:    logger,
		publicKey: publicKey,
	}
}

type AuthenticationMiddleware struct {
	logger    *slog.Logger
	publicKey *rsa.PublicKey
}

// TokenAuthentication rejects requests without a valid access token in either the Authorization
// header or the accessToken cookie.
func (m AuthenticationMiddleware) TokenAuthentication(c *gin.Context) {
	user, err := parseRequest(c.Request, m.publicKey)
	if err != nil {
		m.logger.InfoContext(c.Request.Context(), "Token not valid", "error", err)
		_ = c.Error(errdef.NewUnauthorized("Sign in required."))
		c.Abort()
		return
	}

	// Extra precaution to ensure that no errors has occurred, and it's safe to call c.Next()
	if len(c.Errors.Errors()) > 0 {
		c.Abort()
		return
	}

	setUser(c, user)
	c.Next()
}

// OptionalTokenAuthentication sets the user if the request carries a valid access token and lets
// anonymous requests through.
func (m AuthenticationMiddleware) OptionalTokenAuthentication(c *gin.Context) {
	if user, err := parseRequest(c.Request, m.publicKey); err == nil {
		setUser(c, user)
	}
	c.Next()
}

func setUser(c *gin.Context, user *model.Profile) {
	c.Set("user", user)
	c.Request = c.Request.WithContext(model.NewContextWithUser(c.Request.Context(), user))
}

func parseRequest(request *http.Request, key *rsa.PublicKey) (*model.Profile, error) {
	token, err := jwt.ParseRequest(
		request,
		jwt.WithKey(jwa.RS256, key),
		jwt.WithHeaderKey("Authorization"),
		jwt.WithCookieKey(AccessTokenCookie),
	)
	if err != nil {
		return nil, err
	}

	return helper.ExtractUser(token)
}
