package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
)

const nextCookie = "next"

type SSOMiddleware struct {
	logger        *slog.Logger
	signInService signInService
	tokenService  tokenService
	siteURL       string
	hostname      string
	secure        bool
}

type signInService interface {
	FindOrCreate(ctx context.Context, user goth.User) (*model.Profile, error)
}

type tokenService interface {
	GetAccessToken(user *model.Profile) (string, error)
	ExpirationSeconds() int
}

func NewSSOMiddleware(logger *slog.Logger, signInService signInService, tokenService tokenService, siteURL string, hostname string) SSOMiddleware {
	return SSOMiddleware{
		logger:        logger,
		signInService: signInService,
		tokenService:  tokenService,
		siteURL:       siteURL,
		hostname:      hostname,
		secure:        strings.HasPrefix(siteURL, "https://"),
	}
}

// BeginAuthHandler initiates SSO authentication. The optional next query parameter is kept in a
// short-lived cookie and honored once the callback completes.
func (m SSOMiddleware) BeginAuthHandler(c *gin.Context) {
	if next := SafeNext(c.Query("next")); next != "/" {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(nextCookie, next, 600, "/", m.hostname, m.secure, true)
	}

	withProvider(c)
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// SSOAuthentication handles SSO login callbacks
func (m SSOMiddleware) SSOAuthentication(c *gin.Context) {
	withProvider(c)
	ssoUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		m.logger.WarnContext(c.Request.Context(), "SSO callback failed", "error", err)
		c.Redirect(http.StatusTemporaryRedirect, m.siteURL+"/login?error=auth")
		return
	}

	u, err := m.signInService.FindOrCreate(c.Request.Context(), ssoUser)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Set("user", u)

	accessToken, err := m.tokenService.GetAccessToken(u)
	if err != nil {
		_ = c.Error(err)
		return
	}

	m.setAccessTokenCookie(c, accessToken, m.tokenService.ExpirationSeconds())

	next := "/"
	if cookie, err := c.Cookie(nextCookie); err == nil {
		next = SafeNext(cookie)
		c.SetCookie(nextCookie, "", -1, "/", m.hostname, m.secure, true)
	}

	if u.NeedsOnboarding() {
		c.Redirect(http.StatusTemporaryRedirect, m.siteURL+"/onboarding?next="+url.QueryEscape(next))
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, m.siteURL+next)
}

// LogoutHandler handles user logout
func (m SSOMiddleware) LogoutHandler(c *gin.Context) {
	if err := gothic.Logout(c.Writer, c.Request); err != nil {
		m.logger.InfoContext(c.Request.Context(), "No SSO session to clear", "error", err)
	}

	m.setAccessTokenCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

func (m SSOMiddleware) setAccessTokenCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, value, maxAge, "/", m.hostname, m.secure, true)
}

func withProvider(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set("provider", c.Param("provider"))
	c.Request.URL.RawQuery = q.Encode()
}

// SafeNext returns next if it is a path on this site and "/" otherwise.
func SafeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	return next
}
