package middleware

import (
	"crypto/sha256"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"

	"github.com/BruksfildServices01/nail-scheduler/internal/config"
)

// CSRFHeader carries the token to script clients and back.
const CSRFHeader = "X-CSRF-Token"

// CSRF guards every unsafe request with a token tied to SECRET_KEY. Forms
// post it as a hidden field, JSON clients echo the CSRFHeader value they got
// on any earlier GET.
func CSRF(cfg *config.Config) func(http.Handler) http.Handler {
	protect := csrf.Protect(
		csrfKey(cfg.SecretKey),
		csrf.Secure(cfg.SecureCookies),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.RequestHeader(CSRFHeader),
		csrf.TrustedOrigins(originHosts(cfg.CORSOrigins)),
	)

	return func(next http.Handler) http.Handler {
		h := protect(next)
		if cfg.SecureCookies {
			return h
		}
		// over plain HTTP the Referer check has to be told the scheme
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}

// CSRFToken exposes the request's token in CSRFHeader. It is a no-op when
// the engine runs without CSRF.
func CSRFToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := csrf.Token(c.Request); token != "" {
			c.Header(CSRFHeader, token)
		}
		c.Next()
	}
}

// csrfKey derives the 32 byte key gorilla/csrf wants from SECRET_KEY.
func csrfKey(secret string) []byte {
	sum := sha256.Sum256([]byte("csrf:" + secret))
	return sum[:]
}

func originHosts(origins []string) []string {
	var hosts []string
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
		}
	}
	return hosts
}
