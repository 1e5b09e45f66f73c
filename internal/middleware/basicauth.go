package middleware

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"
)

// Response headers attached to protected-branch traffic. Protected branches
// are never indexable, authorized or not.
const (
	headerRobotsTag    = "X-Robots-Tag"
	robotsNoIndex      = "noindex, nofollow, noarchive"
	wwwAuthenticateVal = `Basic realm="Staging", charset="UTF-8"`
)

// PreviewAuthConfig configures the preview/staging basic-auth gate.
type PreviewAuthConfig struct {
	// BranchOverride forces the branch name instead of deriving it from the
	// request hostname.
	BranchOverride string
	Username       string
	Password       string
}

// BranchFromHost derives a deployment branch name from a hostname: the
// override when set, else the leading subdomain label.
func BranchFromHost(host, override string) string {
	if override != "" {
		return override
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	label, _, _ := strings.Cut(host, ".")
	return label
}

// IsProtectedBranch reports whether a branch requires basic auth: exactly
// "stg", or any "pr-" preview deployment.
func IsProtectedBranch(branch string) bool {
	return branch == "stg" || strings.HasPrefix(branch, "pr-")
}

// PreviewAuth gates protected deployment branches behind HTTP Basic auth and
// marks their responses non-indexable. Unprotected branches pass through
// untouched.
func PreviewAuth(cfg PreviewAuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			branch := BranchFromHost(r.Host, cfg.BranchOverride)
			if !IsProtectedBranch(branch) {
				next.ServeHTTP(w, r)
				return
			}

			user, pass, ok := r.BasicAuth()
			if !ok || !credentialsMatch(user, pass, cfg.Username, cfg.Password) {
				w.Header().Set("WWW-Authenticate", wwwAuthenticateVal)
				w.Header().Set("Cache-Control", "no-store")
				w.Header().Set(headerRobotsTag, robotsNoIndex)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			// Header must be set before downstream writes the response.
			w.Header().Set(headerRobotsTag, robotsNoIndex)
			next.ServeHTTP(w, r)
		})
	}
}

func credentialsMatch(user, pass, wantUser, wantPass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(wantPass)) == 1
	return userOK && passOK
}
