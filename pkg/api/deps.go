package api

import (
	"net/http"
	"strings"

	"sdn-controller/pkg/auth"
)

// AuthFunc accepts a request carrying either the static bootstrap token
// (X-Auth-Token or Bearer) or an operator JWT issued by signer. Read-only
// operators may only use GET. With no token and no signer every request
// passes.
func AuthFunc(token string, signer *auth.Signer) func(r *http.Request) bool {
	if token == "" && signer == nil {
		return func(_ *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		h := r.Header.Get("X-Auth-Token")
		if h == "" {
			authz := r.Header.Get("Authorization")
			if strings.HasPrefix(authz, "Bearer ") {
				h = strings.TrimPrefix(authz, "Bearer ")
			}
		}
		if h == "" {
			return false
		}
		if token != "" && h == token {
			return true
		}
		if signer == nil {
			return false
		}
		claims, err := signer.Parse(h)
		if err != nil {
			return false
		}
		return !claims.ReadOnly || r.Method == http.MethodGet
	}
}
