package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/githuba42r/imagetools/internal/common"
	"github.com/githuba42r/imagetools/internal/server/services"
)

type contextKey int

const identityKey contextKey = iota

// withAuth authenticates the bearer credential and stores the resolved
// device identity in the request context. Device state is re-checked per
// request, so a revoked device is rejected even with an unexpired token.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token, found := strings.CutPrefix(header, common.BearerPrefix)
		if !found || token == "" {
			writeError(w, http.StatusUnauthorized, common.ErrInvalidToken.Error())
			return
		}

		identity, err := s.devices.Authenticate(r.Context(), token)
		if err != nil {
			s.logger.Debug(r.Context(), "rejected bearer credential", "error", err)
			writeError(w, http.StatusUnauthorized, common.ErrInvalidToken.Error())
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFromContext(ctx context.Context) (*services.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*services.Identity)
	return identity, ok
}
