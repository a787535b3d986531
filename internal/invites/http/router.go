package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/teamlinkhq/teamlink/internal/invites/service"
	"github.com/teamlinkhq/teamlink/internal/invites/store"
	"github.com/teamlinkhq/teamlink/pkg/httpx"
	"github.com/teamlinkhq/teamlink/pkg/jwtx"
	"github.com/teamlinkhq/teamlink/pkg/slogx"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store         store.Store
	InviteService *service.InviteService
	RedeemService *service.RedeemService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerInvitations()
	r.registerRegistration()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			TeamLink Invitation Service API
//	@version		0.1.0
//	@description	Member-invitation issuance and redemption for companies and associations.
//	@description
//	@description				Invitations are time-limited, single-use tokens delivered by email. Only the
//	@description				token's one-way fingerprint is persisted; the raw token appears exactly once,
//	@description				inside the redemption link.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerInvitations() {
	createHandler := &InvitationCreateHandler{InviteService: r.InviteService}
	bulkHandler := &InvitationBulkHandler{InviteService: r.InviteService}
	listHandler := &InvitationListHandler{InviteService: r.InviteService}
	resendHandler := &InvitationResendHandler{InviteService: r.InviteService}
	revokeHandler := &InvitationRevokeHandler{InviteService: r.InviteService}

	// Admin write operations - moderate rate limit by user. The service
	// applies its own trailing-window issuance limit on top for the single
	// path.
	r.Mux.Handle("POST /v1/invitations",
		httpx.Chain(createHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/invitations/bulk",
		httpx.Chain(bulkHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/invitations/{id}/resend",
		httpx.Chain(resendHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/invitations/{id}/revoke",
		httpx.Chain(revokeHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// GET /v1/invitations - admin read, lenient rate limit by user
	r.Mux.Handle("GET /v1/invitations",
		httpx.Chain(listHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerRegistration() {
	// POST /register - strict rate limit by IP (public endpoint; the token
	// itself is the credential, so brute-force pressure lands here)
	registerHandler := &RegisterHandler{RedeemService: r.RedeemService}
	r.Mux.Handle("POST /v1/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
