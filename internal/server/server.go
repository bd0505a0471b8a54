package server

import (
	"net/http"

	"github.com/wolfeidau/tenancy/internal/authz"
	"github.com/wolfeidau/tenancy/internal/membership"
	"github.com/wolfeidau/tenancy/internal/orgs"
	"github.com/wolfeidau/tenancy/internal/quota"
	"github.com/wolfeidau/tenancy/internal/roles"
)

// Services are the domain services exposed over HTTP.
type Services struct {
	Membership    *membership.Service
	Orgs          *orgs.Service
	Tiers         *quota.TierService
	Subscriptions *quota.SubscriptionService
	Roles         *roles.Service
	Authz         *authz.Authorizer
}

// Server maps the JSON API onto the domain services.
type Server struct {
	membership    *membership.Service
	orgs          *orgs.Service
	tiers         *quota.TierService
	subscriptions *quota.SubscriptionService
	roles         *roles.Service
	authz         *authz.Authorizer
}

// NewServer creates a new server over svcs.
func NewServer(svcs Services) *Server {
	return &Server{
		membership:    svcs.Membership,
		orgs:          svcs.Orgs,
		tiers:         svcs.Tiers,
		subscriptions: svcs.Subscriptions,
		roles:         svcs.Roles,
		authz:         svcs.Authz,
	}
}

// Handler returns the HTTP handler for the server. Every /api route is
// wrapped with authn, which must place an auth.Identity on the context.
func (s *Server) Handler(authn func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint for load balancer
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	api := http.NewServeMux()

	api.HandleFunc("POST /users/register", s.register)
	api.HandleFunc("POST /users/register-le", s.registerLegalEntity)
	api.HandleFunc("POST /users/join-request", s.joinRequest)
	api.HandleFunc("POST /users/approve-join/{joinID}", s.approveJoin)
	api.HandleFunc("POST /users/reject-join/{joinID}", s.rejectJoin)
	api.HandleFunc("POST /users/invite", s.invite)
	api.HandleFunc("PATCH /users/role/{email}", s.updateRole)
	api.HandleFunc("DELETE /users/remove/{email}", s.removeUser)
	api.HandleFunc("GET /users/join-requests", s.listJoinRequests)
	api.HandleFunc("POST /users/me", s.me)
	api.HandleFunc("GET /users/admin-orgs", s.adminOrgs)

	api.HandleFunc("POST /orgs", s.createOrg)
	api.HandleFunc("POST /orgs/le", s.createLegalEntityOrg)
	api.HandleFunc("GET /orgs", s.listOrgs)
	api.HandleFunc("GET /orgs/all", s.listAllOrgs)
	api.HandleFunc("PATCH /orgs/{tenant}", s.updateOrg)
	api.HandleFunc("DELETE /orgs/{tenant}", s.deleteOrg)
	api.HandleFunc("GET /orgs/switch/{tenant}", s.switchOrg)

	api.HandleFunc("POST /tiers", s.putTier)
	api.HandleFunc("GET /tiers", s.listTiers)
	api.HandleFunc("GET /tiers/{code}", s.getTier)
	api.HandleFunc("DELETE /tiers/{code}", s.deleteTier)

	api.HandleFunc("POST /roles", s.putRole)
	api.HandleFunc("GET /roles", s.listRoles)
	api.HandleFunc("GET /roles/{id}", s.getRole)
	api.HandleFunc("DELETE /roles/{id}", s.deleteRole)

	api.HandleFunc("POST /subscriptions", s.createSubscription)
	api.HandleFunc("GET /subscriptions/{tenant}", s.getSubscription)
	api.HandleFunc("PATCH /subscriptions/{tenant}", s.updateSubscription)
	api.HandleFunc("POST /subscriptions/{tenant}/consume/{action}", s.consume)

	mux.Handle("/api/", http.StripPrefix("/api", authn(api)))

	return mux
}
