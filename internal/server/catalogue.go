package server

import (
	"net/http"

	"github.com/wolfeidau/tenancy/internal/models"
)

// platformAdmin writes a forbidden response unless the caller is a platform admin.
func (s *Server) platformAdmin(w http.ResponseWriter, r *http.Request) bool {
	if err := s.authz.RequirePlatformAdmin(caller(r)); err != nil {
		writeError(w, r, err)
		return false
	}
	return true
}

func (s *Server) putTier(w http.ResponseWriter, r *http.Request) {
	if !s.platformAdmin(w, r) {
		return
	}

	var tier models.Tier
	if err := decode(r, &tier); err != nil {
		writeError(w, r, err)
		return
	}
	if tier.AllowedTabs == nil {
		tier.AllowedTabs = []string{}
	}

	if err := s.tiers.PutTier(r.Context(), &tier); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &tier)
}

func (s *Server) listTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := s.tiers.ListTiers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tiers)
}

func (s *Server) getTier(w http.ResponseWriter, r *http.Request) {
	tier, err := s.tiers.GetTierLimits(r.Context(), models.TierCode(r.PathValue("code")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tier)
}

func (s *Server) deleteTier(w http.ResponseWriter, r *http.Request) {
	if !s.platformAdmin(w, r) {
		return
	}

	if err := s.tiers.DeleteTier(r.Context(), models.TierCode(r.PathValue("code"))); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putRole(w http.ResponseWriter, r *http.Request) {
	if !s.platformAdmin(w, r) {
		return
	}

	var role models.RoleDefinition
	if err := decode(r, &role); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.roles.Put(r.Context(), &role); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &role)
}

func (s *Server) listRoles(w http.ResponseWriter, r *http.Request) {
	list, err := s.roles.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getRole(w http.ResponseWriter, r *http.Request) {
	role, err := s.roles.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, role)
}

func (s *Server) deleteRole(w http.ResponseWriter, r *http.Request) {
	if !s.platformAdmin(w, r) {
		return
	}

	if err := s.roles.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
