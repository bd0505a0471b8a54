package server

import (
	"net/http"

	"github.com/wolfeidau/tenancy/internal/orgs"
)

func (s *Server) createOrg(w http.ResponseWriter, r *http.Request) {
	var in orgs.CreateOrgInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.orgs.CreateOrg(r.Context(), in, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) createLegalEntityOrg(w http.ResponseWriter, r *http.Request) {
	var in orgs.CreateOrgInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.orgs.CreateLegalEntityOrg(r.Context(), in, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) listOrgs(w http.ResponseWriter, r *http.Request) {
	list, err := s.orgs.ListForUser(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) listAllOrgs(w http.ResponseWriter, r *http.Request) {
	list, err := s.orgs.ListAll(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) updateOrg(w http.ResponseWriter, r *http.Request) {
	var in orgs.UpdateOrgInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	org, err := s.orgs.UpdateOrg(r.Context(), r.PathValue("tenant"), in, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (s *Server) deleteOrg(w http.ResponseWriter, r *http.Request) {
	if err := s.orgs.Delete(r.Context(), r.PathValue("tenant"), caller(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) switchOrg(w http.ResponseWriter, r *http.Request) {
	res, err := s.orgs.Switch(r.Context(), r.PathValue("tenant"), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
