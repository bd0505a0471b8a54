package server

import (
	"net/http"

	"github.com/wolfeidau/tenancy/internal/membership"
	"github.com/wolfeidau/tenancy/internal/models"
)

type roleRequest struct {
	Role models.Role `json:"role"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	in, err := registerInput(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.membership.RegisterOrJoin(r.Context(), in, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) registerLegalEntity(w http.ResponseWriter, r *http.Request) {
	in, err := registerInput(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.membership.RegisterLegalEntity(r.Context(), in, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// registerInput decodes a registration body, defaulting the email and name to
// the caller's. A body email differing from the caller's is rejected by the
// membership service.
func registerInput(r *http.Request) (membership.RegisterInput, error) {
	var in membership.RegisterInput
	if err := decode(r, &in); err != nil {
		return in, err
	}
	id := caller(r)
	if in.Email == "" {
		in.Email = id.Email
	}
	if in.Name == "" {
		in.Name = id.Name
	}
	return in, nil
}

func (s *Server) joinRequest(w http.ResponseWriter, r *http.Request) {
	var in membership.JoinInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	req, err := s.membership.JoinRequest(r.Context(), in, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     membership.MessageJoinRequestSent,
		"joinRequest": req,
	})
}

func (s *Server) approveJoin(w http.ResponseWriter, r *http.Request) {
	var in roleRequest
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.membership.ApproveJoinRequest(r.Context(), r.PathValue("joinID"), caller(r), in.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) rejectJoin(w http.ResponseWriter, r *http.Request) {
	if err := s.membership.RejectJoinRequest(r.Context(), r.PathValue("joinID"), caller(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"rejected": true})
}

func (s *Server) invite(w http.ResponseWriter, r *http.Request) {
	var in membership.InviteInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.membership.InviteUser(r.Context(), in, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) updateRole(w http.ResponseWriter, r *http.Request) {
	var in roleRequest
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.membership.UpdateUserRole(r.Context(), r.PathValue("email"), r.URL.Query().Get("org"), in.Role, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) removeUser(w http.ResponseWriter, r *http.Request) {
	if err := s.membership.RemoveUser(r.Context(), r.PathValue("email"), r.URL.Query().Get("org"), caller(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listJoinRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := s.membership.ListPendingJoinRequests(r.Context(), r.URL.Query().Get("org"), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	id := caller(r)

	user, err := s.membership.GetUser(r.Context(), id.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user": user,
		"tier": id.Tier,
	})
}

func (s *Server) adminOrgs(w http.ResponseWriter, r *http.Request) {
	list, err := s.membership.ListAdminOrganizations(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
