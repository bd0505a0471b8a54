package server

import (
	"net/http"

	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/quota"
)

type createSubscriptionRequest struct {
	TenantKey         string          `json:"client_name"`
	Level             models.TierCode `json:"subscription_level"`
	LegalEntityMaster string          `json:"le_master,omitempty"`
}

type consumeResponse struct {
	TenantKey string        `json:"client_name"`
	Action    models.Action `json:"action"`
	Used      int64         `json:"used"`
}

func (s *Server) createSubscription(w http.ResponseWriter, r *http.Request) {
	if !s.platformAdmin(w, r) {
		return
	}

	var in createSubscriptionRequest
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	var (
		sub *models.Subscription
		err error
	)
	if in.Level == models.TierLE {
		sub, err = s.subscriptions.CreateLegalEntitySubscription(r.Context(), in.TenantKey, in.LegalEntityMaster)
	} else {
		sub, err = s.subscriptions.CreateSubscription(r.Context(), in.TenantKey, in.Level)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) getSubscription(w http.ResponseWriter, r *http.Request) {
	tenantKey := r.PathValue("tenant")
	if _, err := s.orgs.Get(r.Context(), tenantKey, caller(r)); err != nil {
		writeError(w, r, err)
		return
	}

	sub, err := s.subscriptions.GetSubscription(r.Context(), tenantKey)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) updateSubscription(w http.ResponseWriter, r *http.Request) {
	if !s.platformAdmin(w, r) {
		return
	}

	var upd quota.SubscriptionUpdate
	if err := decode(r, &upd); err != nil {
		writeError(w, r, err)
		return
	}

	sub, err := s.subscriptions.UpdateSubscription(r.Context(), r.PathValue("tenant"), upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// consume meters one action against the tenant's limits. Any member may consume.
func (s *Server) consume(w http.ResponseWriter, r *http.Request) {
	tenantKey := r.PathValue("tenant")
	if _, err := s.orgs.Get(r.Context(), tenantKey, caller(r)); err != nil {
		writeError(w, r, err)
		return
	}

	action := models.Action(r.PathValue("action"))
	used, err := s.subscriptions.Consume(r.Context(), tenantKey, action)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, consumeResponse{TenantKey: tenantKey, Action: action, Used: used})
}
