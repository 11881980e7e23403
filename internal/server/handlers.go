package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mveldt/craftplan/pkg/errors"
	"github.com/mveldt/craftplan/pkg/metadata"
	"github.com/mveldt/craftplan/pkg/plan"
	"github.com/mveldt/craftplan/pkg/shopping"
)

// createPlanRequest is the POST /api/plans body.
type createPlanRequest struct {
	Name       string             `json:"name"`
	DataCenter string             `json:"data_center"`
	World      string             `json:"world"`
	Targets    []createPlanTarget `json:"targets"`
}

type createPlanTarget struct {
	ItemID   int    `json:"item_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	HQ       bool   `json:"hq"`
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decoding request body"))
		return
	}
	if len(req.Targets) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "at least one target is required"))
		return
	}

	dataCenter := req.DataCenter
	if dataCenter == "" {
		dataCenter = s.cfg.DataCenter
	}
	if err := errors.ValidateRegion(dataCenter); err != nil {
		writeError(w, err)
		return
	}

	targets := make([]plan.Target, 0, len(req.Targets))
	for _, t := range req.Targets {
		targets = append(targets, plan.Target{
			ItemID:   t.ItemID,
			Name:     t.Name,
			Quantity: t.Quantity,
			HQ:       t.HQ,
		})
	}

	opts := plan.Options{Logger: s.log.Debugf}
	p, err := s.builder.BuildPlan(r.Context(), targets, dataCenter, req.World, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Name != "" {
		p.Name = req.Name
	}

	if err := plan.FetchVendorPrices(r.Context(), s.meta, p, opts); err != nil {
		writeError(w, err)
		return
	}
	shopOpts := shopping.Options{Logger: s.log.Debugf}
	if err := shopping.ApplyMarketPrices(r.Context(), s.market, p, dataCenter, shopOpts); err != nil {
		writeError(w, err)
		return
	}

	if err := s.plans.Put(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.plans.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": summaries})
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	p, err := s.plans.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := s.plans.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMaterials(w http.ResponseWriter, r *http.Request) {
	p, err := s.plans.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"materials": plan.Materials(p)})
}

// shoppingRequest is the POST /api/plans/{id}/shopping body. All fields are
// optional; the configured defaults apply.
type shoppingRequest struct {
	HomeWorld string   `json:"home_world"`
	Blacklist []string `json:"blacklist"`
	Split     *bool    `json:"split"`
}

func (s *Server) handleShopping(w http.ResponseWriter, r *http.Request) {
	var req shoppingRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decoding request body"))
			return
		}
	}

	p, err := s.plans.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	homeWorld := req.HomeWorld
	if homeWorld == "" {
		homeWorld = s.cfg.HomeWorld
	}
	blacklist := req.Blacklist
	if blacklist == nil {
		blacklist = s.cfg.Blacklist
	}
	split := s.cfg.Shopping.SplitPurchase
	if req.Split != nil {
		split = *req.Split
	}

	materials := plan.Materials(p)
	opts := shopping.Options{Logger: s.log.Debugf}

	var plans []shopping.DetailedShoppingPlan
	if split {
		plans, err = s.planner.PlanShoppingSplit(r.Context(), materials, p.DataCenter, homeWorld, blacklist, opts)
	} else {
		plans, err = s.planner.PlanShopping(r.Context(), materials, p.DataCenter, homeWorld, blacklist, opts)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shopping": plans})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "query parameter q is required"))
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "limit must be a positive integer"))
			return
		}
		limit = n
	}

	searcher, ok := s.meta.(interface {
		Search(query string, limit int) []metadata.Match
	})
	if !ok {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "item search is not available for this metadata source"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": searcher.Search(query, limit)})
}
