package handlers

import (
	"net/http"

	"dineflow/internal/microservices/order/service"
)

type StatsHandler struct {
	service service.StatsServiceInterface
}

func NewStatsHandler(s service.StatsServiceInterface) *StatsHandler {
	return &StatsHandler{service: s}
}

func (sh *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sh.service.ComputeStats(r.Context()))
}
