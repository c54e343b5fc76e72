package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"dineflow/internal/common/logger"
	"dineflow/internal/microservices/order/domain/dao"
	"dineflow/internal/microservices/order/domain/dto"
	"dineflow/internal/microservices/order/service"
)

const maxBodyBytes = 1 << 20

type OrderHandler struct {
	service service.OrderServiceInterface
	lg      *logger.Logger
}

func NewOrderHandler(s service.OrderServiceInterface, lg *logger.Logger) *OrderHandler {
	return &OrderHandler{service: s, lg: lg}
}

func (oh *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	order, err := oh.service.CreateOrder(r.Context(), req)
	if err != nil {
		writeError(w, oh.lg, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (oh *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	status := dao.Status(strings.TrimSpace(r.URL.Query().Get("status")))
	if status != "" && !status.Valid() {
		writeProblem(w, http.StatusBadRequest, "bad_request", "unknown status filter "+string(status))
		return
	}

	orders, err := oh.service.ListOrders(r.Context(), status)
	if err != nil {
		writeError(w, oh.lg, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (oh *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := oh.service.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, oh.lg, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (oh *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.TransitionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		writeProblem(w, http.StatusBadRequest, "bad_request", "status is required")
		return
	}

	order, err := oh.service.TransitionStatus(r.Context(), r.PathValue("id"), dao.Status(req.Status))
	if err != nil {
		writeError(w, oh.lg, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
