package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/tychicus04/web-ban-den-sub006/internal/domain"
	"github.com/tychicus04/web-ban-den-sub006/internal/middleware"
	"github.com/tychicus04/web-ban-den-sub006/internal/usecase"
	"github.com/tychicus04/web-ban-den-sub006/pkg/response"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

type OrderHandler struct {
	orderUC *usecase.OrderStatusUsecase
}

func NewOrderHandler(orderUC *usecase.OrderStatusUsecase) *OrderHandler {
	return &OrderHandler{orderUC: orderUC}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Get("/{id}", h.GetOrder)
		r.Post("/{id}/status", h.UpdateStatus)
	})
}

type OrderStatusJSON struct {
	Status       string  `json:"status"`
	TrackingCode *string `json:"tracking_code,omitempty"`
}

type OrderDetailJSON struct {
	Order *domain.Order       `json:"order"`
	Items []*domain.OrderItem `json:"items"`
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "missing seller identity")
		return
	}

	var in OrderStatusJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	orderID := chi.URLParam(r, "id")
	order, err := h.orderUC.Transition(r.Context(), ident, orderID,
		domain.DeliveryStatus(in.Status), in.TrackingCode)
	if err != nil {
		log.WithFields(log.Fields{
			"order_id":  orderID,
			"seller_id": ident.SellerID,
			"target":    in.Status,
		}).WithError(err).Warn("order status change rejected")
		writeWorkflowError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "missing seller identity")
		return
	}

	order, items, err := h.orderUC.Get(r.Context(), ident, chi.URLParam(r, "id"))
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, OrderDetailJSON{Order: order, Items: items})
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "missing seller identity")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	orders, err := h.orderUC.List(r.Context(), ident, limit, offset)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, orders)
}
