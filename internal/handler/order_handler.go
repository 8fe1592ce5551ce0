package handler

import (
	"shopmall-api/internal/middleware"
	"shopmall-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// POST /api/orders
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req service.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	order, err := h.orderService.CreateOrder(c.UserContext(), middleware.CurrentCaller(c), &req)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusCreated, order, "Order created successfully")
}

// ListOrders returns the caller's own orders, newest first
// GET /api/orders
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	page := service.NewPagination(c.QueryInt("page", service.DefaultPage), c.QueryInt("limit", service.DefaultLimit))

	orders, total, err := h.orderService.ListUserOrders(middleware.CurrentCaller(c), page)
	if err != nil {
		return writeError(c, err)
	}
	return respondList(c, orders, len(orders), total, page)
}

// GET /api/orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := service.ParseID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	order, err := h.orderService.GetOrderByID(middleware.CurrentCaller(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, order, "")
}

// PUT /api/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := service.ParseID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	var req service.UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	order, err := h.orderService.UpdateOrderStatus(c.UserContext(), id, &req)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, order, "Order status updated")
}

// UpdatePayment is called by the checkout flow after the payment widget returns
// PUT /api/orders/:id/payment
func (h *OrderHandler) UpdatePayment(c *fiber.Ctx) error {
	id, err := service.ParseID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	var req service.UpdatePaymentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	order, err := h.orderService.UpdatePaymentStatus(c.UserContext(), id, &req)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, order, "Payment status updated")
}
