package handler

import (
	"shopmall-api/internal/middleware"
	"shopmall-api/internal/model"
	"shopmall-api/internal/repository"
	"shopmall-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ListProducts supports ?category=&status=&search=&page=&limit=
// GET /api/products
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	filter := repository.ProductFilter{
		Category: model.Category(c.Query("category")),
		Status:   model.ProductStatus(c.Query("status")),
		Search:   c.Query("search"),
	}
	page := service.NewPagination(c.QueryInt("page", service.DefaultPage), c.QueryInt("limit", service.DefaultLimit))

	products, total, err := h.productService.ListProducts(filter, page)
	if err != nil {
		return writeError(c, err)
	}
	return respondList(c, products, len(products), total, page)
}

// GET /api/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := service.ParseID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	product, err := h.productService.GetProduct(id)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, product, "")
}

// POST /api/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	product, err := h.productService.CreateProduct(middleware.CurrentCaller(c), &req)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusCreated, product, "Product created successfully")
}

// PUT /api/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := service.ParseID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	product, err := h.productService.UpdateProduct(middleware.CurrentCaller(c), id, &req)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, product, "Product updated successfully")
}

// DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := service.ParseID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	if err := h.productService.DeleteProduct(id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Product deleted successfully"})
}
