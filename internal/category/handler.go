package category

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/andrevlopes/catalog-admin-backend/internal/event"
	"github.com/andrevlopes/catalog-admin-backend/internal/listing"
	"github.com/andrevlopes/catalog-admin-backend/internal/selectsearch"
	"github.com/andrevlopes/catalog-admin-backend/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	// register /options before /:id to avoid the route param swallowing it
	app.Get("/api/v1/categories/options", h.selectOptions)
	app.Get("/api/v1/categories", h.getCategories)
	app.Get("/api/v1/categories/:id", h.getCategory)
	app.Post("/api/v1/categories", h.saveCategory)
	app.Delete("/api/v1/categories/:id", h.deleteCategory)
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	ownerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	params := listing.Params{
		Search:  c.Query("search"),
		SortBy:  c.Query("sortBy"),
		SortDir: c.Query("sortDir"),
		Page:    c.QueryInt("page", 1),
	}.Normalize()

	items, total, err := h.service.List(ownerID, params)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"data": items, "meta": listing.NewMeta(total, params.Page)})
}

func (h *Handler) getCategory(c *fiber.Ctx) error {
	ownerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}

	cat, err := h.service.GetByID(ownerID, id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Category not found")
	}
	return c.JSON(cat)
}

// selectOptions runs the select-search protocol for one request: the widget
// dispatches `searching`, the provider answers `search-response`, and the
// widget's resulting option set is returned to the client.
func (h *Handler) selectOptions(c *fiber.Ctx) error {
	ownerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	bus := event.NewBus()
	widget := selectsearch.New(bus, "Category", "Select...")
	NewSelectProvider(bus, h.service, ownerID)

	widget.UpdateSearch(c.Query("search"))
	return c.JSON(widget.Data)
}

func (h *Handler) saveCategory(c *fiber.Ctx) error {
	ownerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	form := NewForm()
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	// a save without a slug derives it from the name, mirroring the form's
	// name -> slug sync
	if form.Slug == "" && form.Name != "" {
		form.SetName(form.Name)
	}

	saved, verrs, err := h.service.Save(ownerID, form)
	if err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).SendString("Category not found")
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	if len(verrs) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": verrs})
	}

	status := fiber.StatusOK
	if form.CategoryID == nil {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(saved)
}

func (h *Handler) deleteCategory(c *fiber.Ctx) error {
	ownerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}

	if err := h.service.Delete(ownerID, id); err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).SendString("Category not found")
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.SendString("Category deleted")
}
