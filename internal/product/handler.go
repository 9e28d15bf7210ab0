package product

import (
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/andrevlopes/catalog-admin-backend/internal/listing"
	"github.com/andrevlopes/catalog-admin-backend/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/products", h.getProducts)
	app.Get("/api/v1/products/:id", h.getProduct)
	app.Post("/api/v1/products", h.saveProduct)
	app.Delete("/api/v1/products/:id", h.deleteProduct)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
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

func (h *Handler) getProduct(c *fiber.Ctx) error {
	ownerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}

	p, err := h.service.GetByID(ownerID, id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Product not found")
	}
	return c.JSON(p)
}

// saveProduct accepts either a multipart form (fields plus up to five
// `images` files) or a plain JSON body when there is nothing to upload.
func (h *Handler) saveProduct(c *fiber.Ctx) error {
	ownerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	form := NewForm()
	var uploads []Upload

	if strings.HasPrefix(c.Get("Content-Type"), "multipart/form-data") {
		uploads, err = h.parseMultipart(c, &form)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
	} else if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	// a save without a slug derives it from the name, mirroring the form's
	// name -> slug sync
	if form.Slug == "" && form.Name != "" {
		form.SetName(form.Name)
	}

	saved, verrs, err := h.service.Save(ownerID, form, uploads)
	if err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).SendString("Product not found")
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	if len(verrs) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": verrs})
	}

	status := fiber.StatusOK
	if form.ProductID == nil {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(saved)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
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
			return c.Status(fiber.StatusNotFound).SendString("Product not found")
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.SendString("Product deleted")
}

// parseMultipart pulls form fields and fully buffers every `images` file so
// validation sees complete uploads.
func (h *Handler) parseMultipart(c *fiber.Ctx, form *Form) ([]Upload, error) {
	mf, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	if v := c.FormValue("id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			form.ProductID = &id
		}
	}
	form.Name = c.FormValue("name")
	form.Slug = c.FormValue("slug")
	form.Price = c.FormValue("price")
	if v := c.FormValue("stock"); v != "" {
		if stock, err := strconv.Atoi(v); err == nil {
			form.Stock = stock
		}
	}
	if v := c.FormValue("description"); v != "" {
		form.Description = &v
	}
	if v := c.FormValue("categoryId"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			form.CategoryID = &id
		}
	}
	if v := c.FormValue("status"); v != "" {
		form.Status = v == "true" || v == "1"
	}

	var uploads []Upload
	for _, fh := range mf.File["images"] {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, Upload{Filename: fh.Filename, Data: data})
	}
	return uploads, nil
}
