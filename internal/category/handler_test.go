package category

import (
	"errors"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// helper to build an app with a bootstrap middleware that injects a jwt.Token
// into locals when the X-User-ID header is provided. This avoids pulling in
// the full jwtware middleware and keeps tests lightweight.
func makeApp(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				claims := jwt.MapClaims{"user_id": id}
				tok := &jwt.Token{Claims: claims}
				c.Locals("user", tok)
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func TestListCategoriesIsOwnerScoped(t *testing.T) {
	app := makeApp(NewHandler(NewService(seededRepo())))

	req := httptest.NewRequest("GET", "/api/v1/categories?sortBy=name&sortDir=desc", nil)
	req.Header.Set("X-User-ID", "1")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	b, _ := io.ReadAll(res.Body)
	body := string(b)
	if !strings.Contains(body, "Electronics") || !strings.Contains(body, "Peripherals") {
		t.Fatalf("missing own categories: %s", body)
	}
	if strings.Contains(body, "Groceries") {
		t.Fatalf("other owner's category leaked into listing: %s", body)
	}
	if !strings.Contains(body, `"total":2`) {
		t.Fatalf("missing meta total: %s", body)
	}
	// desc by name puts Peripherals first
	if strings.Index(body, "Peripherals") > strings.Index(body, "Electronics") {
		t.Fatalf("descending name order not applied: %s", body)
	}
}

func TestListCategoriesRequiresAuth(t *testing.T) {
	app := makeApp(NewHandler(NewService(seededRepo())))

	req := httptest.NewRequest("GET", "/api/v1/categories", nil)
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}
}

func TestSelectOptionsRunsTheSearchProtocol(t *testing.T) {
	app := makeApp(NewHandler(NewService(seededRepo())))

	req := httptest.NewRequest("GET", "/api/v1/categories/options?search=Ele", nil)
	req.Header.Set("X-User-ID", "1")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "Electronics") {
		t.Fatalf("expected matching option, got %s", b)
	}

	// two characters is below the search threshold: no options, no search
	req2 := httptest.NewRequest("GET", "/api/v1/categories/options?search=El", nil)
	req2.Header.Set("X-User-ID", "1")
	res2, err := app.Test(req2)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	b2, _ := io.ReadAll(res2.Body)
	if strings.TrimSpace(string(b2)) != "{}" {
		t.Fatalf("short query should yield no options, got %s", b2)
	}
}

func TestSaveCategoryCreatesAndValidates(t *testing.T) {
	app := makeApp(NewHandler(NewService(seededRepo())))

	// happy path: slug derived from the name
	req := httptest.NewRequest("POST", "/api/v1/categories", strings.NewReader(`{"name":"Nova Categoria"}`))
	req.Header.Set("X-User-ID", "1")
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "nova-categoria") {
		t.Fatalf("expected derived slug in response, got %s", b)
	}

	// validation errors come back field-keyed with 422
	req2 := httptest.NewRequest("POST", "/api/v1/categories", strings.NewReader(`{"name":"ab"}`))
	req2.Header.Set("X-User-ID", "1")
	req2.Header.Set("Content-Type", "application/json")
	res2, err := app.Test(req2)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res2.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", res2.StatusCode)
	}
	b2, _ := io.ReadAll(res2.Body)
	if !strings.Contains(string(b2), `"name"`) {
		t.Fatalf("expected name error, got %s", b2)
	}
}

func TestSaveCategoryRejectsSelfParentOverHTTP(t *testing.T) {
	app := makeApp(NewHandler(NewService(seededRepo())))

	req := httptest.NewRequest("POST", "/api/v1/categories", strings.NewReader(`{"id":1,"name":"Electronics","slug":"electronics","parentId":1}`))
	req.Header.Set("X-User-ID", "1")
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "parent_id") {
		t.Fatalf("expected parent_id error, got %s", b)
	}
}

func TestGetAndDeleteCategory(t *testing.T) {
	repo := seededRepo()
	app := makeApp(NewHandler(NewService(repo)))

	req := httptest.NewRequest("GET", "/api/v1/categories/2", nil)
	req.Header.Set("X-User-ID", "1")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	b, _ := io.ReadAll(res.Body)
	// the edit flow needs the parent name for the select widget's set-property
	if !strings.Contains(string(b), `"parentName":"Electronics"`) {
		t.Fatalf("expected parent name in edit payload, got %s", b)
	}

	req2 := httptest.NewRequest("DELETE", "/api/v1/categories/2", nil)
	req2.Header.Set("X-User-ID", "1")
	res2, err := app.Test(req2)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res2.StatusCode)
	}

	// the record is gone now
	req3 := httptest.NewRequest("DELETE", "/api/v1/categories/2", nil)
	req3.Header.Set("X-User-ID", "1")
	res3, err := app.Test(req3)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res3.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res3.StatusCode)
	}
}

type failingDeleteRepo struct {
	*InMemoryRepository
}

func (r *failingDeleteRepo) Delete(ownerID, id int) error {
	return errors.New("still referenced by a child category")
}

func TestDeleteCategoryFailureIsNotMaskedAsMissing(t *testing.T) {
	app := makeApp(NewHandler(NewService(&failingDeleteRepo{seededRepo()})))

	req := httptest.NewRequest("DELETE", "/api/v1/categories/1", nil)
	req.Header.Set("X-User-ID", "1")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.StatusCode)
	}
}
