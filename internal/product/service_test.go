package product

import (
	"fmt"
	"strings"
	"testing"

	"github.com/andrevlopes/catalog-admin-backend/internal/archive"
	"github.com/andrevlopes/catalog-admin-backend/internal/category"
	"github.com/andrevlopes/catalog-admin-backend/internal/listing"
	"github.com/andrevlopes/catalog-admin-backend/internal/storage"
)

func intPtr(i int) *int { return &i }

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

type fixture struct {
	service    *Service
	repo       *InMemoryRepository
	archives   *archive.InMemoryRepository
	storage    *storage.MemoryStorage
	categories *category.InMemoryRepository
}

func newFixture(seed []Product) *fixture {
	archives := archive.NewInMemoryRepository()
	repo := NewInMemoryRepository(seed, archives)
	store := storage.NewMemoryStorage()
	categories := category.NewInMemoryRepository([]category.Category{
		{ID: 1, Name: "Electronics", Slug: "electronics", Status: true, UserID: 1},
		{ID: 2, Name: "Groceries", Slug: "groceries", Status: true, UserID: 2},
	})
	return &fixture{
		service:    NewService(repo, archives, store, categories),
		repo:       repo,
		archives:   archives,
		storage:    store,
		categories: categories,
	}
}

func TestSaveNormalizesPriceAndStoresImages(t *testing.T) {
	fx := newFixture(nil)

	form := NewForm()
	form.SetName("Notebook Gamer")
	form.Price = "R$ 1.234,56"
	form.Stock = 3
	form.CategoryID = intPtr(1)

	uploads := []Upload{
		{Filename: "front.png", Data: pngBytes},
		{Filename: "back.png", Data: pngBytes},
	}

	saved, verrs, err := fx.service.Save(1, form, uploads)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if len(verrs) > 0 {
		t.Fatalf("unexpected validation errors %v", verrs)
	}
	if saved.Price != "1234.56" {
		t.Fatalf("price not normalized: %q", saved.Price)
	}
	if saved.Slug != "notebook-gamer" {
		t.Fatalf("unexpected slug %q", saved.Slug)
	}
	if len(saved.Images) != 2 {
		t.Fatalf("expected 2 attached images, got %d", len(saved.Images))
	}
	for _, img := range saved.Images {
		if img.Extension != "png" || !strings.HasSuffix(img.Archive, ".png") {
			t.Fatalf("unexpected archive record %+v", img)
		}
		// stored names are generated, never the client's filename
		if img.Archive == "front.png" || img.Archive == "back.png" {
			t.Fatalf("client filename used for storage: %+v", img)
		}
		if !strings.HasPrefix(img.Path, "/uploads/products/") {
			t.Fatalf("unexpected path %q", img.Path)
		}
	}
	if fx.storage.Len() != 2 {
		t.Fatalf("expected 2 stored files, got %d", fx.storage.Len())
	}
}

func TestSaveRejectsCategoryFromAnotherUser(t *testing.T) {
	fx := newFixture(nil)

	form := NewForm()
	form.SetName("Notebook Gamer")
	form.Price = "100"
	form.CategoryID = intPtr(2) // owned by user 2

	_, verrs, err := fx.service.Save(1, form, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if verrs["category_id"] == "" {
		t.Fatalf("expected category_id error, got %v", verrs)
	}

	// nothing was written
	if _, total, _ := fx.repo.ListPage(1, listing.Params{Page: 1}.Normalize()); total != 0 {
		t.Fatalf("expected no products, got %d", total)
	}
	if fx.storage.Len() != 0 {
		t.Fatalf("expected no stored files, got %d", fx.storage.Len())
	}
}

func TestSaveValidatesUploads(t *testing.T) {
	fx := newFixture(nil)

	form := NewForm()
	form.SetName("Notebook Gamer")
	form.Price = "100"
	form.CategoryID = intPtr(1)

	tooMany := make([]Upload, 6)
	for i := range tooMany {
		tooMany[i] = Upload{Filename: fmt.Sprintf("f%d.png", i), Data: pngBytes}
	}
	_, verrs, err := fx.service.Save(1, form, tooMany)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if verrs["images"] == "" {
		t.Fatalf("expected images count error, got %v", verrs)
	}

	_, verrs, err = fx.service.Save(1, form, []Upload{
		{Filename: "a.png", Data: pngBytes},
		{Filename: "notes.txt", Data: []byte("plain text, not an image")},
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if verrs["images.1"] == "" {
		t.Fatalf("expected per-file type error, got %v", verrs)
	}

	oversized := make([]byte, maxImageSize+1)
	copy(oversized, pngBytes)
	_, verrs, err = fx.service.Save(1, form, []Upload{{Filename: "big.png", Data: oversized}})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if verrs["images.0"] == "" {
		t.Fatalf("expected size error, got %v", verrs)
	}
}

func TestSaveCollectsFieldErrors(t *testing.T) {
	fx := newFixture(nil)

	form := NewForm()
	form.Name = "ab"
	form.Price = "abc"
	form.Stock = -1

	_, verrs, err := fx.service.Save(1, form, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	for _, key := range []string{"name", "slug", "price", "stock", "category_id"} {
		if verrs[key] == "" {
			t.Fatalf("expected %s error, got %v", key, verrs)
		}
	}
	if verrs["price"] != "enter a valid price" {
		t.Fatalf("unexpected price message %q", verrs["price"])
	}
}

func TestSavePartialImageFailureKeepsEarlierImages(t *testing.T) {
	fx := newFixture(nil)
	fx.storage.FailSuffix = ".gif"

	form := NewForm()
	form.SetName("Notebook Gamer")
	form.Price = "100"
	form.CategoryID = intPtr(1)

	_, _, err := fx.service.Save(1, form, []Upload{
		{Filename: "a.png", Data: pngBytes},
		{Filename: "b.gif", Data: append([]byte("GIF89a"), 0, 0)},
	})
	if err == nil {
		t.Fatalf("expected storage failure to surface")
	}

	// the product row and the first image survive the failure
	p, err := fx.service.GetByID(1, 1)
	if err != nil {
		t.Fatalf("product not persisted: %v", err)
	}
	if len(p.Images) != 1 || p.Images[0].Extension != "png" {
		t.Fatalf("expected the first image attached, got %+v", p.Images)
	}
}

func TestSaveUpdatesExistingProductWithoutDetachingImages(t *testing.T) {
	fx := newFixture([]Product{{
		ID: 1, Name: "Notebook", Slug: "notebook", Price: "100.00",
		Stock: 1, Status: true, CategoryID: 1, UserID: 1,
		CreatedAt: "2026-01-02T08:00:00Z",
	}})
	a, _ := fx.archives.Create(archive.Archive{Filename: "old", Extension: "png", Archive: "old.png", Path: "/uploads/products/old.png"})
	if err := fx.repo.AttachArchive(1, a.ID); err != nil {
		t.Fatalf("attach failed: %v", err)
	}

	form := NewForm()
	form.SetProduct(Product{ID: 1, Name: "Notebook", Slug: "notebook", Price: "100.00", Stock: 1, Status: true, CategoryID: 1, UserID: 1})
	form.SetName("Notebook Pro")
	form.Price = "250,00"

	saved, verrs, err := fx.service.Save(1, form, []Upload{{Filename: "new.png", Data: pngBytes}})
	if err != nil || len(verrs) > 0 {
		t.Fatalf("update failed: %v %v", err, verrs)
	}
	if saved.ID != 1 || saved.Slug != "notebook-pro" || saved.Price != "250.00" {
		t.Fatalf("unexpected updated product %+v", saved)
	}
	if saved.CreatedAt != "2026-01-02T08:00:00Z" {
		t.Fatalf("created_at rewritten on update: %q", saved.CreatedAt)
	}
	if len(saved.Images) != 2 {
		t.Fatalf("existing image detached: %+v", saved.Images)
	}
}

func TestSaveCrossOwnerUpdateIsNotFound(t *testing.T) {
	fx := newFixture([]Product{{
		ID: 1, Name: "Notebook", Slug: "notebook", Price: "100.00",
		Status: true, CategoryID: 2, UserID: 2,
	}})

	form := NewForm()
	form.ProductID = intPtr(1) // owned by user 2
	form.Name = "Hijacked"
	form.Slug = "hijacked"
	form.Price = "100"
	form.CategoryID = intPtr(1)

	_, verrs, err := fx.service.Save(1, form, nil)
	if err != ErrNotFound {
		t.Fatalf("got %v %v, want ErrNotFound", err, verrs)
	}

	got, err := fx.repo.GetByID(2, 1)
	if err != nil || got.Name != "Notebook" || got.UserID != 2 {
		t.Fatalf("other owner's product was modified: %+v %v", got, err)
	}
}

func TestInMemorySaveScopesUpdatesToOwner(t *testing.T) {
	fx := newFixture([]Product{{
		ID: 1, Name: "Notebook", Slug: "notebook", Price: "100.00",
		Status: true, CategoryID: 2, UserID: 2,
	}})

	if _, err := fx.repo.Save(Product{ID: 1, Name: "Hijacked", Slug: "hijacked", Price: "1.00", Status: true, CategoryID: 1, UserID: 1}); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	got, err := fx.repo.GetByID(2, 1)
	if err != nil || got.Name != "Notebook" {
		t.Fatalf("other owner's product was modified: %+v %v", got, err)
	}
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	fx := newFixture([]Product{{
		ID: 1, Name: "Notebook", Slug: "notebook", Price: "100.00",
		Status: true, CategoryID: 1, UserID: 2,
	}})

	if err := fx.service.Delete(1, 1); err != ErrNotFound {
		t.Fatalf("cross-owner delete: got %v, want ErrNotFound", err)
	}
	if err := fx.service.Delete(2, 1); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
}
