package product

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/sheshape-backend/internal/testutil"
	"github.com/wichananm65/sheshape-backend/internal/validation"
)

func seedProducts() []Product {
	return []Product{
		{ID: 1, Name: "Yoga Mat", Description: "Cushioned", Price: decimal.RequireFromString("39.00"), InventoryCount: 10, Category: "Yoga", IsActive: true},
		{ID: 2, Name: "Yoga Blocks", Price: decimal.RequireFromString("15.00"), InventoryCount: 0, Category: "Yoga", IsActive: true},
		{ID: 3, Name: "Kettlebell 8kg", Price: decimal.RequireFromString("49.90"), InventoryCount: 5, Category: "Equipment", IsActive: false},
		{ID: 4, Name: "Protein Bar", Price: decimal.RequireFromString("2.50"), InventoryCount: 200, Category: "Nutrition", IsActive: true},
	}
}

func makeAppWithProductHandler(t *testing.T, allowReset bool) (*fiber.App, *InMemoryRepository) {
	t.Helper()
	repo := NewInMemoryRepository(seedProducts())
	h := NewHandler(NewService(repo), validation.New(), allowReset)

	app := testutil.NewApp()
	h.RegisterPublicRoutes(app)
	h.RegisterProtectedRoutes(app)
	return app, repo
}

func asAdmin(req *http.Request) *http.Request {
	req.Header.Set("X-User-ID", "1")
	req.Header.Set("X-User-Role", "ADMIN")
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type productPage struct {
	Content       []Product `json:"content"`
	TotalElements int64     `json:"totalElements"`
	TotalPages    int       `json:"totalPages"`
	Last          bool      `json:"last"`
}

func decodePage(t *testing.T, res *http.Response) productPage {
	t.Helper()
	var page productPage
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	return page
}

func TestRoutesRegistered(t *testing.T) {
	app, _ := makeAppWithProductHandler(t, false)

	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Method+" "+r.Path] = true
		}
	}
	for _, want := range []string{
		"GET /api/products",
		"GET /api/products/:id<int>",
		"GET /api/products/search",
		"GET /api/products/in-stock",
		"GET /api/products/all",
		"POST /api/products/:id<int>/inventory/decrement",
		"PATCH /api/products/:id<int>/deactivate",
	} {
		if !routes[want] {
			t.Fatalf("expected route %q to be registered", want)
		}
	}
}

func TestListActiveProducts_ExcludesInactive(t *testing.T) {
	app, _ := makeAppWithProductHandler(t, false)

	res, err := app.Test(httptest.NewRequest("GET", "/api/products", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	page := decodePage(t, res)
	if page.TotalElements != 3 {
		t.Fatalf("expected 3 active products, got %d", page.TotalElements)
	}
	for _, p := range page.Content {
		if !p.IsActive {
			t.Fatalf("inactive product %d listed publicly", p.ID)
		}
	}

	res, _ = app.Test(asAdmin(httptest.NewRequest("GET", "/api/products/all", nil)))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for admin listing, got %d", res.StatusCode)
	}
	if page := decodePage(t, res); page.TotalElements != 4 {
		t.Fatalf("admin listing should include inactive products, got %d", page.TotalElements)
	}
}

func TestListProducts_PagingAndSort(t *testing.T) {
	app, _ := makeAppWithProductHandler(t, false)

	res, _ := app.Test(httptest.NewRequest("GET", "/api/products?page=0&size=2&sort=price,desc", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	page := decodePage(t, res)
	if len(page.Content) != 2 || page.TotalPages != 2 || page.Last {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Content[0].Name != "Yoga Mat" || page.Content[1].Name != "Yoga Blocks" {
		t.Fatalf("unexpected order: %s, %s", page.Content[0].Name, page.Content[1].Name)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/products?sort=password", nil))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown sort field, got %d", res.StatusCode)
	}
}

func TestGetProduct(t *testing.T) {
	app, _ := makeAppWithProductHandler(t, false)

	res, _ := app.Test(httptest.NewRequest("GET", "/api/products/1", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"price":39,`) {
		t.Fatalf("expected price as a JSON number: %s", b)
	}
	var p Product
	if err := json.Unmarshal(b, &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Name != "Yoga Mat" || !p.Price.Equal(decimal.RequireFromString("39")) {
		t.Fatalf("unexpected product %+v", p)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/products/999", nil))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", res.StatusCode)
	}
	b, _ = io.ReadAll(res.Body)
	if !strings.Contains(string(b), "product not found with id: 999") {
		t.Fatalf("unexpected not found body: %s", b)
	}
}

func TestGetProductsByCategory(t *testing.T) {
	app, _ := makeAppWithProductHandler(t, false)

	res, _ := app.Test(httptest.NewRequest("GET", "/api/products/category/Yoga", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	page := decodePage(t, res)
	if page.TotalElements != 2 {
		t.Fatalf("expected 2 yoga products, got %d", page.TotalElements)
	}

	// the only Equipment product is inactive
	res, _ = app.Test(httptest.NewRequest("GET", "/api/products/category/Equipment", nil))
	if page := decodePage(t, res); page.TotalElements != 0 {
		t.Fatalf("expected inactive product hidden from category listing, got %d", page.TotalElements)
	}
}

func TestSearchProducts(t *testing.T) {
	app, _ := makeAppWithProductHandler(t, false)

	res, _ := app.Test(httptest.NewRequest("GET", "/api/products/search?keyword=yOGa", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if page := decodePage(t, res); page.TotalElements != 2 {
		t.Fatalf("expected case-insensitive match on 2 products, got %d", page.TotalElements)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/products/search?keyword=kettle", nil))
	if page := decodePage(t, res); page.TotalElements != 0 {
		t.Fatalf("search must skip inactive products, got %d", page.TotalElements)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/products/search?keyword=%20", nil))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for blank keyword, got %d", res.StatusCode)
	}
}

func TestInStockProducts(t *testing.T) {
	app, _ := makeAppWithProductHandler(t, false)

	res, _ := app.Test(httptest.NewRequest("GET", "/api/products/in-stock", nil))
	var products []Product
	if err := json.NewDecoder(res.Body).Decode(&products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 in-stock active products, got %d", len(products))
	}
	for _, p := range products {
		if p.InventoryCount <= 0 || !p.IsActive {
			t.Fatalf("unexpected product in stock listing: %+v", p)
		}
	}
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	app, _ := makeAppWithProductHandler(t, false)

	body := `{"name":"Jump Rope","price":9.99,"inventoryCount":30,"category":"Equipment"}`
	res, _ := app.Test(jsonRequest("POST", "/api/products", body))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", res.StatusCode)
	}

	req := jsonRequest("POST", "/api/products", body)
	req.Header.Set("X-User-ID", "7")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for regular user, got %d", res.StatusCode)
	}
}

func TestCreateProduct(t *testing.T) {
	app, repo := makeAppWithProductHandler(t, false)

	body := `{"name":"Jump Rope","price":9.99,"inventoryCount":30,"category":"Equipment"}`
	res, _ := app.Test(asAdmin(jsonRequest("POST", "/api/products", body)))
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}
	var created Product
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID != 5 || !created.IsActive {
		t.Fatalf("expected new active product with id 5, got %+v", created)
	}
	stored, err := repo.GetByID(t.Context(), created.ID)
	if err != nil || !stored.Price.Equal(decimal.RequireFromString("9.99")) {
		t.Fatalf("unexpected stored product %+v %v", stored, err)
	}
}

func TestCreateProduct_ValidationErrors(t *testing.T) {
	app, _ := makeAppWithProductHandler(t, false)

	res, _ := app.Test(asAdmin(jsonRequest("POST", "/api/products", `{"price":-1,"inventoryCount":-3}`)))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, field := range []string{"name", "price", "inventoryCount", "category"} {
		if _, ok := body.Errors[field]; !ok {
			t.Fatalf("expected error for %s, got %v", field, body.Errors)
		}
	}

	// discount above price
	res, _ = app.Test(asAdmin(jsonRequest("POST", "/api/products",
		`{"name":"Mat","price":10,"discountPrice":12,"inventoryCount":1,"category":"Yoga"}`)))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for discount above price, got %d", res.StatusCode)
	}
}

func TestUpdateProduct_PartialKeepsOmittedFields(t *testing.T) {
	app, repo := makeAppWithProductHandler(t, false)

	res, _ := app.Test(asAdmin(jsonRequest("PUT", "/api/products/1", `{"price":35.5}`)))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	p, _ := repo.GetByID(t.Context(), 1)
	if !p.Price.Equal(decimal.RequireFromString("35.5")) {
		t.Fatalf("price not updated: %s", p.Price)
	}
	if p.Name != "Yoga Mat" || p.Description != "Cushioned" || p.Category != "Yoga" || p.InventoryCount != 10 || !p.IsActive {
		t.Fatalf("omitted fields must be left untouched, got %+v", p)
	}

	res, _ = app.Test(asAdmin(jsonRequest("PUT", "/api/products/1", `{"inventoryCount":-1}`)))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for negative inventory, got %d", res.StatusCode)
	}

	res, _ = app.Test(asAdmin(jsonRequest("PUT", "/api/products/999", `{"name":"x"}`)))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
}

func TestActivateDeactivateProduct(t *testing.T) {
	app, repo := makeAppWithProductHandler(t, false)

	res, _ := app.Test(asAdmin(httptest.NewRequest("PATCH", "/api/products/1/deactivate", nil)))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if p, _ := repo.GetByID(t.Context(), 1); p.IsActive {
		t.Fatalf("product 1 should be inactive")
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/products/search?keyword=mat", nil))
	if page := decodePage(t, res); page.TotalElements != 0 {
		t.Fatalf("deactivated product still searchable")
	}

	res, _ = app.Test(asAdmin(httptest.NewRequest("PATCH", "/api/products/3/activate", nil)))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if p, _ := repo.GetByID(t.Context(), 3); !p.IsActive {
		t.Fatalf("product 3 should be active")
	}
}

func TestDeleteProduct(t *testing.T) {
	app, _ := makeAppWithProductHandler(t, false)

	res, _ := app.Test(asAdmin(httptest.NewRequest("DELETE", "/api/products/4", nil)))
	if res.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.StatusCode)
	}
	res, _ = app.Test(asAdmin(httptest.NewRequest("DELETE", "/api/products/4", nil)))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", res.StatusCode)
	}
}

func TestDecrementInventory_NeverNegative(t *testing.T) {
	app, repo := makeAppWithProductHandler(t, false)

	res, _ := app.Test(asAdmin(jsonRequest("POST", "/api/products/1/inventory/decrement", `{"quantity":4}`)))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var ok struct {
		Success        bool `json:"success"`
		InventoryCount int  `json:"inventoryCount"`
	}
	if err := json.NewDecoder(res.Body).Decode(&ok); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !ok.Success || ok.InventoryCount != 6 {
		t.Fatalf("unexpected decrement response %+v", ok)
	}

	res, _ = app.Test(asAdmin(jsonRequest("POST", "/api/products/1/inventory/decrement", `{"quantity":7}`)))
	if res.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for insufficient stock, got %d", res.StatusCode)
	}
	if p, _ := repo.GetByID(t.Context(), 1); p.InventoryCount != 6 {
		t.Fatalf("failed decrement must not change stock, got %d", p.InventoryCount)
	}

	res, _ = app.Test(asAdmin(jsonRequest("POST", "/api/products/1/inventory/decrement", `{"quantity":0}`)))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for zero quantity, got %d", res.StatusCode)
	}

	res, _ = app.Test(asAdmin(jsonRequest("POST", "/api/products/999/inventory/decrement", `{"quantity":1}`)))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", res.StatusCode)
	}
}

func TestResetProducts(t *testing.T) {
	app, _ := makeAppWithProductHandler(t, false)
	res, _ := app.Test(httptest.NewRequest("POST", "/dev/reset-products", nil))
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 when reset is disabled, got %d", res.StatusCode)
	}

	app, repo := makeAppWithProductHandler(t, true)
	res, _ = app.Test(httptest.NewRequest("POST", "/dev/reset-products", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	page, _ := repo.Find(t.Context(), Filter{}, pageOf(100))
	if page.TotalElements != int64(len(sampleProducts())) {
		t.Fatalf("expected sample catalog, got %d products", page.TotalElements)
	}

	res, _ = app.Test(jsonRequest("POST", "/dev/reset-products", `[]`))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	page, _ = repo.Find(t.Context(), Filter{}, pageOf(100))
	if page.TotalElements != 0 {
		t.Fatalf("expected empty catalog, got %d", page.TotalElements)
	}

	res, _ = app.Test(jsonRequest("POST", "/dev/reset-products", `[{"name":"","price":"1","inventoryCount":1,"category":" "}]`))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for blank name and category, got %d", res.StatusCode)
	}
	var out struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Errors["name"] == "" || out.Errors["category"] == "" {
		t.Fatalf("expected name and category errors, got %v", out.Errors)
	}
	page, _ = repo.Find(t.Context(), Filter{}, pageOf(100))
	if page.TotalElements != 0 {
		t.Fatalf("rejected reset must not insert, got %d", page.TotalElements)
	}
}
