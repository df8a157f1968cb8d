package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

var sortable = map[string]string{"id": "id", "createdAt": "created_at"}

func parse(t *testing.T, query string) (Request, int) {
	t.Helper()
	var (
		got    Request
		status int
	)
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		r, err := FromQuery(c, sortable, "id")
		if err != nil {
			status = fiber.StatusBadRequest
			return nil
		}
		got = r
		return nil
	})
	if _, err := app.Test(httptest.NewRequest("GET", "/"+query, nil)); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return got, status
}

func TestFromQuery(t *testing.T) {
	tests := []struct {
		query   string
		want    Request
		wantBad bool
	}{
		{"", Request{Page: 0, Size: DefaultSize, Sort: "id"}, false},
		{"?page=2&size=5&sort=createdAt,desc", Request{Page: 2, Size: 5, Sort: "created_at", Desc: true}, false},
		{"?size=1000", Request{Page: 0, Size: MaxSize, Sort: "id"}, false},
		{"?page=-1", Request{}, true},
		{"?size=0", Request{}, true},
		{"?sort=password", Request{}, true},
		{"?sort=id,sideways", Request{}, true},
		{"?page=4611686018427387904&size=4", Request{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, status := parse(t, tt.query)
			if tt.wantBad {
				if status != fiber.StatusBadRequest {
					t.Fatalf("expected bad request, got %+v", got)
				}
				return
			}
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestNewPage(t *testing.T) {
	p := NewPage([]int{1, 2}, Request{Page: 1, Size: 2}, 5)
	if p.TotalPages != 3 || p.Last {
		t.Fatalf("unexpected page %+v", p)
	}
	p = NewPage[int](nil, Request{Page: 0, Size: 10}, 0)
	if p.Content == nil || p.TotalPages != 0 || !p.Last {
		t.Fatalf("unexpected empty page %+v", p)
	}

	start, end := Request{Page: 3, Size: 2}.Window(5)
	if start != 5 || end != 5 {
		t.Fatalf("window past the end should be empty, got [%d,%d)", start, end)
	}
}
