package pagination

import (
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/wichananm65/sheshape-backend/internal/apperror"
)

const (
	DefaultSize = 20
	MaxSize     = 100
)

// Request is a zero-based page request with an optional sort order.
type Request struct {
	Page int
	Size int
	// Sort is a column name already checked against a whitelist.
	Sort string
	Desc bool
}

// Page is the paged response envelope.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Last          bool  `json:"last"`
}

func (r Request) Offset() int {
	return r.Page * r.Size
}

// Scope applies order, limit and offset to a GORM query.
func (r Request) Scope(db *gorm.DB) *gorm.DB {
	if r.Sort != "" {
		order := r.Sort
		if r.Desc {
			order += " DESC"
		}
		db = db.Order(order)
	}
	return db.Limit(r.Size).Offset(r.Offset())
}

// Window returns the [start, end) bounds of the page over n items.
func (r Request) Window(n int) (int, int) {
	start := r.Offset()
	if start > n {
		start = n
	}
	end := start + r.Size
	if end > n {
		end = n
	}
	return start, end
}

// NewPage builds the envelope for a page of content out of total elements.
func NewPage[T any](content []T, req Request, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
		Last:          req.Page+1 >= pages,
	}
}

// FromQuery parses ?page=&size=&sort=field,dir. sortable maps the public
// field name to its column; an unknown sort field is a bad request.
func FromQuery(c *fiber.Ctx, sortable map[string]string, defaultSort string) (Request, error) {
	req := Request{Page: 0, Size: DefaultSize}

	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Request{}, apperror.BadRequest("page must be a non-negative integer")
		}
		req.Page = n
	}
	if v := c.Query("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Request{}, apperror.BadRequest("size must be a positive integer")
		}
		if n > MaxSize {
			n = MaxSize
		}
		req.Size = n
	}
	if req.Page > math.MaxInt/req.Size {
		return Request{}, apperror.BadRequest("page is out of range")
	}

	sort := c.Query("sort", defaultSort)
	if sort == "" {
		return req, nil
	}
	parts := strings.SplitN(sort, ",", 2)
	column, ok := sortable[strings.TrimSpace(parts[0])]
	if !ok {
		return Request{}, apperror.BadRequest("cannot sort by %q", parts[0])
	}
	req.Sort = column
	if len(parts) == 2 {
		switch strings.ToLower(strings.TrimSpace(parts[1])) {
		case "asc":
		case "desc":
			req.Desc = true
		default:
			return Request{}, apperror.BadRequest("sort direction must be asc or desc")
		}
	}
	return req, nil
}
