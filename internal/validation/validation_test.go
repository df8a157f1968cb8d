package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/sheshape-backend/internal/apperror"
)

type payload struct {
	Name     string           `json:"name" validate:"required,max=5"`
	Phone    *string          `json:"phone" validate:"omitempty,phone"`
	Language string           `json:"language" validate:"omitempty,langcode"`
	Born     string           `json:"born" validate:"omitempty,pastdate"`
	Price    *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Tags     []string         `json:"tags" validate:"max=2,dive,oneof=A B C"`
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.Error, got %v", err)
	}
	return appErr.Fields
}

func TestStruct_Valid(t *testing.T) {
	v := New()
	phone := "+66812345678"
	price := decimal.RequireFromString("0")
	err := v.Struct(payload{Name: "Jane", Phone: &phone, Language: "en", Born: "1990-01-31", Price: &price, Tags: []string{"A"}})
	if err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
}

func TestStruct_ReportsEveryField(t *testing.T) {
	v := New()
	phone := "12-34"
	price := decimal.RequireFromString("-0.01")
	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format(DateLayout)

	fields := fieldsOf(t, v.Struct(payload{
		Name:     "toolong",
		Phone:    &phone,
		Language: "EN",
		Born:     tomorrow,
		Price:    &price,
		Tags:     []string{"A", "Z"},
	}))

	want := map[string]string{
		"name":     "name must not exceed 5 characters",
		"phone":    "please provide a valid phone",
		"language": "language must be a valid 2-letter language code",
		"born":     "born must be a past date in YYYY-MM-DD format",
		"price":    "price cannot be less than 0",
		"tags":     "tags must be one of A B C",
	}
	for k, msg := range want {
		if fields[k] != msg {
			t.Errorf("field %s: expected %q, got %q", k, msg, fields[k])
		}
	}
}

func TestStruct_CollectionLimit(t *testing.T) {
	fields := fieldsOf(t, New().Struct(payload{Name: "a", Tags: []string{"A", "B", "C"}}))
	if fields["tags"] != "you can select up to 2 tags" {
		t.Fatalf("unexpected message %q", fields["tags"])
	}
}
