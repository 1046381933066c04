package shared

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"hrpayroll/internal/domain/apperr"
)

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest("GET", "/?limit=500&offset=10", nil)
	p := ParsePagination(req, 50, 200)
	if p.Limit != 200 || p.Offset != 10 {
		t.Fatalf("unexpected pagination: %+v", p)
	}

	req = httptest.NewRequest("GET", "/?limit=-1&offset=x", nil)
	p = ParsePagination(req, 50, 200)
	if p.Limit != 50 || p.Offset != 0 {
		t.Fatalf("expected defaults, got %+v", p)
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	page := Paginate(items, Pagination{Limit: 2, Offset: 3})
	if page.Total != 5 || len(page.Items) != 2 || page.Items[0] != 4 {
		t.Fatalf("unexpected page: %+v", page)
	}
	page = Paginate(items, Pagination{Limit: 2, Offset: 10})
	if len(page.Items) != 0 {
		t.Fatalf("expected empty page, got %+v", page)
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"a"}`))
	if err := DecodeJSON(req, &dst); err != nil || dst.Name != "a" {
		t.Fatalf("unexpected decode result: %v %+v", err, dst)
	}

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"a","admin":true}`))
	if err := DecodeJSON(req, &dst); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
