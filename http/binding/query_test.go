package binding

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/leeforge/mediaserve/media/resize"
)

func intPtr(v int) *int { return &v }

func newRequest(query string) *http.Request {
	return &http.Request{URL: &url.URL{Path: "/attachments/abc", RawQuery: query}}
}

func TestQueryResizeRequest(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		want      resize.Request
		wantError bool
	}{
		{name: "empty", query: "", want: resize.Request{}},
		{name: "width only", query: "width=200", want: resize.Request{Width: intPtr(200)}},
		{
			name:  "all fields",
			query: "size=10&width=20&height=30&max_side=40",
			want:  resize.Request{Size: intPtr(10), Width: intPtr(20), Height: intPtr(30), MaxSide: intPtr(40)},
		},
		{name: "unknown params ignored", query: "foo=bar&height=5", want: resize.Request{Height: intPtr(5)}},
		{name: "first value wins", query: "size=3&size=9", want: resize.Request{Size: intPtr(3)}},
		{name: "not a number", query: "width=abc", wantError: true},
		{name: "overflow", query: "size=99999999999999999999999", wantError: true},
		{name: "zero", query: "size=0", wantError: true},
		{name: "negative", query: "max_side=-5", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got resize.Request
			err := Query(newRequest(tt.query), &got)
			if tt.wantError {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want.String() {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestQueryValidationErrorFields(t *testing.T) {
	var req resize.Request
	err := Query(newRequest("width=-1"), &req)

	var ve ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
	}
	if ve[0].Field != "Width" || ve[0].Message != "must be greater than 0" {
		t.Errorf("unexpected validation error: %+v", ve[0])
	}
}

func TestQueryBasicTypesAndDefaults(t *testing.T) {
	type params struct {
		Name    string  `query:"name"`
		Page    uint    `query:"page" default:"1"`
		Ratio   float32 `json:"ratio"`
		Active  bool
		Skipped string `query:"-"`
	}

	var p params
	values := url.Values{"name": {"cat"}, "ratio": {"0.5"}, "active": {"true"}, "Skipped": {"x"}, "-": {"y"}}
	if err := NewQueryParser().Parse(values, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "cat" || p.Page != 1 || p.Ratio != 0.5 || !p.Active || p.Skipped != "" {
		t.Errorf("unexpected result: %+v", p)
	}

	if err := NewQueryParser().Parse(url.Values{"active": {"maybe"}}, &p); err == nil {
		t.Error("expected boolean error")
	}
}

func TestParseRejectsNonStruct(t *testing.T) {
	var n int
	if err := NewQueryParser().Parse(url.Values{}, &n); err == nil {
		t.Error("expected error for non-struct target")
	}
	if err := NewQueryParser().Parse(url.Values{}, nil); err == nil {
		t.Error("expected error for nil target")
	}
}
