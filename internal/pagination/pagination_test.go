package pagination

import "testing"

func TestDefaults(t *testing.T) {
	tests := []struct {
		name         string
		in           PageRequest
		wantPage     int
		wantPageSize int
	}{
		{"zero_values", PageRequest{}, 1, 20},
		{"negative_page", PageRequest{Page: -3, PageSize: 10}, 1, 10},
		{"oversized_page_size", PageRequest{Page: 2, PageSize: 500}, 2, 20},
		{"in_range", PageRequest{Page: 4, PageSize: 50}, 4, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Defaults()
			if tt.in.Page != tt.wantPage {
				t.Errorf("page = %d, want %d", tt.in.Page, tt.wantPage)
			}
			if tt.in.PageSize != tt.wantPageSize {
				t.Errorf("page size = %d, want %d", tt.in.PageSize, tt.wantPageSize)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	req := PageRequest{Page: 3, PageSize: 20}
	if got := req.Offset(); got != 40 {
		t.Errorf("offset = %d, want 40", got)
	}
}

func TestNewPageResponse(t *testing.T) {
	t.Run("rounds_total_pages_up", func(t *testing.T) {
		resp := NewPageResponse([]int{1, 2, 3}, 1, 20, 41)
		if resp.TotalPages != 3 {
			t.Errorf("total pages = %d, want 3", resp.TotalPages)
		}
	})

	t.Run("empty_result_has_zero_pages", func(t *testing.T) {
		resp := NewPageResponse([]int{}, 1, 20, 0)
		if resp.TotalPages != 0 {
			t.Errorf("total pages = %d, want 0", resp.TotalPages)
		}
	})

	t.Run("nil_data_becomes_empty_slice", func(t *testing.T) {
		resp := NewPageResponse[int](nil, 1, 20, 0)
		if resp.Data == nil {
			t.Error("data should be an empty slice, not nil")
		}
	})
}
