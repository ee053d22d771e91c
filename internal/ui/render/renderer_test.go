package render

import "testing"

func TestTruncateTextToWidth(t *testing.T) {
	r := NewRenderer(nil)

	tests := []struct {
		name   string
		text   string
		width  int
		expect string
	}{
		{
			name:   "fits without truncation",
			text:   "file.txt",
			width:  20,
			expect: "file.txt",
		},
		{
			name:   "adds ellipsis when needed",
			text:   "verylongname",
			width:  6,
			expect: "veryl…",
		},
		{
			name:   "only ellipsis when width too small",
			text:   "example",
			width:  1,
			expect: "…",
		},
		{
			name:   "multi-byte characters respected",
			text:   "你好世界",
			width:  5,
			expect: "你好…",
		},
		{
			name:   "returns empty when width is zero",
			text:   "anything",
			width:  0,
			expect: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := r.truncateTextToWidth(tt.text, tt.width)
			if actual != tt.expect {
				t.Fatalf("expected %q, got %q (width %d)", tt.expect, actual, tt.width)
			}
		})
	}
}

func TestMeasureTextWidth(t *testing.T) {
	r := NewRenderer(nil)

	if w := r.measureTextWidth("abc"); w != 3 {
		t.Fatalf("ascii width %d, want 3", w)
	}
	if w := r.measureTextWidth("你好"); w != 4 {
		t.Fatalf("wide rune width %d, want 4", w)
	}
	if w := r.measureTextWidth(""); w != 0 {
		t.Fatalf("empty width %d", w)
	}
}

func TestFitBreadcrumbKeepsTail(t *testing.T) {
	r := NewRenderer(nil)

	path := "home › user › projects › dtree"
	got := r.fitBreadcrumb(path, 12)
	if got == path {
		t.Fatalf("expected truncation")
	}
	if []rune(got)[0] != '…' {
		t.Fatalf("trimmed breadcrumb should start with ellipsis: %q", got)
	}
	if r.measureTextWidth(got) > 12 {
		t.Fatalf("breadcrumb %q exceeds width", got)
	}
}

func TestFormatBreadcrumb(t *testing.T) {
	if got := formatBreadcrumb("/"); got != "/" {
		t.Fatalf("root breadcrumb %q", got)
	}
	if got := formatBreadcrumb("/home/user"); got != "home › user" {
		t.Fatalf("breadcrumb %q", got)
	}
}
