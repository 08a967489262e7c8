package markdown

import (
	"strings"
	"sync"
	"testing"
)

func TestRenderHeadings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"# Heading 1", "<h1>Heading 1</h1>"},
		{"## Heading 2", "<h2>Heading 2</h2>"},
		{"### Heading 3", "<h3>Heading 3</h3>"},
	}
	r := NewRenderer()
	for _, tt := range tests {
		got, err := r.Render(tt.input)
		if err != nil {
			t.Fatalf("Render(%q) error: %v", tt.input, err)
		}
		if !strings.Contains(got, tt.expected) {
			t.Errorf("Render(%q) = %q, want it to contain %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderInline(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"`code`", "<code>code</code>"},
		{"~~gone~~", "<del>gone</del>"},
		{"[link](https://example.com)", `<a href="https://example.com">link</a>`},
	}
	r := NewRenderer()
	for _, tt := range tests {
		got, err := r.Render(tt.input)
		if err != nil {
			t.Fatalf("Render(%q) error: %v", tt.input, err)
		}
		if !strings.Contains(got, tt.expected) {
			t.Errorf("Render(%q) = %q, want it to contain %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderCodeBlockWithLanguage(t *testing.T) {
	got, err := NewRenderer().Render("```go\nfmt.Println(\"hello\")\n```")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `class="language-go"`) {
		t.Errorf("code block should have language-go class: %q", got)
	}
}

func TestRenderTable(t *testing.T) {
	got, err := NewRenderer().Render("| a | b |\n|---|---|\n| 1 | 2 |")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<table>", "<th>a</th>", "<td>2</td>"} {
		if !strings.Contains(got, want) {
			t.Errorf("table output %q missing %q", got, want)
		}
	}
}

func TestRenderPassesRawHTML(t *testing.T) {
	got, err := NewRenderer().Render("<div class=\"x\">raw</div>")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `<div class="x">raw</div>`) {
		t.Errorf("raw HTML should be passed through to the sanitizer: %q", got)
	}
}

func TestTransformStripsScript(t *testing.T) {
	src := "Hello\n\n<script>alert('x')</script>\n\n<img src=\"a.png\" onerror=\"alert(1)\">"
	got, err := NewTransformer().Transform(src)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(strings.ToLower(got), "<script") {
		t.Errorf("script element survived: %q", got)
	}
	if strings.Contains(got, "alert") {
		t.Errorf("script content or handler survived: %q", got)
	}
	if !strings.Contains(got, `<img src="a.png"`) {
		t.Errorf("image should be kept without handler: %q", got)
	}
	if !strings.Contains(got, "<p>Hello</p>") {
		t.Errorf("paragraph missing: %q", got)
	}
}

func TestTransformConcurrentUse(t *testing.T) {
	tr := NewTransformer()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := tr.Transform("# Title\n\nbody **bold**")
			if err != nil {
				t.Errorf("Transform error: %v", err)
				return
			}
			if !strings.Contains(got, "<strong>bold</strong>") {
				t.Errorf("unexpected output %q", got)
			}
		}()
	}
	wg.Wait()
}
