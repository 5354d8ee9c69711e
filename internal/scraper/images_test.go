package scraper

import (
	"strings"
	"testing"
)

const testImageMarkup = `<html><body>
<img src="/assets/site-logo.png">
<img src="/photos/467812-1.jpg">
<img data-src="/photos/467812-2.jpg">
<img src="/photos/467812-1.jpg">
<source data-lazy-src="https://cdn.example.org/photos/467812-3.jpg">
<img src="/assets/nav-arrow.svg">
<img src="">
</body></html>`

func TestSelectImages(t *testing.T) {
	images := SelectImages([]byte(testImageMarkup), "https://www.pawshaven.org", "467812", 5)

	want := []string{
		"https://www.pawshaven.org/photos/467812-1.jpg",
		"https://www.pawshaven.org/photos/467812-2.jpg",
		"https://cdn.example.org/photos/467812-3.jpg",
	}
	if len(images) != len(want) {
		t.Fatalf("Expected %d images, got %d: %v", len(want), len(images), images)
	}
	for i := range want {
		if images[i] != want[i] {
			t.Errorf("images[%d] = %s, want %s", i, images[i], want[i])
		}
	}
}

func TestSelectImagesRespectsMax(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, n := range []string{"a", "b", "c", "d"} {
		b.WriteString(`<img src="/photos/` + n + `.jpg">`)
	}
	b.WriteString("</body></html>")

	images := SelectImages([]byte(b.String()), "https://www.pawshaven.org", "1", 2)
	if len(images) != 2 {
		t.Errorf("Expected 2 images, got %d", len(images))
	}
}

func TestSelectImagesPlaceholderFallback(t *testing.T) {
	markup := []byte(`<html><body><img src="/assets/logo.png"><p>no photos</p></body></html>`)

	first := SelectImages(markup, "https://www.pawshaven.org", "467900", 5)
	second := SelectImages(markup, "https://www.pawshaven.org", "467900", 5)

	if len(first) != 1 {
		t.Fatalf("Expected single placeholder, got %v", first)
	}
	if first[0] != PlaceholderImage("467900") {
		t.Errorf("Expected placeholder URL, got %s", first[0])
	}
	if first[0] != second[0] {
		t.Error("Placeholder must be stable across calls")
	}
}

func TestIsChromeAsset(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"/assets/site-LOGO.png", true},
		{"/img/sprite.gif", true},
		{"/photos/467812-1.jpg", false},
		{"/uploads/banner-home.jpg", true},
		{"/uploads/ruby.jpg", false},
	}

	for _, tt := range tests {
		if got := isChromeAsset(tt.url); got != tt.want {
			t.Errorf("isChromeAsset(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
