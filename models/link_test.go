package models

import "testing"

func TestContainsLink(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"plain text", "merhaba nasılsın", false},
		{"empty", "", false},
		{"https scheme", "bak şuna https://ornek.com/yol", true},
		{"custom scheme", "steam://connect/1.2.3.4", true},
		{"www prefix", "www.ornek.com güzel site", true},
		{"bare domain", "ornek.com adresine git", true},
		{"bare domain with path", "ornek.com/indir buradan", true},
		{"decimal number is not a domain", "fiyat 3.50 lira", false},
		{"version string", "go 1.22 çıktı", false},
		{"ellipsis", "yani... olabilir", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsLink(tt.content); got != tt.want {
				t.Errorf("ContainsLink(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestExtractUploadURLs(t *testing.T) {
	content := "dosyalar: https://cdn.ornek.com/uploads/a.png ve http://localhost:9090/uploads/b%20c.pdf bitti"
	urls := ExtractUploadURLs(content)
	if len(urls) != 2 {
		t.Fatalf("expected 2 upload urls, got %d: %v", len(urls), urls)
	}
	if urls[0] != "https://cdn.ornek.com/uploads/a.png" {
		t.Errorf("unexpected first url: %s", urls[0])
	}

	if got := ExtractUploadURLs("linksiz mesaj https://ornek.com/baska/yol"); len(got) != 0 {
		t.Errorf("non-upload urls should not match, got %v", got)
	}
}
