package httputil

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https url", "https://weibo.com/123/abc", false},
		{"http url", "http://m.weibo.cn/detail/123", false},
		{"ftp scheme", "ftp://example.com/file", true},
		{"no scheme", "weibo.com/123", true},
		{"no host", "https://", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"numeric", "5232446897127970", false},
		{"alphanumeric", "QdC5HtUjg", false},
		{"composite", "1034:5233218052358208", false},
		{"empty", "", true},
		{"too long", strings.Repeat("1", 65), true},
		{"path traversal", "../../etc/passwd", true},
		{"shell chars", "abc;rm -rf", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean name", "video.mp4", "video.mp4"},
		{"directory stripped", "/tmp/evil/video.mp4", "video.mp4"},
		{"traversal", "../../secret", "secret"},
		{"windows reserved chars", `a:b*c?d"e<f>g|h`, "a_b_c_d_e_f_g_h"},
		{"dot only", ".", "untitled"},
		{"empty", "", "untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSafeDownloadPath(t *testing.T) {
	dir := t.TempDir()

	got, err := SafeDownloadPath(dir, "01_photo.jpg")
	if err != nil {
		t.Fatalf("SafeDownloadPath error = %v", err)
	}
	if got != filepath.Join(dir, "01_photo.jpg") {
		t.Errorf("SafeDownloadPath = %q, want path inside %q", got, dir)
	}

	// Traversal attempts resolve to a basename inside the directory.
	got, err = SafeDownloadPath(dir, "../../escape.jpg")
	if err != nil {
		t.Fatalf("SafeDownloadPath error = %v", err)
	}
	if !strings.HasPrefix(got, dir+string(filepath.Separator)) {
		t.Errorf("SafeDownloadPath = %q escapes %q", got, dir)
	}
}
