package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCleanRef(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cv.pdf", "cv.pdf"},
		{"resumes/cv.pdf", "cv.pdf"},
		{"/resumes/cv.pdf", "cv.pdf"},
		{"uploads/cv.pdf", "cv.pdf"},
		{"uploads/resumes/cv.pdf", "cv.pdf"},
		{"/uploads//resumes///cv.pdf", "cv.pdf"},
		{"sub/dir/cv.pdf", "sub/dir/cv.pdf"},
		{"resumes/42//cv.pdf", "42/cv.pdf"},
	}
	for _, tt := range tests {
		if got := CleanRef(tt.in); got != tt.want {
			t.Errorf("CleanRef(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolvePath(t *testing.T) {
	e := New("/srv/storage")
	want := filepath.Join("/srv/storage", "cv.pdf")
	if got := e.ResolvePath("uploads/resumes/cv.pdf"); got != want {
		t.Errorf("ResolvePath = %q, want %q", got, want)
	}
}

func TestTextMissingFile(t *testing.T) {
	e := New(t.TempDir())
	_, err := e.Text("nope.pdf")
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("err = %v, want ErrFileNotFound", err)
	}
}

func TestTextPlainFile(t *testing.T) {
	dir := t.TempDir()
	content := "John Doe\nPython developer with Django experience.\n"
	if err := os.WriteFile(filepath.Join(dir, "cv.txt"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	e := New(dir)
	got, err := e.Text("resumes/cv.txt")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != content {
		t.Errorf("Text = %q, want %q", got, content)
	}
}

func TestTextCorruptPDF(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.pdf"), []byte("this is not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := New(dir)
	_, err := e.Text("bad.pdf")
	if !errors.Is(err, ErrExtraction) {
		t.Errorf("err = %v, want ErrExtraction", err)
	}
}
