package source

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"
)

func TestBOMSkippingReader(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"with BOM", []byte("\xef\xbb\xbfName,Gift"), "Name,Gift"},
		{"without BOM", []byte("Name,Gift"), "Name,Gift"},
		{"BOM only", []byte("\xef\xbb\xbf"), ""},
		{"shorter than BOM", []byte("ab"), "ab"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(newBOMSkippingReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ReadAll() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUTF8Sanitizer(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"ascii", []byte("hello"), "hello"},
		{"valid multibyte", []byte("café"), "café"},
		{"invalid byte", []byte("a\xffb"), "a?b"},
		{"truncated at EOF", []byte("ab\xc3"), "ab?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(newUTF8Sanitizer(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ReadAll() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUTF8Sanitizer_SplitAcrossReads(t *testing.T) {
	input := []byte("Zoë Müller")
	got, err := io.ReadAll(newUTF8Sanitizer(iotest.OneByteReader(bytes.NewReader(input))))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != string(input) {
		t.Errorf("ReadAll() = %q, want %q", got, input)
	}
}

func TestSizeLimitReader(t *testing.T) {
	r := newSizeLimitReader(bytes.NewReader(make([]byte, 10)), 5)
	if _, err := io.ReadAll(r); err != ErrFileTooLarge {
		t.Errorf("ReadAll() error = %v, want ErrFileTooLarge", err)
	}

	r = newSizeLimitReader(bytes.NewReader(make([]byte, 10)), 0)
	if got, err := io.ReadAll(r); err != nil || len(got) != 10 {
		t.Errorf("ReadAll() = %d bytes, %v; want 10 bytes, nil", len(got), err)
	}
}
