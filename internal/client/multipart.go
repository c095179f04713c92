package client

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// Multipart is a multipart/form-data body: ordered text fields plus files.
type Multipart struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name, value string
}

type formFile struct {
	field, name string
	open        func() (io.ReadCloser, error)
}

// Field appends a text field.
func (m *Multipart) Field(name, value string) *Multipart {
	m.fields = append(m.fields, formField{name: name, value: value})
	return m
}

// File appends a file read from path when the body is encoded.
func (m *Multipart) File(field, path string) *Multipart {
	m.files = append(m.files, formFile{
		field: field,
		name:  filepath.Base(path),
		open:  func() (io.ReadCloser, error) { return os.Open(path) },
	})
	return m
}

// Reader appends a file with the given name and contents.
func (m *Multipart) Reader(field, name string, r io.Reader) *Multipart {
	m.files = append(m.files, formFile{
		field: field,
		name:  name,
		open:  func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	})
	return m
}

// Encode renders the body and returns it with its content type.
func (m *Multipart) Encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range m.fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", f.name, err)
		}
	}

	for _, f := range m.files {
		if err := writeFile(w, f); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, f formFile) error {
	src, err := f.open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.name, err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "warning: closing %s: %v\n", f.name, cerr)
		}
	}()

	part, err := w.CreateFormFile(f.field, f.name)
	if err != nil {
		return fmt.Errorf("creating form file %s: %w", f.name, err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copying %s: %w", f.name, err)
	}
	return nil
}
