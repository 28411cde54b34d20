package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/slamweb/slam/internal/domain/recognition"
)

const multipartMemory = 8 << 20

// parseMultipart bounds the body to limit bytes and parses it.
func parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return fmt.Errorf("parse multipart form: %w", err)
	}
	return nil
}

func readPart(fh *multipart.FileHeader) (recognition.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return recognition.Image{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return recognition.Image{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return recognition.Image{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// formFile reads the first file of field.
func formFile(r *http.Request, field string) (recognition.Image, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return recognition.Image{}, fmt.Errorf("missing %s file", field)
	}
	return readPart(r.MultipartForm.File[field][0])
}

// formFiles reads every file of field.
func formFiles(r *http.Request, field string) ([]recognition.Image, error) {
	if r.MultipartForm == nil {
		return nil, fmt.Errorf("missing %s files", field)
	}
	headers := r.MultipartForm.File[field]
	out := make([]recognition.Image, 0, len(headers))
	for _, fh := range headers {
		img, err := readPart(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}
