package web

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"solar_ingest/internal/ingest"
	"solar_ingest/internal/metrics"
	"solar_ingest/internal/model"
	"solar_ingest/internal/pipeline"
)

// Banner texts for the upload form.
const (
	msgInvalidFile   = "Invalid file part or file type. Only CSV files are allowed."
	msgInvalidDevice = "A device name is required and may not contain path characters."
	msgNoData        = "No valid data in the file or no daytime data found."
	msgUnreadable    = "The file could not be read as text."
	msgSaveFailed    = "The file was read but the processed data could not be saved."
	msgTooLarge      = "File Too Large"
)

// multipartMemory is how much of a form is held in memory before the
// multipart reader spills to disk.
const multipartMemory = 1 << 20

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", pageData{
		Title:       "Upload",
		Flashes:     popFlash(w, r),
		MaxUploadMB: s.cfg.MaxUploadBytes >> 20,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.cfg.MaxUploadBytes {
		tooLarge(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			tooLarge(w)
			return
		}
		log.Printf("Upload form error: %v", err)
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("file")
	if err != nil || !allowedFile(header.Filename) {
		if file != nil {
			file.Close()
		}
		metrics.Uploads.WithLabelValues("invalid_file").Inc()
		redirectWithFlash(w, r, "/", Flash{categoryError, msgInvalidFile})
		return
	}
	defer file.Close()

	device := strings.TrimSpace(r.FormValue("device_name"))
	if err := model.CheckDevice(device); err != nil {
		metrics.Uploads.WithLabelValues("invalid_device").Inc()
		redirectWithFlash(w, r, "/", Flash{categoryError, msgInvalidDevice})
		return
	}

	path, err := s.stage(file, header.Filename)
	if err != nil {
		log.Printf("Error staging upload %s: %v", header.Filename, err)
		metrics.Uploads.WithLabelValues("failed").Inc()
		redirectWithFlash(w, r, "/", Flash{categoryError, "The upload could not be saved."})
		return
	}

	report, err := s.ingester.IngestFile(path, device)
	switch {
	case errors.Is(err, ingest.ErrUnreadable):
		log.Printf("Unreadable upload %s: %v", path, err)
		metrics.Uploads.WithLabelValues("failed").Inc()
		redirectWithFlash(w, r, "/", Flash{categoryError, msgUnreadable})
		return
	case errors.Is(err, pipeline.ErrSave):
		log.Printf("Error saving %s for %s: %v", header.Filename, device, err)
		metrics.Uploads.WithLabelValues("failed").Inc()
		redirectWithFlash(w, r, "/", Flash{categoryError, msgSaveFailed})
		return
	case err != nil:
		log.Printf("Error processing %s: %v", path, err)
		metrics.Uploads.WithLabelValues("failed").Inc()
		redirectWithFlash(w, r, "/", Flash{categoryError, fmt.Sprintf("The file could not be processed: %v", err)})
		return
	}

	log.Printf("Ingested %s for %s: %d rows read, %d dropped, %d kept, %d files",
		header.Filename, device, report.RowsRead, report.Dropped(), report.Kept, len(report.Files))

	if len(report.Dates) == 0 {
		metrics.Uploads.WithLabelValues("empty").Inc()
		redirectWithFlash(w, r, "/", Flash{categoryError, msgNoData})
		return
	}

	metrics.Uploads.WithLabelValues("ok").Inc()
	if s.notifier != nil {
		s.notifier.OnIngest(report)
	}
	redirectWithFlash(w, r, "/", Flash{categorySuccess, fmt.Sprintf(
		"File processed and saved successfully. Data contains %d unique dates from %s.",
		len(report.Dates), device)})
}

// stage copies the upload into the uploads directory under a unique name
// and returns its path.
func (s *Server) stage(src multipart.File, filename string) (string, error) {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}

	name := uuid.NewString() + "_" + safeName(filename)
	path := filepath.Join(s.cfg.UploadDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing %s: %w", name, err)
	}
	return path, nil
}

func (s *Server) handleUploaded(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["filename"]
	if name == "" || filepath.Base(name) != name || strings.HasPrefix(name, ".") {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.cfg.UploadDir, name))
}

func tooLarge(w http.ResponseWriter) {
	metrics.Uploads.WithLabelValues("too_large").Inc()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Connection", "close")
	w.WriteHeader(http.StatusRequestEntityTooLarge)
	io.WriteString(w, msgTooLarge)
}

func allowedFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv") && len(name) > len(".csv")
}

// safeName reduces a client-supplied file name to letters, digits, dot,
// dash and underscore.
func safeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "upload.csv"
	}
	return out
}
