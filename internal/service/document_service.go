package service

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

var (
	ErrDocumentNotFound = errors.New("budget document not found")
	ErrDocumentTooLarge = errors.New("budget document exceeds the size limit")
	ErrDocumentNotPDF   = errors.New("budget document must be a pdf")
)

const (
	budgetFileName = "budget-transparency.pdf"
	maxBudgetSize  = 20 << 20
)

var pdfMagic = []byte("%PDF-")

// DocumentService stores the single barangay budget transparency PDF on
// local disk under a fixed name; each upload overwrites the previous one.
type DocumentService struct {
	dir    string
	logger *zap.Logger
}

func NewDocumentService(dir string, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{dir: dir, logger: logger}
}

// MaxUploadSize is the accepted upload cap in bytes.
func (s *DocumentService) MaxUploadSize() int64 {
	return maxBudgetSize
}

func (s *DocumentService) path() string {
	return filepath.Join(s.dir, budgetFileName)
}

// FileName is the fixed download filename.
func (s *DocumentService) FileName() string {
	return budgetFileName
}

// Store validates and writes the uploaded PDF. Content sniffing beats
// trusting the client mime type; anything without a %PDF- magic header is
// rejected.
func (s *DocumentService) Store(r io.Reader) error {
	body, err := io.ReadAll(io.LimitReader(r, maxBudgetSize+1))
	if err != nil {
		return err
	}
	if int64(len(body)) > maxBudgetSize {
		return ErrDocumentTooLarge
	}
	if !bytes.HasPrefix(body, pdfMagic) {
		return ErrDocumentNotPDF
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	// Write to a temp file then rename so a concurrent download never sees
	// a half-written document.
	tmp, err := os.CreateTemp(s.dir, budgetFileName+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path()); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	s.logger.Info("budget transparency document stored", zap.Int("bytes", len(body)))
	return nil
}

// Stat returns the stored document's size and modification time.
func (s *DocumentService) Stat() (size int64, modTime time.Time, err error) {
	info, err := os.Stat(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, time.Time{}, ErrDocumentNotFound
		}
		return 0, time.Time{}, err
	}
	return info.Size(), info.ModTime(), nil
}

// Open returns a reader over the stored document.
func (s *DocumentService) Open() (io.ReadSeekCloser, error) {
	file, err := os.Open(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return file, nil
}
