package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// URLPrefix is the public path uploaded files are served under.
const URLPrefix = "/uploads"

// sniffLen is how much of an upload is read to detect its type.
const sniffLen = 3072

var (
	// ErrInvalidURL is returned for references that do not point into the store.
	ErrInvalidURL = errors.New("invalid blob url")
	// ErrUnsupportedImage is returned when the content is not an allowed image type.
	ErrUnsupportedImage = errors.New("unsupported image type")
)

// imageTypes maps the accepted content types to the stored extension.
var imageTypes = []struct {
	mime string
	ext  string
}{
	{"image/png", ".png"},
	{"image/jpeg", ".jpg"},
	{"image/gif", ".gif"},
	{"image/webp", ".webp"},
}

// Store keeps uploaded image bytes and hands out public paths for them.
type Store interface {
	// Save writes content under a generated name and returns its public path.
	// The extension follows the detected image type, not originalName.
	Save(ctx context.Context, originalName string, content io.Reader) (string, error)
	// Open returns the bytes behind a public path.
	Open(url string) (io.ReadCloser, error)
	// Remove deletes the file behind a public path. Missing files are not an error.
	Remove(url string) error
}

// FileStore is a Store backed by a directory on the local filesystem.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates dir when needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create upload dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory served under URLPrefix.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) Save(ctx context.Context, originalName string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "read blob")
	}
	head = head[:n]

	mtype := mimetype.Detect(head)
	ext := imageExtension(mtype)
	if ext == "" {
		zap.L().Debug("blob rejected",
			zap.String("namespace", "blobstore"),
			zap.String("original", originalName),
			zap.String("mime", mtype.String()))
		return "", ErrUnsupportedImage
	}

	name := uuid.NewString() + ext
	target := filepath.Join(s.dir, name)

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "create blob")
	}
	if _, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), content)); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return "", errors.Wrap(err, "write blob")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(target)
		return "", errors.Wrap(err, "close blob")
	}

	zap.L().Debug("blob saved",
		zap.String("namespace", "blobstore"),
		zap.String("name", name),
		zap.String("original", originalName),
		zap.String("mime", mtype.String()))
	return path.Join(URLPrefix, name), nil
}

func imageExtension(mtype *mimetype.MIME) string {
	for _, it := range imageTypes {
		if mtype.Is(it.mime) {
			return it.ext
		}
	}
	return ""
}

func (s *FileStore) Open(url string) (io.ReadCloser, error) {
	p, err := s.localPath(url)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, errors.Wrap(err, "open blob")
	}
	return f, nil
}

func (s *FileStore) Remove(url string) error {
	p, err := s.localPath(url)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove blob")
	}
	return nil
}

// localPath maps /uploads/<name> to a file directly inside the store directory.
func (s *FileStore) localPath(url string) (string, error) {
	if !strings.HasPrefix(url, URLPrefix+"/") {
		return "", ErrInvalidURL
	}
	name := strings.TrimPrefix(url, URLPrefix+"/")
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidURL
	}
	return filepath.Join(s.dir, name), nil
}
