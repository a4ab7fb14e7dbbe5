package clinic

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

var filenameWhitespace = regexp.MustCompile(`\s+`)

// StoredFile describes a payload persisted by a FileStore.
type StoredFile struct {
	Filename string
	Path     string
	Size     int64
}

// FileStore persists uploaded payloads. Metadata stays in the
// Documents repository; only the bytes live here.
type FileStore interface {
	Save(file *multipart.FileHeader) (StoredFile, error)
}

// DiskFileStore writes uploads under a single directory, prefixing
// each filename with a millisecond timestamp so concurrent uploads of
// the same name do not collide.
type DiskFileStore struct {
	dir string
}

var _ FileStore = (*DiskFileStore)(nil)

func NewDiskFileStore(dir string) (*DiskFileStore, error) {
	if dir == "" {
		return nil, goerrors.New("file store directory is required", goerrors.CategoryValidation)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create upload directory")
	}

	return &DiskFileStore{dir: dir}, nil
}

func (s *DiskFileStore) Save(file *multipart.FileHeader) (StoredFile, error) {
	name := fmt.Sprintf("%d-%s",
		time.Now().UnixMilli(),
		filenameWhitespace.ReplaceAllString(filepath.Base(file.Filename), "_"),
	)
	path := filepath.Join(s.dir, name)

	src, err := file.Open()
	if err != nil {
		return StoredFile{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open upload")
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return StoredFile{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create stored file")
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(path)
		return StoredFile{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to write stored file")
	}

	return StoredFile{
		Filename: name,
		Path:     path,
		Size:     size,
	}, nil
}
