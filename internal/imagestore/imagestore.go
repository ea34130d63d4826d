// Package imagestore delegates picture storage to an external object store
// and describes where user avatars and offer pictures live inside it.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

var ErrEmptyKey = errors.New("image key is empty")

// ImageRef is the record returned by the store for an uploaded image.
// It is persisted as is inside users and offers.
type ImageRef struct {
	PublicID     string    `json:"public_id" bson:"public_id"`
	Folder       string    `json:"folder" bson:"folder"`
	URL          string    `json:"url" bson:"url"`
	SecureURL    string    `json:"secure_url" bson:"secure_url"`
	Format       string    `json:"format,omitempty" bson:"format,omitempty"`
	ResourceType string    `json:"resource_type" bson:"resource_type"`
	Bytes        int64     `json:"bytes" bson:"bytes"`
	ETag         string    `json:"etag,omitempty" bson:"etag,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// File is an image waiting to be uploaded.
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadOptions selects where a file lands.
// PublicID wins over Folder and overwrites whatever is stored under it;
// with Folder only, a fresh object name is generated inside the folder.
type UploadOptions struct {
	Folder   string
	PublicID string
}

// Store is the external image hosting service.
type Store interface {
	Upload(ctx context.Context, file File, opts UploadOptions) (*ImageRef, error)
	DeleteByPrefix(ctx context.Context, prefix string) error
	DeleteFolder(ctx context.Context, folder string) error
}

// Layout builds the folder and public ids used for users and offers.
type Layout struct {
	Root string
}

func NewLayout(root string) Layout {
	return Layout{Root: strings.Trim(root, "/")}
}

func (l Layout) UserFolder(userID string) string {
	return path.Join(l.Root, "users", userID)
}

func (l Layout) UserAvatar(userID string) string {
	return path.Join(l.UserFolder(userID), "avatar")
}

func (l Layout) OfferFolder(offerID string) string {
	return path.Join(l.Root, "offers", offerID)
}

func (l Layout) OfferPreview(offerID string) string {
	return path.Join(l.OfferFolder(offerID), "preview")
}

// FromMultipart opens an uploaded form file. The returned closer must be
// called once the upload is done.
func FromMultipart(fh *multipart.FileHeader) (File, io.Closer, error) {
	f, err := fh.Open()
	if err != nil {
		return File{}, nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}

	return File{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, f, nil
}

// FormFiles is implemented by parsed request forms
type FormFiles interface {
	File(key string) (*multipart.FileHeader, bool)
}

// OpenFormFile opens the file sent under field. File and closer are nil
// when the field is absent.
func OpenFormFile(form FormFiles, field string) (*File, io.Closer, error) {
	fh, ok := form.File(field)
	if !ok {
		return nil, nil, nil
	}

	file, closer, err := FromMultipart(fh)
	if err != nil {
		return nil, nil, err
	}
	return &file, closer, nil
}

// objectName names an upload made into a folder without a public id,
// e.g. "jean-bleu-1f0c2a9e" for "Jean Bleu.JPG".
func objectName(folder, filename string) string {
	id := uuid.NewString()
	stem := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	if s := slug.Make(stem); s != "" && s != "." {
		return path.Join(folder, s+"-"+id[:8])
	}
	return path.Join(folder, id)
}

func cleanKey(key string) string {
	return strings.Trim(path.Clean("/"+key), "/")
}

// folderPrefix turns a folder into a listing prefix that does not match
// sibling folders sharing the same leading characters.
func folderPrefix(folder string) string {
	k := cleanKey(folder)
	if k == "" {
		return ""
	}
	return k + "/"
}

func contentTypeOf(f File) string {
	if f.ContentType != "" && f.ContentType != "application/octet-stream" {
		return f.ContentType
	}
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(f.Filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func formatOf(f File) string {
	if ext := strings.TrimPrefix(strings.ToLower(path.Ext(f.Filename)), "."); ext != "" {
		return ext
	}
	ct := contentTypeOf(f)
	if i := strings.Index(ct, "/"); i >= 0 && strings.HasPrefix(ct, "image/") {
		return ct[i+1:]
	}
	return ""
}
