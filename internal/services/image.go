package services

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

const (
	// MaxImageKilobytes is the upload limit for journal images
	MaxImageKilobytes = 2048
	MaxImageBytes     = MaxImageKilobytes * 1024

	sniffLength = 512
)

// allowedImageTypes maps an accepted extension to the sniffed content types
// that may back it.
var allowedImageTypes = map[string][]string{
	".jpeg": {"image/jpeg"},
	".jpg":  {"image/jpeg"},
	".png":  {"image/png"},
	".gif":  {"image/gif"},
	".svg":  {"image/svg+xml", "text/xml", "text/plain"},
}

const (
	imageRequiredMessage = "The image field is required."
	imageTypeMessage     = "The image field must be a file of type: jpeg, png, jpg, gif, svg."
	imageNotImageMessage = "The image field must be an image."
)

var imageTooLargeMessage = fmt.Sprintf("The image field must not be greater than %d kilobytes.", MaxImageKilobytes)

// StoredImage is the result of ImageService.Store. Created is true only when
// this call wrote the blob, so only then may a failed request remove it.
type StoredImage struct {
	Ref     string
	Created bool
}

// ImageService validates uploaded journal images and hands them to an ImageStore.
type ImageService struct {
	store ImageStore
}

func NewImageService(store ImageStore) *ImageService {
	return &ImageService{store: store}
}

// Store validates the upload and persists it under a BLAKE3 content digest.
// Constraint violations are returned as *ValidationError on the "image" field.
func (s *ImageService) Store(ctx context.Context, header *multipart.FileHeader) (StoredImage, error) {
	if header == nil {
		return StoredImage{}, imageError(imageRequiredMessage)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	accepted, ok := allowedImageTypes[ext]
	if !ok {
		return StoredImage{}, imageError(imageTypeMessage)
	}
	if header.Size > MaxImageBytes {
		return StoredImage{}, imageError(imageTooLargeMessage)
	}

	file, err := header.Open()
	if err != nil {
		return StoredImage{}, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	// read one byte past the limit so oversized bodies with a lying header are caught
	data, err := io.ReadAll(io.LimitReader(file, MaxImageBytes+1))
	if err != nil {
		return StoredImage{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxImageBytes {
		return StoredImage{}, imageError(imageTooLargeMessage)
	}
	if len(data) == 0 {
		return StoredImage{}, imageError(imageNotImageMessage)
	}

	if !contentMatches(ext, accepted, data) {
		return StoredImage{}, imageError(imageNotImageMessage)
	}

	sum := blake3.Sum256(data)
	name := hex.EncodeToString(sum[:]) + ext

	ref, created, err := s.store.Put(ctx, name, bytes.NewReader(data))
	if err != nil {
		return StoredImage{}, fmt.Errorf("store image: %w", err)
	}
	return StoredImage{Ref: ref, Created: created}, nil
}

// Discard undoes Store for a request that failed afterwards. Blobs that were
// already present belong to other journals and stay.
func (s *ImageService) Discard(ctx context.Context, img StoredImage) error {
	if !img.Created || img.Ref == "" {
		return nil
	}
	if err := s.store.Delete(ctx, img.Ref); err != nil {
		return fmt.Errorf("discard image %s: %w", img.Ref, err)
	}
	return nil
}

func contentMatches(ext string, accepted []string, data []byte) bool {
	head := data
	if len(head) > sniffLength {
		head = head[:sniffLength]
	}
	sniffed := http.DetectContentType(head)
	if i := strings.Index(sniffed, ";"); i >= 0 {
		sniffed = sniffed[:i]
	}

	matched := false
	for _, ct := range accepted {
		if sniffed == ct {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	if ext == ".svg" {
		return bytes.Contains(bytes.ToLower(data), []byte("<svg"))
	}
	return true
}

func imageError(message string) error {
	verr := NewValidationError()
	verr.Add("image", message)
	return verr
}

// ImageTooLargeError is the validation error for an upload over MaxImageBytes,
// for callers that reject the request body before it reaches Store.
func ImageTooLargeError() error {
	return imageError(imageTooLargeMessage)
}
