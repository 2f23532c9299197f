package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryService is the ImageStore used when IMAGE_STORE=cloudinary.
// References are the secure delivery URLs.
type CloudinaryService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryService{
		cld:    cld,
		folder: PostsFolder,
	}, nil
}

// Put uploads under folder/<digest> without overwriting. created is false
// when Cloudinary reports the asset already existed.
func (s *CloudinaryService) Put(ctx context.Context, name string, body io.Reader) (string, bool, error) {
	publicID := strings.TrimSuffix(name, path.Ext(name))

	uploadResult, err := s.cld.Upload.Upload(ctx, body, uploader.UploadParams{
		Folder:         s.folder,
		PublicID:       publicID,
		Overwrite:      api.Bool(false),
		UniqueFilename: api.Bool(false),
		ResourceType:   "image",
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if uploadResult.Error.Message != "" {
		return "", false, fmt.Errorf("cloudinary rejected upload: %s", uploadResult.Error.Message)
	}

	return uploadResult.SecureURL, !existingAsset(uploadResult.Response), nil
}

// Delete destroys the asset behind a secure URL returned by Put.
func (s *CloudinaryService) Delete(ctx context.Context, ref string) error {
	publicID := strings.TrimSuffix(path.Base(ref), path.Ext(ref))
	if publicID == "" || publicID == "." || publicID == "/" {
		return fmt.Errorf("invalid image reference %q", ref)
	}

	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     s.folder + "/" + publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete from Cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("cloudinary rejected delete: %s", result.Error.Message)
	}
	// "not found" means there is nothing left to remove
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("cloudinary delete returned %q", result.Result)
	}
	return nil
}

// existingAsset reads the "existing" flag Cloudinary sets when an upload
// with overwrite disabled matched an asset that was already stored.
// The SDK stores the decoded body as *map[string]interface{}.
func existingAsset(raw interface{}) bool {
	var fields map[string]interface{}
	switch v := raw.(type) {
	case *map[string]interface{}:
		if v == nil {
			return false
		}
		fields = *v
	case map[string]interface{}:
		fields = v
	default:
		return false
	}
	existing, _ := fields["existing"].(bool)
	return existing
}
