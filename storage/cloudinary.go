package storage

import (
	"context"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

const (
	KindImage = "image"
	KindVideo = "video"
)

// UploadResult carries the asset host's opaque identifier and the delivery
// URL for the uploaded binary.
type UploadResult struct {
	AssetID string
	URL     string
}

// AssetStore is the hosted binary store behind every gallery and post
// upload. Destroy is best-effort cleanup for moderation and orphan sweeps.
type AssetStore interface {
	Upload(ctx context.Context, kind string, file io.Reader) (*UploadResult, error)
	Destroy(ctx context.Context, kind, assetID string) error
}

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinary builds an asset store from a cloudinary:// URL.
func NewCloudinary(url, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, err
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

func (s *Cloudinary) Upload(ctx context.Context, kind string, file io.Reader) (*UploadResult, error) {
	params := uploader.UploadParams{
		Folder:       s.folder + "/" + kind + "s",
		PublicID:     uuid.NewString(),
		ResourceType: resourceType(kind),
	}

	res, err := s.cld.Upload.Upload(ctx, file, params)
	if err != nil {
		return nil, err
	}

	return &UploadResult{AssetID: res.PublicID, URL: res.SecureURL}, nil
}

func (s *Cloudinary) Destroy(ctx context.Context, kind, assetID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     assetID,
		ResourceType: resourceType(kind),
	})
	return err
}

func resourceType(kind string) string {
	if kind == KindVideo {
		return "video"
	}
	return "image"
}
