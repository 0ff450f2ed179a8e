package upload

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"github.com/rajivgeraev/renthub-api/internal/config"
)

// cloudinaryBackend загружает изображения в Cloudinary
type cloudinaryBackend struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func newCloudinaryBackend(cfg *config.Config) (*cloudinaryBackend, error) {
	cld, err := cloudinary.NewFromParams(
		cfg.CloudinaryConfig.CloudName,
		cfg.CloudinaryConfig.APIKey,
		cfg.CloudinaryConfig.APISecret,
	)
	if err != nil {
		return nil, err
	}
	return &cloudinaryBackend{cld: cld, folder: cfg.CloudinaryConfig.UploadFolder}, nil
}

// upload отправляет файл в Cloudinary и возвращает публичный URL
func (b *cloudinaryBackend) upload(fh *multipart.FileHeader) (url, filename string, err error) {
	f, err := fh.Open()
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := b.cld.Upload.Upload(ctx, f, uploader.UploadParams{
		PublicID: uuid.New().String(),
		Folder:   b.folder,
	})
	if err != nil {
		return "", "", err
	}

	return resp.SecureURL, resp.PublicID + "." + resp.Format, nil
}
