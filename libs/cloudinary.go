package libs

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Configured reports whether Cloudinary credentials are present; uploads stay
// local when they are not.
func Configured() bool {
	return os.Getenv("CLOUDINARY_URL") != ""
}

// UploadToCloudinary mirrors a locally saved image to Cloudinary and returns
// the hosted URL.
func UploadToCloudinary(localPath string) (string, error) {
	cldURL := os.Getenv("CLOUDINARY_URL")
	if cldURL == "" {
		return "", fmt.Errorf("cloudinary environment variables not set")
	}

	cld, err := cloudinary.NewFromURL(cldURL)
	if err != nil {
		return "", fmt.Errorf("cloudinary init: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := cld.Upload.Upload(ctx, localPath, uploader.UploadParams{
		Folder: "products",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	return resp.SecureURL, nil
}
