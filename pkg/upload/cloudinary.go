// Package upload talks to the Cloudinary image upload collaborator. Images
// are sent as signed form posts; only the resulting secure URL is stored.
package upload

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds Cloudinary credentials
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Uploader uploads images and returns their public URLs
type Uploader interface {
	Upload(data []byte, publicID string) (string, error)
}

// CloudinaryUploader implements Uploader against the Cloudinary upload API
type CloudinaryUploader struct {
	config Config
	logger *logrus.Logger
	client *http.Client
}

// NewCloudinaryUploader creates a new CloudinaryUploader
func NewCloudinaryUploader(cfg Config, logger *logrus.Logger) *CloudinaryUploader {
	return &CloudinaryUploader{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// IsConfigured reports whether credentials are present
func (u *CloudinaryUploader) IsConfigured() bool {
	return u.config.CloudName != "" && u.config.APIKey != "" && u.config.APISecret != ""
}

// Upload sends image bytes to Cloudinary as a signed upload and returns the
// secure URL of the stored asset
func (u *CloudinaryUploader) Upload(data []byte, publicID string) (string, error) {
	if !u.IsConfigured() {
		return "", fmt.Errorf("cloudinary is not configured")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty image data")
	}

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", u.config.CloudName)

	finalPublicID := publicID
	if u.config.Folder != "" {
		finalPublicID = u.config.Folder + "/" + publicID
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	// Cloudinary signs the sorted parameter string with SHA-1
	signatureString := fmt.Sprintf("public_id=%s&timestamp=%s%s", finalPublicID, timestamp, u.config.APISecret)
	signature := fmt.Sprintf("%x", sha1.Sum([]byte(signatureString)))

	form := url.Values{}
	form.Add("file", "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(data))
	form.Add("api_key", u.config.APIKey)
	form.Add("public_id", finalPublicID)
	form.Add("timestamp", timestamp)
	form.Add("signature", signature)

	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call cloudinary: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read cloudinary response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		u.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"response":    string(body),
		}).Error("Cloudinary upload failed")
		return "", fmt.Errorf("cloudinary returned status %d", resp.StatusCode)
	}

	var result struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse cloudinary response: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("cloudinary response missing secure_url")
	}

	u.logger.WithField("public_id", finalPublicID).Debug("Image uploaded")

	return result.SecureURL, nil
}
