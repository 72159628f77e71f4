package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	cldapi "github.com/cloudinary/cloudinary-go/v2/api"
	cldconfig "github.com/cloudinary/cloudinary-go/v2/config"
	"go.uber.org/zap"

	"github.com/dnounce/dnounce-api/config"
)

// EvidenceFolder is where signed uploads land in the Cloudinary media library.
const EvidenceFolder = "dnounce/evidence"

// CloudinaryHandler signs direct browser uploads of evidence files
type CloudinaryHandler struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadPreset string
	Now          func() time.Time
}

type signatureResponse struct {
	Timestamp    string `json:"timestamp"`
	Signature    string `json:"signature"`
	APIKey       string `json:"apiKey,omitempty"`
	CloudName    string `json:"cloudName,omitempty"`
	UploadPreset string `json:"uploadPreset,omitempty"`
	Folder       string `json:"folder"`
}

// NewCloudinaryHandler reads credentials from CLOUDINARY_URL, with
// CLOUDINARY_API_SECRET as the fallback secret.
func NewCloudinaryHandler(conf *config.Config) CloudinaryHandler {
	h := CloudinaryHandler{APISecret: conf.CloudinaryAPISecret, UploadPreset: conf.CloudinaryUploadPreset}
	if conf.CloudinaryURL == "" {
		return h
	}
	cld, err := cldconfig.NewFromURL(conf.CloudinaryURL)
	if err != nil {
		zap.S().Warnw("ignoring invalid CLOUDINARY_URL", "error", err)
		return h
	}
	h.CloudName = cld.Cloud.CloudName
	h.APIKey = cld.Cloud.APIKey
	if cld.Cloud.APISecret != "" {
		h.APISecret = cld.Cloud.APISecret
	}
	return h
}

// GenerateSignature generates a signature for Cloudinary uploads
func (c CloudinaryHandler) GenerateSignature(w http.ResponseWriter, r *http.Request) {
	if c.APISecret == "" {
		config.ErrorStatus("evidence uploads are not configured", http.StatusServiceUnavailable, w, nil)
		return
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	timestamp := strconv.FormatInt(now().Unix(), 10)

	params := url.Values{}
	params.Set("timestamp", timestamp)
	params.Set("folder", EvidenceFolder)
	if c.UploadPreset != "" {
		params.Set("upload_preset", c.UploadPreset)
	}
	signature, err := cldapi.SignParameters(params, c.APISecret)
	if err != nil {
		config.ErrorStatus("failed to sign upload", http.StatusInternalServerError, w, err)
		return
	}

	writeJSON(w, http.StatusOK, signatureResponse{
		Timestamp:    timestamp,
		Signature:    signature,
		APIKey:       c.APIKey,
		CloudName:    c.CloudName,
		UploadPreset: c.UploadPreset,
		Folder:       EvidenceFolder,
	})
}
