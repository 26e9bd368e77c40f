package media

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/anurajthakur333/backend/cmd/config"
	"github.com/anurajthakur333/backend/cmd/utils"
)

// destroyAPI is the slice of the Cloudinary upload API this handler uses.
type destroyAPI interface {
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type Handler struct {
	uploads destroyAPI

	cloudName string
	apiKey    string
	apiSecret string
}

func NewHandler(cfg config.Config) (*Handler, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, err
	}

	return &Handler{
		uploads:   &cld.Upload,
		cloudName: cfg.CloudinaryCloudName,
		apiKey:    cfg.CloudinaryAPIKey,
		apiSecret: cfg.CloudinaryAPISecret,
	}, nil
}

// RegisterRoutes sets up media routes. Deletion requires a valid
// identity-provider session.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/cloudinary/delete", utils.AuthMiddleware(h.DeleteImage)).Methods("POST")
}

type deleteImageRequest struct {
	PublicID string `json:"public_id"`
	ImageURL string `json:"imageUrl"`
}

// DeleteImage permanently removes an image from Cloudinary. The deletion is
// irreversible and there is no existence check up front; a missing image is
// only detected through the provider's "not found" result.
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	var req deleteImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid request payload",
		})
		return
	}

	publicID, urlCloudName := ResolveIdentifier(req.PublicID, req.ImageURL)
	if publicID == "" {
		utils.RespondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "public_id or imageUrl is required",
		})
		return
	}

	// Local misconfiguration, not a caller error.
	if h.cloudName == "" || h.apiKey == "" || h.apiSecret == "" {
		logrus.Error("cloudinary credentials are not fully configured")
		utils.RespondWithJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Cloudinary is not configured",
		})
		return
	}

	// Refuse to issue a delete against a different account than the one the
	// URL points at.
	if urlCloudName != "" && urlCloudName != h.cloudName {
		utils.RespondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Image belongs to a different Cloudinary account",
		})
		return
	}

	res, err := h.uploads.Destroy(context.Background(), uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		logrus.WithError(err).WithField("publicId", publicID).Error("cloudinary destroy failed")
		utils.RespondWithJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Failed to delete image",
		})
		return
	}

	switch res.Result {
	case "ok":
		utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"message":   "Image deleted successfully",
			"public_id": publicID,
			"result":    res.Result,
		})
	case "not found":
		utils.RespondWithJSON(w, http.StatusNotFound, map[string]interface{}{
			"success":   false,
			"message":   "Image not found",
			"public_id": publicID,
			"result":    res.Result,
		})
	default:
		utils.RespondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success":   false,
			"message":   "Failed to delete image",
			"public_id": publicID,
			"result":    res.Result,
		})
	}
}
