package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"everafter/models"
	"everafter/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UploadVideo accepts a multipart gallery video submission. Same validation
// sequence as images with the video MIME family and the 100MB ceiling.
func UploadVideo(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil && err != http.ErrNotMultipart {
		respondError(c, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	category := c.PostForm("category")
	description := strings.TrimSpace(c.PostForm("description"))

	if title == "" {
		respondError(c, http.StatusBadRequest, "Title is required")
		return
	}
	if category == "" {
		respondError(c, http.StatusBadRequest, "Category is required")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if msg := fileError(header, "video", maxVideoSize, "File must be a video", "Video file size must be less than 100MB"); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	cat := models.Category(category)
	if !cat.Valid() {
		respondError(c, http.StatusBadRequest, models.CategoryErrorMessage)
		return
	}

	// Videos are big, give the upstream upload room
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	result, err := assetStore.Upload(ctx, storage.KindVideo, file)
	if err != nil {
		log.Printf("UploadVideo asset upload error: %v", err)
		respondError(c, http.StatusInternalServerError, "Video upload failed")
		return
	}
	journalAsset(ctx, result.AssetID, storage.KindVideo)

	vid := models.GalleryVideo{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: description,
		Category:    cat,
		Video:       models.AssetRef{AssetID: result.AssetID, URL: result.URL},
		CreatedAt:   time.Now().Unix(),
	}

	if err := store.InsertVideo(ctx, &vid); err != nil {
		log.Printf("UploadVideo insert error: %v", err)
		cleanupAssets(ctx, storage.KindVideo, []models.AssetRef{vid.Video})
		respondError(c, http.StatusInternalServerError, "Video upload failed")
		return
	}

	if err := store.ClearPendingAssets(ctx, []string{result.AssetID}); err != nil {
		log.Printf("Failed to clear pending asset %s: %v", result.AssetID, err)
	}

	respondData(c, http.StatusOK, vid)
}

// ListVideos mirrors ListImages for the video gallery.
func ListVideos(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	videos, err := store.ListVideos(ctx, c.Query("category"))
	if err != nil {
		log.Printf("ListVideos error: %v", err)
		respondError(c, http.StatusInternalServerError, "Error loading video gallery. Please try again later.")
		return
	}

	items := make([]gin.H, len(videos))
	for i, vid := range videos {
		title := vid.Title
		if title == "" {
			title = "Untitled"
		}
		category := string(vid.Category)
		if category == "" {
			category = "Wedding Day"
		}
		items[i] = gin.H{
			"id":          vid.ID.Hex(),
			"src":         vid.Video.URL,
			"title":       title,
			"description": vid.Description,
			"category":    category,
		}
	}

	respondData(c, http.StatusOK, items)
}
