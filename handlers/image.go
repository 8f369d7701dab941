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

// UploadImage accepts a multipart gallery image submission. Validation is
// first-failure-wins: required fields, file present, MIME family, size
// ceiling, category.
func UploadImage(c *gin.Context) {
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

	if msg := fileError(header, "image", maxImageSize, "File must be an image", "File size must be less than 10MB"); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	cat := models.Category(category)
	if !cat.Valid() {
		respondError(c, http.StatusBadRequest, models.CategoryErrorMessage)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := assetStore.Upload(ctx, storage.KindImage, file)
	if err != nil {
		log.Printf("UploadImage asset upload error: %v", err)
		respondError(c, http.StatusInternalServerError, "Upload failed")
		return
	}
	journalAsset(ctx, result.AssetID, storage.KindImage)

	img := models.GalleryImage{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: description,
		Category:    cat,
		Image:       models.AssetRef{AssetID: result.AssetID, URL: result.URL},
		CreatedAt:   time.Now().Unix(),
	}

	if err := store.InsertImage(ctx, &img); err != nil {
		log.Printf("UploadImage insert error: %v", err)
		cleanupAssets(ctx, storage.KindImage, []models.AssetRef{img.Image})
		respondError(c, http.StatusInternalServerError, "Upload failed")
		return
	}

	if err := store.ClearPendingAssets(ctx, []string{result.AssetID}); err != nil {
		log.Printf("Failed to clear pending asset %s: %v", result.AssetID, err)
	}

	respondData(c, http.StatusOK, img)
}

// ListImages returns the gallery in store-query order, mapped to the flat
// display shape the gallery view renders. ?category= filters server-side.
func ListImages(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	images, err := store.ListImages(ctx, c.Query("category"))
	if err != nil {
		log.Printf("ListImages error: %v", err)
		respondError(c, http.StatusInternalServerError, "Error loading gallery. Please try again later.")
		return
	}

	items := make([]gin.H, len(images))
	for i, img := range images {
		title := img.Title
		if title == "" {
			title = "Untitled"
		}
		category := string(img.Category)
		if category == "" {
			category = "Wedding Day"
		}
		items[i] = gin.H{
			"id":          img.ID.Hex(),
			"src":         img.Image.URL,
			"title":       title,
			"description": img.Description,
			"category":    category,
		}
	}

	respondData(c, http.StatusOK, items)
}
