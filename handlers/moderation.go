package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"everafter/database"
	"everafter/models"
	"everafter/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Moderation surface: admins remove records that should not have been
// submitted, and the hosted binaries go with them.

func DeleteImage(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid image ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	img, err := store.DeleteImage(ctx, id)
	if err != nil {
		if err == database.ErrNotFound {
			respondError(c, http.StatusNotFound, "Image not found")
			return
		}
		log.Printf("DeleteImage error: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to delete image")
		return
	}

	cleanupAssets(ctx, storage.KindImage, []models.AssetRef{img.Image})

	respondData(c, http.StatusOK, gin.H{"message": "Image deleted"})
}

func DeleteVideo(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid video ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	vid, err := store.DeleteVideo(ctx, id)
	if err != nil {
		if err == database.ErrNotFound {
			respondError(c, http.StatusNotFound, "Video not found")
			return
		}
		log.Printf("DeleteVideo error: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to delete video")
		return
	}

	cleanupAssets(ctx, storage.KindVideo, []models.AssetRef{vid.Video})

	respondData(c, http.StatusOK, gin.H{"message": "Video deleted"})
}

func DeletePost(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid post ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	post, err := store.DeletePost(ctx, id)
	if err != nil {
		if err == database.ErrNotFound {
			respondError(c, http.StatusNotFound, "Post not found")
			return
		}
		log.Printf("DeletePost error: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to delete post")
		return
	}

	cleanupAssets(ctx, storage.KindImage, post.Images)

	respondData(c, http.StatusOK, gin.H{"message": "Post deleted"})
}
