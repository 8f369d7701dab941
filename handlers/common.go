package handlers

import (
	"context"
	"log"
	"mime/multipart"
	"strings"

	"everafter/database"
	"everafter/models"
	"everafter/storage"

	"github.com/gin-gonic/gin"
)

// Common constants and variables shared across all handler files
const (
	maxImageSize = 10 << 20  // 10MB limit for images
	maxVideoSize = 100 << 20 // 100MB limit for videos
)

var store database.Store
var assetStore storage.AssetStore

// notifyPost is what a successful post submission fans out through.
// Indirection lets tests silence the push machinery.
var notifyPost = notifyNewPost

// SetStore sets the document store all handlers use
func SetStore(s database.Store) {
	store = s
}

// SetAssetStore sets the hosted asset store all handlers use
func SetAssetStore(s storage.AssetStore) {
	assetStore = s
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// fileError checks an uploaded file against its expected MIME family and
// size ceiling. The ceiling itself is accepted; one byte over is not.
func fileError(fh *multipart.FileHeader, family string, limit int64, typeMsg, sizeMsg string) string {
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, family+"/") {
		return typeMsg
	}
	if fh.Size > limit {
		return sizeMsg
	}
	return ""
}

// journalAsset records an uploaded binary that no record owns yet. Failure
// here is logged only; the upload has already happened and refusing the
// request would orphan it for sure.
func journalAsset(ctx context.Context, assetID, kind string) {
	if err := store.JournalAsset(ctx, assetID, kind); err != nil {
		log.Printf("Failed to journal pending asset %s: %v", assetID, err)
	}
}

// cleanupAssets destroys uploaded binaries whose record never got created.
// Destroys that fail stay journaled and are retried by the sweeper.
func cleanupAssets(ctx context.Context, kind string, refs []models.AssetRef) {
	for _, ref := range refs {
		if ref.AssetID == "" {
			continue
		}
		if err := assetStore.Destroy(ctx, kind, ref.AssetID); err != nil {
			log.Printf("Failed to destroy orphaned asset %s: %v", ref.AssetID, err)
			continue
		}
		if err := store.ClearPendingAssets(ctx, []string{ref.AssetID}); err != nil {
			log.Printf("Failed to clear pending asset %s: %v", ref.AssetID, err)
		}
	}
}
