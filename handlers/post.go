package handlers

import (
	"context"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"everafter/database"
	"everafter/models"
	"everafter/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// UploadPost accepts a multipart feed submission: author, caption and zero
// or more images. A missing timestamp defaults to submission time and likes
// is clamped to zero or more, so neither field is required of the form.
// Images are uploaded to the asset host in parallel before the post record
// is created; the first upload failure aborts the whole submission and
// already-uploaded assets are destroyed.
func UploadPost(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil && err != http.ErrNotMultipart {
		respondError(c, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	author := strings.TrimSpace(c.PostForm("author"))
	caption := strings.TrimSpace(c.PostForm("caption"))
	timestamp := c.PostForm("timestamp")

	if author == "" || caption == "" {
		respondError(c, http.StatusBadRequest, "Required fields missing")
		return
	}
	if timestamp == "" {
		timestamp = time.Now().Format(time.RFC3339)
	}

	likes, _ := strconv.Atoi(c.PostForm("likes"))
	if likes < 0 {
		likes = 0
	}

	var files []*multipart.FileHeader
	if c.Request.MultipartForm != nil {
		files = c.Request.MultipartForm.File["images"]
	}

	// Reject the whole submission before any binary leaves the building
	for _, fh := range files {
		if msg := fileError(fh, "image", maxImageSize, "File must be an image", "File size must be less than 10MB"); msg != "" {
			respondError(c, http.StatusBadRequest, msg)
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	refs := make([]models.AssetRef, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, fh := range files {
		i, fh := i, fh
		g.Go(func() error {
			f, err := fh.Open()
			if err != nil {
				return err
			}
			defer f.Close()

			result, err := assetStore.Upload(gctx, storage.KindImage, f)
			if err != nil {
				return err
			}
			journalAsset(gctx, result.AssetID, storage.KindImage)
			refs[i] = models.AssetRef{AssetID: result.AssetID, URL: result.URL}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("UploadPost image upload error: %v", err)
		cleanupAssets(ctx, storage.KindImage, refs)
		respondError(c, http.StatusInternalServerError, "Failed to upload post images")
		return
	}

	post := models.Post{
		ID:        primitive.NewObjectID(),
		Author:    author,
		Caption:   caption,
		Images:    refs,
		Timestamp: timestamp,
		Likes:     likes,
		Comments:  []models.Comment{},
		CreatedAt: time.Now().Unix(),
	}

	if err := store.InsertPost(ctx, &post); err != nil {
		log.Printf("UploadPost insert error: %v", err)
		cleanupAssets(ctx, storage.KindImage, refs)
		respondError(c, http.StatusInternalServerError, "Failed to create post")
		return
	}

	assetIDs := make([]string, 0, len(refs))
	for _, ref := range refs {
		assetIDs = append(assetIDs, ref.AssetID)
	}
	if err := store.ClearPendingAssets(ctx, assetIDs); err != nil {
		log.Printf("Failed to clear pending assets: %v", err)
	}

	go notifyPost(post)

	respondData(c, http.StatusOK, gin.H{
		"postId":  post.ID.Hex(),
		"message": "Post created successfully",
	})
}

// ListPosts returns the feed newest-first, mapped to the shape the updates
// page renders.
func ListPosts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	posts, err := store.ListPosts(ctx)
	if err != nil {
		log.Printf("ListPosts error: %v", err)
		respondError(c, http.StatusInternalServerError, "Error loading updates. Please try again later.")
		return
	}

	items := make([]gin.H, len(posts))
	for i, post := range posts {
		author := post.Author
		if author == "" {
			author = "Anonymous"
		}

		urls := make([]string, len(post.Images))
		for j, img := range post.Images {
			urls[j] = img.URL
		}

		comments := make([]gin.H, len(post.Comments))
		for j, cm := range post.Comments {
			comments[j] = gin.H{
				"id":        cm.ID,
				"text":      cm.Text,
				"author":    cm.Author,
				"timestamp": cm.Timestamp,
			}
		}

		items[i] = gin.H{
			"id":        post.ID.Hex(),
			"author":    author,
			"caption":   post.Caption,
			"imageUrls": urls,
			"timestamp": post.Timestamp,
			"likes":     post.Likes,
			"comments":  comments,
		}
	}

	respondData(c, http.StatusOK, items)
}

// LikePost bumps a post's like count in the store and returns the new count.
func LikePost(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid post ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	likes, err := store.IncrementLikes(ctx, postID)
	if err != nil {
		if err == database.ErrNotFound {
			respondError(c, http.StatusNotFound, "Post not found")
			return
		}
		log.Printf("LikePost error: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to like post")
		return
	}

	respondData(c, http.StatusOK, gin.H{"likes": likes})
}

// AddComment appends a comment to a post.
func AddComment(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid post ID")
		return
	}

	var req struct {
		Text   string `json:"text" binding:"required"`
		Author string `json:"author" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		Text:      req.Text,
		Author:    req.Author,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.AppendComment(ctx, postID, comment); err != nil {
		if err == database.ErrNotFound {
			respondError(c, http.StatusNotFound, "Post not found")
			return
		}
		log.Printf("AddComment error: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to add comment")
		return
	}

	respondData(c, http.StatusOK, comment)
}
