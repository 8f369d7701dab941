package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"

	"everafter/database"
	"everafter/middleware"
	"everafter/models"
	"everafter/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStore is an in-memory database.Store for handler tests.
type fakeStore struct {
	mu      sync.Mutex
	images  []models.GalleryImage
	videos  []models.GalleryVideo
	posts   []models.Post
	admins  []models.Admin
	pending []models.PendingAsset
	subs    []models.PushSubscription

	insertImageErr error
	insertPostErr  error
	listErr        error
}

func (f *fakeStore) InsertImage(_ context.Context, img *models.GalleryImage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertImageErr != nil {
		return f.insertImageErr
	}
	f.images = append(f.images, *img)
	return nil
}

func (f *fakeStore) InsertVideo(_ context.Context, vid *models.GalleryVideo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.videos = append(f.videos, *vid)
	return nil
}

func (f *fakeStore) InsertPost(_ context.Context, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertPostErr != nil {
		return f.insertPostErr
	}
	f.posts = append(f.posts, *post)
	return nil
}

func (f *fakeStore) ListImages(_ context.Context, category string) ([]models.GalleryImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.GalleryImage
	for _, img := range f.images {
		if category == "" || string(img.Category) == category {
			out = append(out, img)
		}
	}
	return out, nil
}

func (f *fakeStore) ListVideos(_ context.Context, category string) ([]models.GalleryVideo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.GalleryVideo
	for _, vid := range f.videos {
		if category == "" || string(vid.Category) == category {
			out = append(out, vid)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPosts(_ context.Context) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	// newest-first, like the Mongo sort on timeStamp
	out := make([]models.Post, len(f.posts))
	copy(out, f.posts)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (f *fakeStore) IncrementLikes(_ context.Context, id primitive.ObjectID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.posts {
		if f.posts[i].ID == id {
			f.posts[i].Likes++
			return f.posts[i].Likes, nil
		}
	}
	return 0, database.ErrNotFound
}

func (f *fakeStore) AppendComment(_ context.Context, id primitive.ObjectID, comment models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.posts {
		if f.posts[i].ID == id {
			f.posts[i].Comments = append(f.posts[i].Comments, comment)
			return nil
		}
	}
	return database.ErrNotFound
}

func (f *fakeStore) DeleteImage(_ context.Context, id primitive.ObjectID) (*models.GalleryImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, img := range f.images {
		if img.ID == id {
			f.images = append(f.images[:i], f.images[i+1:]...)
			return &img, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeStore) DeleteVideo(_ context.Context, id primitive.ObjectID) (*models.GalleryVideo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, vid := range f.videos {
		if vid.ID == id {
			f.videos = append(f.videos[:i], f.videos[i+1:]...)
			return &vid, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeStore) DeletePost(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, post := range f.posts {
		if post.ID == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return &post, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeStore) FindAdmin(_ context.Context, email string) (*models.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, admin := range f.admins {
		if admin.Email == email {
			a := admin
			return &a, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeStore) InsertAdmin(_ context.Context, admin *models.Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admins = append(f.admins, *admin)
	return nil
}

func (f *fakeStore) JournalAsset(_ context.Context, assetID, kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, models.PendingAsset{
		ID:      primitive.NewObjectID(),
		AssetID: assetID,
		Kind:    kind,
	})
	return nil
}

func (f *fakeStore) ClearPendingAssets(_ context.Context, assetIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	keep := f.pending[:0]
	for _, entry := range f.pending {
		cleared := false
		for _, id := range assetIDs {
			if entry.AssetID == id {
				cleared = true
				break
			}
		}
		if !cleared {
			keep = append(keep, entry)
		}
	}
	f.pending = keep
	return nil
}

func (f *fakeStore) ListStalePendingAssets(_ context.Context, cutoff int64) ([]models.PendingAsset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PendingAsset
	for _, entry := range f.pending {
		if entry.CreatedAt < cutoff {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeStore) DeletePendingAsset(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, entry := range f.pending {
		if entry.ID == id {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

func (f *fakeStore) SaveSubscription(_ context.Context, sub *models.PushSubscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.subs {
		if f.subs[i].Sub.Endpoint == sub.Sub.Endpoint {
			f.subs[i] = *sub
			return nil
		}
	}
	f.subs = append(f.subs, *sub)
	return nil
}

func (f *fakeStore) ListSubscriptions(_ context.Context) ([]models.PushSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.PushSubscription, len(f.subs))
	copy(out, f.subs)
	return out, nil
}

func (f *fakeStore) DeleteSubscription(_ context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, sub := range f.subs {
		if sub.Sub.Endpoint == endpoint {
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			return nil
		}
	}
	return nil
}

// fakeAssets is an in-memory storage.AssetStore. failAfter >= 0 makes
// every upload past that count fail.
type fakeAssets struct {
	mu        sync.Mutex
	uploads   int
	destroyed []string
	failAfter int
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{failAfter: -1}
}

func (f *fakeAssets) Upload(_ context.Context, kind string, _ io.Reader) (*storage.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter >= 0 && f.uploads >= f.failAfter {
		return nil, fmt.Errorf("asset host unavailable")
	}
	n := f.uploads
	f.uploads++
	id := fmt.Sprintf("%s-asset-%d", kind, n)
	return &storage.UploadResult{AssetID: id, URL: "https://cdn.test/" + id}, nil
}

func (f *fakeAssets) Destroy(_ context.Context, _, assetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, assetID)
	return nil
}

func (f *fakeAssets) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads
}

// setupTest wires fresh fakes into the handler package and returns a router
// with the public content routes mounted.
func setupTest(t *testing.T) (*fakeStore, *fakeAssets, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fs := &fakeStore{}
	fa := newFakeAssets()
	SetStore(fs)
	SetAssetStore(fa)
	notifyPost = func(models.Post) {}
	t.Cleanup(func() { notifyPost = notifyNewPost })

	router := gin.New()
	router.POST("/api/upload/image", UploadImage)
	router.POST("/api/upload/video", UploadVideo)
	router.POST("/api/upload/post", UploadPost)
	router.GET("/api/images", ListImages)
	router.GET("/api/videos", ListVideos)
	router.GET("/api/posts", ListPosts)
	router.POST("/api/posts/:id/like", LikePost)
	router.POST("/api/posts/:id/comments", AddComment)
	router.POST("/api/admin/login", AdminLogin)

	admin := router.Group("/api/admin")
	admin.Use(middleware.JWTAuthMiddleware())
	admin.DELETE("/images/:id", DeleteImage)
	admin.DELETE("/videos/:id", DeleteVideo)
	admin.DELETE("/posts/:id", DeletePost)

	return fs, fa, router
}

type filePart struct {
	field       string
	filename    string
	contentType string
	content     []byte
}

// multipartBody builds a multipart/form-data body for upload tests.
func multipartBody(t *testing.T, fields map[string]string, files ...filePart) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}

	for _, fp := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fp.field, fp.filename))
		header.Set("Content-Type", fp.contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(fp.content); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}
