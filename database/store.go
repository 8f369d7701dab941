package database

import (
	"context"
	"errors"
	"time"

	"everafter/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a record id matches nothing.
var ErrNotFound = errors.New("record not found")

// Store is the document-store contract the handlers talk to. The Mongo
// implementation below is the production one; tests swap in a fake.
type Store interface {
	InsertImage(ctx context.Context, img *models.GalleryImage) error
	InsertVideo(ctx context.Context, vid *models.GalleryVideo) error
	InsertPost(ctx context.Context, post *models.Post) error

	ListImages(ctx context.Context, category string) ([]models.GalleryImage, error)
	ListVideos(ctx context.Context, category string) ([]models.GalleryVideo, error)
	ListPosts(ctx context.Context) ([]models.Post, error)

	IncrementLikes(ctx context.Context, id primitive.ObjectID) (int, error)
	AppendComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) error

	DeleteImage(ctx context.Context, id primitive.ObjectID) (*models.GalleryImage, error)
	DeleteVideo(ctx context.Context, id primitive.ObjectID) (*models.GalleryVideo, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) (*models.Post, error)

	FindAdmin(ctx context.Context, email string) (*models.Admin, error)
	InsertAdmin(ctx context.Context, admin *models.Admin) error

	JournalAsset(ctx context.Context, assetID, kind string) error
	ClearPendingAssets(ctx context.Context, assetIDs []string) error
	ListStalePendingAssets(ctx context.Context, cutoff int64) ([]models.PendingAsset, error)
	DeletePendingAsset(ctx context.Context, id primitive.ObjectID) error

	SaveSubscription(ctx context.Context, sub *models.PushSubscription) error
	ListSubscriptions(ctx context.Context) ([]models.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

type mongoStore struct{}

// NewStore returns the Mongo-backed store. ConnectMongo must have run first.
func NewStore() Store {
	return mongoStore{}
}

func (mongoStore) InsertImage(ctx context.Context, img *models.GalleryImage) error {
	_, err := Images.InsertOne(ctx, img)
	return err
}

func (mongoStore) InsertVideo(ctx context.Context, vid *models.GalleryVideo) error {
	_, err := Videos.InsertOne(ctx, vid)
	return err
}

func (mongoStore) InsertPost(ctx context.Context, post *models.Post) error {
	_, err := Posts.InsertOne(ctx, post)
	return err
}

func (mongoStore) ListImages(ctx context.Context, category string) ([]models.GalleryImage, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}

	cursor, err := Images.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var images []models.GalleryImage
	if err := cursor.All(ctx, &images); err != nil {
		return nil, err
	}
	return images, nil
}

func (mongoStore) ListVideos(ctx context.Context, category string) ([]models.GalleryVideo, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}

	cursor, err := Videos.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var videos []models.GalleryVideo
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

func (mongoStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timeStamp", Value: -1}})

	cursor, err := Posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (mongoStore) IncrementLikes(ctx context.Context, id primitive.ObjectID) (int, error) {
	res := Posts.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"likes": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var post models.Post
	if err := res.Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return post.Likes, nil
}

func (mongoStore) AppendComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) error {
	res, err := Posts.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{"comments": comment}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (mongoStore) DeleteImage(ctx context.Context, id primitive.ObjectID) (*models.GalleryImage, error) {
	var img models.GalleryImage
	if err := Images.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&img); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &img, nil
}

func (mongoStore) DeleteVideo(ctx context.Context, id primitive.ObjectID) (*models.GalleryVideo, error) {
	var vid models.GalleryVideo
	if err := Videos.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&vid); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vid, nil
}

func (mongoStore) DeletePost(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	if err := Posts.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (mongoStore) FindAdmin(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	if err := Admins.FindOne(ctx, bson.M{"email": email}).Decode(&admin); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &admin, nil
}

func (mongoStore) InsertAdmin(ctx context.Context, admin *models.Admin) error {
	_, err := Admins.InsertOne(ctx, admin)
	return err
}

func (mongoStore) JournalAsset(ctx context.Context, assetID, kind string) error {
	entry := models.PendingAsset{
		ID:        primitive.NewObjectID(),
		AssetID:   assetID,
		Kind:      kind,
		CreatedAt: time.Now().Unix(),
	}
	_, err := PendingAssets.InsertOne(ctx, entry)
	return err
}

func (mongoStore) ClearPendingAssets(ctx context.Context, assetIDs []string) error {
	if len(assetIDs) == 0 {
		return nil
	}
	_, err := PendingAssets.DeleteMany(ctx, bson.M{"assetId": bson.M{"$in": assetIDs}})
	return err
}

func (mongoStore) ListStalePendingAssets(ctx context.Context, cutoff int64) ([]models.PendingAsset, error) {
	cursor, err := PendingAssets.Find(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stale []models.PendingAsset
	if err := cursor.All(ctx, &stale); err != nil {
		return nil, err
	}
	return stale, nil
}

func (mongoStore) DeletePendingAsset(ctx context.Context, id primitive.ObjectID) error {
	_, err := PendingAssets.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (mongoStore) SaveSubscription(ctx context.Context, sub *models.PushSubscription) error {
	// Upsert keyed on the endpoint so re-subscribing never duplicates
	_, err := Subscriptions.UpdateOne(
		ctx,
		bson.M{"sub.endpoint": sub.Sub.Endpoint},
		bson.M{"$set": bson.M{"sub": sub.Sub, "createdAt": sub.CreatedAt}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (mongoStore) ListSubscriptions(ctx context.Context) ([]models.PushSubscription, error) {
	cursor, err := Subscriptions.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []models.PushSubscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (mongoStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	_, err := Subscriptions.DeleteOne(ctx, bson.M{"sub.endpoint": endpoint})
	return err
}
