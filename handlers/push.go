package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"everafter/models"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
)

func init() {
	// Initialize VAPID keys if not set in environment
	if os.Getenv("VAPID_PUBLIC_KEY") == "" || os.Getenv("VAPID_PRIVATE_KEY") == "" {
		publicKey, privateKey, err := webpush.GenerateVAPIDKeys()
		if err != nil {
			log.Printf("Failed to generate VAPID keys: %v", err)
			return
		}

		// In-memory fallback for development; production should set the env
		os.Setenv("VAPID_PUBLIC_KEY", publicKey)
		os.Setenv("VAPID_PRIVATE_KEY", privateKey)

		log.Println("⚠️  Generated new VAPID keys - for production, set these as environment variables:")
		log.Printf("   VAPID_PUBLIC_KEY: %s", publicKey)
		log.Printf("   VAPID_PRIVATE_KEY: %s", privateKey)
	}
}

func GetVapidPublicKey(c *gin.Context) {
	publicKey := os.Getenv("VAPID_PUBLIC_KEY")
	if publicKey == "" {
		respondError(c, http.StatusInternalServerError, "VAPID public key not configured")
		return
	}

	respondData(c, http.StatusOK, gin.H{"publicKey": publicKey})
}

// SubscribePush registers a guest browser for new-update notifications.
// Subscriptions are anonymous and upserted on the endpoint.
func SubscribePush(c *gin.Context) {
	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
		Keys     struct {
			P256dh string `json:"p256dh" binding:"required"`
			Auth   string `json:"auth" binding:"required"`
		} `json:"keys" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sub := models.PushSubscription{
		Sub: webpush.Subscription{
			Endpoint: req.Endpoint,
			Keys: webpush.Keys{
				P256dh: req.Keys.P256dh,
				Auth:   req.Keys.Auth,
			},
		},
		CreatedAt: time.Now().Unix(),
	}

	if err := store.SaveSubscription(ctx, &sub); err != nil {
		log.Printf("Failed to save subscription: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to save subscription")
		return
	}

	respondData(c, http.StatusOK, gin.H{"message": "Push subscription saved successfully"})
}

// notifyNewPost fans a "new update" push out to every subscriber. Runs in
// its own goroutine after a post is created; failures only get logged.
func notifyNewPost(post models.Post) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	subs, err := store.ListSubscriptions(ctx)
	if err != nil {
		log.Printf("notifyNewPost list error: %v", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(map[string]string{
		"title": "New wedding update",
		"body":  post.Author + " shared an update",
	})
	if err != nil {
		log.Printf("notifyNewPost payload error: %v", err)
		return
	}

	options := &webpush.Options{
		Subscriber:      os.Getenv("ADMIN_EMAIL"),
		VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
		TTL:             3600,
	}

	for _, sub := range subs {
		resp, err := webpush.SendNotification(payload, &sub.Sub, options)
		if err != nil {
			log.Printf("Push to %s failed: %v", sub.Sub.Endpoint, err)
			continue
		}
		// Gone endpoints are stale browser registrations
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			if err := store.DeleteSubscription(ctx, sub.Sub.Endpoint); err != nil {
				log.Printf("Failed to remove stale subscription: %v", err)
			}
		}
		resp.Body.Close()
	}
}
