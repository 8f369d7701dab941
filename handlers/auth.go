package handlers

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"everafter/database"
	"everafter/middleware"
	"everafter/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin authenticates the site admin and issues the JWT the moderation
// endpoints require.
func AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admin, err := store.FindAdmin(ctx, req.Email)
	if err != nil {
		if err == database.ErrNotFound {
			respondError(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		log.Printf("AdminLogin lookup error: %v", err)
		respondError(c, http.StatusInternalServerError, "Database error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	claims := middleware.Claims{
		AdminID: admin.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		log.Printf("AdminLogin token error: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to create token")
		return
	}

	respondData(c, http.StatusOK, gin.H{"token": signed})
}

// SeedAdmin creates the admin account from ADMIN_EMAIL / ADMIN_PASSWORD if
// it does not exist yet. Called once at startup.
func SeedAdmin(ctx context.Context) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("ADMIN_EMAIL / ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	if _, err := store.FindAdmin(ctx, email); err == nil {
		return nil
	} else if err != database.ErrNotFound {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.Admin{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().Unix(),
	}

	if err := store.InsertAdmin(ctx, &admin); err != nil {
		return err
	}

	log.Printf("Seeded admin account %s", email)
	return nil
}
