// Command devtoken mints bearer tokens for local testing against the API.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/noah-isme/aicte-approval-api/internal/models"
	"github.com/noah-isme/aicte-approval-api/internal/service"
	"github.com/noah-isme/aicte-approval-api/pkg/config"
)

func main() {
	var (
		userID        string
		role          string
		institutionID string
		email         string
		ttl           time.Duration
	)

	flag.StringVar(&userID, "user", "admin-1", "Subject user ID")
	flag.StringVar(&role, "role", string(models.RoleAdmin), "ADMIN, INSTITUTION or EVALUATOR")
	flag.StringVar(&institutionID, "institution", "", "Institution ID, required for INSTITUTION tokens")
	flag.StringVar(&email, "email", "", "Email claim")
	flag.DurationVar(&ttl, "ttl", 0, "Token lifetime, defaults to JWT_EXPIRATION")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if ttl <= 0 {
		ttl = cfg.JWT.Expiration
	}

	user := models.User{ID: userID, Email: email, Role: models.UserRole(strings.ToUpper(role))}
	if user.Role == models.RoleInstitution {
		if institutionID == "" {
			log.Fatal("-institution is required for INSTITUTION tokens")
		}
		user.InstitutionID = &institutionID
	}

	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer, Expiry: ttl})
	token, expiresAt, err := tokens.IssueToken(user)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}
	fmt.Println(token)
	log.Printf("expires at %s", expiresAt.Format(time.RFC3339))
}
