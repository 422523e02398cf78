package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/doug-martin/goqu/v9"
	"github.com/golang-jwt/jwt/v4"
	"google.golang.org/api/option"

	"github.com/PressTune/initializers"
	"github.com/PressTune/models"
	"github.com/PressTune/utils"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenVerifier checks an access token issued by the hosted auth service and
// returns the identity it carries.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*models.AuthUser, error)
}

// JWTVerifier verifies HS256 access tokens signed with the auth service's JWT
// secret. The user id is the "sub" claim.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) VerifyToken(_ context.Context, tokenString string) (*models.AuthUser, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	// Tokens without an expiry are never accepted.
	if !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return &models.AuthUser{ID: sub, Email: email, Role: role}, nil
}

// FirebaseVerifier verifies Firebase ID tokens with the Admin SDK.
type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier uses the service account file when one is given and
// Application Default Credentials otherwise.
func NewFirebaseVerifier(ctx context.Context, serviceAccountPath string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if serviceAccountPath != "" {
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firebase auth client: %w", err)
	}

	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) VerifyToken(ctx context.Context, idToken string) (*models.AuthUser, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	email, _ := token.Claims["email"].(string)
	role, _ := token.Claims["role"].(string)

	return &models.AuthUser{ID: token.UID, Email: email, Role: role}, nil
}

var (
	tokenVerifier TokenVerifier
	profileCache  *utils.TTLCache[models.UserProfile]
)

// InitAuthService picks the token verifier named by AUTH_PROVIDER and sets up
// the profile cache.
func InitAuthService(cfg *initializers.Config) error {
	cache, err := utils.NewTTLCache[models.UserProfile](1000, cfg.ProfileCacheTTL)
	if err != nil {
		return fmt.Errorf("failed to create profile cache: %w", err)
	}
	profileCache = cache

	switch cfg.AuthProvider {
	case "firebase":
		verifier, err := NewFirebaseVerifier(context.Background(), cfg.FirebaseServiceAccountPath)
		if err != nil {
			return err
		}
		tokenVerifier = verifier
		log.Println("Auth service initialized with Firebase token verification")
	case "jwt", "":
		if cfg.AuthJWTSecret == "" {
			return fmt.Errorf("AUTH_JWT_SECRET must be set for the jwt auth provider")
		}
		tokenVerifier = NewJWTVerifier(cfg.AuthJWTSecret)
		log.Println("Auth service initialized with JWT token verification")
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", cfg.AuthProvider)
	}

	return nil
}

func GetTokenVerifier() TokenVerifier {
	return tokenVerifier
}

// SetTokenVerifier swaps the verifier and returns the previous one.
func SetTokenVerifier(v TokenVerifier) TokenVerifier {
	old := tokenVerifier
	tokenVerifier = v
	return old
}

// GetUserProfile loads the profile of userID, serving it from the cache while
// it is fresh. found is false when no profile row exists.
func GetUserProfile(userID string) (profile models.UserProfile, found bool, err error) {
	if profileCache != nil {
		if cached, ok := profileCache.Get(userID); ok {
			return cached, true, nil
		}
	}

	found, err = initializers.DB.From("profiles").
		Select("id", "email", "username", "full_name", "avatar_url", "role", "created_at", "updated_at").
		Where(goqu.C("id").Eq(userID)).
		ScanStruct(&profile)
	if err != nil || !found {
		return profile, found, err
	}

	if profile.Role == "" {
		profile.Role = models.RoleUser
	}
	if profileCache != nil {
		profileCache.Set(userID, profile)
	}
	return profile, true, nil
}

// InvalidateProfile drops userID from the profile cache.
func InvalidateProfile(userID string) {
	if profileCache != nil {
		profileCache.Delete(userID)
	}
}

// ResetProfileCache empties the profile cache, for tests.
func ResetProfileCache() {
	if profileCache != nil {
		profileCache.Purge()
	}
}
