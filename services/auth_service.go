package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cipherstudio/models"
	"cipherstudio/utils"
)

var (
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailNotVerified = errors.New("email not verified")
	ErrInvalidState     = errors.New("invalid or expired OAuth state")
)

// AuthService is the authentication collaborator: it signs users in with
// Google and issues the JWTs the tree API trusts. The tree core itself only
// ever sees the resulting user id.
type AuthService struct {
	userCollection     *mongo.Collection
	jwtSecret          string
	googleClientID     string
	googleClientSecret string
	redirectURL        string
	stateManager       *StateManager
	httpClient         *http.Client
}

// StateManager tracks one-time OAuth state tokens.
type StateManager struct {
	states map[string]time.Time // state -> expiry
	mu     sync.Mutex
}

func NewStateManager() *StateManager {
	sm := &StateManager{states: make(map[string]time.Time)}
	go sm.startCleanupRoutine()
	return sm
}

func (sm *StateManager) Store(state string, duration time.Duration) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.states[state] = time.Now().Add(duration)
}

// Validate consumes a state token. One-time use: valid states are removed.
func (sm *StateManager) Validate(state string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	expiry, exists := sm.states[state]
	if !exists {
		return false
	}
	delete(sm.states, state)
	return time.Now().Before(expiry)
}

func (sm *StateManager) startCleanupRoutine() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		sm.mu.Lock()
		now := time.Now()
		for state, expiry := range sm.states {
			if now.After(expiry) {
				delete(sm.states, state)
			}
		}
		sm.mu.Unlock()
	}
}

type GoogleTokenInfo struct {
	ID            string       `json:"sub"`
	Email         string       `json:"email"`
	EmailVerified FlexibleBool `json:"email_verified"`
	Name          string       `json:"name"`
	Picture       string       `json:"picture"`
}

type GoogleTokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error,omitempty"`
}

// FlexibleBool tolerates Google returning email_verified as "true" or true.
type FlexibleBool bool

func (fb *FlexibleBool) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	*fb = str == "true"
	return nil
}

const oauthStateExpiration = 10 * time.Minute

func NewAuthService(db *mongo.Database, jwtSecret, googleClientID, googleClientSecret, redirectURL string) *AuthService {
	service := &AuthService{
		userCollection:     db.Collection("users"),
		jwtSecret:          jwtSecret,
		googleClientID:     googleClientID,
		googleClientSecret: googleClientSecret,
		redirectURL:        redirectURL,
		stateManager:       NewStateManager(),
		httpClient:         &http.Client{Timeout: 30 * time.Second},
	}

	service.createIndexes()
	return service
}

func (s *AuthService) createIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	emailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	googleIDIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "google_id", Value: 1}},
	}

	_, err := s.userCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{emailIndex, googleIDIndex})
	if err != nil {
		log.Printf("Warning: failed to create user indexes: %v", err)
	}
}

func (s *AuthService) GenerateState() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random state: %w", err)
	}

	state := base64.RawURLEncoding.EncodeToString(bytes)
	s.stateManager.Store(state, oauthStateExpiration)
	return state, nil
}

func (s *AuthService) ValidateState(state string) bool {
	return s.stateManager.Validate(state)
}

func (s *AuthService) GetGoogleAuthURL(state string) string {
	params := url.Values{
		"client_id":     {s.googleClientID},
		"redirect_uri":  {s.redirectURL},
		"scope":         {"openid email profile"},
		"response_type": {"code"},
		"state":         {state},
	}
	return "https://accounts.google.com/o/oauth2/auth?" + params.Encode()
}

func (s *AuthService) ExchangeCodeForTokens(code string) (*GoogleTokenResponse, error) {
	data := url.Values{
		"client_id":     {s.googleClientID},
		"client_secret": {s.googleClientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {s.redirectURL},
	}

	resp, err := s.httpClient.PostForm("https://oauth2.googleapis.com/token", data)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for tokens: %w", err)
	}
	defer resp.Body.Close()

	var tokenResponse GoogleTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResponse.Error != "" {
		return nil, fmt.Errorf("OAuth token exchange error: %s", tokenResponse.Error)
	}
	if tokenResponse.AccessToken == "" {
		return nil, errors.New("no access token received")
	}

	return &tokenResponse, nil
}

func (s *AuthService) ValidateGoogleIDToken(idToken string) (*GoogleTokenInfo, error) {
	if idToken == "" {
		return nil, errors.New("ID token is required")
	}

	resp, err := s.httpClient.Get("https://oauth2.googleapis.com/tokeninfo?id_token=" + url.QueryEscape(idToken))
	if err != nil {
		return nil, fmt.Errorf("failed to validate ID token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("invalid ID token: HTTP %d", resp.StatusCode)
	}

	var tokenInfo GoogleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&tokenInfo); err != nil {
		return nil, fmt.Errorf("failed to decode token info: %w", err)
	}
	if tokenInfo.Email == "" {
		return nil, errors.New("email missing in token")
	}
	if !bool(tokenInfo.EmailVerified) {
		return nil, ErrEmailNotVerified
	}

	return &tokenInfo, nil
}

// HandleGoogleCallback completes the server-side OAuth flow: code exchange,
// ID token validation, user upsert, JWT issue.
func (s *AuthService) HandleGoogleCallback(code string) (*models.User, string, error) {
	tokenResponse, err := s.ExchangeCodeForTokens(code)
	if err != nil {
		return nil, "", err
	}

	googleInfo, err := s.ValidateGoogleIDToken(tokenResponse.IDToken)
	if err != nil {
		return nil, "", err
	}

	user, err := s.createOrUpdateUser(googleInfo)
	if err != nil {
		return nil, "", err
	}

	jwtToken, err := utils.GenerateJWTToken(user, s.jwtSecret, 24)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate JWT: %w", err)
	}

	log.Printf("[AuthService] Signed in user: %s", user.Email)
	return user, jwtToken, nil
}

// LoginWithIDToken signs a user in from a client-obtained Google ID token.
func (s *AuthService) LoginWithIDToken(idToken string) (*models.User, string, error) {
	googleInfo, err := s.ValidateGoogleIDToken(idToken)
	if err != nil {
		return nil, "", err
	}

	user, err := s.createOrUpdateUser(googleInfo)
	if err != nil {
		return nil, "", err
	}

	jwtToken, err := utils.GenerateJWTToken(user, s.jwtSecret, 24)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate JWT: %w", err)
	}

	return user, jwtToken, nil
}

func (s *AuthService) createOrUpdateUser(googleInfo *GoogleTokenInfo) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := s.userCollection.FindOne(ctx, bson.M{"email": googleInfo.Email}).Decode(&user)

	if err == mongo.ErrNoDocuments {
		user = models.User{
			ID:         primitive.NewObjectID(),
			GoogleID:   googleInfo.ID,
			Email:      googleInfo.Email,
			Name:       googleInfo.Name,
			ProfilePic: googleInfo.Picture,
			Role:       "user",
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
		if _, err = s.userCollection.InsertOne(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return &user, nil
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	update := bson.M{
		"google_id":   googleInfo.ID,
		"name":        googleInfo.Name,
		"profile_pic": googleInfo.Picture,
		"updated_at":  time.Now(),
	}
	if _, err = s.userCollection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": update}); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if err = s.userCollection.FindOne(ctx, bson.M{"_id": user.ID}).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to fetch updated user: %w", err)
	}
	return &user, nil
}

func (s *AuthService) GetUserProfile(userID string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err = s.userCollection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}
