package routes

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"cipherstudio/services"
)

// B2Config holds the object storage configuration.
type B2Config struct {
	KeyID          string
	ApplicationKey string
	BucketName     string
}

// GoogleConfig holds the Google OAuth2 configuration.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// ServiceContainer holds all services and dependencies.
type ServiceContainer struct {
	DB             *mongo.Database
	JWTSecret      string
	Guard          *services.TreeGuard
	FileService    *services.FileService
	ProjectService *services.ProjectService
	StorageService *services.StorageService
	AuthService    *services.AuthService
}

// NewServiceContainer initializes every service with its dependencies.
func NewServiceContainer(db *mongo.Database, jwtSecret string, b2Config B2Config, googleConfig GoogleConfig) (*ServiceContainer, error) {
	guard := services.NewTreeGuard(db)

	storageService, err := services.NewStorageService(b2Config.KeyID, b2Config.ApplicationKey, b2Config.BucketName, db, guard)
	if err != nil {
		return nil, err
	}

	return &ServiceContainer{
		DB:             db,
		JWTSecret:      jwtSecret,
		Guard:          guard,
		FileService:    services.NewFileService(db, guard),
		ProjectService: services.NewProjectService(db, guard),
		StorageService: storageService,
		AuthService: services.NewAuthService(db, jwtSecret,
			googleConfig.ClientID, googleConfig.ClientSecret, googleConfig.RedirectURL),
	}, nil
}

// SetupRoutes registers all API route groups.
func SetupRoutes(api *gin.RouterGroup, container *ServiceContainer) {
	RegisterAuthRoutes(api, container)
	RegisterProjectRoutes(api, container)
	RegisterFileRoutes(api, container)
	RegisterPreviewRoutes(api, container)
	RegisterAssetRoutes(api, container)
}
