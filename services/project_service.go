package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cipherstudio/models"
)

// ProjectService owns the project lifecycle: creation with template
// scaffolding, listing, metadata updates and full cascade destruction.
type ProjectService struct {
	projectCollection *mongo.Collection
	fileCollection    *mongo.Collection
	guard             *TreeGuard
}

// ProjectWithTree is the single-fetch payload the IDE loads on open: project
// metadata, the nested tree view and the authoritative flat node set.
type ProjectWithTree struct {
	Project  *models.Project             `json:"project"`
	FileTree map[string]*models.TreeNode `json:"fileTree"`
	Files    []models.FileNode           `json:"files"`
}

func NewProjectService(db *mongo.Database, guard *TreeGuard) *ProjectService {
	service := &ProjectService{
		projectCollection: db.Collection("projects"),
		fileCollection:    db.Collection("files"),
		guard:             guard,
	}

	service.createIndexes()
	return service
}

func (s *ProjectService) createIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	projectIDIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "project_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	userIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	}

	_, err := s.projectCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{projectIDIndex, userIndex})
	if err != nil {
		log.Printf("Warning: failed to create project indexes: %v", err)
	}
}

// CreateProject creates a project and seeds its FileNode tree from the
// template. Returns the project and the id of the seeded root folder.
func (s *ProjectService) CreateProject(ctx context.Context, userID primitive.ObjectID, name, description, template string) (*models.Project, string, error) {
	if name == "" {
		return nil, "", fmt.Errorf("project name is required: %w", ErrInvalidName)
	}
	if template == "" {
		template = models.TemplateReact
	}
	if !models.ValidTemplate(template) {
		return nil, "", fmt.Errorf("template %q: %w", template, ErrInvalidType)
	}

	now := time.Now()
	project := models.Project{
		ProjectID:    uuid.NewString(),
		UserID:       userID,
		Name:         name,
		Description:  description,
		Template:     template,
		LastModified: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.projectCollection.InsertOne(ctx, project); err != nil {
		return nil, "", fmt.Errorf("failed to create project: %w", err)
	}

	seed := ScaffoldTemplate(project.ProjectID, name, template, now)
	docs := make([]interface{}, len(seed))
	for i, node := range seed {
		docs[i] = node
	}
	if _, err := s.fileCollection.InsertMany(ctx, docs); err != nil {
		return nil, "", fmt.Errorf("failed to scaffold project files: %w", err)
	}

	return &project, seed[0].FileID, nil
}

// ListProjects returns the user's projects, most recently created first.
func (s *ProjectService) ListProjects(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	cursor, err := s.projectCollection.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.M{"created_at": -1}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err = cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}
	return projects, nil
}

// GetProject returns a project together with its nested tree and flat node
// set, the payload the IDE needs to open the workspace in one round trip.
func (s *ProjectService) GetProject(ctx context.Context, userID primitive.ObjectID, projectID string) (*ProjectWithTree, error) {
	project, err := s.guard.CheckOwnership(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	cursor, err := s.fileCollection.Find(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project files: %w", err)
	}
	defer cursor.Close(ctx)

	var nodes []models.FileNode
	if err = cursor.All(ctx, &nodes); err != nil {
		return nil, fmt.Errorf("failed to decode project files: %w", err)
	}

	return &ProjectWithTree{
		Project:  project,
		FileTree: BuildTree(nodes),
		Files:    nodes,
	}, nil
}

// UpdateProject changes a project's name and/or description and bumps
// lastModified. Empty name leaves the name untouched.
func (s *ProjectService) UpdateProject(ctx context.Context, userID primitive.ObjectID, projectID, name string, description *string) (*models.Project, error) {
	project, err := s.guard.CheckOwnership(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	set := bson.M{"last_modified": now, "updated_at": now}
	if name != "" {
		set["name"] = name
		project.Name = name
	}
	if description != nil {
		set["description"] = *description
		project.Description = *description
	}

	_, err = s.projectCollection.UpdateOne(ctx, bson.M{"project_id": projectID}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	project.LastModified = now
	project.UpdatedAt = now
	return project, nil
}

// DeleteProject destroys a project and every FileNode it contains.
func (s *ProjectService) DeleteProject(ctx context.Context, userID primitive.ObjectID, projectID string) error {
	if _, err := s.guard.CheckOwnership(ctx, projectID, userID); err != nil {
		return err
	}

	if _, err := s.fileCollection.DeleteMany(ctx, bson.M{"project_id": projectID}); err != nil {
		return fmt.Errorf("failed to delete project files: %w: %v", ErrCascadeFailure, err)
	}

	result, err := s.projectCollection.DeleteOne(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}

	return nil
}
