package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"cipherstudio/models"
)

// TreeGuard holds the invariant checks every tree mutation runs before it
// touches storage: ownership, sibling name uniqueness, parent validity, node
// type validity and root uniqueness. Read-then-decide only, no writes.
type TreeGuard struct {
	fileCollection    *mongo.Collection
	projectCollection *mongo.Collection
}

func NewTreeGuard(db *mongo.Database) *TreeGuard {
	return &TreeGuard{
		fileCollection:    db.Collection("files"),
		projectCollection: db.Collection("projects"),
	}
}

// CheckOwnership loads the project and verifies the requester owns it.
// Returns the project on success so callers avoid a second fetch.
func (g *TreeGuard) CheckOwnership(ctx context.Context, projectID string, userID primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	err := g.projectCollection.FindOne(ctx, bson.M{"project_id": projectID}).Decode(&project)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if project.UserID != userID {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrUnauthorized)
	}

	return &project, nil
}

// CheckNameAvailable verifies no sibling under (projectID, parentID) already
// carries name. excludeFileID skips the node being renamed so a same-name
// rename is not a collision with itself.
func (g *TreeGuard) CheckNameAvailable(ctx context.Context, projectID string, parentID *string, name, excludeFileID string) error {
	filter := bson.M{
		"project_id": projectID,
		"parent_id":  parentID,
		"name":       name,
	}
	if excludeFileID != "" {
		filter["file_id"] = bson.M{"$ne": excludeFileID}
	}

	count, err := g.fileCollection.CountDocuments(ctx, filter)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("name %q already exists in this folder: %w", name, ErrDuplicateName)
	}

	return nil
}

// CheckParentValid verifies parentID references an existing folder in the same
// project. A nil parent is only valid while the project has no root yet; the
// scaffolding creates exactly one root and nothing else may add a second.
func (g *TreeGuard) CheckParentValid(ctx context.Context, projectID string, parentID *string) error {
	if parentID == nil {
		count, err := g.fileCollection.CountDocuments(ctx, bson.M{
			"project_id": projectID,
			"parent_id":  nil,
		})
		if err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("project already has a root folder: %w", ErrInvalidParent)
		}
		return nil
	}

	var parent models.FileNode
	err := g.fileCollection.FindOne(ctx, bson.M{
		"project_id": projectID,
		"file_id":    *parentID,
	}).Decode(&parent)
	if err == mongo.ErrNoDocuments {
		return fmt.Errorf("parent %s not found in project: %w", *parentID, ErrInvalidParent)
	} else if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	if !parent.IsFolder() {
		return fmt.Errorf("parent %s is not a folder: %w", *parentID, ErrInvalidParent)
	}

	return nil
}

// CheckType verifies the node type is exactly "file" or "folder".
func (g *TreeGuard) CheckType(nodeType string) error {
	if !models.ValidNodeType(nodeType) {
		return fmt.Errorf("type %q: %w", nodeType, ErrInvalidType)
	}
	return nil
}
