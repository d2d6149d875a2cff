package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cipherstudio/models"
)

// FileService is the tree mutation service: create, rename, move, content
// update and cascading delete over a project's FileNode set, with the
// TreeGuard checks run before any write.
type FileService struct {
	fileCollection    *mongo.Collection
	projectCollection *mongo.Collection
	guard             *TreeGuard

	// Serializes the check-name-then-write sequence per (projectId, parentId).
	// The unique index created below backstops the races this cannot see,
	// e.g. multiple server instances.
	siblingLocks map[string]*sync.Mutex
	lockMu       sync.Mutex
}

// CreateNodeRequest carries the arguments for CreateNode.
type CreateNodeRequest struct {
	ProjectID string
	ParentID  *string
	Name      string
	Type      string
	Content   string
	Language  string
}

func NewFileService(db *mongo.Database, guard *TreeGuard) *FileService {
	service := &FileService{
		fileCollection:    db.Collection("files"),
		projectCollection: db.Collection("projects"),
		guard:             guard,
		siblingLocks:      make(map[string]*sync.Mutex),
	}

	service.createIndexes()
	return service
}

func (s *FileService) createIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fileIDIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "file_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	projectIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "project_id", Value: 1}},
	}
	// Backstop for the check-then-write race: two racing creates on the same
	// (project, parent, name) tuple surface as a duplicate-key error instead
	// of silent duplicate siblings.
	siblingNameIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "project_id", Value: 1},
			{Key: "parent_id", Value: 1},
			{Key: "name", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}

	_, err := s.fileCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{fileIDIndex, projectIndex, siblingNameIndex})
	if err != nil {
		// Indexes might already exist; log and continue.
		log.Printf("Warning: failed to create file indexes: %v", err)
	}
}

func (s *FileService) siblingLock(projectID string, parentID *string) *sync.Mutex {
	key := projectID + "/"
	if parentID != nil {
		key += *parentID
	}

	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	mu, ok := s.siblingLocks[key]
	if !ok {
		mu = &sync.Mutex{}
		s.siblingLocks[key] = mu
	}
	return mu
}

// CreateNode creates a file or folder under parentID. Folders are stored with
// empty content regardless of the content argument.
func (s *FileService) CreateNode(ctx context.Context, userID primitive.ObjectID, req CreateNodeRequest) (*models.FileNode, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("node name cannot be empty: %w", ErrInvalidName)
	}
	if err := s.guard.CheckType(req.Type); err != nil {
		return nil, err
	}
	if _, err := s.guard.CheckOwnership(ctx, req.ProjectID, userID); err != nil {
		return nil, err
	}

	// The lock covers the parent/root check as well as the name check; two
	// concurrent nil-parent creates cannot both observe a rootless project.
	mu := s.siblingLock(req.ProjectID, req.ParentID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.guard.CheckParentValid(ctx, req.ProjectID, req.ParentID); err != nil {
		return nil, err
	}
	if err := s.guard.CheckNameAvailable(ctx, req.ProjectID, req.ParentID, req.Name, ""); err != nil {
		return nil, err
	}

	now := time.Now()
	node := models.FileNode{
		FileID:    uuid.NewString(),
		ProjectID: req.ProjectID,
		ParentID:  req.ParentID,
		Name:      req.Name,
		Type:      req.Type,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Type == models.NodeTypeFile {
		node.Content = req.Content
		node.Language = req.Language
		if node.Language == "" {
			node.Language = "javascript"
		}
	}

	if _, err := s.fileCollection.InsertOne(ctx, node); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("name %q already exists in this folder: %w", req.Name, ErrDuplicateName)
		}
		return nil, fmt.Errorf("failed to create node: %w", err)
	}

	s.touchProject(ctx, req.ProjectID)
	return &node, nil
}

// GetNode fetches a single node after an ownership check against its project.
func (s *FileService) GetNode(ctx context.Context, userID primitive.ObjectID, fileID string) (*models.FileNode, error) {
	return s.loadOwnedNode(ctx, userID, fileID)
}

// GetProjectFiles returns the authoritative flat node set for a project.
func (s *FileService) GetProjectFiles(ctx context.Context, userID primitive.ObjectID, projectID string) ([]models.FileNode, error) {
	if _, err := s.guard.CheckOwnership(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.fetchProjectNodes(ctx, projectID)
}

// GetTree returns the nested tree view for a project. Rebuilt on every call,
// never cached.
func (s *FileService) GetTree(ctx context.Context, userID primitive.ObjectID, projectID string) (map[string]*models.TreeNode, error) {
	nodes, err := s.GetProjectFiles(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	return BuildTree(nodes), nil
}

// ListChildren returns the direct children of parentID (nil for the root
// level), sorted by name.
func (s *FileService) ListChildren(ctx context.Context, userID primitive.ObjectID, projectID string, parentID *string) ([]models.FileNode, error) {
	if _, err := s.guard.CheckOwnership(ctx, projectID, userID); err != nil {
		return nil, err
	}

	cursor, err := s.fileCollection.Find(ctx, bson.M{
		"project_id": projectID,
		"parent_id":  parentID,
	}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	defer cursor.Close(ctx)

	var children []models.FileNode
	if err = cursor.All(ctx, &children); err != nil {
		return nil, fmt.Errorf("failed to decode children: %w", err)
	}
	return children, nil
}

// RenameNode renames a node. Renaming to the current name is a no-op that
// succeeds and returns the unchanged node.
func (s *FileService) RenameNode(ctx context.Context, userID primitive.ObjectID, fileID, newName string) (*models.FileNode, error) {
	if newName == "" {
		return nil, fmt.Errorf("node name cannot be empty: %w", ErrInvalidName)
	}

	node, err := s.loadOwnedNode(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	if node.Name == newName {
		return node, nil
	}

	mu := s.siblingLock(node.ProjectID, node.ParentID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.guard.CheckNameAvailable(ctx, node.ProjectID, node.ParentID, newName, fileID); err != nil {
		return nil, err
	}

	now := time.Now()
	_, err = s.fileCollection.UpdateOne(ctx,
		bson.M{"file_id": fileID},
		bson.M{"$set": bson.M{"name": newName, "updated_at": now}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("name %q already exists in this folder: %w", newName, ErrDuplicateName)
		}
		return nil, fmt.Errorf("failed to rename node: %w", err)
	}

	s.touchProject(ctx, node.ProjectID)
	node.Name = newName
	node.UpdatedAt = now
	return node, nil
}

// UpdateContent replaces a file node's content. Content writes against
// folders are accepted but ignored, so folder content stays empty.
func (s *FileService) UpdateContent(ctx context.Context, userID primitive.ObjectID, fileID, content string) (*models.FileNode, error) {
	node, err := s.loadOwnedNode(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	if node.IsFolder() {
		return node, nil
	}

	now := time.Now()
	_, err = s.fileCollection.UpdateOne(ctx,
		bson.M{"file_id": fileID},
		bson.M{"$set": bson.M{"content": content, "updated_at": now}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update content: %w", err)
	}

	s.touchProject(ctx, node.ProjectID)
	node.Content = content
	node.UpdatedAt = now
	return node, nil
}

// MoveNode reparents a node. The root folder cannot be moved, the target must
// be a folder in the same project, a folder cannot be moved into its own
// subtree, and the node's name must be free under the new parent.
func (s *FileService) MoveNode(ctx context.Context, userID primitive.ObjectID, fileID string, newParentID string) (*models.FileNode, error) {
	node, err := s.loadOwnedNode(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	if node.IsRoot() {
		return nil, fmt.Errorf("root folder cannot be moved: %w", ErrInvalidParent)
	}
	if *node.ParentID == newParentID {
		return node, nil
	}
	if newParentID == fileID {
		return nil, fmt.Errorf("node cannot be its own parent: %w", ErrInvalidParent)
	}

	if err := s.guard.CheckParentValid(ctx, node.ProjectID, &newParentID); err != nil {
		return nil, err
	}

	// A folder must not end up inside its own subtree.
	if node.IsFolder() {
		nodes, err := s.fetchProjectNodes(ctx, node.ProjectID)
		if err != nil {
			return nil, err
		}
		for _, id := range CollectDescendants(fileID, nodes) {
			if id == newParentID {
				return nil, fmt.Errorf("cannot move folder into its own subtree: %w", ErrInvalidParent)
			}
		}
	}

	mu := s.siblingLock(node.ProjectID, &newParentID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.guard.CheckNameAvailable(ctx, node.ProjectID, &newParentID, node.Name, fileID); err != nil {
		return nil, err
	}

	now := time.Now()
	_, err = s.fileCollection.UpdateOne(ctx,
		bson.M{"file_id": fileID},
		bson.M{"$set": bson.M{"parent_id": newParentID, "updated_at": now}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("name %q already exists in the target folder: %w", node.Name, ErrDuplicateName)
		}
		return nil, fmt.Errorf("failed to move node: %w", err)
	}

	s.touchProject(ctx, node.ProjectID)
	node.ParentID = &newParentID
	node.UpdatedAt = now
	return node, nil
}

// DeleteNode removes a node. Deleting a folder removes every transitive
// descendant; the descendant set is computed with an explicit worklist before
// any write, then everything is removed in a single DeleteMany.
func (s *FileService) DeleteNode(ctx context.Context, userID primitive.ObjectID, fileID string) error {
	node, err := s.loadOwnedNode(ctx, userID, fileID)
	if err != nil {
		return err
	}

	ids := []string{fileID}
	if node.IsFolder() {
		nodes, err := s.fetchProjectNodes(ctx, node.ProjectID)
		if err != nil {
			return err
		}
		ids = append(ids, CollectDescendants(fileID, nodes)...)
	}

	result, err := s.fileCollection.DeleteMany(ctx, bson.M{
		"project_id": node.ProjectID,
		"file_id":    bson.M{"$in": ids},
	})
	if err != nil {
		return fmt.Errorf("removing %d nodes: %w: %v", len(ids), ErrCascadeFailure, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("node %s: %w", fileID, ErrNotFound)
	}

	s.touchProject(ctx, node.ProjectID)
	return nil
}

// BuildProjectVFS assembles the preview virtual file system for a project,
// overlaying the unsaved editor buffer when livePath matches a file's path.
func (s *FileService) BuildProjectVFS(ctx context.Context, userID primitive.ObjectID, projectID, livePath, liveContent string) (map[string]VFSEntry, error) {
	nodes, err := s.GetProjectFiles(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	return BuildVFS(nodes, livePath, liveContent), nil
}

// loadOwnedNode fetches a node and verifies the requester owns its project.
func (s *FileService) loadOwnedNode(ctx context.Context, userID primitive.ObjectID, fileID string) (*models.FileNode, error) {
	var node models.FileNode
	err := s.fileCollection.FindOne(ctx, bson.M{"file_id": fileID}).Decode(&node)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("node %s: %w", fileID, ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if _, err := s.guard.CheckOwnership(ctx, node.ProjectID, userID); err != nil {
		return nil, err
	}
	return &node, nil
}

func (s *FileService) fetchProjectNodes(ctx context.Context, projectID string) ([]models.FileNode, error) {
	cursor, err := s.fileCollection.Find(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project nodes: %w", err)
	}
	defer cursor.Close(ctx)

	var nodes []models.FileNode
	if err = cursor.All(ctx, &nodes); err != nil {
		return nil, fmt.Errorf("failed to decode project nodes: %w", err)
	}
	return nodes, nil
}

// touchProject bumps the owning project's lastModified stamp after a
// successful tree mutation.
func (s *FileService) touchProject(ctx context.Context, projectID string) {
	_, err := s.projectCollection.UpdateOne(ctx,
		bson.M{"project_id": projectID},
		bson.M{"$set": bson.M{"last_modified": time.Now()}},
	)
	if err != nil {
		log.Printf("Warning: failed to bump lastModified for project %s: %v", projectID, err)
	}
}
