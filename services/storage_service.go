package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/kurin/blazer/b2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/google/uuid"
)

// StorageService handles the object-storage side of the workspace: large or
// binary assets live in a B2 bucket behind an opaque storage key recorded on
// the owning FileNode. The tree core never inspects the stored bytes.
type StorageService struct {
	client         *b2.Client
	bucketName     string
	bucket         *b2.Bucket
	fileCollection *mongo.Collection
	guard          *TreeGuard
}

// AssetUploadResult reports a completed asset upload.
type AssetUploadResult struct {
	StorageKey string `json:"storageKey"`
	FileName   string `json:"fileName"`
	Size       int64  `json:"size"`
	SHA1       string `json:"sha1"`
}

func NewStorageService(keyID, applicationKey, bucketName string, db *mongo.Database, guard *TreeGuard) (*StorageService, error) {
	ctx := context.Background()

	client, err := b2.NewClient(ctx, keyID, applicationKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create B2 client: %w", err)
	}

	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %w", bucketName, err)
	}

	return &StorageService{
		client:         client,
		bucketName:     bucketName,
		bucket:         bucket,
		fileCollection: db.Collection("files"),
		guard:          guard,
	}, nil
}

// UploadAsset streams an uploaded asset into the bucket under a
// project-scoped key and returns the key plus a content hash.
func (s *StorageService) UploadAsset(ctx context.Context, projectID, filename string, file multipart.File) (*AssetUploadResult, error) {
	storageKey := fmt.Sprintf("projects/%s/assets/%s-%s", projectID, uuid.NewString(), filename)

	obj := s.bucket.Object(storageKey)
	writer := obj.NewWriter(ctx)

	hasher := sha1.New()
	size, err := io.Copy(io.MultiWriter(writer, hasher), file)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to upload asset to B2: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close B2 writer: %w", err)
	}

	return &AssetUploadResult{
		StorageKey: storageKey,
		FileName:   filename,
		Size:       size,
		SHA1:       hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// GetSignedURL generates a time-limited download URL for a stored asset.
func (s *StorageService) GetSignedURL(ctx context.Context, storageKey string, duration time.Duration) (string, error) {
	obj := s.bucket.Object(storageKey)

	urlObj, err := obj.AuthURL(ctx, duration, "GET")
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return urlObj.String(), nil
}

// DeleteAsset removes a stored asset.
func (s *StorageService) DeleteAsset(ctx context.Context, storageKey string) error {
	obj := s.bucket.Object(storageKey)
	if err := obj.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete asset from B2: %w", err)
	}
	return nil
}

// AssetExists reports whether an object exists behind the given key.
func (s *StorageService) AssetExists(ctx context.Context, storageKey string) (bool, error) {
	obj := s.bucket.Object(storageKey)
	if _, err := obj.Attrs(ctx); err != nil {
		if b2.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check asset: %w", err)
	}
	return true, nil
}

// AttachAssetToNode records a storage key on a file node after an ownership
// check, so the tree carries the pointer without ever holding the bytes.
func (s *StorageService) AttachAssetToNode(ctx context.Context, userID primitive.ObjectID, fileID, storageKey string) error {
	var node struct {
		ProjectID string `bson:"project_id"`
		Type      string `bson:"type"`
	}
	err := s.fileCollection.FindOne(ctx, bson.M{"file_id": fileID}).Decode(&node)
	if err == mongo.ErrNoDocuments {
		return fmt.Errorf("node %s: %w", fileID, ErrNotFound)
	} else if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	if _, err := s.guard.CheckOwnership(ctx, node.ProjectID, userID); err != nil {
		return err
	}

	_, err = s.fileCollection.UpdateOne(ctx,
		bson.M{"file_id": fileID},
		bson.M{"$set": bson.M{"storage_key": storageKey, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to attach asset: %w", err)
	}
	return nil
}
