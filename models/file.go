package models

import (
	"time"
)

// FileNode types.
const (
	NodeTypeFile   = "file"
	NodeTypeFolder = "folder"
)

// FileNode is a single file or folder record scoped to a project. Nodes form a
// tree per project via ParentID; the root folder is the one node with a nil
// ParentID and is created once, at project scaffolding time.
type FileNode struct {
	FileID     string    `bson:"file_id" json:"fileId"`
	ProjectID  string    `bson:"project_id" json:"projectId"`
	ParentID   *string   `bson:"parent_id" json:"parentId"` // nil = tree root
	Name       string    `bson:"name" json:"name"`
	Type       string    `bson:"type" json:"type"` // "file" or "folder"
	Content    string    `bson:"content" json:"content"`
	StorageKey string    `bson:"storage_key,omitempty" json:"storageKey,omitempty"` // object storage key for binary assets
	Language   string    `bson:"language" json:"language"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updatedAt"`
}

func (n *FileNode) IsFolder() bool {
	return n.Type == NodeTypeFolder
}

func (n *FileNode) IsRoot() bool {
	return n.ParentID == nil
}

func ValidNodeType(nodeType string) bool {
	return nodeType == NodeTypeFile || nodeType == NodeTypeFolder
}

// TreeNode is a FileNode with resolved children, built on demand from the flat
// record set for explorer rendering. Never persisted.
type TreeNode struct {
	FileNode
	Children []*TreeNode `json:"children"`
}
