package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Template kinds a project can be scaffolded from.
const (
	TemplateReact   = "react"
	TemplateVanilla = "vanilla"
)

type Project struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ProjectID    string             `bson:"project_id" json:"projectId"` // opaque, globally unique, immutable
	UserID       primitive.ObjectID `bson:"user_id" json:"userId"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description" json:"description"`
	IsPublic     bool               `bson:"is_public" json:"isPublic"`
	Template     string             `bson:"template" json:"template"` // "react" or "vanilla"
	LastModified time.Time          `bson:"last_modified" json:"lastModified"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

func ValidTemplate(template string) bool {
	return template == TemplateReact || template == TemplateVanilla
}
