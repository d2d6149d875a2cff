package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cipherstudio/models"
)

// ScaffoldTemplate generates the seed FileNode tree for a new project: the
// root folder (named after the project, parentId nil) plus the template's
// starter files. The react template seeds src/, public/, package.json,
// src/App.js, src/index.js and public/index.html; vanilla seeds only the
// root folder. The first node returned is always the root.
func ScaffoldTemplate(projectID, projectName, template string, now time.Time) []models.FileNode {
	rootID := uuid.NewString()
	nodes := []models.FileNode{
		folderNode(rootID, projectID, nil, projectName, now),
	}

	if template != models.TemplateReact {
		return nodes
	}

	srcID := uuid.NewString()
	publicID := uuid.NewString()
	nodes = append(nodes,
		folderNode(srcID, projectID, &rootID, "src", now),
		folderNode(publicID, projectID, &rootID, "public", now),
		fileNode(projectID, &rootID, "package.json", packageJSONContent(projectName), "json", now),
		fileNode(projectID, &srcID, "App.js", appJSContent(projectName), "javascript", now),
		fileNode(projectID, &srcID, "index.js", indexJSContent, "javascript", now),
		fileNode(projectID, &publicID, "index.html", indexHTMLContent(projectName), "html", now),
	)

	return nodes
}

func folderNode(fileID, projectID string, parentID *string, name string, now time.Time) models.FileNode {
	return models.FileNode{
		FileID:    fileID,
		ProjectID: projectID,
		ParentID:  parentID,
		Name:      name,
		Type:      models.NodeTypeFolder,
		Content:   "",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func fileNode(projectID string, parentID *string, name, content, language string, now time.Time) models.FileNode {
	return models.FileNode{
		FileID:    uuid.NewString(),
		ProjectID: projectID,
		ParentID:  parentID,
		Name:      name,
		Type:      models.NodeTypeFile,
		Content:   content,
		Language:  language,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func packageJSONContent(projectName string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(projectName), "-"))
	data, _ := json.MarshalIndent(map[string]interface{}{
		"name":    slug,
		"version": "1.0.0",
		"private": true,
		"dependencies": map[string]string{
			"react":     "^18.3.1",
			"react-dom": "^18.3.1",
		},
	}, "", "  ")
	return string(data)
}

func appJSContent(projectName string) string {
	return fmt.Sprintf(`export default function App() {
  return (
    <div style={{ padding: '20px', fontFamily: 'Arial, sans-serif' }}>
      <h1>Welcome to %s</h1>
      <p>Start editing to see your changes here!</p>
    </div>
  );
}`, projectName)
}

const indexJSContent = `import React from 'react';
import ReactDOM from 'react-dom/client';
import App from './App';

const root = ReactDOM.createRoot(document.getElementById('root'));
root.render(
  <React.StrictMode>
    <App />
  </React.StrictMode>
);`

func indexHTMLContent(projectName string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
</head>
<body>
    <div id="root"></div>
</body>
</html>`, projectName)
}
