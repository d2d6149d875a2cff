package services

import (
	"encoding/json"

	"cipherstudio/models"
)

// VFSEntry is one file handed to the preview sandbox.
type VFSEntry struct {
	Code   string `json:"code"`
	Hidden bool   `json:"hidden"`
}

// ManifestPath is the synthetic package descriptor entry every VFS snapshot
// carries. It has no backing FileNode.
const ManifestPath = "/package.json"

type previewManifest struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Private      bool              `json:"private"`
	Main         string            `json:"main"`
	Dependencies map[string]string `json:"dependencies"`
}

// BuildVFS projects a flat FileNode snapshot into the path-keyed map that
// drives the live preview. Every file node is emitted at "/" + its resolved
// path; the persisted content is used unless the path matches livePath, in
// which case liveContent (the unsaved editor buffer) wins. Folders produce no
// entries. Output is fully determined by the arguments.
func BuildVFS(nodes []models.FileNode, livePath, liveContent string) map[string]VFSEntry {
	vfs := map[string]VFSEntry{
		ManifestPath: {Code: renderManifest(), Hidden: true},
	}

	for _, node := range nodes {
		if node.Type != models.NodeTypeFile {
			continue
		}
		path := "/" + ResolvePath(node.FileID, nodes)

		code := node.Content
		if livePath != "" && path == livePath {
			code = liveContent
		}

		vfs[path] = VFSEntry{Code: code, Hidden: false}
	}

	return vfs
}

func renderManifest() string {
	manifest := previewManifest{
		Name:    "cipherstudio-react",
		Version: "1.0.0",
		Private: true,
		Main:    "/src/index.js",
		Dependencies: map[string]string{
			"react":     "18.3.1",
			"react-dom": "18.3.1",
		},
	}

	// Map keys marshal in sorted order, so the output is stable.
	data, _ := json.MarshalIndent(manifest, "", "  ")
	return string(data)
}
