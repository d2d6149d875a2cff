package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cipherstudio/models"
)

// sourceOnlyProject is demoProject without the root package.json, so the
// synthetic manifest is not shadowed by a project file.
func sourceOnlyProject() []models.FileNode {
	var nodes []models.FileNode
	for _, node := range demoProject() {
		if node.Name == "package.json" {
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func TestBuildVFSManifest(t *testing.T) {
	vfs := BuildVFS(sourceOnlyProject(), "", "")

	manifest, ok := vfs[ManifestPath]
	require.True(t, ok, "manifest entry always present")
	assert.True(t, manifest.Hidden)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(manifest.Code), &parsed))
	assert.Equal(t, "/src/index.js", parsed["main"])
	assert.Equal(t, "cipherstudio-react", parsed["name"])

	deps, ok := parsed["dependencies"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "18.3.1", deps["react"])
	assert.Equal(t, "18.3.1", deps["react-dom"])
}

func TestBuildVFSProjectPackageJSONShadowsManifest(t *testing.T) {
	// A project file at the root named package.json lands on the manifest
	// path; the project's own content wins and the entry becomes visible.
	vfs := BuildVFS(demoProject(), "", "")

	entry, ok := vfs[ManifestPath]
	require.True(t, ok)
	assert.Equal(t, "{}", entry.Code)
	assert.False(t, entry.Hidden)
}

func TestBuildVFSEmitsFilesNotFolders(t *testing.T) {
	vfs := BuildVFS(demoProject(), "", "")

	// 4 file nodes, one of which shares the manifest path.
	assert.Len(t, vfs, 4)

	entry, ok := vfs["/src/App.js"]
	require.True(t, ok)
	assert.Equal(t, "app code", entry.Code)
	assert.False(t, entry.Hidden)

	_, ok = vfs["/src"]
	assert.False(t, ok, "folders must not appear")
}

func TestBuildVFSLiveBufferOverride(t *testing.T) {
	vfs := BuildVFS(demoProject(), "/src/App.js", "live content")

	assert.Equal(t, "live content", vfs["/src/App.js"].Code)
	// Other files keep their persisted content.
	assert.Equal(t, "index code", vfs["/src/index.js"].Code)
}

func TestBuildVFSLivePathWithoutMatch(t *testing.T) {
	vfs := BuildVFS(demoProject(), "/does/not/exist.js", "live content")

	assert.Equal(t, "app code", vfs["/src/App.js"].Code)
	_, ok := vfs["/does/not/exist.js"]
	assert.False(t, ok, "the live buffer never invents entries")
}

func TestBuildVFSDeterministic(t *testing.T) {
	nodes := demoProject()

	first := BuildVFS(nodes, "/src/App.js", "edit")
	second := BuildVFS(nodes, "/src/App.js", "edit")

	require.Equal(t, len(first), len(second))
	for path, entry := range first {
		assert.Equal(t, entry, second[path], "entry at %s", path)
	}
}

func TestBuildVFSEmptySnapshot(t *testing.T) {
	vfs := BuildVFS(nil, "", "")

	require.Len(t, vfs, 1)
	assert.True(t, vfs[ManifestPath].Hidden)
}
