package services

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cipherstudio/models"
)

func strPtr(s string) *string { return &s }

// demoProject builds the flat node set of a freshly scaffolded react project:
//
//	Demo/ (root)
//	├── src/
//	│   ├── App.js
//	│   └── index.js
//	├── public/
//	│   └── index.html
//	└── package.json
func demoProject() []models.FileNode {
	return []models.FileNode{
		{FileID: "root", ProjectID: "p1", ParentID: nil, Name: "Demo", Type: models.NodeTypeFolder},
		{FileID: "src", ProjectID: "p1", ParentID: strPtr("root"), Name: "src", Type: models.NodeTypeFolder},
		{FileID: "public", ProjectID: "p1", ParentID: strPtr("root"), Name: "public", Type: models.NodeTypeFolder},
		{FileID: "pkg", ProjectID: "p1", ParentID: strPtr("root"), Name: "package.json", Type: models.NodeTypeFile, Content: "{}"},
		{FileID: "app", ProjectID: "p1", ParentID: strPtr("src"), Name: "App.js", Type: models.NodeTypeFile, Content: "app code"},
		{FileID: "index", ProjectID: "p1", ParentID: strPtr("src"), Name: "index.js", Type: models.NodeTypeFile, Content: "index code"},
		{FileID: "html", ProjectID: "p1", ParentID: strPtr("public"), Name: "index.html", Type: models.NodeTypeFile, Content: "<html>"},
	}
}

func TestBuildTree(t *testing.T) {
	tree := BuildTree(demoProject())

	require.Len(t, tree, 1, "exactly one root")
	root := tree["root"]
	require.NotNil(t, root)
	assert.Equal(t, "Demo", root.Name)
	assert.Len(t, root.Children, 3)

	var src *models.TreeNode
	for _, child := range root.Children {
		if child.FileID == "src" {
			src = child
		}
	}
	require.NotNil(t, src)
	assert.Len(t, src.Children, 2)
}

func TestBuildTreeDropsOrphans(t *testing.T) {
	nodes := append(demoProject(), models.FileNode{
		FileID: "orphan", ProjectID: "p1", ParentID: strPtr("missing"), Name: "lost.js", Type: models.NodeTypeFile,
	})

	tree := BuildTree(nodes)

	require.Len(t, tree, 1)
	var walk func(n *models.TreeNode) bool
	walk = func(n *models.TreeNode) bool {
		if n.FileID == "orphan" {
			return true
		}
		for _, child := range n.Children {
			if walk(child) {
				return true
			}
		}
		return false
	}
	assert.False(t, walk(tree["root"]), "orphan must not be reachable from the root")
}

func TestBuildTreeEmpty(t *testing.T) {
	tree := BuildTree(nil)
	assert.Empty(t, tree)
}

func TestResolvePath(t *testing.T) {
	nodes := demoProject()

	tests := []struct {
		name   string
		fileID string
		want   string
	}{
		{"file at root level excludes root folder", "pkg", "package.json"},
		{"nested file", "app", "src/App.js"},
		{"nested html", "html", "public/index.html"},
		{"folder path", "src", "src"},
		{"root folder is just its own name", "root", "Demo"},
		{"unknown node", "nope", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePath(tt.fileID, nodes))
		})
	}
}

func TestResolvePathDeterministic(t *testing.T) {
	nodes := demoProject()
	first := ResolvePath("app", nodes)
	second := ResolvePath("app", nodes)
	assert.Equal(t, first, second)
}

func TestResolvePathBrokenLink(t *testing.T) {
	nodes := []models.FileNode{
		{FileID: "a", ParentID: strPtr("gone"), Name: "deep", Type: models.NodeTypeFolder},
		{FileID: "b", ParentID: strPtr("a"), Name: "leaf.js", Type: models.NodeTypeFile},
	}

	// The walk stops at the unresolvable parent and returns the fragments
	// collected so far instead of failing.
	assert.Equal(t, "deep/leaf.js", ResolvePath("b", nodes))
}

func TestCollectDescendants(t *testing.T) {
	nodes := demoProject()

	got := CollectDescendants("root", nodes)
	assert.ElementsMatch(t, []string{"src", "public", "pkg", "app", "index", "html"}, got)

	got = CollectDescendants("src", nodes)
	assert.ElementsMatch(t, []string{"app", "index"}, got)

	assert.Empty(t, CollectDescendants("pkg", nodes))
	assert.Empty(t, CollectDescendants("unknown", nodes))
}

func TestCollectDescendantsDeepChain(t *testing.T) {
	// A pathological 10k-deep chain must not blow the stack.
	const depth = 10000
	nodes := make([]models.FileNode, 0, depth)
	parent := ""
	for i := 0; i < depth; i++ {
		node := models.FileNode{FileID: "n" + strconv.Itoa(i), Name: "d", Type: models.NodeTypeFolder}
		if parent != "" {
			p := parent
			node.ParentID = &p
		}
		nodes = append(nodes, node)
		parent = node.FileID
	}

	got := CollectDescendants("n0", nodes)
	assert.Len(t, got, depth-1)
}
