package services

import (
	"strings"

	"cipherstudio/models"
)

// BuildTree turns a flat FileNode set into the nested structure the explorer
// renders. Two passes: first a fileId lookup with empty children lists, then
// each non-root node is appended to its parent. Nodes whose parentId does not
// resolve within the set are dropped from the nested view; the flat set stays
// authoritative, the nested view is only a rendering convenience.
func BuildTree(nodes []models.FileNode) map[string]*models.TreeNode {
	lookup := make(map[string]*models.TreeNode, len(nodes))
	for _, node := range nodes {
		lookup[node.FileID] = &models.TreeNode{
			FileNode: node,
			Children: []*models.TreeNode{},
		}
	}

	roots := make(map[string]*models.TreeNode)
	for _, node := range nodes {
		if node.ParentID == nil {
			roots[node.FileID] = lookup[node.FileID]
			continue
		}
		if parent, ok := lookup[*node.ParentID]; ok {
			parent.Children = append(parent.Children, lookup[node.FileID])
		}
	}

	return roots
}

// ResolvePath computes a node's root-relative path by walking parent links and
// joining ancestor names with "/". The project root folder is excluded from the
// emitted path. A broken parent link stops the walk and returns the fragments
// accumulated so far, so a transiently inconsistent tree still yields a usable
// path. Pure function of (fileID, nodes).
func ResolvePath(fileID string, nodes []models.FileNode) string {
	lookup := make(map[string]*models.FileNode, len(nodes))
	for i := range nodes {
		lookup[nodes[i].FileID] = &nodes[i]
	}

	node, ok := lookup[fileID]
	if !ok {
		return ""
	}

	parts := []string{node.Name}
	current := node
	for current.ParentID != nil {
		parent, ok := lookup[*current.ParentID]
		if !ok {
			break
		}
		// The root folder itself never appears in paths.
		if parent.ParentID == nil {
			break
		}
		parts = append([]string{parent.Name}, parts...)
		current = parent
	}

	return strings.Join(parts, "/")
}

// CollectDescendants returns the fileIDs of every transitive descendant of
// rootID within the given node set, using an explicit worklist rather than
// recursion so arbitrarily deep trees cannot exhaust the call stack. The
// result does not include rootID itself.
func CollectDescendants(rootID string, nodes []models.FileNode) []string {
	children := make(map[string][]string, len(nodes))
	for _, node := range nodes {
		if node.ParentID != nil {
			children[*node.ParentID] = append(children[*node.ParentID], node.FileID)
		}
	}

	var descendants []string
	stack := []string{rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, childID := range children[id] {
			descendants = append(descendants, childID)
			stack = append(stack, childID)
		}
	}

	return descendants
}
