package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"cipherstudio/models"
)

// newTestFileService builds the service against mtest's collections without
// running index creation, which would consume mock responses.
func newTestFileService(mt *mtest.T) (*FileService, primitive.ObjectID) {
	guard := &TreeGuard{
		fileCollection:    mt.Coll,
		projectCollection: mt.DB.Collection("projects"),
	}
	service := &FileService{
		fileCollection:    mt.Coll,
		projectCollection: mt.DB.Collection("projects"),
		guard:             guard,
		siblingLocks:      make(map[string]*sync.Mutex),
	}
	return service, primitive.NewObjectID()
}

func projectDoc(projectID string, ownerID primitive.ObjectID) bson.D {
	return bson.D{
		{Key: "project_id", Value: projectID},
		{Key: "user_id", Value: ownerID},
		{Key: "name", Value: "Demo"},
		{Key: "template", Value: "react"},
	}
}

func fileDoc(fileID, projectID string, parentID interface{}, name, nodeType string) bson.D {
	return bson.D{
		{Key: "file_id", Value: fileID},
		{Key: "project_id", Value: projectID},
		{Key: "parent_id", Value: parentID},
		{Key: "name", Value: name},
		{Key: "type", Value: nodeType},
		{Key: "content", Value: ""},
	}
}

func countDoc(n int32) bson.D {
	return bson.D{{Key: "n", Value: n}}
}

func TestCreateNodeEmptyName(t *testing.T) {
	service := &FileService{siblingLocks: make(map[string]*sync.Mutex)}

	_, err := service.CreateNode(context.Background(), primitive.NewObjectID(), CreateNodeRequest{
		ProjectID: "p1",
		Name:      "",
		Type:      models.NodeTypeFile,
	})
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestRenameNodeEmptyName(t *testing.T) {
	service := &FileService{siblingLocks: make(map[string]*sync.Mutex)}

	_, err := service.RenameNode(context.Background(), primitive.NewObjectID(), "f1", "")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestCreateNodeDuplicateSiblingName(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("sibling with same name rejected", func(mt *mtest.T) {
		service, ownerID := newTestFileService(mt)
		fileNS := mt.DB.Name() + "." + mt.Coll.Name()
		projNS := mt.DB.Name() + ".projects"

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, projNS, mtest.FirstBatch, projectDoc("p1", ownerID)),
			mtest.CreateCursorResponse(0, fileNS, mtest.FirstBatch, fileDoc("dir1", "p1", "root", "src", models.NodeTypeFolder)),
			mtest.CreateCursorResponse(0, fileNS, mtest.FirstBatch, countDoc(1)),
		)

		_, err := service.CreateNode(context.Background(), ownerID, CreateNodeRequest{
			ProjectID: "p1",
			ParentID:  strPtr("dir1"),
			Name:      "App.js",
			Type:      models.NodeTypeFile,
		})
		assert.ErrorIs(mt, err, ErrDuplicateName)
	})
}

func TestCreateNodeDuplicateKeyBackstop(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("lost insert race surfaces as duplicate name", func(mt *mtest.T) {
		service, ownerID := newTestFileService(mt)
		fileNS := mt.DB.Name() + "." + mt.Coll.Name()
		projNS := mt.DB.Name() + ".projects"

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, projNS, mtest.FirstBatch, projectDoc("p1", ownerID)),
			mtest.CreateCursorResponse(0, fileNS, mtest.FirstBatch, fileDoc("dir1", "p1", "root", "src", models.NodeTypeFolder)),
			mtest.CreateCursorResponse(0, fileNS, mtest.FirstBatch, countDoc(0)),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   0,
				Code:    11000,
				Message: "E11000 duplicate key error",
			}),
		)

		_, err := service.CreateNode(context.Background(), ownerID, CreateNodeRequest{
			ProjectID: "p1",
			ParentID:  strPtr("dir1"),
			Name:      "App.js",
			Type:      models.NodeTypeFile,
		})
		assert.ErrorIs(mt, err, ErrDuplicateName)
	})
}

func TestCreateNodeSecondRootRejected(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("nil parent rejected once a root exists", func(mt *mtest.T) {
		service, ownerID := newTestFileService(mt)
		fileNS := mt.DB.Name() + "." + mt.Coll.Name()
		projNS := mt.DB.Name() + ".projects"

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, projNS, mtest.FirstBatch, projectDoc("p1", ownerID)),
			mtest.CreateCursorResponse(0, fileNS, mtest.FirstBatch, countDoc(1)),
		)

		_, err := service.CreateNode(context.Background(), ownerID, CreateNodeRequest{
			ProjectID: "p1",
			ParentID:  nil,
			Name:      "AnotherRoot",
			Type:      models.NodeTypeFolder,
		})
		assert.ErrorIs(mt, err, ErrInvalidParent)
	})
}

func TestRenameNodeSameNameNoOp(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("rename to current name returns unchanged node", func(mt *mtest.T) {
		service, ownerID := newTestFileService(mt)
		fileNS := mt.DB.Name() + "." + mt.Coll.Name()
		projNS := mt.DB.Name() + ".projects"

		// Only the node fetch and the ownership check; a write would fail
		// with no mock response remaining.
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, fileNS, mtest.FirstBatch, fileDoc("f1", "p1", "dir1", "App.js", models.NodeTypeFile)),
			mtest.CreateCursorResponse(0, projNS, mtest.FirstBatch, projectDoc("p1", ownerID)),
		)

		node, err := service.RenameNode(context.Background(), ownerID, "f1", "App.js")
		require.NoError(mt, err)
		assert.Equal(mt, "App.js", node.Name)
	})
}

func TestRenameNodeDuplicateSiblingName(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("rename onto an existing sibling rejected", func(mt *mtest.T) {
		service, ownerID := newTestFileService(mt)
		fileNS := mt.DB.Name() + "." + mt.Coll.Name()
		projNS := mt.DB.Name() + ".projects"

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, fileNS, mtest.FirstBatch, fileDoc("f1", "p1", "dir1", "App.js", models.NodeTypeFile)),
			mtest.CreateCursorResponse(0, projNS, mtest.FirstBatch, projectDoc("p1", ownerID)),
			mtest.CreateCursorResponse(0, fileNS, mtest.FirstBatch, countDoc(1)),
		)

		_, err := service.RenameNode(context.Background(), ownerID, "f1", "index.js")
		assert.ErrorIs(mt, err, ErrDuplicateName)
	})
}

func TestUpdateContentFolderNoOp(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("content write against a folder is ignored", func(mt *mtest.T) {
		service, ownerID := newTestFileService(mt)
		fileNS := mt.DB.Name() + "." + mt.Coll.Name()
		projNS := mt.DB.Name() + ".projects"

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, fileNS, mtest.FirstBatch, fileDoc("dir1", "p1", "root", "src", models.NodeTypeFolder)),
			mtest.CreateCursorResponse(0, projNS, mtest.FirstBatch, projectDoc("p1", ownerID)),
		)

		node, err := service.UpdateContent(context.Background(), ownerID, "dir1", "stray bytes")
		require.NoError(mt, err)
		assert.True(mt, node.IsFolder())
		assert.Empty(mt, node.Content)
	})
}

func TestDeleteFolderCascades(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("folder delete removes every transitive descendant", func(mt *mtest.T) {
		service, ownerID := newTestFileService(mt)
		fileNS := mt.DB.Name() + "." + mt.Coll.Name()
		projNS := mt.DB.Name() + ".projects"

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, fileNS, mtest.FirstBatch, fileDoc("src", "p1", "root", "src", models.NodeTypeFolder)),
			mtest.CreateCursorResponse(0, projNS, mtest.FirstBatch, projectDoc("p1", ownerID)),
			mtest.CreateCursorResponse(0, fileNS, mtest.FirstBatch,
				fileDoc("root", "p1", nil, "Demo", models.NodeTypeFolder),
				fileDoc("src", "p1", "root", "src", models.NodeTypeFolder),
				fileDoc("app", "p1", "src", "App.js", models.NodeTypeFile),
				fileDoc("util", "p1", "src", "util", models.NodeTypeFolder),
				fileDoc("helper", "p1", "util", "helper.js", models.NodeTypeFile),
				fileDoc("readme", "p1", "root", "README.md", models.NodeTypeFile),
			),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 4}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		err := service.DeleteNode(context.Background(), ownerID, "src")
		require.NoError(mt, err)

		// The delete statement must target the folder plus its whole subtree
		// and nothing outside it.
		var deleteCmd struct {
			Deletes []struct {
				Q struct {
					ProjectID string `bson:"project_id"`
					FileID    struct {
						In []string `bson:"$in"`
					} `bson:"file_id"`
				} `bson:"q"`
			} `bson:"deletes"`
		}
		found := false
		for _, evt := range mt.GetAllStartedEvents() {
			if evt.CommandName != "delete" {
				continue
			}
			require.NoError(mt, bson.Unmarshal(evt.Command, &deleteCmd))
			found = true
		}
		require.True(mt, found, "no delete command issued")
		require.Len(mt, deleteCmd.Deletes, 1)
		assert.Equal(mt, "p1", deleteCmd.Deletes[0].Q.ProjectID)
		assert.ElementsMatch(mt, []string{"src", "app", "util", "helper"}, deleteCmd.Deletes[0].Q.FileID.In)
	})
}

func TestDeleteNodeCascadeFailure(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("failed removal maps to cascade failure", func(mt *mtest.T) {
		service, ownerID := newTestFileService(mt)
		fileNS := mt.DB.Name() + "." + mt.Coll.Name()
		projNS := mt.DB.Name() + ".projects"

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, fileNS, mtest.FirstBatch, fileDoc("f1", "p1", "dir1", "App.js", models.NodeTypeFile)),
			mtest.CreateCursorResponse(0, projNS, mtest.FirstBatch, projectDoc("p1", ownerID)),
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    11601,
				Message: "operation was interrupted",
				Name:    "Interrupted",
			}),
		)

		err := service.DeleteNode(context.Background(), ownerID, "f1")
		assert.ErrorIs(mt, err, ErrCascadeFailure)
	})
}
