package story

import (
	"context"
	"strings"
	"testing"

	"cyoa-server/internal/domain"
	"cyoa-server/internal/imagegen"
	"cyoa-server/internal/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ending(content string, winning bool) domain.StoryTreeNode {
	return domain.StoryTreeNode{Content: content, IsEnding: true, IsWinningEnding: winning}
}

func choice(text string, next domain.StoryTreeNode) domain.TreeOption {
	return domain.TreeOption{Text: text, NextNode: next}
}

// threeLevelTree: root -> (a -> (a1, a2), b -> (b1, b2, b3)), 8 узлов.
func threeLevelTree() domain.StoryTreeNode {
	return domain.StoryTreeNode{
		Content: "root",
		Options: []domain.TreeOption{
			choice("go a", domain.StoryTreeNode{
				Content: "a",
				Options: []domain.TreeOption{
					choice("go a1", ending("a1", true)),
					choice("go a2", ending("a2", false)),
				},
			}),
			choice("go b", domain.StoryTreeNode{
				Content: "b",
				Options: []domain.TreeOption{
					choice("go b1", ending("b1", false)),
					choice("go b2", ending("b2", false)),
					choice("go b3", ending("b3", true)),
				},
			}),
		},
	}
}

func imageFor(content string) *domain.EncodedImage {
	img := domain.EncodeImage("image/png", []byte(content))
	return &img
}

func TestMaterialize_OneRowPerNodeAndValidReferences(t *testing.T) {
	repo := newMemoryRepository()
	illustrator := mocks.NewMockIllustrator(t)
	illustrator.On("DescribeAndIllustrate", mock.Anything, mock.MatchedBy(func(req imagegen.Request) bool {
		return req.Scope == imagegen.ScopeNode && req.Theme == "pirates"
	})).Return(func(_ context.Context, req imagegen.Request) *domain.EncodedImage {
		return imageFor(req.Text)
	}).Times(8)

	m := NewMaterializer(zap.NewNop(), repo, illustrator)
	tree := threeLevelTree()
	storyID := uuid.New()

	rootID, err := m.Materialize(context.Background(), nil, storyID, &tree, true, "pirates")
	require.NoError(t, err)

	require.Len(t, repo.nodes, 8)
	root := repo.nodes[rootID]
	require.NotNil(t, root)
	assert.True(t, root.IsRoot)
	assert.Equal(t, storyID, root.StoryID)

	roots := 0
	for _, n := range repo.nodes {
		if n.IsRoot {
			roots++
		}
		assert.NotNil(t, n.Image, "node %q should be illustrated", n.Content)
		for _, opt := range n.Options {
			child, ok := repo.nodes[opt.NodeID]
			require.True(t, ok, "option %q references a missing node", opt.Text)
			assert.Equal(t, "go "+child.Content, opt.Text)
			assert.False(t, child.IsRoot)
		}
	}
	assert.Equal(t, 1, roots)
}

func TestMaterialize_PreservesOptionOrder(t *testing.T) {
	repo := newMemoryRepository()
	illustrator := mocks.NewMockIllustrator(t)
	illustrator.On("DescribeAndIllustrate", mock.Anything, mock.Anything).Return((*domain.EncodedImage)(nil))

	m := NewMaterializer(zap.NewNop(), repo, illustrator)
	tree := threeLevelTree()

	rootID, err := m.Materialize(context.Background(), nil, uuid.New(), &tree, true, "space")
	require.NoError(t, err)

	root := repo.nodes[rootID]
	require.Len(t, root.Options, 2)
	assert.Equal(t, "go a", root.Options[0].Text)
	assert.Equal(t, "go b", root.Options[1].Text)

	b := repo.nodes[root.Options[1].NodeID]
	require.Len(t, b.Options, 3)
	var texts []string
	for _, opt := range b.Options {
		texts = append(texts, opt.Text)
	}
	assert.Equal(t, []string{"go b1", "go b2", "go b3"}, texts)

	// Вставка в глубину: root, a, a1, a2, b, b1, b2, b3
	var contents []string
	for _, id := range repo.order {
		contents = append(contents, repo.nodes[id].Content)
	}
	assert.Equal(t, []string{"root", "a", "a1", "a2", "b", "b1", "b2", "b3"}, contents)
}

func TestMaterialize_EndingNodesNeverHaveChildren(t *testing.T) {
	repo := newMemoryRepository()
	illustrator := mocks.NewMockIllustrator(t)
	illustrator.On("DescribeAndIllustrate", mock.Anything, mock.Anything).Return((*domain.EncodedImage)(nil))

	m := NewMaterializer(zap.NewNop(), repo, illustrator)
	tree := domain.StoryTreeNode{
		Content:  "the end already",
		IsEnding: true,
		Options: []domain.TreeOption{
			choice("phantom", ending("never stored", false)),
		},
	}

	rootID, err := m.Materialize(context.Background(), nil, uuid.New(), &tree, true, "space")
	require.NoError(t, err)

	require.Len(t, repo.nodes, 1)
	assert.Empty(t, repo.nodes[rootID].Options)
	illustrator.AssertNumberOfCalls(t, "DescribeAndIllustrate", 1)
}

func TestMaterialize_DropsWinningFlagOnNonEndingNode(t *testing.T) {
	repo := newMemoryRepository()
	illustrator := mocks.NewMockIllustrator(t)
	illustrator.On("DescribeAndIllustrate", mock.Anything, mock.Anything).Return((*domain.EncodedImage)(nil))

	m := NewMaterializer(zap.NewNop(), repo, illustrator)
	tree := domain.StoryTreeNode{
		Content:         "crossroads",
		IsWinningEnding: true,
		Options:         []domain.TreeOption{choice("go home", ending("home", true))},
	}

	rootID, err := m.Materialize(context.Background(), nil, uuid.New(), &tree, true, "space")
	require.NoError(t, err)

	root := repo.nodes[rootID]
	assert.False(t, root.IsWinningEnding)
	require.Len(t, root.Options, 1)
	leaf := repo.nodes[root.Options[0].NodeID]
	assert.True(t, leaf.IsEnding)
	assert.True(t, leaf.IsWinningEnding)
}

func TestMaterialize_NonEndingWithoutOptionsAccepted(t *testing.T) {
	repo := newMemoryRepository()
	illustrator := mocks.NewMockIllustrator(t)
	illustrator.On("DescribeAndIllustrate", mock.Anything, mock.Anything).Return((*domain.EncodedImage)(nil))

	m := NewMaterializer(zap.NewNop(), repo, illustrator)
	tree := domain.StoryTreeNode{Content: "dangling"}

	rootID, err := m.Materialize(context.Background(), nil, uuid.New(), &tree, true, "space")
	require.NoError(t, err)
	require.Len(t, repo.nodes, 1)
	assert.False(t, repo.nodes[rootID].IsEnding)
	assert.Empty(t, repo.nodes[rootID].Options)
}

func TestMaterialize_MissingImagesDoNotStopSubtree(t *testing.T) {
	repo := newMemoryRepository()
	illustrator := mocks.NewMockIllustrator(t)
	// Иллюстрации не получаются для узлов, чье содержимое начинается с "a" или равно "root"
	illustrator.On("DescribeAndIllustrate", mock.Anything, mock.Anything).Return(func(_ context.Context, req imagegen.Request) *domain.EncodedImage {
		if req.Text == "root" || strings.HasPrefix(req.Text, "a") {
			return nil
		}
		return imageFor(req.Text)
	})

	m := NewMaterializer(zap.NewNop(), repo, illustrator)
	tree := threeLevelTree()

	rootID, err := m.Materialize(context.Background(), nil, uuid.New(), &tree, true, "space")
	require.NoError(t, err)

	require.Len(t, repo.nodes, 8)
	assert.Len(t, repo.nodes[rootID].Options, 2)
	for _, n := range repo.nodes {
		if n.Content == "root" || strings.HasPrefix(n.Content, "a") {
			assert.Nil(t, n.Image, n.Content)
		} else {
			assert.NotNil(t, n.Image, n.Content)
		}
	}
}

func TestMaterialize_PersistenceErrorAborts(t *testing.T) {
	repo := newMemoryRepository()
	repo.failOnNode = 3
	illustrator := mocks.NewMockIllustrator(t)
	illustrator.On("DescribeAndIllustrate", mock.Anything, mock.Anything).Return((*domain.EncodedImage)(nil))

	m := NewMaterializer(zap.NewNop(), repo, illustrator)
	tree := threeLevelTree()

	_, err := m.Materialize(context.Background(), nil, uuid.New(), &tree, true, "space")
	assert.ErrorIs(t, err, errInsertFailed)
	assert.Len(t, repo.nodes, 2)
}
