package domain

import (
	"time"

	"github.com/google/uuid"
)

// StoryTree - проверенный ответ LLM: заголовок и корень дерева.
type StoryTree struct {
	Title string
	Root  StoryTreeNode
}

// StoryTreeNode - узел дерева до сохранения в БД.
// Узел с IsWinningEnding всегда является концовкой.
type StoryTreeNode struct {
	Content         string
	IsEnding        bool
	IsWinningEnding bool
	Options         []TreeOption
}

// TreeOption - вариант выбора, владеющий дочерним узлом.
type TreeOption struct {
	Text     string
	NextNode StoryTreeNode
}

// Count возвращает количество узлов в поддереве, включая сам узел.
// Варианты у концовок не учитываются, так как они никогда не сохраняются.
func (n *StoryTreeNode) Count() int {
	total := 1
	if n.IsEnding {
		return total
	}
	for i := range n.Options {
		total += n.Options[i].NextNode.Count()
	}
	return total
}

// Depth возвращает глубину поддерева (одиночный узел имеет глубину 1).
func (n *StoryTreeNode) Depth() int {
	if n.IsEnding {
		return 1
	}
	deepest := 0
	for i := range n.Options {
		if d := n.Options[i].NextNode.Depth(); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// Story - сохраненная история.
type Story struct {
	ID        uuid.UUID     `db:"id" json:"id"`
	Title     string        `db:"title" json:"title"`
	SessionID string        `db:"session_id" json:"session_id"`
	MainImage *EncodedImage `db:"main_image" json:"main_image,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// StoryNode - сохраненный узел истории.
// Options - денормализованный список дочерних ребер, заполняется после создания детей.
type StoryNode struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	StoryID         uuid.UUID     `db:"story_id" json:"story_id"`
	Content         string        `db:"content" json:"content"`
	IsRoot          bool          `db:"is_root" json:"is_root"`
	IsEnding        bool          `db:"is_ending" json:"is_ending"`
	IsWinningEnding bool          `db:"is_winning_ending" json:"is_winning_ending"`
	Image           *EncodedImage `db:"image" json:"image,omitempty"`
	Options         []NodeOption  `db:"options" json:"options"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
}

// NodeOption - ссылка родителя на дочерний узел.
type NodeOption struct {
	Text   string    `json:"text"`
	NodeID uuid.UUID `json:"node_id"`
}

// CompleteStory - история со всеми узлами для чтения клиентом.
type CompleteStory struct {
	Story
	RootNode *StoryNode               `json:"root_node"`
	AllNodes map[uuid.UUID]*StoryNode `json:"all_nodes"`
}
