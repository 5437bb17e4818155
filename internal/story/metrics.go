package story

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storyGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cyoa_story_generations_total",
			Help: "Total number of story generation runs, partitioned by outcome.",
		},
		[]string{"status"}, // success, llm_error, malformed, too_large, persist_error
	)
	storyNodesMaterialized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cyoa_story_nodes_materialized_total",
			Help: "Total number of story nodes persisted.",
		},
	)
	storyNodesWithoutImage = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cyoa_story_nodes_without_image_total",
			Help: "Story nodes persisted without an illustration.",
		},
	)
	storyTreeSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cyoa_story_tree_nodes",
			Help:    "Number of nodes in validated story trees.",
			Buckets: prometheus.LinearBuckets(1, 4, 12),
		},
	)
)
