package llmclient

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"newsgraph/rag"
)

const extractiveMaxSources = 3

// Extractive answers without a model by stitching together the labels of the
// top retrieved articles. It keeps the ask endpoint functional when no LLM
// provider is configured.
type Extractive struct {
	logger *zap.Logger
}

func NewExtractive(logger *zap.Logger) *Extractive {
	return &Extractive{logger: logger}
}

// GenerateAnswer lists the most relevant articles with their summaries. The
// output is deterministic for a given source list.
func (e *Extractive) GenerateAnswer(ctx context.Context, query string, sources []rag.SourceContext) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here is what the knowledge graph holds on %q:\n", query)
	for i, src := range sources {
		if i >= extractiveMaxSources {
			break
		}
		fmt.Fprintf(&b, "\n%d. %s", i+1, src.Title)
		if summary := strings.TrimSpace(src.Summary); summary != "" {
			fmt.Fprintf(&b, ": %s", summary)
		}
		if len(src.Topics) > 0 {
			fmt.Fprintf(&b, " (topics: %s)", strings.Join(src.Topics, ", "))
		}
	}
	b.WriteString("\n\nNo language model is configured, so this answer was assembled from stored article labels.")

	e.logger.Debug("Assembled extractive answer",
		zap.String("query", query),
		zap.Int("sources", len(sources)))

	return b.String(), nil
}
