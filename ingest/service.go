package ingest

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "newsgraph/errors"
	"newsgraph/graph"
)

// ArticleInput is the per-article shape consumed from the labelling
// collaborator or an import file. Labels may be nil, in which case the
// service asks its Labeller to derive them; labels that are present but
// empty are stored as-is.
type ArticleInput struct {
	ID          string        `json:"id"`
	Title       string        `json:"title" validate:"required"`
	URL         string        `json:"url" validate:"omitempty,url"`
	Author      string        `json:"author"`
	PublishDate string        `json:"publishDate"`
	Content     string        `json:"content"`
	Excerpt     string        `json:"excerpt"`
	ImageURL    string        `json:"imageUrl" validate:"omitempty,url"`
	Tags        []string      `json:"tags"`
	Labels      *graph.Labels `json:"labels"`
}

// Result reports what one ingestion did.
type Result struct {
	Node                 *graph.Node   `json:"node"`
	Related              []graph.Match `json:"related"`
	RelationshipsWritten int           `json:"relationshipsWritten"`
	Labelled             bool          `json:"labelled"`
}

// Labeller derives taxonomy labels for an unlabelled article.
type Labeller interface {
	Label(ctx context.Context, article ArticleInput) (*graph.Labels, error)
}

// Service ingests articles: validate, label if needed, upsert the node, then
// materialize RELATES_TO edges to sufficiently similar articles.
type Service struct {
	store         *graph.Store
	similarity    *graph.SimilarityEngine
	labeller      Labeller
	validate      *validator.Validate
	edgeThreshold int
	similarLimit  int
	logger        *zap.Logger
}

// NewService creates an ingestion Service. labeller may be nil, in which case
// unlabelled articles are stored without labels. Similarity scores strictly
// greater than edgeThreshold materialize an edge.
func NewService(store *graph.Store, similarity *graph.SimilarityEngine, labeller Labeller, edgeThreshold, similarLimit int, logger *zap.Logger) *Service {
	if similarLimit <= 0 {
		similarLimit = 5
	}
	return &Service{
		store:         store,
		similarity:    similarity,
		labeller:      labeller,
		validate:      validator.New(),
		edgeThreshold: edgeThreshold,
		similarLimit:  similarLimit,
		logger:        logger,
	}
}

// Ingest stores one article and links it to similar ones.
func (s *Service) Ingest(ctx context.Context, input ArticleInput) (*Result, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, err.Error())
	}
	if input.ID == "" {
		input.ID = uuid.NewString()
	}

	result := &Result{}
	if input.Labels == nil && s.labeller != nil {
		labels, err := s.labeller.Label(ctx, input)
		if err != nil {
			s.logger.Warn("Labelling failed, storing article without labels",
				zap.String("id", input.ID),
				zap.Error(err))
		} else {
			input.Labels = labels
			result.Labelled = true
		}
	}

	node := s.store.AddNode(&graph.Node{
		ID:          input.ID,
		Title:       input.Title,
		URL:         input.URL,
		Author:      input.Author,
		PublishDate: input.PublishDate,
		Excerpt:     input.Excerpt,
		ImageURL:    input.ImageURL,
		Tags:        input.Tags,
		Labels:      input.Labels,
	})
	result.Node = node

	matches, err := s.similarity.FindSimilar(node.ID, s.similarLimit)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to score similar articles")
	}
	result.Related = matches

	for _, match := range matches {
		if match.Similarity <= s.edgeThreshold {
			continue
		}
		metadata := map[string]interface{}{
			"strength":       match.Similarity,
			"sharedTopics":   match.SharedTopics,
			"sharedKeywords": match.SharedKeywords,
		}
		if _, err := s.store.AddEdge(node.ID, match.ArticleID, graph.EdgeTypeRelatesTo, metadata); err != nil {
			s.logger.Warn("Failed to link similar article",
				zap.String("from", node.ID),
				zap.String("to", match.ArticleID),
				zap.Error(err))
			continue
		}
		result.RelationshipsWritten++
	}

	s.logger.Info("Ingested article",
		zap.String("id", node.ID),
		zap.String("title", node.Title),
		zap.Int("relationships", result.RelationshipsWritten))

	return result, nil
}

// IngestBatch ingests articles in order. A failing article is logged and
// skipped; the remaining articles still go through.
func (s *Service) IngestBatch(ctx context.Context, inputs []ArticleInput) []*Result {
	results := make([]*Result, 0, len(inputs))
	for _, input := range inputs {
		result, err := s.Ingest(ctx, input)
		if err != nil {
			s.logger.Warn("Skipping article in batch",
				zap.String("title", input.Title),
				zap.Error(err))
			continue
		}
		results = append(results, result)
	}
	return results
}
