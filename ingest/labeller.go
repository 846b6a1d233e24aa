package ingest

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	apperrors "newsgraph/errors"
	"newsgraph/graph"
)

const (
	maxLabelKeywords = 10
	maxLabelTopics   = 5
	maxLabelEntities = 5
	summarySentences = 2
	wordsPerMinute   = 200
)

// noiseWords are tokens too generic to label an article with.
var noiseWords = map[string]struct{}{
	"thing": {}, "things": {}, "time": {}, "times": {}, "year": {},
	"years": {}, "day": {}, "days": {}, "week": {}, "people": {},
	"percent": {}, "way": {}, "part": {}, "lot": {}, "number": {},
	"report": {}, "reports": {}, "story": {}, "article": {}, "news": {},
}

var positiveWords = map[string]struct{}{
	"gain": {}, "gains": {}, "growth": {}, "surge": {}, "record": {},
	"boost": {}, "strong": {}, "success": {}, "breakthrough": {}, "win": {},
	"improve": {}, "improved": {}, "rally": {}, "optimism": {}, "recovery": {},
}

var negativeWords = map[string]struct{}{
	"loss": {}, "losses": {}, "decline": {}, "crash": {}, "crisis": {},
	"fail": {}, "failure": {}, "weak": {}, "risk": {}, "shortage": {},
	"drop": {}, "fall": {}, "fears": {}, "warning": {}, "collapse": {},
}

// categoryMarkers maps signal words to a coarse category taxonomy.
var categoryMarkers = map[string]string{
	"battery": "Energy", "lithium": "Energy", "oil": "Energy", "solar": "Energy",
	"energy": "Energy", "grid": "Energy",
	"market": "Business", "stock": "Business", "economy": "Business",
	"company": "Business", "investor": "Business", "startup": "Business",
	"election": "Politics", "government": "Politics", "policy": "Politics",
	"senate": "Politics", "parliament": "Politics",
	"software": "Technology", "chip": "Technology", "cloud": "Technology",
	"robot": "Technology", "internet": "Technology", "data": "Technology",
	"vaccine": "Health", "hospital": "Health", "disease": "Health",
	"climate": "Science", "research": "Science", "study": "Science",
	"space": "Science",
}

var organizationSuffixes = []string{"Inc", "Corp", "Ltd", "LLC", "Group", "Company", "Bank"}

// HeuristicLabeller derives labels from article text alone. It stands in for
// the production labelling collaborator when none is configured, so that
// ingestion of unlabelled articles still produces a connected graph.
type HeuristicLabeller struct {
	logger *zap.Logger
}

// NewHeuristicLabeller creates a HeuristicLabeller.
func NewHeuristicLabeller(logger *zap.Logger) *HeuristicLabeller {
	return &HeuristicLabeller{logger: logger}
}

// Label tokenizes the article text and derives keywords, topics, categories,
// entities, sentiment, summary, and reading time.
func (h *HeuristicLabeller) Label(ctx context.Context, article ArticleInput) (*graph.Labels, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := article.Title
	if content := MarkdownToText(article.Content); content != "" {
		text += "\n\n" + content
	} else if article.Excerpt != "" {
		text += "\n\n" + article.Excerpt
	}

	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to analyze article text")
	}

	keywords := rankedKeywords(doc)
	topics := topicsFrom(keywords)

	labels := &graph.Labels{
		Categories:  categoriesFrom(keywords),
		Topics:      topics,
		Keywords:    keywords,
		Entities:    entitiesFrom(doc),
		Sentiment:   sentimentFrom(doc),
		Summary:     summaryFrom(article, doc),
		ContentType: contentTypeFrom(article.Title),
		Complexity:  complexityFrom(doc),
		ReadingTime: readingTimeFrom(doc),
	}

	h.logger.Debug("Derived article labels",
		zap.String("title", article.Title),
		zap.Strings("topics", labels.Topics),
		zap.String("sentiment", labels.Sentiment))

	return labels, nil
}

// rankedKeywords returns the most frequent nouns, most frequent first, ties
// in first-seen order.
func rankedKeywords(doc *prose.Document) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, token := range doc.Tokens() {
		if !strings.HasPrefix(token.Tag, "NN") {
			continue
		}
		word := strings.ToLower(token.Text)
		if len(word) <= 2 {
			continue
		}
		if _, noise := noiseWords[word]; noise {
			continue
		}
		if !isWordLike(word) {
			continue
		}
		if _, seen := counts[word]; !seen {
			firstSeen[word] = i
		}
		counts[word]++
	}

	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	sort.SliceStable(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return firstSeen[words[i]] < firstSeen[words[j]]
	})
	if len(words) > maxLabelKeywords {
		words = words[:maxLabelKeywords]
	}
	return words
}

func topicsFrom(keywords []string) []string {
	topics := make([]string, 0, maxLabelTopics)
	for _, keyword := range keywords {
		topics = append(topics, titleCase(keyword))
		if len(topics) == maxLabelTopics {
			break
		}
	}
	return topics
}

func categoriesFrom(keywords []string) []string {
	var categories []string
	seen := make(map[string]bool)
	for _, keyword := range keywords {
		category, ok := categoryMarkers[keyword]
		if !ok || seen[category] {
			continue
		}
		seen[category] = true
		categories = append(categories, category)
	}
	if categories == nil {
		categories = []string{"General"}
	}
	return categories
}

func entitiesFrom(doc *prose.Document) *graph.Entities {
	entities := &graph.Entities{}
	seen := make(map[string]bool)
	for _, ent := range doc.Entities() {
		key := ent.Label + "|" + ent.Text
		if seen[key] {
			continue
		}
		seen[key] = true
		switch ent.Label {
		case "PERSON":
			if len(entities.People) < maxLabelEntities {
				entities.People = append(entities.People, ent.Text)
			}
		case "GPE":
			if len(entities.Locations) < maxLabelEntities {
				entities.Locations = append(entities.Locations, ent.Text)
			}
		}
	}
	entities.Organizations = organizationsFrom(doc)
	return entities
}

// organizationsFrom looks for capitalized runs ending in a company suffix.
func organizationsFrom(doc *prose.Document) []string {
	var orgs []string
	seen := make(map[string]bool)
	tokens := doc.Tokens()
	for i, token := range tokens {
		if !isOrganizationSuffix(token.Text) {
			continue
		}
		start := i
		for start > 0 && isCapitalizedWord(tokens[start-1].Text) {
			start--
		}
		if start == i {
			continue
		}
		parts := make([]string, 0, i-start+1)
		for j := start; j <= i; j++ {
			parts = append(parts, tokens[j].Text)
		}
		name := strings.Join(parts, " ")
		if !seen[name] && len(orgs) < maxLabelEntities {
			seen[name] = true
			orgs = append(orgs, name)
		}
	}
	return orgs
}

func sentimentFrom(doc *prose.Document) string {
	score := 0
	for _, token := range doc.Tokens() {
		word := strings.ToLower(token.Text)
		if _, ok := positiveWords[word]; ok {
			score++
		}
		if _, ok := negativeWords[word]; ok {
			score--
		}
	}
	switch {
	case score > 0:
		return "positive"
	case score < 0:
		return "negative"
	default:
		return "neutral"
	}
}

func summaryFrom(article ArticleInput, doc *prose.Document) string {
	if article.Excerpt != "" {
		return article.Excerpt
	}
	sentences := doc.Sentences()
	if len(sentences) <= 1 {
		// Sentence zero is the bare title.
		return article.Title
	}
	end := 1 + summarySentences
	if end > len(sentences) {
		end = len(sentences)
	}
	parts := make([]string, 0, summarySentences)
	for _, sentence := range sentences[1:end] {
		parts = append(parts, strings.TrimSpace(sentence.Text))
	}
	return strings.Join(parts, " ")
}

func contentTypeFrom(title string) string {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "opinion") || strings.Contains(lower, "editorial"):
		return "opinion"
	case strings.Contains(lower, "analysis") || strings.Contains(lower, "explained"):
		return "analysis"
	default:
		return "article"
	}
}

func complexityFrom(doc *prose.Document) string {
	sentences := doc.Sentences()
	if len(sentences) == 0 {
		return "beginner"
	}
	words := 0
	for _, sentence := range sentences {
		words += len(strings.Fields(sentence.Text))
	}
	average := words / len(sentences)
	switch {
	case average < 15:
		return "beginner"
	case average < 25:
		return "intermediate"
	default:
		return "advanced"
	}
}

func readingTimeFrom(doc *prose.Document) int {
	words := 0
	for _, sentence := range doc.Sentences() {
		words += len(strings.Fields(sentence.Text))
	}
	minutes := words / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func isWordLike(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '-' {
			return false
		}
	}
	return true
}

func isCapitalizedWord(s string) bool {
	runes := []rune(s)
	return len(runes) > 0 && unicode.IsUpper(runes[0]) && !isOrganizationSuffix(s)
}

func isOrganizationSuffix(s string) bool {
	trimmed := strings.TrimSuffix(s, ".")
	for _, suffix := range organizationSuffixes {
		if trimmed == suffix {
			return true
		}
	}
	return false
}
