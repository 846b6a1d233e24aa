package graph

import "time"

// Node represents one stored article plus its derived metadata.
type Node struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Author      string    `json:"author,omitempty"`
	PublishDate string    `json:"publishDate,omitempty"`
	Excerpt     string    `json:"excerpt,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Labels      *Labels   `json:"labels,omitempty"`
	AddedAt     time.Time `json:"addedAt"`
}

// Labels carries the taxonomy metadata attached by the labelling collaborator.
// A nil Labels pointer means the article was never labelled; an empty struct
// means it was labelled and nothing was found. Scoring treats both as empty
// but ingestion only invokes the labeller for the nil case.
type Labels struct {
	Categories  []string  `json:"categories,omitempty"`
	Topics      []string  `json:"topics,omitempty"`
	Keywords    []string  `json:"keywords,omitempty"`
	Entities    *Entities `json:"entities,omitempty"`
	Sentiment   string    `json:"sentiment,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	ContentType string    `json:"contentType,omitempty"`
	Complexity  string    `json:"complexity,omitempty"`
	ReadingTime int       `json:"readingTime,omitempty"`
}

// Entities holds named entities extracted from article content.
type Entities struct {
	People        []string `json:"people,omitempty"`
	Organizations []string `json:"organizations,omitempty"`
	Locations     []string `json:"locations,omitempty"`
	Products      []string `json:"products,omitempty"`
}

// Categories returns the node's categories, nil-safe.
func (n *Node) Categories() []string {
	if n.Labels == nil {
		return nil
	}
	return n.Labels.Categories
}

// Topics returns the node's topics, nil-safe.
func (n *Node) Topics() []string {
	if n.Labels == nil {
		return nil
	}
	return n.Labels.Topics
}

// Keywords returns the node's keywords, nil-safe.
func (n *Node) Keywords() []string {
	if n.Labels == nil {
		return nil
	}
	return n.Labels.Keywords
}

// People returns the node's people entities, nil-safe.
func (n *Node) People() []string {
	if n.Labels == nil || n.Labels.Entities == nil {
		return nil
	}
	return n.Labels.Entities.People
}

// Organizations returns the node's organization entities, nil-safe.
func (n *Node) Organizations() []string {
	if n.Labels == nil || n.Labels.Entities == nil {
		return nil
	}
	return n.Labels.Entities.Organizations
}

// Summary returns the node's summary, nil-safe.
func (n *Node) Summary() string {
	if n.Labels == nil {
		return ""
	}
	return n.Labels.Summary
}

// Sentiment returns the node's sentiment, nil-safe.
func (n *Node) Sentiment() string {
	if n.Labels == nil {
		return ""
	}
	return n.Labels.Sentiment
}
