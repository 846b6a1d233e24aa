package llmclient

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"newsgraph/config"
	apperrors "newsgraph/errors"
	"newsgraph/rag"
)

type fakeModel struct {
	messages []llms.MessageContent
	resp     *llms.ContentResponse
	err      error
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func messageText(t *testing.T, msg llms.MessageContent) string {
	t.Helper()
	if len(msg.Parts) != 1 {
		t.Fatalf("len(msg.Parts) = %d, want 1", len(msg.Parts))
	}
	part, ok := msg.Parts[0].(llms.TextContent)
	if !ok {
		t.Fatalf("msg.Parts[0] is %T, want llms.TextContent", msg.Parts[0])
	}
	return part.Text
}

func testSources() []rag.SourceContext {
	return []rag.SourceContext{
		{
			ID:         "a1",
			Title:      "Lithium Prices Surge on Supply Fears",
			URL:        "https://example.com/lithium",
			Categories: []string{"Energy"},
			Topics:     []string{"Lithium", "Supply Chain"},
			Keywords:   []string{"lithium", "mining"},
			Summary:    "Spot prices climbed after export restrictions.",
			Score:      21,
		},
		{
			ID:      "a2",
			Title:   "Battery Makers Seek New Suppliers",
			Summary: "Manufacturers are diversifying sourcing.",
			Score:   9,
		},
	}
}

func TestGenerateAnswer(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	fake := &fakeModel{
		resp: &llms.ContentResponse{
			Choices: []*llms.ContentChoice{
				{Content: "  Prices rose on export restrictions [1].\n"},
			},
		},
	}
	client := &Client{model: fake, provider: "openai", logger: logger}

	answer, err := client.GenerateAnswer(context.Background(), "why are lithium prices rising", testSources())
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}
	if answer != "Prices rose on export restrictions [1]." {
		t.Errorf("GenerateAnswer() = %q, want trimmed completion", answer)
	}

	if len(fake.messages) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(fake.messages))
	}
	if fake.messages[0].Role != llms.ChatMessageTypeSystem {
		t.Errorf("messages[0].Role = %v, want system", fake.messages[0].Role)
	}
	if fake.messages[1].Role != llms.ChatMessageTypeHuman {
		t.Errorf("messages[1].Role = %v, want human", fake.messages[1].Role)
	}

	user := messageText(t, fake.messages[1])
	if !strings.Contains(user, "Question: why are lithium prices rising") {
		t.Errorf("user prompt missing question, got:\n%s", user)
	}
	if !strings.Contains(user, "[1] Lithium Prices Surge on Supply Fears") {
		t.Errorf("user prompt missing first source, got:\n%s", user)
	}
	if !strings.Contains(user, "[2] Battery Makers Seek New Suppliers") {
		t.Errorf("user prompt missing second source, got:\n%s", user)
	}
}

func TestGenerateAnswerModelError(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	fake := &fakeModel{err: errors.New("connection refused")}
	client := &Client{model: fake, provider: "ollama", logger: logger}

	_, err := client.GenerateAnswer(context.Background(), "anything", testSources())
	if !errors.Is(err, apperrors.ErrLLMCommunication) {
		t.Errorf("GenerateAnswer() error = %v, want ErrLLMCommunication", err)
	}
}

func TestGenerateAnswerNoChoices(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	fake := &fakeModel{resp: &llms.ContentResponse{}}
	client := &Client{model: fake, provider: "openai", logger: logger}

	_, err := client.GenerateAnswer(context.Background(), "anything", testSources())
	if !errors.Is(err, apperrors.ErrLLMCommunication) {
		t.Errorf("GenerateAnswer() error = %v, want ErrLLMCommunication", err)
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	cfg := &config.Config{LLMProvider: "watson"}

	_, err := New(cfg, logger)
	if !apperrors.IsInvalidInput(err) {
		t.Errorf("New() error = %v, want ErrInvalidInput", err)
	}
}

func TestFormatSources(t *testing.T) {
	block := FormatSources(testSources())

	wantLines := []string{
		"[1] Lithium Prices Surge on Supply Fears",
		"URL: https://example.com/lithium",
		"Categories: Energy",
		"Topics: Lithium, Supply Chain",
		"Keywords: lithium, mining",
		"Summary: Spot prices climbed after export restrictions.",
		"[2] Battery Makers Seek New Suppliers",
	}
	for _, line := range wantLines {
		if !strings.Contains(block, line) {
			t.Errorf("FormatSources() missing line %q, got:\n%s", line, block)
		}
	}
	// The second source has no URL, categories, topics, or keywords.
	if strings.Count(block, "URL:") != 1 {
		t.Errorf("FormatSources() should omit empty fields, got:\n%s", block)
	}
}

func TestExtractiveAnswer(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	gen := NewExtractive(logger)

	sources := []rag.SourceContext{
		{Title: "First", Summary: "first summary"},
		{Title: "Second", Summary: "second summary"},
		{Title: "Third"},
		{Title: "Fourth", Summary: "should be cut"},
	}
	answer, err := gen.GenerateAnswer(context.Background(), "lithium prices", sources)
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}

	for _, want := range []string{"1. First: first summary", "2. Second", "3. Third"} {
		if !strings.Contains(answer, want) {
			t.Errorf("answer missing %q, got:\n%s", want, answer)
		}
	}
	if strings.Contains(answer, "Fourth") {
		t.Errorf("answer should cap at %d sources, got:\n%s", extractiveMaxSources, answer)
	}
	if !strings.Contains(answer, "No language model is configured") {
		t.Errorf("answer missing degraded mode note, got:\n%s", answer)
	}
}
