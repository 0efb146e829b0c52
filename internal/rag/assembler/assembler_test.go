package assembler

import (
	"strings"
	"testing"

	"github.com/razmarrus/cv-rag/internal/rag/schema"
)

func newTestAssembler(t *testing.T, maxContextTokens int) *ContextAssembler {
	t.Helper()
	a, err := New(maxContextTokens)
	if err != nil {
		t.Fatalf("New(%d) error = %v", maxContextTokens, err)
	}
	return a
}

func chunk(source string, ordinal int, text string, similarity float64) *schema.Document {
	return &schema.Document{
		Source:     source,
		Ordinal:    ordinal,
		Text:       text,
		Similarity: similarity,
	}
}

func TestBudget_ReservesAndFloor(t *testing.T) {
	a := newTestAssembler(t, 2000)

	// With an empty question the budget is the max minus the reservations.
	if got, want := a.Budget(""), 2000-DefaultSystemPromptTokens-DefaultAnswerReserveTokens; got != want {
		t.Errorf("Budget(\"\") = %d, want %d", got, want)
	}

	// A tiny max still yields the floor.
	small := newTestAssembler(t, 100)
	if got := small.Budget("what databases have you worked with?"); got != MinBudget {
		t.Errorf("Budget() = %d, want floor %d", got, MinBudget)
	}
}

func TestAssemble_Empty(t *testing.T) {
	a := newTestAssembler(t, 2000)
	res := a.Assemble("anything", nil)
	if res.Context != "" || res.Included != 0 || res.UsedTokens != 0 {
		t.Errorf("Assemble(nil) = %+v, want empty result", res)
	}
}

func TestAssemble_NeverExceedsBudget(t *testing.T) {
	a := newTestAssembler(t, 2000)
	question := "what did you do at your last job?"
	budget := a.Budget(question)

	var chunks []*schema.Document
	body := strings.Repeat("Shipped internal tooling for data ingestion and reporting. ", 30)
	for i := 0; i < 10; i++ {
		c := chunk("cv.pdf", i, body, 0.9)
		c.TokenCount = a.countTokens(body)
		chunks = append(chunks, c)
	}

	res := a.Assemble(question, chunks)
	if res.UsedTokens > budget {
		t.Errorf("UsedTokens = %d exceeds budget %d", res.UsedTokens, budget)
	}
	if res.Included == 0 {
		t.Error("Included = 0, want at least one chunk")
	}
	if res.Included == len(chunks) {
		t.Errorf("all %d chunks fit; test needs more input to exercise the budget", len(chunks))
	}
}

func TestAssemble_PreservesRankOrderAndAttribution(t *testing.T) {
	a := newTestAssembler(t, 4000)

	chunks := []*schema.Document{
		chunk("cv.pdf", 3, "Most relevant chunk.", 0.93),
		chunk("projects.md", 0, "Second chunk.", 0.81),
	}
	for _, c := range chunks {
		c.TokenCount = a.countTokens(c.Text)
	}

	res := a.Assemble("question", chunks)

	first := strings.Index(res.Context, "[cv.pdf | Chunk 3 | Similarity 0.930]")
	second := strings.Index(res.Context, "[projects.md | Chunk 0 | Similarity 0.810]")
	if first == -1 || second == -1 {
		t.Fatalf("missing attribution headers in context:\n%s", res.Context)
	}
	if first > second {
		t.Error("chunks are not in rank order")
	}
	if !strings.Contains(res.Context, separator) {
		t.Error("chunks are not joined with the separator")
	}
	if res.Included != 2 {
		t.Errorf("Included = %d, want 2", res.Included)
	}
}

func TestAssemble_SimilarityOmittedWhenZero(t *testing.T) {
	a := newTestAssembler(t, 4000)
	c := chunk("cv.txt", 0, "Some text.", 0)
	c.TokenCount = a.countTokens(c.Text)

	res := a.Assemble("q", []*schema.Document{c})
	if strings.Contains(res.Context, "Similarity") {
		t.Errorf("similarity should be omitted when zero:\n%s", res.Context)
	}
	if !strings.HasPrefix(res.Context, "[cv.txt | Chunk 0]") {
		t.Errorf("unexpected header:\n%s", res.Context)
	}
}

func TestAssemble_TruncatesOversizedFirstChunk(t *testing.T) {
	a := newTestAssembler(t, 100) // budget falls back to the floor
	budget := a.Budget("q")

	huge := strings.Repeat("Decade of backend work across fintech and logistics. ", 200)
	c := chunk("cv.pdf", 0, huge, 0.9)
	c.TokenCount = a.countTokens(huge)
	if c.TokenCount <= budget {
		t.Fatalf("test input too small: %d tokens <= budget %d", c.TokenCount, budget)
	}

	res := a.Assemble("q", []*schema.Document{c})
	if res.Included != 1 {
		t.Fatalf("Included = %d, want 1 (truncated first chunk)", res.Included)
	}
	if res.UsedTokens > budget {
		t.Errorf("UsedTokens = %d exceeds budget %d", res.UsedTokens, budget)
	}
	if !strings.HasSuffix(res.Context, "...") {
		t.Error("truncated chunk should end with an ellipsis")
	}

	// UsedTokens reports what was actually packed, marker included, not the
	// budget that was available.
	_, body, ok := strings.Cut(res.Context, "\n")
	if !ok {
		t.Fatalf("context has no body:\n%s", res.Context)
	}
	if got := a.countTokens(body); res.UsedTokens != got {
		t.Errorf("UsedTokens = %d, want measured %d", res.UsedTokens, got)
	}
}

func TestAssemble_CountsTokensWhenMissing(t *testing.T) {
	a := newTestAssembler(t, 4000)
	c := chunk("cv.txt", 1, "Chunk without a precomputed token count.", 0.8)

	res := a.Assemble("q", []*schema.Document{c})
	if res.Included != 1 {
		t.Fatalf("Included = %d, want 1", res.Included)
	}
	if res.UsedTokens != a.countTokens(c.Text) {
		t.Errorf("UsedTokens = %d, want %d", res.UsedTokens, a.countTokens(c.Text))
	}
}
