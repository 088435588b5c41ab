package agent

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexshop/marketplace/internal/application"
	"github.com/nexshop/marketplace/internal/domain/entity"
	"github.com/nexshop/marketplace/internal/dispatch"
	"github.com/nexshop/marketplace/internal/state"
	"github.com/nexshop/marketplace/internal/store"
)

func TestScoreText(t *testing.T) {
	tests := []struct {
		text string
		want entity.SentimentScore
	}{
		{"thanks, this is great!", entity.SentimentPositive},
		{"this is terrible, I want a refund", entity.SentimentNegative},
		{"show me keyboards", entity.SentimentNeutral},
		{"I love it but shipping was slow", entity.SentimentNeutral}, // one of each cancels out
		{"", entity.SentimentNeutral},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, scoreText(tc.text), tc.text)
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "short", summarize("  short  "))

	long := strings.Repeat("a", 200)
	got := summarize(long)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, 80+1, utf8.RuneCountInString(got))

	// truncation lands on a rune boundary, never inside one
	accented := strings.Repeat("é", 200)
	got = summarize(accented)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 80+1, utf8.RuneCountInString(got))
}

func TestUIContextRendersSnapshot(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, store.Seed(ctx, st))
	svc := application.NewService(st, nil, nil)
	c := state.NewContainer(ctx, svc, st, nil, nil)

	a := &Agent{container: c, ops: svc}

	out := a.uiContext()
	assert.Contains(t, out, "view: home")
	assert.Contains(t, out, "user: not logged in")
	assert.Contains(t, out, "cart: empty")
	assert.Contains(t, out, "Mechanical Gaming Keyboard")

	c.Login(ctx, "buyer@nexshop.dev", "buyer123")
	c.AddToCart(ctx, "1", 2)

	out = a.uiContext()
	assert.Contains(t, out, "Dev Buyer")
	assert.Contains(t, out, "x2")
}

func TestExecuteReportsUnknownTool(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, store.Seed(ctx, st))
	svc := application.NewService(st, nil, nil)
	c := state.NewContainer(ctx, svc, st, nil, nil)
	a := &Agent{container: c, ops: svc, dispatcher: dispatch.NewDispatcher(c)}

	out := a.execute(ctx, "wipeDatabase", nil)
	assert.Equal(t, false, out["ok"])
	assert.Contains(t, out["error"], "unknown tool")

	out = a.execute(ctx, "searchProducts", map[string]any{"query": "keyboard"})
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, "search", out["view"])
	names, ok := out["results"].([]string)
	require.True(t, ok)
	assert.NotEmpty(t, names)
}
