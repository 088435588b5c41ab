package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/nexshop/marketplace/internal/application"
	"github.com/nexshop/marketplace/internal/dispatch"
	"github.com/nexshop/marketplace/internal/domain/entity"
	"github.com/nexshop/marketplace/internal/state"
)

const systemPrompt = `You are an expert shopping assistant for NexShop.
Your goal is to help users find products, manage their cart, and navigate the app.
When a user asks to find something, use the searchProducts tool.
If a user wants more details on an item, use viewProduct.
If they want to buy or check out, navigate them to the cart or run checkout.
Provide helpful, brief, and friendly responses. If you use a tool, also acknowledge it briefly in text.`

// Agent is the conversational layer. It drives the exact same
// dispatch surface a human does; a tool call the dispatcher rejects
// comes back to the model as structured data, never a dropped turn.
type Agent struct {
	chat       *genai.Chat
	dispatcher *dispatch.Dispatcher
	container  *state.Container
	ops        *application.Service
	logger     *logrus.Logger
}

func New(ctx context.Context, apiKey, model string, d *dispatch.Dispatcher, c *state.Container, ops *application.Service, logger *logrus.Logger) (*Agent, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Tools:             []*genai.Tool{{FunctionDeclarations: toolDeclarations()}},
	}
	chat, err := client.Chats.Create(ctx, model, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}
	return &Agent{chat: chat, dispatcher: d, container: c, ops: ops, logger: logger}, nil
}

// Send runs one conversational exchange: the user text goes out with a
// summary of the current UI context, tool calls are executed through
// the dispatcher, and their results go back until the model answers in
// plain text. The exchange's sentiment is recorded afterwards.
func (a *Agent) Send(ctx context.Context, userText string) (string, error) {
	parts := []genai.Part{{Text: a.uiContext() + "\n\nUser: " + userText}}

	var reply string
	for turn := 0; turn < 6; turn++ {
		resp, err := a.chat.SendMessage(ctx, parts...)
		if err != nil {
			return "", fmt.Errorf("send message: %w", err)
		}
		reply = resp.Text()

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			break
		}
		parts = parts[:0]
		for _, call := range calls {
			parts = append(parts, genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					Name:     call.Name,
					Response: a.execute(ctx, call.Name, call.Args),
				},
			})
		}
	}

	a.recordSentiment(ctx, userText, reply)
	return reply, nil
}

// execute maps one function call onto the dispatch surface. Both an
// unknown tool and a dispatch failure are returned as data so the
// model can apologize or rephrase instead of stalling.
func (a *Agent) execute(ctx context.Context, name string, args map[string]any) map[string]any {
	cmd, err := dispatch.FromToolCall(name, args)
	if err != nil {
		return map[string]any{"ok": false, "error": err.Error()}
	}
	if err := a.dispatcher.Dispatch(ctx, cmd); err != nil {
		return map[string]any{"ok": false, "error": err.Error()}
	}
	snap := a.container.Snapshot()
	out := map[string]any{
		"ok":   true,
		"view": string(snap.View),
	}
	if len(snap.Results) > 0 {
		names := make([]string, 0, len(snap.Results))
		for _, p := range snap.Results {
			names = append(names, p.Name)
		}
		out["results"] = names
	}
	if len(snap.Cart) > 0 {
		out["cart_items"] = len(snap.Cart)
	}
	return out
}

// uiContext renders the state snapshot as the text block the model
// sees before every user message.
func (a *Agent) uiContext() string {
	snap := a.container.Snapshot()

	var b strings.Builder
	b.WriteString("Current UI context:\n")
	fmt.Fprintf(&b, "- view: %s\n", snap.View)
	if snap.User != nil {
		fmt.Fprintf(&b, "- user: %s (role %s, verified %t)\n", snap.User.Name, snap.User.Role, snap.User.IsVerified)
	} else {
		b.WriteString("- user: not logged in\n")
	}
	if snap.SelectedProductID != "" {
		fmt.Fprintf(&b, "- selected product: %s\n", snap.SelectedProductID)
	}
	if len(snap.Cart) > 0 {
		b.WriteString("- cart:\n")
		for _, item := range snap.Cart {
			fmt.Fprintf(&b, "  - %s x%d ($%.2f each)\n", item.Product.Name, item.Quantity, item.Product.Price)
		}
	} else {
		b.WriteString("- cart: empty\n")
	}
	if len(snap.Products) > 0 {
		b.WriteString("- catalog sample:\n")
		for i, p := range snap.Products {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "  - [%s] %s — $%.2f (%s)\n", p.ID, p.Name, p.Price, p.Category)
		}
	}
	return b.String()
}

func (a *Agent) recordSentiment(ctx context.Context, userText, reply string) {
	snap := a.container.Snapshot()
	in := application.SentimentInput{
		Score:       scoreText(userText),
		Summary:     summarize(userText),
		RawMessages: []string{userText, reply},
	}
	if snap.User != nil {
		in.UserID = snap.User.ID
		in.UserName = snap.User.Name
	} else {
		in.UserName = "Guest"
	}
	if _, err := a.ops.RecordSentiment(ctx, in); err != nil && a.logger != nil {
		a.logger.WithError(err).Warn("record sentiment failed")
	}
}

var (
	positiveWords = []string{"great", "love", "thanks", "thank", "awesome", "perfect", "nice", "good", "excellent", "happy"}
	negativeWords = []string{"bad", "hate", "terrible", "awful", "broken", "refund", "angry", "worst", "slow", "disappointed"}
)

// scoreText is a deliberately naive keyword scorer; the point is the
// trend line on the admin dashboard, not NLP accuracy.
func scoreText(text string) entity.SentimentScore {
	lower := strings.ToLower(text)
	var score int
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			score++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			score--
		}
	}
	switch {
	case score > 0:
		return entity.SentimentPositive
	case score < 0:
		return entity.SentimentNegative
	default:
		return entity.SentimentNeutral
	}
}

// summarize truncates on a rune boundary so a multibyte character is
// never split mid-sequence.
func summarize(text string) string {
	const max = 80
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}
