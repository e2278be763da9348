package explain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/levenlabs/go-lflag"
	"github.com/maypok86/otter/v2"
	"github.com/plansage/plansage/pkg/log"
	"google.golang.org/genai"
)

const (
	defaultModel = "gemini-2.5-flash-lite"

	// explanationCacheSize bounds the in-memory explanation cache.
	explanationCacheSize = 1024
)

// Gemini is an Explainer backed by the Gemini API. Responses are cached by
// the request facts so re-running a recommendation does not re-bill the API.
type Gemini struct {
	apiKey string
	model  string
	cache  *otter.Cache[string, string]

	// newClient is swapped in tests.
	newClient func(ctx context.Context) (*genai.Client, error)
}

// Configured sets up the Gemini explainer. It registers lflag flags and
// returns nil inside the wiring when explanations are disabled; callers must
// treat a nil Explainer as "fallback only".
func Configured() *Gemini {
	apiKey := lflag.String("gemini-api-key", "", "API key for the Gemini explanation service (empty disables it)")
	model := lflag.String("gemini-model", defaultModel, "Gemini model used for recommendation explanations")
	cacheTTL := lflag.Duration("explain-cache-ttl", time.Hour, "How long cached explanations are kept")

	g := &Gemini{}
	lflag.Do(func() {
		g.apiKey = *apiKey
		g.model = *model
		g.cache = otter.Must(&otter.Options[string, string]{
			MaximumSize:      explanationCacheSize,
			ExpiryCalculator: otter.ExpiryWriting[string, string](*cacheTTL),
		})
	})
	g.newClient = func(ctx context.Context) (*genai.Client, error) {
		return genai.NewClient(ctx, &genai.ClientConfig{
			Backend: genai.BackendGeminiAPI,
			APIKey:  g.apiKey,
		})
	}
	return g
}

// Explain generates a short plain-language justification for the plan facts
// in req. It retries transient API failures with backoff before giving up;
// callers substitute the templated fallback on any error.
func (g *Gemini) Explain(ctx context.Context, req Request) (string, error) {
	if g.apiKey == "" {
		return "", ErrNotConfigured
	}

	key := cacheKey(g.model, req)
	if g.cache != nil {
		if cached, ok := g.cache.GetIfPresent(key); ok {
			log.Ctx(ctx).DebugContext(ctx, "explanation cache hit", slog.String("plan", req.PlanName))
			return cached, nil
		}
	}

	client, err := g.newClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create genai client: %w", err)
	}

	prompt := buildPrompt(req)
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	temperature := float32(0.2)
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 200,
	}

	var text string
	err = retry.Do(
		func() error {
			resp, err := client.Models.GenerateContent(ctx, g.model, contents, config)
			if err != nil {
				if !isTransient(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			text = extractText(resp)
			if text == "" {
				return retry.Unrecoverable(fmt.Errorf("empty response from explanation model"))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.MaxDelay(5*time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).WarnContext(ctx, "retrying explanation call",
				slog.Uint64("attempt", uint64(n)), slog.Any("error", err))
		}),
	)
	if err != nil {
		return "", fmt.Errorf("explanation call failed: %w", err)
	}

	if g.cache != nil {
		g.cache.Set(key, text)
	}
	return text, nil
}

func buildPrompt(req Request) string {
	facts, _ := json.Marshal(req)
	return "You are helping a household compare electricity supply plans. " +
		"Given the following facts about a recommended plan, write 2-3 plain " +
		"sentences explaining why it was recommended and what to watch out for. " +
		"Mention the savings and, if present, the risk flags. Do not invent " +
		"numbers that are not in the facts.\n\nFacts: " + string(facts)
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}
	return strings.TrimSpace(candidate.Content.Parts[0].Text)
}

// isTransient reports whether an API error is worth retrying.
func isTransient(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, indicator := range []string{"rate limit", "quota", "timeout", "deadline", "unavailable", "502", "503", "504"} {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}

func cacheKey(model string, req Request) string {
	facts, _ := json.Marshal(req)
	h := sha256.Sum256(append([]byte(model+":"), facts...))
	return hex.EncodeToString(h[:])
}
