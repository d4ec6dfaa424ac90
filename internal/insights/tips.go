package insights

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"net/http"

	"prodexa/internal/apiclient"
	"prodexa/internal/resource"
)

// DemoTips are served when live suggestions are off.
var DemoTips = []string{
	"Review and organize your top 3 tasks for the day.",
	"Take a 15-minute break to recharge before your next task.",
	"Catch up on emails from yesterday.",
	"Reflect on your progress from this week and set a goal for tomorrow.",
	"Plan your next big project's first step.",
	"Declutter your digital workspace for 10 minutes.",
	"Prioritize tasks using the Eisenhower Matrix.",
	"Block out time for deep work on your critical task.",
	"Identify one small habit to improve your daily routine.",
}

const (
	demoMessage        = "AI suggestions are not live in demo mode, but here's a useful tip!"
	unavailableTip     = "Unable to fetch suggestion right now."
	unavailableMessage = "Please try again later."
)

// Suggestion is an AI tip.
type Suggestion struct {
	Suggestion string `json:"suggestion"`
	Message    string `json:"message"`
}

// UnmarshalJSON accepts an object or a bare string.
func (s *Suggestion) UnmarshalJSON(b []byte) error {
	var text string
	if err := json.Unmarshal(b, &text); err == nil {
		*s = Suggestion{Suggestion: text}
		return nil
	}
	type plain Suggestion
	return json.Unmarshal(b, (*plain)(s))
}

// Tips fetches AI suggestions.
type Tips struct {
	api  *apiclient.Client
	auth resource.AuthState
	demo bool
	pick func(n int) int
	log  *slog.Logger
}

// TipsOption configures Tips.
type TipsOption func(*Tips)

// WithDemo serves DemoTips instead of calling the backend.
func WithDemo(demo bool) TipsOption {
	return func(t *Tips) { t.demo = demo }
}

// WithPicker sets how a demo tip is chosen.
func WithPicker(pick func(n int) int) TipsOption {
	return func(t *Tips) { t.pick = pick }
}

// WithTipsLogger sets the logger.
func WithTipsLogger(l *slog.Logger) TipsOption {
	return func(t *Tips) { t.log = l }
}

// NewTips creates Tips.
func NewTips(api *apiclient.Client, auth resource.AuthState, opts ...TipsOption) *Tips {
	t := &Tips{api: api, auth: auth, pick: rand.IntN, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Suggest returns a tip. Guests and demo mode get a fixed tip without a
// network call. On failure the returned suggestion is the fallback text and
// err is non-nil.
func (t *Tips) Suggest(ctx context.Context) (Suggestion, error) {
	if t.demo || t.auth.IsGuest() {
		return Suggestion{Suggestion: DemoTips[t.pick(len(DemoTips))], Message: demoMessage}, nil
	}

	var s Suggestion
	resp, err := t.api.Do(ctx, &apiclient.Request{
		Method: http.MethodGet,
		Path:   "ai-suggestion/",
		NoAuth: !t.auth.IsAuthenticated(),
	})
	if err == nil {
		err = resp.Decode(&s)
	}
	if err != nil {
		t.log.Warn("ai suggestion failed", "error", err)
		return Suggestion{Suggestion: unavailableTip, Message: unavailableMessage}, err
	}
	return s, nil
}
