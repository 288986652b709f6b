// Thought and dialogue generation — prompt assembly and response parsing for
// the per-entity "AI thinking" cycle. The classified action in a thought
// response is untrusted input; callers validate it against the activity
// allow-list before applying it.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ThoughtContext summarizes an entity's situation for prompt assembly.
type ThoughtContext struct {
	Name        string
	Species     string // "robot" or "critter"
	Personality string
	Position    string // "x=12.3 z=-4.1 on meadow"
	TimeOfDay   string
	Weather     string
	Nearby      []string // "Momo (5.2 units away)"
	MoodTags    []string
	NeedsState  string
	Memories    string // preformatted, newline-joined
}

// Thought is a generated inner monologue plus a classified intended action.
type Thought struct {
	Text   string `json:"thought"`
	Action string `json:"action"`
}

// GenerateThought asks the model for a short thought and next action.
func GenerateThought(ctx context.Context, c *Client, tc ThoughtContext) (Thought, error) {
	if !c.Enabled() {
		return Thought{}, fmt.Errorf("LLM client not configured")
	}

	system := fmt.Sprintf(
		`You are %s, a %s living in a small sandbox world. Your personality is %s.
Respond ONLY with a JSON object:
- "thought": one short sentence of inner monologue, in character
- "action": one of "explore", "forage", "rest", "socialize", "flee", "patrol", "seek_resource", "idle"`,
		tc.Name, tc.Species, tc.Personality,
	)

	resp, err := c.Complete(ctx, system, buildThoughtPrompt(tc), nil, 150)
	if err != nil {
		return Thought{}, fmt.Errorf("generate thought: %w", err)
	}
	return parseThought(resp)
}

func buildThoughtPrompt(tc ThoughtContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "It is %s, %s. You are at %s.\n", tc.TimeOfDay, tc.Weather, tc.Position)
	if len(tc.MoodTags) > 0 {
		fmt.Fprintf(&b, "You feel %s.\n", strings.Join(tc.MoodTags, ", "))
	}
	if tc.NeedsState != "" {
		fmt.Fprintf(&b, "Physically you are %s.\n", tc.NeedsState)
	}
	if len(tc.Nearby) > 0 {
		b.WriteString("Nearby:\n")
		for _, n := range tc.Nearby {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}
	if tc.Memories != "" {
		fmt.Fprintf(&b, "You remember:\n%s\n", tc.Memories)
	}
	b.WriteString("\nWhat are you thinking, and what will you do next? Respond with the JSON object only.")
	return b.String()
}

// parseThought extracts the JSON object from a response that may include
// surrounding prose.
func parseThought(resp string) (Thought, error) {
	start := strings.Index(resp, "{")
	end := strings.LastIndex(resp, "}")
	if start == -1 || end == -1 || end <= start {
		return Thought{}, fmt.Errorf("no JSON object found in response")
	}
	var t Thought
	if err := json.Unmarshal([]byte(resp[start:end+1]), &t); err != nil {
		return Thought{}, fmt.Errorf("parse thought: %w", err)
	}
	if t.Text == "" {
		return Thought{}, fmt.Errorf("empty thought")
	}
	return t, nil
}

// GenerateSingleResponse asks the model for one free-text dialogue line.
func GenerateSingleResponse(ctx context.Context, c *Client, system, prompt string, history []Message) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("LLM client not configured")
	}
	resp, err := c.Complete(ctx, system, prompt, history, 120)
	if err != nil {
		return "", fmt.Errorf("generate response: %w", err)
	}
	return strings.TrimSpace(resp), nil
}
