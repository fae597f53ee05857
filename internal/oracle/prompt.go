package oracle

import (
	"fmt"
	"strings"

	"bakerybot/internal/catalog"
)

const instructions = `You help a bakery team track supplies from chat messages.
Classify the message and answer with ONE JSON object, no prose:
{
  "intent": "update" | "status" | "reminder" | "question" | "chat" | "ignore" | "order",
  "updates": [{"item": string, "status": "stocked" | "low" | "out", "qty": number | null, "unit": string | null, "note": string | null}],
  "clarifications": [{"raw": string, "options": [string], "question": string}],
  "reminder": {"text": string, "when": "tonight" | "tomorrow" | string} | null,
  "order": {"summary": string} | null,
  "reply": string
}
Rules:
- Use exact item names from the catalog whenever you can tell which item is meant.
- For a phrase listed as "ask", do not guess: add a clarification with the listed options.
- For a phrase listed as "expand", add one update per listed item.
- "status" is a request to see the inventory report.
- "question" is an answer to an outstanding clarification.
- Use "ignore" for messages that are not meant for you. Keep "reply" short and friendly.`

// SystemPrompt renders the instructions plus the catalog the oracle must map
// phrases onto.
func SystemPrompt(cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\nCatalog:\n")
	for _, c := range cat.Categories() {
		fmt.Fprintf(&b, "- %s: %s\n", c.Name, strings.Join(c.Items, ", "))
	}
	b.WriteString("\nAliases:\n")
	for _, a := range cat.Aliases() {
		policy := "same as"
		if len(a.Items) > 1 {
			policy = string(a.Policy)
		}
		fmt.Fprintf(&b, "- %q (%s): %s\n", a.Phrase, policy, strings.Join(a.Items, ", "))
	}
	return b.String()
}

// UserPrompt renders one message with its clarification context.
func UserPrompt(req Request) string {
	var b strings.Builder
	if req.Context != "" {
		fmt.Fprintf(&b, "Context: %s\n", req.Context)
	}
	fmt.Fprintf(&b, "Message: %s", req.Text)
	return b.String()
}
