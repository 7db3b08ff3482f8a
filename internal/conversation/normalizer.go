// Package conversation drives one chat turn end to end: it builds the
// conversational prompt, tolerantly parses the model's structured reply,
// classifies booking intent, and hands qualified turns to the booking
// orchestrator.
package conversation

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/easyfit-labs/trialbot/internal/profile"
)

// ParsedReply is the normalized conversational model output: the text to
// send to the user and the model's free-form profile guess with null
// values already dropped.
type ParsedReply struct {
	Reply string
	Guess profile.Guess
	// Fallback marks that no parse strategy matched and Reply is the
	// raw model text verbatim.
	Fallback bool
}

// Normalize decodes the conversational model output. The model is asked
// for `{"reply": ..., "profil": {...}}` but drifts in formatting, so
// strategies are tried in order until one parses:
//
//  1. strict JSON on the outermost {...} span;
//  2. the same span with single quotes and Python literals (None, True,
//     False) rewritten to JSON, parsed strictly;
//  3. a permissive literal parse accepting alternate quoting, bare
//     Python literals, and trailing commas.
//
// When every strategy fails the raw text becomes the reply verbatim with
// an empty guess. Normalize never fails the turn.
func Normalize(raw string) ParsedReply {
	span := jsonSpan(raw)
	if span == "" {
		return ParsedReply{Reply: strings.TrimSpace(raw), Guess: profile.Guess{}, Fallback: true}
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(span), &data); err == nil {
		return extractReplyGuess(data, raw)
	}

	rewritten := rewriteLooseJSON(span)
	if err := json.Unmarshal([]byte(rewritten), &data); err == nil {
		return extractReplyGuess(data, raw)
	}

	if value, err := parseLiteral(span); err == nil {
		if m, ok := value.(map[string]any); ok {
			return extractReplyGuess(m, raw)
		}
	}

	return ParsedReply{Reply: strings.TrimSpace(raw), Guess: profile.Guess{}, Fallback: true}
}

// jsonSpan returns the outermost {...} slice of raw, or "".
func jsonSpan(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

// rewriteLooseJSON converts the common single-quoted Python-ish dialect
// into strict JSON. Good enough for payloads without embedded quotes;
// anything trickier falls through to the permissive parser.
func rewriteLooseJSON(s string) string {
	s = strings.ReplaceAll(s, "'", `"`)
	s = strings.ReplaceAll(s, "None", "null")
	s = strings.ReplaceAll(s, "True", "true")
	s = strings.ReplaceAll(s, "False", "false")
	return s
}

// extractReplyGuess pulls reply and profil out of the decoded payload.
// A missing reply field falls back to the raw text; null guess values
// are dropped so absence can never erase stored profile fields.
func extractReplyGuess(data map[string]any, fallback string) ParsedReply {
	parsed := ParsedReply{
		Reply: strings.TrimSpace(fallback),
		Guess: profile.Guess{},
	}

	if reply, ok := data["reply"].(string); ok && strings.TrimSpace(reply) != "" {
		parsed.Reply = strings.TrimSpace(reply)
	}

	guess, ok := data["profil"].(map[string]any)
	if !ok {
		return parsed
	}
	for key, value := range guess {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" && !strings.EqualFold(trimmed, "null") && !strings.EqualFold(trimmed, "none") {
				parsed.Guess[strings.ToLower(key)] = trimmed
			}
		case bool:
			parsed.Guess[strings.ToLower(key)] = strconv.FormatBool(v)
		case float64:
			parsed.Guess[strings.ToLower(key)] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return parsed
}
