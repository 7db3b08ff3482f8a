package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/easyfit-labs/trialbot/internal/llm"
	"github.com/easyfit-labs/trialbot/internal/observability/metrics"
	"github.com/easyfit-labs/trialbot/pkg/logging"
)

// Extractor runs the hybrid pipeline: regex first, one dedicated
// low-temperature model call when the patterns found neither a date nor
// a time. Model output passes through the same validation as regex
// matches before it is accepted.
type Extractor struct {
	llm     llm.Client
	log     *logging.Logger
	metrics *metrics.BotMetrics
	now     func() time.Time
}

// New creates an Extractor. The model client may be nil, which disables
// the fallback and leaves regex-only extraction.
func New(client llm.Client, log *logging.Logger) *Extractor {
	if log == nil {
		panic("extract: logger cannot be nil")
	}
	return &Extractor{
		llm: client,
		log: log,
		now: time.Now,
	}
}

// WithClock overrides the time source. Test use only.
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	e.now = now
	return e
}

// WithMetrics attaches instrumentation. Nil metrics are a no-op.
func (e *Extractor) WithMetrics(m *metrics.BotMetrics) *Extractor {
	e.metrics = m
	return e
}

// Extract pulls booking fields out of one message. It never returns an
// error: a failed or unparseable model call degrades to whatever the
// regex pass produced.
func (e *Extractor) Extract(ctx context.Context, message string) Result {
	now := e.now()

	res := Result{}
	if g, f := ExtractFullName(message); g != "" {
		res.GivenName = Field{Value: g, Source: SourceRegex}
		res.FamilyName = Field{Value: f, Source: SourceRegex}
	}
	if email := ExtractEmail(message); email != "" {
		res.Email = Field{Value: email, Source: SourceRegex}
	}
	if date := ExtractDate(message, now); date != "" {
		res.Date = Field{Value: date, Source: SourceRegex}
	}
	if t := ExtractTime(message); t != "" {
		res.Time = Field{Value: t, Source: SourceRegex}
	}

	if res.HasSchedulePart() || e.llm == nil {
		return res
	}

	e.metrics.ObserveExtractionModelCall()
	fields, err := e.modelExtract(ctx, message)
	if err != nil {
		e.log.Warn("dedicated extraction call failed, keeping regex result", "error", err)
		return res
	}

	if res.GivenName.Value == "" && isNameToken(fields["vorname"]) {
		res.GivenName = Field{Value: fields["vorname"], Source: SourceModel}
	}
	if res.FamilyName.Value == "" && isNameToken(fields["nachname"]) {
		res.FamilyName = Field{Value: fields["nachname"], Source: SourceModel}
	}
	if res.Email.Value == "" {
		if email := ExtractEmail(fields["email"]); email != "" {
			res.Email = Field{Value: email, Source: SourceModel}
		}
	}
	if date := normalizeModelDate(fields["datum"], now); date != "" {
		res.Date = Field{Value: date, Source: SourceModel}
	}
	if t := normalizeModelTime(fields["uhrzeit"]); t != "" {
		res.Time = Field{Value: t, Source: SourceModel}
	}

	return res
}

const extractionPrompt = `Du bist ein Extraktions-Assistent für ein Fitnessstudio.
Extrahiere aus der Nachricht des Kunden die folgenden Felder, sofern vorhanden:
- vorname
- nachname
- email
- datum (Format: YYYY-MM-DD)
- uhrzeit (Format: HH:MM)

Antworte ausschließlich mit einem JSON-Objekt. Felder ohne Wert lässt du weg
oder setzt sie auf null. Erfinde keine Werte.`

// modelExtract issues the dedicated extraction call and returns the
// non-empty string fields of the JSON object in the reply.
func (e *Extractor) modelExtract(ctx context.Context, message string) (map[string]string, error) {
	resp, err := e.llm.Generate(ctx, llm.Request{
		System: extractionPrompt,
		Messages: []llm.ChatMessage{
			{Role: llm.ChatRoleUser, Content: message},
		},
		Sampling: llm.ExtractionSampling(),
	})
	if err != nil {
		return nil, fmt.Errorf("extract: model call: %w", err)
	}

	raw := resp.Text
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("extract: no JSON object in model reply")
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("extract: decode model reply: %w", err)
	}

	fields := make(map[string]string, len(parsed))
	for key, value := range parsed {
		s, ok := value.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		switch strings.ToLower(s) {
		case "", "null", "none", "unbekannt":
			continue
		}
		fields[strings.ToLower(key)] = s
	}
	return fields, nil
}

// normalizeModelDate accepts ISO or German date shapes from the model
// and funnels them through the same plausibility validation as regex
// matches.
func normalizeModelDate(s string, now time.Time) string {
	if s == "" {
		return ""
	}
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return validateDate(s, now)
	}
	return ExtractDate(s, now)
}

// normalizeModelTime accepts HH:MM or "15 Uhr" shapes from the model.
func normalizeModelTime(s string) string {
	if s == "" {
		return ""
	}
	return ExtractTime(s)
}
