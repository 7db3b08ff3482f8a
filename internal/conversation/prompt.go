package conversation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/easyfit-labs/trialbot/internal/profile"
)

// German weekday names, indexed by time.Weekday.
var wochentage = [7]string{
	"Sonntag", "Montag", "Dienstag", "Mittwoch",
	"Donnerstag", "Freitag", "Samstag",
}

const systemPromptTemplate = `Du bist der freundliche WhatsApp-Assistent eines Fitnessstudios.
Heute ist {{WOCHENTAG}}, der {{DATUM}}.

Kunde: {{NAME}} (Status: {{STATUS}})
Bekanntes Profil: {{PROFIL}}

Deine Aufgaben:
- Beantworte Fragen zum Studio kurz und freundlich per Du.
- Biete Interessenten ein kostenloses Probetraining an und sammle dafür
  Vorname, Nachname und E-Mail-Adresse ein.
- Frage nach Wunschdatum und Uhrzeit, sobald die Kontaktdaten vorliegen.

Antworte IMMER mit genau einem JSON-Objekt in dieser Form:
{"reply": "deine Antwort an den Kunden", "profil": {"given_name": null, "family_name": null, "email": null, "fitness_goal": null}}
Setze im Profil nur Felder, die der Kunde in seiner Nachricht genannt hat.
Lass alle anderen Felder auf null. Erfinde niemals Werte.`

// customer status labels surfaced to the model.
const (
	statusNewLead   = "neuer Interessent"
	statusNameKnown = "Name bekannt"
	statusBooked    = "Probetraining gebucht"
)

// BuildSystemPrompt renders the conversational system prompt for one
// turn from the stored profile and the studio-local clock.
func BuildSystemPrompt(p profile.Profile, now time.Time) string {
	name := "noch unbekannt"
	if p.GivenName != "" {
		name = strings.TrimSpace(p.GivenName + " " + p.FamilyName)
	}

	status := statusNewLead
	switch {
	case p.LastBookingID != "":
		status = statusBooked
	case p.GivenName != "":
		status = statusNameKnown
	}

	prompt := systemPromptTemplate
	prompt = strings.ReplaceAll(prompt, "{{WOCHENTAG}}", wochentage[now.Weekday()])
	prompt = strings.ReplaceAll(prompt, "{{DATUM}}", now.Format("02.01.2006"))
	prompt = strings.ReplaceAll(prompt, "{{NAME}}", name)
	prompt = strings.ReplaceAll(prompt, "{{STATUS}}", status)
	prompt = strings.ReplaceAll(prompt, "{{PROFIL}}", profileSummary(p))
	return prompt
}

// profileSummary renders the known profile fields as compact JSON for
// the prompt, or a "keine Daten" marker when nothing is known yet.
func profileSummary(p profile.Profile) string {
	known := map[string]string{}
	if p.GivenName != "" {
		known["given_name"] = p.GivenName
	}
	if p.FamilyName != "" {
		known["family_name"] = p.FamilyName
	}
	if p.Email != "" {
		known["email"] = p.Email
	}
	if p.Date != "" {
		known["datum"] = p.Date
	}
	if p.Time != "" {
		known["uhrzeit"] = p.Time
	}
	for key, value := range p.Qualification {
		known[key] = value
	}
	if len(known) == 0 {
		return "keine Daten"
	}
	data, err := json.Marshal(known)
	if err != nil {
		return "keine Daten"
	}
	return string(data)
}

// FormatGermanDate renders an ISO date as DD.MM.YYYY for user-facing
// messages. Unparseable input is returned unchanged.
func FormatGermanDate(iso string) string {
	d, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return fmt.Sprintf("%02d.%02d.%d", d.Day(), int(d.Month()), d.Year())
}
