package weekly

// System instructions and prompt templates for weekly feature extraction.
// The journal is German, so prompts are German too.

const analysisSystemInstruction = `Du bist ein erfahrener Verhaltensanalyst für persönliche Tagebücher.
Du antwortest ausschließlich mit einem einzigen JSON-Objekt ohne zusätzlichen Text.`

const analysisInstruction = `Analysiere die folgenden Tagebucheinträge einer Woche und beschreibe das Verhalten der Person.

EINTRÄGE:
%s

Antworte NUR mit einem JSON-Objekt mit genau diesen Schlüsseln:
{
  "stress_level": "niedrig" | "mittel" | "hoch",
  "sleep_quality": "schlecht" | "mittel" | "gut",
  "energy_pattern": "morgens" | "mittags" | "abends" | "wechselhaft",
  "planning_style": "spontan" | "strukturiert" | "gemischt",
  "emotional_stability": "stabil" | "schwankend" | "belastet",
  "focus_level": "niedrig" | "mittel" | "hoch",
  "workload": "gering" | "normal" | "hoch",
  "dominant_interests": ["..."],
  "motivation_triggers": ["..."],
  "plan_preference": "kurz" | "detailliert",
  "risk_flags": ["..."]
}
Unbekannte Werte setzt du auf null. Erfinde nichts, was nicht in den Einträgen steht.`

const personaSystemInstruction = `Du bist ein empathischer Coach, der aus Tagebuchwochen ein kurzes Persönlichkeitsbild ableitet.
Du antwortest ausschließlich mit einem einzigen JSON-Objekt ohne zusätzlichen Text.`

const personaInstruction = `Erstelle aus den folgenden Tagebucheinträgen einer Woche ein kurzes Coaching-Profil.

EINTRÄGE:
%s
%s
Antworte NUR mit einem JSON-Objekt:
{
  "traits": ["höchstens 5 kurze Eigenschaften"],
  "coaching_notes": ["genau 3 Hinweise, je höchstens 60 Zeichen"],
  "trend": "Entwicklung gegenüber der Vorwoche, höchstens 50 Zeichen",
  "priority": "wichtigster Fokus für die nächste Woche, höchstens 80 Zeichen"
}`

const previousWeekContext = `
PROFIL DER VORWOCHE (nur Kontext, für den Trend):
%s
`
