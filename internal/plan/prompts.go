package plan

const morningSystemInstruction = `Du bist ein empathischer Produktivitäts-Coach.
Du erstellst motivierende, konkrete Tagespläne auf Deutsch.`

const morningInstruction = `Erstelle einen persönlichen Plan für heute für %s.

KONTEXT:
- Stadt: %s
- Wetter: %s
- Schlaf: %s
- Letzte Einträge:
%s
- Vorhaben für heute (gestern notiert): %s
- Wochenprofil: %s%s

AUSGABE-REGELN:
- Beginne mit "Guten Morgen %s"
- Wenn im Vorhaben Uhrzeiten stehen, nutze eine Zeitleiste im Format HH:MM
- Sonst 4 bis 6 konkrete Punkte
- Maximal 170 Wörter
- Ende mit genau einem Emoji
- Kein Fettdruck`

const coachingNotesContext = `
- Coaching-Hinweise der Woche:
%s`

const summarySystemInstruction = `Du bist ein einfühlsamer Tagebuch-Assistent.
Du fasst Einträge kurz und wertschätzend auf Deutsch zusammen.`

const summaryInstruction = `Fasse den folgenden Tagebucheintrag zusammen.

VERGANGEN (was lief gut):
%s

ZUKUNFT (was ich verbessern will):
%s

JETZT (wie ich mich fühle):
%s

REGELN:
- Formuliere den Zukunftsteil als Plan, nicht als Rückblick
- Maximal 50 Wörter
- Ende mit einem passenden Emoji`

const eveningSystemInstruction = `Du bist ein empathischer Coach für Tagesreflexion. Sei warmherzig, kurz und ermutigend.`

const eveningInstruction = `Erstelle eine kurze, einladende Nachricht für %s zur Tagesreflexion am Abend.

Plan des Tages (Auszug):
%s

REGELN:
- Maximal 40 Wörter
- Lade zur Reflexion ein, ohne zu werten
- Ende mit einem Emoji`

const eveningFallback = "Hallo %s! 🌙\n\nWie war dein Tag heute? Zeit für eine kurze Reflexion!"

const suggestionSystemInstruction = `Du erkennst wiederkehrende Aufgaben in Tagebüchern.
Du antwortest ausschließlich mit einem JSON-Array aus Strings, ohne zusätzlichen Text.`

const suggestionInstruction = `Hier sind die Vorhaben der letzten drei Wochen:
%s

Morgen ist %s. Welche Aufgaben wiederholen sich an diesem Wochentag oder regelmäßig?
Schlage höchstens 5 Aufgaben für morgen vor, jede höchstens 40 Zeichen lang.
Antworte NUR mit einem JSON-Array, z.B. ["Sport machen", "Wochenplanung"].
Wenn es kein Muster gibt, antworte mit [].`
