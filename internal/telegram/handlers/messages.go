package handlers

const (
	msgWelcomeUnlinked = "Willkommen bei Plan-Smart! 👋\n\nDieser Chat hat die ID %d. Verknüpfe ihn mit deinem Konto:\nplansmart link --user <deine-id> --chat %d"
	msgWelcomeLinked   = "Hallo %s! 👋\n\nDein Chat ist verknüpft. Mit /hilfe siehst du, was ich kann."
	msgHelp            = "Befehle:\n/profil Dein aktuelles Wochenprofil\n/statistik Auswertung aller Wochen\n/verlauf Deine letzten Wochenprofile\n/vorschlaege Aufgaben für morgen\n/abend Impuls für die Tagesreflexion\n/hilfe Diese Übersicht"
	msgNotLinked       = "Dieser Chat ist noch mit keinem Konto verknüpft. Schick /start für eine Anleitung."
	msgGeneralError    = "Da ist leider etwas schiefgelaufen. Bitte versuch es später noch einmal."
	msgNoProfile       = "Noch kein Wochenprofil vorhanden. Es entsteht, sobald du mindestens drei Tage in einer Woche schreibst."
	msgNoSuggestions   = "Für morgen habe ich noch keine Vorschläge. Schreib ein paar Tage lang, was du verbessern möchtest."
)
