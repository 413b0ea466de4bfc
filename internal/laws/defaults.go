package laws

// DefaultLaws is the statute list written on first boot.
var DefaultLaws = []Law{
	{Paragraph: "§ 1", Category: "StVO", Title: "Grundregeln", Description: "Die Teilnahme am Straßenverkehr erfordert ständige Vorsicht und gegenseitige Rücksicht."},
	{Paragraph: "§ 3", Category: "StVO", Title: "Geschwindigkeit", Description: "Überschreitung der zulässigen Höchstgeschwindigkeit."},
	{Paragraph: "§ 5", Category: "StVO", Title: "Überholen", Description: "Verbotswidriges Überholen, insbesondere bei unklarer Verkehrslage."},
	{Paragraph: "§ 12", Category: "StVO", Title: "Halten und Parken", Description: "Parken an verbotenen Stellen."},
	{Paragraph: "§ 37", Category: "StVO", Title: "Wechsellichtzeichen", Description: "Missachtung des Rotlichts einer Lichtzeichenanlage."},
	{Paragraph: "§ 21", Category: "StVG", Title: "Fahren ohne Fahrerlaubnis", Description: "Führen eines Kraftfahrzeugs ohne die erforderliche Fahrerlaubnis."},
	{Paragraph: "§ 24a", Category: "StVG", Title: "0,5-Promille-Grenze", Description: "Führen eines Kraftfahrzeugs unter Einfluss von Alkohol oder berauschenden Mitteln."},
	{Paragraph: "§ 29", Category: "BtMG", Title: "Unerlaubter Umgang mit Betäubungsmitteln", Description: "Anbau, Herstellung, Handel, Besitz oder Abgabe von Betäubungsmitteln ohne Erlaubnis."},
	{Paragraph: "§ 52", Category: "WaffG", Title: "Unerlaubter Waffenbesitz", Description: "Erwerb, Besitz oder Führen einer Schusswaffe ohne Erlaubnis."},
	{Paragraph: "§ 113", Category: "StGB", Title: "Widerstand gegen Vollstreckungsbeamte", Description: "Widerstand mit Gewalt oder Drohung gegen Amtsträger bei Vollstreckungshandlungen."},
	{Paragraph: "§ 114", Category: "StGB", Title: "Tätlicher Angriff auf Vollstreckungsbeamte", Description: "Tätlicher Angriff auf Amtsträger bei einer Diensthandlung."},
	{Paragraph: "§ 123", Category: "StGB", Title: "Hausfriedensbruch", Description: "Widerrechtliches Eindringen in befriedetes Besitztum."},
	{Paragraph: "§ 142", Category: "StGB", Title: "Unerlaubtes Entfernen vom Unfallort", Description: "Entfernen vom Unfallort ohne Feststellungen zu ermöglichen."},
	{Paragraph: "§ 185", Category: "StGB", Title: "Beleidigung", Description: "Angriff auf die Ehre eines anderen durch Kundgabe von Missachtung."},
	{Paragraph: "§ 211", Category: "StGB", Title: "Mord", Description: "Tötung eines Menschen unter Vorliegen eines Mordmerkmals."},
	{Paragraph: "§ 212", Category: "StGB", Title: "Totschlag", Description: "Tötung eines Menschen ohne Mordmerkmal."},
	{Paragraph: "§ 223", Category: "StGB", Title: "Körperverletzung", Description: "Körperliche Misshandlung oder Gesundheitsschädigung einer anderen Person."},
	{Paragraph: "§ 224", Category: "StGB", Title: "Gefährliche Körperverletzung", Description: "Körperverletzung mittels Waffe, gefährlichen Werkzeugs oder gemeinschaftlich."},
	{Paragraph: "§ 242", Category: "StGB", Title: "Diebstahl", Description: "Wegnahme einer fremden beweglichen Sache in Zueignungsabsicht."},
	{Paragraph: "§ 249", Category: "StGB", Title: "Raub", Description: "Wegnahme mit Gewalt gegen eine Person oder unter Drohung."},
	{Paragraph: "§ 263", Category: "StGB", Title: "Betrug", Description: "Vermögensschädigung durch Täuschung."},
	{Paragraph: "§ 303", Category: "StGB", Title: "Sachbeschädigung", Description: "Beschädigung oder Zerstörung einer fremden Sache."},
	{Paragraph: "§ 315c", Category: "StGB", Title: "Gefährdung des Straßenverkehrs", Description: "Grob verkehrswidriges und rücksichtsloses Verhalten mit konkreter Gefährdung."},
	{Paragraph: "§ 316", Category: "StGB", Title: "Trunkenheit im Verkehr", Description: "Führen eines Fahrzeugs im fahruntüchtigen Zustand."},
}
