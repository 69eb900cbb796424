package analysis

// BuildPrompt returns the appraisal instructions sent with the photos.
func BuildPrompt() string {
	return `Tu es un expert en bijoux anciens pour le marché suisse. Analyse ces photos d'un même bijou.
Retourne obligatoirement un objet JSON pur, sans texte autour, avec ces champs :
- title: un titre prestigieux
- description: description d'expert (métal, style, pierres, époque) mentionnant l'envoi par la Poste Suisse
- price: estimation en CHF (nombre entier)
- tags: tableau de 4 mots-clés (ex: ["or", "vintage", "diamant", "bague"])`
}
