package assistant

// messages holds the reply templates of one language.
type messages struct {
	categorySpend      string // amount, category
	topHeader          string
	topLine            string // category, amount
	notEnoughData      string
	advice             string
	usageHint          string
	clarifyAmount      string
	transactionCreated string // kind, amount, category
	goalCreated        string // name, amount
	defaultGoalName    string
	expense            string
	income             string
	categoryNames      map[string]string
}

var catalog = map[Language]messages{
	Spanish: {
		categorySpend: "Has gastado %s en %s.",
		topHeader:     "Tus mayores gastos son:",
		topLine:       "• %s: %s",
		notEnoughData: "Aún no tengo suficientes datos para analizar tus gastos.",
		advice: "Un buen punto de partida es la regla 50/30/20: 50% para necesidades, " +
			"30% para gustos y 20% para ahorro. Revisa tus gastos más altos cada semana " +
			"y define una meta de ahorro concreta.",
		usageHint: "Puedo registrar gastos e ingresos (\"gasté 20k en uber ayer\"), " +
			"crear metas (\"meta de ahorro de 5 millones para un viaje\") o responder " +
			"preguntas como \"¿cuánto gasté en comida?\" o \"¿cuáles son mis mayores gastos?\".",
		clarifyAmount:      "No pude identificar el monto. ¿Cuánto fue?",
		transactionCreated: "Listo, preparé un %s de %s en %s. ¿Lo confirmo?",
		goalCreated:        "Listo, preparé la meta \"%s\" por %s. ¿La confirmo?",
		defaultGoalName:    "Meta de ahorro",
		expense:            "gasto",
		income:             "ingreso",
		categoryNames: map[string]string{
			CategoryFood:          "Comida",
			CategoryTransport:     "Transporte",
			CategoryHousing:       "Vivienda",
			CategoryUtilities:     "Servicios",
			CategoryHealth:        "Salud",
			CategoryEntertainment: "Entretenimiento",
			CategoryShopping:      "Compras",
			CategoryEducation:     "Educación",
			CategorySalary:        "Salario",
			CategoryMisc:          "Otros",
		},
	},
	English: {
		categorySpend: "You have spent %s on %s.",
		topHeader:     "Your top expenses are:",
		topLine:       "• %s: %s",
		notEnoughData: "I don't have enough data yet to analyze your expenses.",
		advice: "A good starting point is the 50/30/20 rule: 50% for needs, 30% for wants " +
			"and 20% for savings. Review your biggest expenses every week and set a " +
			"concrete savings goal.",
		usageHint: "I can record expenses and income (\"spent 20k on uber yesterday\"), " +
			"create goals (\"savings goal of 5 million for a trip\") or answer questions " +
			"like \"how much did I spend on food?\" or \"what are my top expenses?\".",
		clarifyAmount:      "I couldn't find the amount. How much was it?",
		transactionCreated: "Done, I drafted an %s of %s in %s. Shall I save it?",
		goalCreated:        "Done, I drafted the goal \"%s\" for %s. Shall I save it?",
		defaultGoalName:    "Savings goal",
		expense:            "expense",
		income:             "income",
	},
}

func messagesFor(lang Language) messages {
	if m, ok := catalog[lang]; ok {
		return m
	}
	return catalog[Spanish]
}

// categoryName returns the display name of a category.
func (m messages) categoryName(category string) string {
	if name, ok := m.categoryNames[category]; ok {
		return name
	}
	return category
}
