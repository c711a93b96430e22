package quiz

import "github.com/verte-zerg/funnelquiz/internal/model"

var builtinVariants = map[string]func() *Content{
	"en": englishContent,
	"pt": portugueseContent,
}

// BuiltinNames returns the names of the compiled-in variants.
func BuiltinNames() []string {
	return []string{"en", "pt"}
}

// Builtin returns a fresh copy of a compiled-in variant.
func Builtin(name string) (*Content, bool) {
	fn, ok := builtinVariants[name]
	if !ok {
		return nil, false
	}
	return fn(), true
}

func canonicalQuestions(prompts [3]string, texts [3][4]string) []model.Question {
	return []model.Question{
		{
			ID:     "primary_desire",
			Prompt: prompts[0],
			Choices: []model.Choice{
				{ID: "money", Text: texts[0][0], Emoji: "💰", Value: "money"},
				{ID: "love", Text: texts[0][1], Emoji: "❤️", Value: "love"},
				{ID: "health", Text: texts[0][2], Emoji: "🌟", Value: "health"},
				{ID: "purpose", Text: texts[0][3], Emoji: "🎯", Value: "purpose"},
			},
		},
		{
			ID:     "manifestation_frequency",
			Prompt: prompts[1],
			Choices: []model.Choice{
				{ID: "daily", Text: texts[1][0], Emoji: "🔄", Value: "daily"},
				{ID: "weekly", Text: texts[1][1], Emoji: "📅", Value: "weekly"},
				{ID: "rarely", Text: texts[1][2], Emoji: "⚡", Value: "rarely"},
				{ID: "never", Text: texts[1][3], Emoji: "🚫", Value: "never"},
			},
		},
		{
			ID:     "main_block",
			Prompt: prompts[2],
			Choices: []model.Choice{
				{ID: "beliefs", Text: texts[2][0], Emoji: "🧠", Value: "beliefs"},
				{ID: "knowledge", Text: texts[2][1], Emoji: "📚", Value: "knowledge"},
				{ID: "fear", Text: texts[2][2], Emoji: "😨", Value: "fear"},
				{ID: "all", Text: texts[2][3], Emoji: "⚡", Value: "all"},
			},
		},
	}
}

func englishContent() *Content {
	return &Content{
		Name: "en",
		Hook: HookCopy{
			Headline:    "🔥 DISCOVER YOUR HIDDEN MANIFESTATION POWER",
			Subheadline: "97% of people NEVER discover their true power...",
			Teaser:      "🎁 MYSTERIOUS $18 GIFT AWAITS",
			Gift:        "Complete your manifestation profile and receive a secret $18 gift in your email within minutes",
			CTA:         "UNLOCK MY POWER + CLAIM GIFT →",
			Footnote:    "🔒 Takes only 2 minutes • 100% Free • Instant Results + $18 Gift",
		},
		Questions: canonicalQuestions(
			[3]string{
				"If you could change ONE thing instantly, what would it be?",
				"How often do you try to manifest?",
				"What's STOPPING your manifestation most?",
			},
			[3][4]string{
				{"Bank account", "True love", "Perfect health", "Life purpose"},
				{"Daily", "Weekly", "Rarely", "Never"},
				{"Limiting beliefs", "Lack of knowledge", "Fear", "All of the above"},
			},
		),
		Revelations: map[string]string{
			"money":   "💰 INTERESTING... You chose MONEY! This reveals something DEEP about your soul...",
			"love":    "❤️ FASCINATING... You chose LOVE! This reveals something POWERFUL about your heart...",
			"health":  "🌟 AMAZING... You chose HEALTH! This reveals something VITAL about your energy...",
			"purpose": "🎯 INCREDIBLE... You chose PURPOSE! This reveals something SACRED about your mission...",
		},
		RevelationCTA: "DISCOVER THE SECRET →",
		Pattern: PatternCopy{
			Headline: "ALARMING PATTERN DETECTED!",
			Suffix:   "= RARE COMBINATION!",
			CTA:      "UNCOVER MY PATTERN →",
		},
		PreEmail: PreEmailCopy{
			Headline: "YOU ARE 1 STEP AWAY FROM YOUR $97 GIFT!",
			Bullets: []string{
				"✨ Your Personalized Manifestation Profile",
				"🎁 Secret Material + Special Gift",
			},
			Prompt:   "📧 We need your email to send your profile and the secret material",
			CTA:      "GET MY GIFT NOW 🎁",
			Footnote: "⏰ Limited time offer",
		},
		Email: EmailCopy{
			Headline:   "YOUR $18 GIFT IS READY!",
			NameLabel:  "First name",
			EmailLabel: "Best email",
			CTA:        "CLAIM MY $18 GIFT →",
			Success:    "🔒 100% private. Unsubscribe anytime.",
		},
		Result: ResultCopy{
			Headline:       "🔥 YOUR TRUE POWER: %s!",
			DesireLabel:    "Your Money Desire",
			FrequencyLabel: "Your Manifestation Frequency",
			BlockLabel:     "Your Main Block",
			Truth:          "Your %s pattern is EXACTLY what creates your power... BUT it's also what creates your specific block!",
			CTA:            "DISCOVER THE 30-SECOND METHOD →",
			VSLNotice:      "The method video is on its way.",
		},
		Profiles: map[string]model.Profile{
			"money_daily": {
				ID:          "money_daily",
				Title:       "ABUNDANCE MAGNET",
				Emoji:       "💰",
				Description: "You have strong financial manifestation energy with consistent practice",
				Details:     model.ProfileDetails{Desire: "Strong", Frequency: "Daily"},
			},
			"money_rarely": {
				ID:          "money_rarely",
				Title:       "WEALTH AWAKENER",
				Emoji:       "⚡",
				Description: "You have dormant financial power waiting to be unleashed",
				Details:     model.ProfileDetails{Desire: "Strong", Frequency: "Rare"},
			},
			"love_daily": {
				ID:          "love_daily",
				Title:       "LOVE CREATOR",
				Emoji:       "❤️",
				Description: "You consistently work on manifesting heart-centered desires",
				Details:     model.ProfileDetails{Desire: "Love-Focused", Frequency: "Daily"},
			},
			"health_weekly": {
				ID:          "health_weekly",
				Title:       "VITALITY BUILDER",
				Emoji:       "🌟",
				Description: "You regularly focus on manifesting optimal health and energy",
				Details:     model.ProfileDetails{Desire: "Health-Focused", Frequency: "Weekly"},
			},
		},
		DefaultProfile: model.Profile{
			ID:          DefaultProfileID,
			Title:       "MANIFESTATION PIONEER",
			Emoji:       "🔮",
			Description: "You have unique manifestation patterns that set you apart",
		},
	}
}

func portugueseContent() *Content {
	return &Content{
		Name: "pt",
		Hook: HookCopy{
			Headline:    "🔥 DESCUBRA SEU PODER OCULTO DE MANIFESTAÇÃO",
			Subheadline: "97% das pessoas NUNCA descobrem seu verdadeiro poder...",
			Teaser:      "🎁 UM PRESENTE MISTERIOSO DE R$97 ESPERA POR VOCÊ",
			Gift:        "Complete seu perfil de manifestação e receba um presente secreto no seu email em minutos",
			CTA:         "DESBLOQUEAR MEU PODER + RESGATAR PRESENTE →",
			Footnote:    "🔒 Leva só 2 minutos • 100% Grátis • Resultado Imediato",
		},
		Questions: canonicalQuestions(
			[3]string{
				"Se você pudesse mudar UMA coisa agora, o que seria?",
				"Com que frequência você tenta manifestar?",
				"O que mais está BLOQUEANDO sua manifestação?",
			},
			[3][4]string{
				{"Conta bancária", "Amor verdadeiro", "Saúde perfeita", "Propósito de vida"},
				{"Diariamente", "Semanalmente", "Raramente", "Nunca"},
				{"Crenças limitantes", "Falta de conhecimento", "Medo", "Todas as anteriores"},
			},
		),
		Revelations: map[string]string{
			"money":   "💰 INTERESSANTE... Você escolheu DINHEIRO! Isso revela algo PROFUNDO sobre sua alma...",
			"love":    "❤️ FASCINANTE... Você escolheu AMOR! Isso revela algo PODEROSO sobre seu coração...",
			"health":  "🌟 INCRÍVEL... Você escolheu SAÚDE! Isso revela algo VITAL sobre sua energia...",
			"purpose": "🎯 EXTRAORDINÁRIO... Você escolheu PROPÓSITO! Isso revela algo SAGRADO sobre sua missão...",
		},
		RevelationCTA: "DESCOBRIR O SEGREDO →",
		Pattern: PatternCopy{
			Headline: "PADRÃO ALARMANTE DETECTADO!",
			Suffix:   "= COMBINAÇÃO RARA!",
			CTA:      "REVELAR MEU PADRÃO →",
		},
		PreEmail: PreEmailCopy{
			Headline: "VOCÊ ESTÁ A 1 PASSO DO SEU PRESENTE DE R$97!",
			Bullets: []string{
				"✨ Seu Perfil de Manifestação Personalizado",
				"🎁 Material Secreto + Presente Especial",
			},
			Prompt:   "📧 Precisamos do seu email para enviar: seu perfil personalizado + material secreto de manifestação",
			CTA:      "RECEBER MEU PRESENTE AGORA 🎁",
			Footnote: "⏰ Oferta por tempo limitado",
		},
		Email: EmailCopy{
			Headline:   "SEU PRESENTE ESTÁ PRONTO!",
			NameLabel:  "Primeiro nome",
			EmailLabel: "Seu melhor email",
			CTA:        "RESGATAR MEU PRESENTE →",
			Success:    "🔒 100% privado. Cancele quando quiser.",
		},
		Result: ResultCopy{
			Headline:       "🔥 SEU VERDADEIRO PODER: %s!",
			DesireLabel:    "Seu Desejo",
			FrequencyLabel: "Sua Frequência de Manifestação",
			BlockLabel:     "Seu Principal Bloqueio",
			Truth:          "Seu padrão %s é EXATAMENTE o que cria seu poder... MAS também é o que cria seu bloqueio específico!",
			CTA:            "DESCOBRIR O MÉTODO DE 30 SEGUNDOS →",
			VSLNotice:      "O vídeo do método está a caminho.",
		},
		Profiles: map[string]model.Profile{
			"money_daily": {
				ID:          "money_daily",
				Title:       "ÍMÃ DA ABUNDÂNCIA",
				Emoji:       "💰",
				Description: "Você tem uma forte energia de manifestação financeira com prática constante",
				Details:     model.ProfileDetails{Desire: "Forte", Frequency: "Diária"},
			},
			"money_rarely": {
				ID:          "money_rarely",
				Title:       "DESPERTADOR DA RIQUEZA",
				Emoji:       "⚡",
				Description: "Você tem um poder financeiro adormecido esperando para ser liberado",
				Details:     model.ProfileDetails{Desire: "Forte", Frequency: "Rara"},
			},
			"love_daily": {
				ID:          "love_daily",
				Title:       "CRIADOR DO AMOR",
				Emoji:       "❤️",
				Description: "Você trabalha constantemente para manifestar desejos do coração",
				Details:     model.ProfileDetails{Desire: "Foco no Amor", Frequency: "Diária"},
			},
			"health_weekly": {
				ID:          "health_weekly",
				Title:       "CONSTRUTOR DA VITALIDADE",
				Emoji:       "🌟",
				Description: "Você foca regularmente em manifestar saúde e energia ideais",
				Details:     model.ProfileDetails{Desire: "Foco na Saúde", Frequency: "Semanal"},
			},
		},
		DefaultProfile: model.Profile{
			ID:          DefaultProfileID,
			Title:       "PIONEIRO DA MANIFESTAÇÃO",
			Emoji:       "🔮",
			Description: "Você tem padrões únicos de manifestação que te diferenciam",
		},
	}
}
