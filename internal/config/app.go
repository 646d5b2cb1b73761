package config

const defaultPersona = `Eres un asesor financiero de élite para un cliente en Perú. ` +
	`Tu tono es formal, directo, profesional y serio. Usas "Usted". ` +
	`La moneda es Soles (S/). ` +
	`Tu objetivo es obtener información financiera precisa para crear un plan. ` +
	`No des consejos largos todavía, solo haz las preguntas necesarias según la fase de la conversación.`

const defaultCurrencySymbol = "S/"

type AppConfig struct {
	CurrencySign       string `yaml:"currency-symbol"`
	PersonaInstruction string `yaml:"persona"`
	TurnTimeoutSeconds int64  `yaml:"turn-timeout-seconds"`
}

func (s *AppConfig) CurrencySymbol() string {
	if s.CurrencySign == "" {
		return defaultCurrencySymbol
	}
	return s.CurrencySign
}

func (s *AppConfig) Persona() string {
	if s.PersonaInstruction == "" {
		return defaultPersona
	}
	return s.PersonaInstruction
}

func (s *AppConfig) TurnTimeout() int64 {
	return s.TurnTimeoutSeconds
}
