package config

type LLMConfig struct {
	ApiToken string `yaml:"token"`
	ModelID  string `yaml:"model"`
	BaseUrl  string `yaml:"base-url"`
}

func (l *LLMConfig) Token() string {
	return l.ApiToken
}

func (l *LLMConfig) Model() string {
	return l.ModelID
}

func (l *LLMConfig) BaseURL() string {
	return l.BaseUrl
}
