package models

// AIProvider 外部分类器提供方
type AIProvider string

const (
	AIProviderOpenAI AIProvider = "openai" // OpenAI 兼容接口（含通义、DeepSeek 等）
	AIProviderGemini AIProvider = "gemini"
)

// AIConfig 外部分类器配置
type AIConfig struct {
	Provider  AIProvider `json:"provider" mapstructure:"provider"`
	APIKey    string     `json:"apiKey" mapstructure:"api_key"`
	BaseURL   string     `json:"baseUrl" mapstructure:"base_url"`
	ModelName string     `json:"modelName" mapstructure:"model"`
}
