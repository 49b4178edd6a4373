package classifier

import (
	"context"
	"fmt"

	"github.com/lincunyuan/Financial-Agent/internal/intent"
	"github.com/lincunyuan/Financial-Agent/internal/models"
)

// New 按提供商创建分类器实例
func New(ctx context.Context, cfg *models.AIConfig) (intent.ExternalClassifier, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, fmt.Errorf("classifier: 缺少 API 密钥")
	}
	switch cfg.Provider {
	case models.AIProviderOpenAI:
		return NewOpenAIClassifier(cfg), nil
	case models.AIProviderGemini:
		return NewGeminiClassifier(ctx, cfg)
	default:
		return nil, fmt.Errorf("classifier: 不支持的提供商: %s", cfg.Provider)
	}
}
