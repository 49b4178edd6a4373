package classifier

import (
	"context"

	"google.golang.org/genai"

	"github.com/lincunyuan/Financial-Agent/internal/logger"
	"github.com/lincunyuan/Financial-Agent/internal/models"
)

var geminiLog = logger.New("classifier:gemini")

// GeminiClassifier 基于 Gemini 接口的分类器
type GeminiClassifier struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClassifier 创建 Gemini 分类器
func NewGeminiClassifier(ctx context.Context, cfg *models.AIConfig) (*GeminiClassifier, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClassifier{client: client, modelName: cfg.ModelName}, nil
}

// Classify 识别查询意图
func (c *GeminiClassifier) Classify(ctx context.Context, query, formattedHistory string) (string, float64, error) {
	content, err := c.complete(ctx, buildIntentPrompt(query, formattedHistory))
	if err != nil {
		return "", 0, err
	}
	var result intentResult
	if err := decodeJSON(content, &result); err != nil {
		return "", 0, err
	}
	if result.Intent == "" {
		result.Intent = models.IntentGeneral
	}
	geminiLog.Debug("意图识别: %s (%.2f)", result.Intent, result.Confidence)
	return result.Intent, result.Confidence, nil
}

// ExtractEntities 抽取查询中的金融实体
func (c *GeminiClassifier) ExtractEntities(ctx context.Context, query, formattedHistory string) ([]models.RawEntity, error) {
	content, err := c.complete(ctx, buildEntityPrompt(query, formattedHistory))
	if err != nil {
		return nil, err
	}
	var result entityResult
	if err := decodeJSON(content, &result); err != nil {
		return nil, err
	}
	return result.Entities, nil
}

// complete 发起一次 JSON 生成
func (c *GeminiClassifier) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.1),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
