package classifier

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lincunyuan/Financial-Agent/internal/logger"
	"github.com/lincunyuan/Financial-Agent/internal/models"
)

var openaiLog = logger.New("classifier:openai")

// OpenAIClassifier 基于 OpenAI 兼容接口的分类器，支持通义、DeepSeek 等自定义 BaseURL
type OpenAIClassifier struct {
	client    *openai.Client
	modelName string
}

// NewOpenAIClassifier 创建 OpenAI 兼容分类器
func NewOpenAIClassifier(cfg *models.AIConfig) *OpenAIClassifier {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIClassifier{
		client:    openai.NewClientWithConfig(clientCfg),
		modelName: cfg.ModelName,
	}
}

// Classify 识别查询意图
func (c *OpenAIClassifier) Classify(ctx context.Context, query, formattedHistory string) (string, float64, error) {
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
	openaiLog.Debug("意图识别: %s (%.2f)", result.Intent, result.Confidence)
	return result.Intent, result.Confidence, nil
}

// ExtractEntities 抽取查询中的金融实体
func (c *OpenAIClassifier) ExtractEntities(ctx context.Context, query, formattedHistory string) ([]models.RawEntity, error) {
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

// complete 发起一次 JSON 补全
func (c *OpenAIClassifier) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.modelName,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
