// Package classifier 对接外部大模型分类器，作为本地意图流水线之上的可选信号。
// 所有调用都受调用方传入的截止时间约束，失败即返回错误，由编排层降级。
package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lincunyuan/Financial-Agent/internal/models"
)

var (
	ErrNoChoices     = errors.New("classifier: 响应中没有候选内容")
	ErrEmptyResponse = errors.New("classifier: 响应内容为空")
)

// intentResult 意图识别的 JSON 返回结构
type intentResult struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// entityResult 实体抽取的 JSON 返回结构
type entityResult struct {
	Entities []models.RawEntity `json:"entities"`
}

// decodeJSON 解析模型返回的 JSON，容忍 markdown 代码围栏
func decodeJSON(content string, out any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ErrEmptyResponse
	}
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}
	if err := json.Unmarshal([]byte(trimmed), out); err != nil {
		return fmt.Errorf("classifier: 解析 JSON 失败: %w", err)
	}
	return nil
}
