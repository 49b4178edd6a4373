package intent

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lincunyuan/Financial-Agent/internal/logger"
	"github.com/lincunyuan/Financial-Agent/internal/models"
)

var corefLog = logger.New("intent:coref")

// CoreferenceStore 指代关系存储契约，实现位于会话层。
// 存储不保证代词唯一，同一代词的冲突由解析端按时间戳就近取胜。
type CoreferenceStore interface {
	Add(userID string, binding models.CoreferenceBinding) bool
	GetAll(userID string) []models.CoreferenceBinding
}

// Resolver 代词解析器
type Resolver struct {
	pronouns []string
}

// NewResolver 创建代词解析器
func NewResolver(pronouns []string) *Resolver {
	return &Resolver{pronouns: pronouns}
}

// DetectPronouns 返回查询中出现的代词（去重，保持配置顺序）
func (r *Resolver) DetectPronouns(query string) []string {
	var detected []string
	for _, pronoun := range r.pronouns {
		if strings.Contains(query, pronoun) {
			detected = append(detected, pronoun)
		}
	}
	return detected
}

// ResolveBindings 用存储的指代关系解析查询中的代词。
// 每个代词只取时间戳最近的一条绑定，解析结果置信度固定 0.95。
func (r *Resolver) ResolveBindings(query string, bindings []models.CoreferenceBinding) []models.Entity {
	detected := r.DetectPronouns(query)
	if len(detected) == 0 || len(bindings) == 0 {
		return nil
	}

	detectedSet := make(map[string]bool, len(detected))
	for _, p := range detected {
		detectedSet[p] = true
	}

	candidates := make([]models.CoreferenceBinding, 0, len(bindings))
	for _, b := range bindings {
		if detectedSet[b.Pronoun] {
			candidates = append(candidates, b)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Timestamp.After(candidates[j].Timestamp)
	})

	var resolved []models.Entity
	taken := make(map[string]bool, len(detected))
	for _, b := range candidates {
		if taken[b.Pronoun] {
			continue
		}
		taken[b.Pronoun] = true
		resolved = append(resolved, bindingEntity(b))
		if len(taken) == len(detected) {
			break
		}
	}
	return resolved
}

// bindingEntity 将存储的绑定转为解析实体
func bindingEntity(b models.CoreferenceBinding) models.Entity {
	entityType := models.EntityType(b.ReferentType)
	if b.ReferentType == "" {
		entityType = models.EntityStock
	}
	return models.Entity{
		Type:       entityType,
		Value:      b.ReferentValue,
		Name:       b.ReferentValue,
		Confidence: corefConfidence,
		Source:     models.SourceCorefStore,
		Pronoun:    b.Pronoun,
	}
}

// ScanHistory 按时间倒序回溯历史对话提取实体。
// 先看该轮存储的元数据，再对查询与回复重跑提取器；第一轮有产出即停止。
func (r *Resolver) ScanHistory(ex *Extractor, history []models.ConversationTurn) []models.Entity {
	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		if turn.Metadata != nil && len(turn.Metadata.Entities) > 0 {
			corefLog.Debug("从历史元数据取得实体: %d 条", len(turn.Metadata.Entities))
			return markHistorySource(turn.Metadata.Entities)
		}
		if entities := ex.Extract(turn.Query); len(entities) > 0 {
			return markHistorySource(entities)
		}
		if entities := ex.Extract(turn.Response); len(entities) > 0 {
			return markHistorySource(entities)
		}
	}
	return nil
}

func markHistorySource(entities []models.Entity) []models.Entity {
	marked := make([]models.Entity, len(entities))
	for i, e := range entities {
		e.Source = models.SourceHistory
		marked[i] = e
	}
	return marked
}

// RewriteQuery 将解析出的代词替换为指代实体，生成改写后的查询。
// 先替换更长的代词，避免短代词命中长代词的子串。
func RewriteQuery(query string, resolved []models.Entity) string {
	if len(resolved) == 0 {
		return query
	}
	ordered := make([]models.Entity, len(resolved))
	copy(ordered, resolved)
	sort.SliceStable(ordered, func(i, j int) bool {
		return utf8.RuneCountInString(ordered[i].Pronoun) > utf8.RuneCountInString(ordered[j].Pronoun)
	})

	result := query
	for _, e := range ordered {
		value := e.Name
		if value == "" {
			value = e.Value
		}
		if e.Pronoun == "" || value == "" {
			continue
		}
		if strings.Contains(result, e.Pronoun) {
			result = strings.ReplaceAll(result, e.Pronoun, value)
		}
	}
	return result
}
