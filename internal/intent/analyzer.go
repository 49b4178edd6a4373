package intent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lincunyuan/Financial-Agent/internal/logger"
	"github.com/lincunyuan/Financial-Agent/internal/models"
)

var analyzerLog = logger.New("intent:analyzer")

// 外部分类器返回实体的默认置信度
const classifierEntityConfidence = 0.8

// 关键词字段最多保留的条数
const maxKeywords = 5

// ExternalClassifier 可选的外部分类器契约。
// 调用必须携带截止时间，超时或失败即放弃，由本地流水线兜底。
type ExternalClassifier interface {
	Classify(ctx context.Context, query, formattedHistory string) (intent string, confidence float64, err error)
	ExtractEntities(ctx context.Context, query, formattedHistory string) ([]models.RawEntity, error)
}

// Options 分析器构建参数
type Options struct {
	Categories        []models.IntentCategory // 为空时使用 DefaultCategories
	Combiner          CombinerOptions
	Pronouns          []string
	ClassifierTimeout time.Duration // 外部分类器单次调用超时
}

// Analyzer 意图分析编排器。
// 解析链固定为：存储指代 → 外部分类器 → 本地评分 → 历史回溯 → general 兜底，
// 任一环节失败都降级到下一环节，绝不向调用方抛出错误。
type Analyzer struct {
	dict       *DictionaryProvider
	scorer     *Scorer
	combiner   *Combiner
	resolver   *Resolver
	classifier ExternalClassifier // 可为 nil
	categories []models.IntentCategory
	timeout    time.Duration
}

// NewAnalyzer 创建分析器，classifier 传 nil 表示仅使用本地流水线
func NewAnalyzer(dict *DictionaryProvider, opts Options, classifier ExternalClassifier) *Analyzer {
	categories := opts.Categories
	if len(categories) == 0 {
		categories = DefaultCategories()
	}
	timeout := opts.ClassifierTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Analyzer{
		dict:       dict,
		scorer:     NewScorer(compileCategories(categories)),
		combiner:   NewCombiner(opts.Combiner),
		resolver:   NewResolver(opts.Pronouns),
		classifier: classifier,
		categories: categories,
		timeout:    timeout,
	}
}

// Resolver 返回内部的代词解析器（供会话层回写时探测代词用）
func (a *Analyzer) Resolver() *Resolver {
	return a.resolver
}

// Analyze 对一次查询做完整意图分析
func (a *Analyzer) Analyze(ctx context.Context, query string, history []models.ConversationTurn, coreferences []models.CoreferenceBinding) (result *models.IntentAnalysis) {
	result = &models.IntentAnalysis{
		PrimaryIntent:      models.IntentGeneral,
		NeedsKnowledgeBase: true,
		ResolvedQuery:      query,
	}
	defer func() {
		if r := recover(); r != nil {
			analyzerLog.Error("意图分析异常: %v", r)
			*result = models.IntentAnalysis{
				PrimaryIntent:      models.IntentGeneral,
				NeedsKnowledgeBase: true,
				ResolvedQuery:      query,
				Error:              fmt.Sprintf("analyze panic: %v", r),
			}
		}
	}()

	dict := a.dict.Current()
	ex := NewExtractor(dict)

	// 1. 代词检测与存储指代解析
	pronouns := a.resolver.DetectPronouns(query)
	var resolved []models.Entity
	if len(pronouns) > 0 {
		resolved = a.resolver.ResolveBindings(query, coreferences)
		if len(resolved) > 0 {
			analyzerLog.Info("使用存储的指代关系解析代词成功: %d 条", len(resolved))
			result.ResolvedPronouns = resolved
		}
	}

	// 2. 外部分类器：存储解析未完全成功时委托，失败则落回本地流水线
	classified := false
	if a.classifier != nil && len(resolved) == 0 {
		if err := a.classifyExternal(ctx, dict, query, history, coreferences, result); err != nil {
			analyzerLog.Warn("外部分类器不可用，回退本地流水线: %v", err)
		} else {
			classified = true
		}
	}

	entities := result.Entities
	if !classified {
		// 3. 本地流水线：关键词评分 + 模式评分 + 实体提取 + 合并
		keywordScores := a.scorer.KeywordScores(query)
		patternScores := a.scorer.PatternScores(query)
		entities = append(ex.Extract(query), resolved...)
		entities = models.DedupEntities(entities)

		combined := a.combiner.Combine(keywordScores, patternScores, entities)
		winner, confidence := a.combiner.Winner(combined)
		result.PrimaryIntent = winner
		result.Confidence = confidence
	}

	// 4. 有代词但至今没有实体时，回溯历史对话
	if len(pronouns) > 0 && len(entities) == 0 {
		entities = a.resolver.ScanHistory(ex, history)
		if len(entities) > 0 {
			analyzerLog.Info("从历史对话中回溯到实体: %d 条", len(entities))
		}
	}

	// 5. 汇总实体并派生目标
	if len(entities) > 0 {
		result.Entities = models.DedupEntities(entities)
	}
	a.deriveTargets(result)

	// 6. 命中意图的静态默认值只补全提取阶段没有填过的字段
	if cat := a.category(result.PrimaryIntent); cat != nil {
		applyCategoryDefaults(result, cat)
	}

	result.Keywords = a.extractKeywords(query, result.Entities)
	result.ResolvedQuery = RewriteQuery(query, result.ResolvedPronouns)
	result.Confidence = clamp01(result.Confidence)

	analyzerLog.Info("意图分析结果: %s (置信度: %.2f)", result.PrimaryIntent, result.Confidence)
	return result
}

// classifyExternal 委托外部分类器识别意图并抽取实体。
// 单独的超时上下文约束整个外部调用，超时即放弃，不做重试。
func (a *Analyzer) classifyExternal(ctx context.Context, dict *Dictionary, query string, history []models.ConversationTurn, coreferences []models.CoreferenceBinding, result *models.IntentAnalysis) error {
	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	formatted := FormatHistory(history, coreferences)

	intentName, confidence, err := a.classifier.Classify(cctx, query, formatted)
	if err != nil {
		return err
	}
	raw, err := a.classifier.ExtractEntities(cctx, query, formatted)
	if err != nil {
		return err
	}

	result.PrimaryIntent = intentName
	result.Confidence = confidence
	result.ClassifierUsed = true
	result.Entities = models.DedupEntities(append(result.Entities, a.convertRawEntities(dict, raw)...))
	return nil
}

// convertRawEntities 将外部分类器的原始实体转为内部实体并规范化代码
func (a *Analyzer) convertRawEntities(dict *Dictionary, raw []models.RawEntity) []models.Entity {
	var entities []models.Entity
	for _, r := range raw {
		value := strings.TrimSpace(r.Value)
		if value == "" {
			continue
		}
		e := models.Entity{
			Name:       value,
			Confidence: classifierEntityConfidence,
			Source:     models.SourceClassifier,
		}
		switch r.Type {
		case "stock_name", "stock":
			e.Type = models.EntityStock
			if code, ok := dict.StockCode(value); ok {
				e.Value = code
			} else {
				e.Value = value
			}
		case "stock_code":
			e.Type = models.EntityStockCode
			e.Value = dict.NormalizeCode(value)
		case "index_name", "index":
			e.Type = models.EntityIndex
			if code, ok := dict.IndexCode(value); ok {
				e.Value = code
			} else {
				e.Value = value
			}
		case "economic_indicator":
			e.Type = models.EntityEconomic
			e.Value = value
		case "company":
			e.Type = models.EntityCompany
			e.Value = value
		default:
			// 时间等非金融实体不进入实体列表
			continue
		}
		entities = append(entities, e)
	}
	return entities
}

// deriveTargets 按实体类型派生目标代码列表
func (a *Analyzer) deriveTargets(result *models.IntentAnalysis) {
	for _, e := range result.Entities {
		switch e.Type {
		case models.EntityStock, models.EntityStockCode, models.EntityCompany:
			result.TargetSymbols = appendUnique(result.TargetSymbols, e.Value)
		case models.EntityIndex:
			result.TargetIndices = appendUnique(result.TargetIndices, e.Value)
		case models.EntityEconomic:
			result.EconomicIndicators = appendUnique(result.EconomicIndicators, e.Value)
		}
	}
}

// applyCategoryDefaults 用类别静态配置补全结果，已填过的字段不覆盖
func applyCategoryDefaults(result *models.IntentAnalysis, cat *models.IntentCategory) {
	if cat.NeedsRealTimeData != nil {
		result.NeedsRealTimeData = *cat.NeedsRealTimeData
	}
	if cat.NeedsKnowledgeBase != nil {
		result.NeedsKnowledgeBase = *cat.NeedsKnowledgeBase
	}
	if cat.NeedsHistoricalContext != nil {
		result.NeedsHistoricalContext = *cat.NeedsHistoricalContext
	}
	if cat.NeedsHistoricalData != nil {
		result.NeedsHistoricalData = *cat.NeedsHistoricalData
	}
	if cat.IsSimpleTimeQuery != nil {
		result.IsSimpleTimeQuery = *cat.IsSimpleTimeQuery
	}
	if len(result.TargetIndices) == 0 && len(cat.TargetIndices) > 0 {
		result.TargetIndices = append(result.TargetIndices, cat.TargetIndices...)
	}
	if len(result.EconomicIndicators) == 0 && len(cat.EconomicIndicators) > 0 {
		result.EconomicIndicators = append(result.EconomicIndicators, cat.EconomicIndicators...)
	}
}

func (a *Analyzer) category(name string) *models.IntentCategory {
	for i := range a.categories {
		if a.categories[i].Name == name {
			return &a.categories[i]
		}
	}
	return nil
}

// extractKeywords 汇总命中的类别关键词与实体名称，最多保留五条
func (a *Analyzer) extractKeywords(query string, entities []models.Entity) []string {
	keywords := a.scorer.MatchedKeywords(query)
	for _, e := range entities {
		if e.Name != "" {
			keywords = appendUnique(keywords, e.Name)
		}
	}
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}

// FormatHistory 将历史对话与指代关系格式化为分类器可读文本
func FormatHistory(history []models.ConversationTurn, coreferences []models.CoreferenceBinding) string {
	var sb strings.Builder
	if len(coreferences) > 0 {
		sb.WriteString("【代词指代关系】\n")
		for _, c := range coreferences {
			fmt.Fprintf(&sb, "代词'%s'指代'%s'(%s)\n", c.Pronoun, c.ReferentValue, c.ReferentType)
		}
	}
	for i, turn := range history {
		fmt.Fprintf(&sb, "用户[%d]: %s\n助手[%d]: %s\n", i+1, turn.Query, i+1, turn.Response)
	}
	return sb.String()
}

func appendUnique(list []string, value string) []string {
	if value == "" {
		return list
	}
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
