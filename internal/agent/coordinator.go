// Package agent 编排一次完整的问答流程：
// 读取会话上下文、意图分析、按意图取数、生成回复并回写会话状态。
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lincunyuan/Financial-Agent/internal/intent"
	"github.com/lincunyuan/Financial-Agent/internal/logger"
	"github.com/lincunyuan/Financial-Agent/internal/models"
	"github.com/lincunyuan/Financial-Agent/internal/pkg/textutil"
	"github.com/lincunyuan/Financial-Agent/internal/services"
	"github.com/lincunyuan/Financial-Agent/internal/session"
)

var coordLog = logger.New("agent:coordinator")

// Coordinator 问答协调器
type Coordinator struct {
	sessions       *session.Manager
	analyzer       *intent.Analyzer
	market         *services.MarketService
	news           *services.NewsService
	defaultPronoun string
}

// NewCoordinator 创建协调器
func NewCoordinator(sessions *session.Manager, analyzer *intent.Analyzer, market *services.MarketService, news *services.NewsService, defaultPronoun string) *Coordinator {
	if defaultPronoun == "" {
		defaultPronoun = "它"
	}
	return &Coordinator{
		sessions:       sessions,
		analyzer:       analyzer,
		market:         market,
		news:           news,
		defaultPronoun: defaultPronoun,
	}
}

// Analyze 仅做意图分析，不产生回复也不写会话
func (c *Coordinator) Analyze(ctx context.Context, userID, query string) *models.IntentAnalysis {
	history := c.sessions.History(userID)
	bindings := c.sessions.GetAll(userID)
	return c.analyzer.Analyze(ctx, query, history, bindings)
}

// ProcessQuery 处理一次用户查询的完整流程
func (c *Coordinator) ProcessQuery(ctx context.Context, userID, query string) *models.ChatResponse {
	history := c.sessions.History(userID)
	bindings := c.sessions.GetAll(userID)

	analysis := c.analyzer.Analyze(ctx, query, history, bindings)

	// 简单时间查询直接作答，不走取数流程
	if analysis.IsSimpleTimeQuery {
		response := textutil.InsertCurrentTime(query)
		c.storeTurn(userID, query, response, analysis)
		return &models.ChatResponse{
			UserID:        userID,
			Response:      response,
			Intent:        models.IntentTimeQuery,
			Confidence:    analysis.Confidence,
			ResolvedQuery: analysis.ResolvedQuery,
		}
	}

	response := c.buildResponse(ctx, analysis)

	c.storeTurn(userID, query, response, analysis)
	c.storeCoreferences(userID, analysis)

	return &models.ChatResponse{
		UserID:        userID,
		Response:      response,
		Intent:        analysis.PrimaryIntent,
		Confidence:    analysis.Confidence,
		Entities:      analysis.Entities,
		ResolvedQuery: analysis.ResolvedQuery,
		Error:         analysis.Error,
	}
}

// ClearSession 清空用户会话
func (c *Coordinator) ClearSession(userID string) error {
	return c.sessions.Clear(userID)
}

// History 返回用户对话历史
func (c *Coordinator) History(userID string) []models.ConversationTurn {
	return c.sessions.History(userID)
}

// buildResponse 按意图取数并格式化回复，任何取数失败都降级为提示文本
func (c *Coordinator) buildResponse(ctx context.Context, analysis *models.IntentAnalysis) string {
	var sections []string

	switch analysis.PrimaryIntent {
	case models.IntentSpecificStock, models.IntentStockHistorical:
		if len(analysis.TargetSymbols) > 0 {
			if text := c.fetchStocks(ctx, analysis.TargetSymbols); text != "" {
				sections = append(sections, text)
			}
		}
	case models.IntentStockMarket:
		if text := c.fetchIndices(ctx, analysis.TargetIndices); text != "" {
			sections = append(sections, text)
		}
		if len(analysis.TargetSymbols) > 0 {
			if text := c.fetchStocks(ctx, analysis.TargetSymbols); text != "" {
				sections = append(sections, text)
			}
		}
	case models.IntentMarketNews:
		if text := c.fetchNews(ctx); text != "" {
			sections = append(sections, text)
		}
	case models.IntentEconomicAnalysis:
		if len(analysis.EconomicIndicators) > 0 {
			sections = append(sections,
				fmt.Sprintf("您关注的经济指标：%s。当前暂无接入的宏观数据源，建议参考国家统计局最新发布。",
					strings.Join(analysis.EconomicIndicators, "、")))
		}
	case models.IntentInvestmentAdvice:
		sections = append(sections, "⚠️ 风险提示：投资有风险，决策需谨慎。")
		if len(analysis.TargetSymbols) > 0 {
			if text := c.fetchStocks(ctx, analysis.TargetSymbols); text != "" {
				sections = append(sections, text)
			}
		}
	}

	if len(sections) == 0 {
		return fmt.Sprintf("已识别您的问题类型为「%s」。%s",
			models.IntentDescription(analysis.PrimaryIntent),
			"暂时没有可展示的数据，请尝试指明具体的股票或指数。")
	}
	return strings.Join(sections, "\n\n")
}

func (c *Coordinator) fetchStocks(ctx context.Context, symbols []string) string {
	stocks, err := c.market.GetStockRealTimeData(ctx, symbols...)
	if err != nil {
		coordLog.Warn("获取股票行情失败: %v", err)
		return "实时行情暂时不可用，请稍后再试。"
	}
	var sb strings.Builder
	for _, s := range stocks {
		fmt.Fprintf(&sb, "【%s(%s)】价格:%.2f 涨跌:%+.2f(%+.2f%%) 开盘:%.2f 最高:%.2f 最低:%.2f 成交量:%d\n",
			s.Name, s.Symbol, s.Price, s.Change, s.ChangePercent, s.Open, s.High, s.Low, s.Volume)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (c *Coordinator) fetchIndices(ctx context.Context, codes []string) string {
	indices, err := c.market.GetMarketIndices(ctx, codes...)
	if err != nil {
		coordLog.Warn("获取指数行情失败: %v", err)
		return "大盘行情暂时不可用，请稍后再试。"
	}
	var sb strings.Builder
	sb.WriteString("大盘行情：\n")
	for _, idx := range indices {
		fmt.Fprintf(&sb, "%s: %.2f (%+.2f%%)\n", idx.Name, idx.Price, idx.ChangePercent)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (c *Coordinator) fetchNews(ctx context.Context) string {
	items, err := c.news.GetLatestNews(ctx)
	if err != nil {
		coordLog.Warn("获取财经新闻失败: %v", err)
		return "财经新闻暂时不可用，请稍后再试。"
	}
	var sb strings.Builder
	sb.WriteString("最新财经新闻：\n")
	for i, item := range items {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, item.Title)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// storeTurn 存储一轮对话，失败只记录日志不影响返回
func (c *Coordinator) storeTurn(userID, query, response string, analysis *models.IntentAnalysis) {
	metadata := &models.TurnMetadata{
		Intent:   analysis.PrimaryIntent,
		Entities: analysis.Entities,
	}
	if err := c.sessions.StoreConversation(userID, query, response, metadata); err != nil {
		coordLog.Warn("存储对话历史失败: %v", err)
	}
}

// storeCoreferences 回写指代关系。
// 本轮解析出了代词时持久化解析结果；否则为每个可指代实体
// 预存一条默认代词的指代关系，供后续轮次使用。
func (c *Coordinator) storeCoreferences(userID string, analysis *models.IntentAnalysis) {
	now := time.Now()
	if len(analysis.ResolvedPronouns) > 0 {
		for _, e := range analysis.ResolvedPronouns {
			c.sessions.Add(userID, models.CoreferenceBinding{
				Pronoun:        e.Pronoun,
				ReferentType:   string(e.Type),
				ReferentTarget: referentTarget(e.Type),
				ReferentValue:  displayValue(e),
				Timestamp:      now,
			})
		}
		return
	}
	for _, e := range analysis.Entities {
		if !e.Referable() {
			continue
		}
		c.sessions.Add(userID, models.CoreferenceBinding{
			Pronoun:        c.defaultPronoun,
			ReferentType:   string(e.Type),
			ReferentTarget: referentTarget(e.Type),
			ReferentValue:  displayValue(e),
			Timestamp:      now,
		})
	}
}

// referentTarget 实体类型对应的原始标注类型
func referentTarget(t models.EntityType) string {
	switch t {
	case models.EntityStock:
		return "stock_name"
	case models.EntityStockCode:
		return "stock_code"
	case models.EntityIndex:
		return "index_name"
	default:
		return string(t)
	}
}

// displayValue 优先使用展示名称作为指代值，便于改写查询时可读
func displayValue(e models.Entity) string {
	if e.Name != "" {
		return e.Name
	}
	return e.Value
}
