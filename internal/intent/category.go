package intent

import (
	"regexp"
	"strings"

	"github.com/lincunyuan/Financial-Agent/internal/models"
)

func boolPtr(b bool) *bool { return &b }

// DefaultCategories 内置意图类别定义。
// 关键词与模式均为中文金融场景的经验集合，priority 控制同时命中时的偏好。
func DefaultCategories() []models.IntentCategory {
	return []models.IntentCategory{
		{
			Name:     models.IntentMarketNews,
			Keywords: []string{"新闻", "要闻", "资讯", "动态", "消息", "头条", "快讯"},
			Patterns: []string{
				`.*今日.*财经.*新闻`,
				`.*最新.*市场.*动态`,
				`.*有什么.*新闻`,
				`.*财经.*消息`,
				`.*市场.*资讯`,
			},
			Priority:           0.9,
			NeedsRealTimeData:  boolPtr(true),
			NeedsKnowledgeBase: boolPtr(true),
		},
		{
			Name:     models.IntentStockMarket,
			Keywords: []string{"股市", "大盘", "行情", "指数", "A股", "沪深", "涨跌", "走势"},
			Patterns: []string{
				`.*今天.*股市`,
				`.*大盘.*走势`,
				`.*指数.*表现`,
				`.*A股.*如何`,
				`.*市场.*行情`,
				`.*涨.*还是.*跌`,
			},
			Priority:          0.8,
			NeedsRealTimeData: boolPtr(true),
			TargetIndices:     []string{"000001.SS", "399001.SZ", "399006.SZ"},
		},
		{
			Name:     models.IntentSpecificStock,
			Keywords: []string{"茅台", "腾讯", "苹果", "股票", "股价", "个股", "代码"},
			Patterns: []string{
				`.*(\w+)(股票|股价|行情)`,
				`.*(\w+).*(多少|价格)`,
				`.*代码.*(\d+)`,
				`.*(\w+).*(涨|跌)`,
			},
			Priority:          0.7,
			NeedsRealTimeData: boolPtr(true),
		},
		{
			Name:     models.IntentStockHistorical,
			Keywords: []string{"历史", "日K", "K线", "走势", "历史数据", "历史行情", "过往表现", "图表", "走势图"},
			Patterns: []string{
				`.*(\w+).*历史.*(K线|数据|走势|行情)`,
				`.*(\w+).*日K.*(线|数据|图表)`,
				`.*(\w+).*过往.*(表现|走势)`,
				`.*(\w+).*(历史|过去).*价格`,
				`.*(\w+).*走势图`,
				`.*(\w+).*图表`,
			},
			Priority:            0.8,
			NeedsRealTimeData:   boolPtr(true),
			NeedsHistoricalData: boolPtr(true),
		},
		{
			Name:     models.IntentEconomicAnalysis,
			Keywords: []string{"GDP", "CPI", "经济", "通胀", "利率", "货币政策", "宏观经济"},
			Patterns: []string{
				`.*经济.*数据`,
				`.*GDP.*增长`,
				`.*CPI.*如何`,
				`.*通胀.*情况`,
				`.*利率.*政策`,
			},
			Priority:           0.6,
			NeedsRealTimeData:  boolPtr(true),
			EconomicIndicators: []string{"GDP", "CPI", "PPI"},
		},
		{
			Name:     models.IntentInvestmentAdvice,
			Keywords: []string{"建议", "推荐", "买什么", "投资", "配置", "操作", "策略"},
			Patterns: []string{
				`.*投资.*建议`,
				`.*买.*什么.*股票`,
				`.*如何.*配置`,
				`.*操作.*策略`,
				`.*推荐.*个股`,
			},
			Priority:               0.5,
			NeedsHistoricalContext: boolPtr(true),
			NeedsKnowledgeBase:     boolPtr(true),
		},
		{
			Name:     models.IntentTimeQuery,
			Keywords: []string{"今天", "现在", "日期", "时间", "周几", "星期"},
			Patterns: []string{
				`.*今天.*几号`,
				`.*现在.*几点`,
				`.*星期.*几`,
				`.*周.*几`,
				`.*什么.*时间`,
			},
			Priority:          0.3,
			IsSimpleTimeQuery: boolPtr(true),
		},
	}
}

// compiledCategory 预编译后的意图类别
type compiledCategory struct {
	models.IntentCategory
	patterns []*regexp.Regexp // 与 rawPatterns 一一对应
	raw      []string         // 编译成功的原始模式串，用于复杂度加成
}

// compileCategories 预编译所有类别的正则。
// \w 在 RE2 中只覆盖 ASCII，这里放宽为任意字母数字以匹配中文；
// 单条模式编译失败只记录并跳过，不影响该类别的其余模式与其他类别。
func compileCategories(categories []models.IntentCategory) []compiledCategory {
	compiled := make([]compiledCategory, 0, len(categories))
	for _, cat := range categories {
		cc := compiledCategory{IntentCategory: cat}
		for _, pattern := range cat.Patterns {
			widened := strings.ReplaceAll(pattern, `\w`, `[\p{L}\p{N}_]`)
			re, err := regexp.Compile("(?i)" + widened)
			if err != nil {
				scoreLog.Warn("意图 %s 的模式编译失败，已跳过 %q: %v", cat.Name, pattern, err)
				continue
			}
			cc.patterns = append(cc.patterns, re)
			cc.raw = append(cc.raw, pattern)
		}
		compiled = append(compiled, cc)
	}
	return compiled
}
