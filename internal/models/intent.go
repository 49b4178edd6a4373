package models

// 内置意图名称
const (
	IntentMarketNews       = "market_news"           // 财经新闻查询
	IntentStockMarket      = "stock_market"          // 股市行情分析
	IntentSpecificStock    = "specific_stock"        // 个股信息查询
	IntentStockHistorical  = "stock_historical_data" // 历史数据/K线查询
	IntentEconomicAnalysis = "economic_analysis"     // 经济数据分析
	IntentInvestmentAdvice = "investment_advice"     // 投资建议咨询
	IntentTimeQuery        = "time_query"            // 时间信息查询
	IntentGeneral          = "general"               // 一般性问题
)

// IntentCategory 意图类别的静态配置。
// 四个布尔标志使用指针表示"未声明"，命中意图时只覆盖声明过的标志。
type IntentCategory struct {
	Name     string   `json:"name" mapstructure:"name"`
	Keywords []string `json:"keywords" mapstructure:"keywords"`
	Patterns []string `json:"patterns" mapstructure:"patterns"`
	Priority float64  `json:"priority" mapstructure:"priority"`

	NeedsRealTimeData      *bool `json:"needsRealTimeData,omitempty" mapstructure:"needs_real_time_data"`
	NeedsKnowledgeBase     *bool `json:"needsKnowledgeBase,omitempty" mapstructure:"needs_knowledge_base"`
	NeedsHistoricalContext *bool `json:"needsHistoricalContext,omitempty" mapstructure:"needs_historical_context"`
	NeedsHistoricalData    *bool `json:"needsHistoricalData,omitempty" mapstructure:"needs_historical_data"`
	IsSimpleTimeQuery      *bool `json:"isSimpleTimeQuery,omitempty" mapstructure:"is_simple_time_query"`

	// 命中后补充的默认目标（仅在提取阶段没有得到目标时生效）
	TargetIndices      []string `json:"targetIndices,omitempty" mapstructure:"target_indices"`
	EconomicIndicators []string `json:"economicIndicators,omitempty" mapstructure:"economic_indicators"`
}

// IntentAnalysis 意图分析结果
type IntentAnalysis struct {
	PrimaryIntent string   `json:"primaryIntent"`
	Confidence    float64  `json:"confidence"`
	Entities      []Entity `json:"entities"`

	ResolvedPronouns []Entity `json:"resolvedPronouns,omitempty"` // 代词解析结果，需由会话层回写存储
	ResolvedQuery    string   `json:"resolvedQuery"`              // 代词替换后的查询

	NeedsRealTimeData      bool `json:"needsRealTimeData"`
	NeedsKnowledgeBase     bool `json:"needsKnowledgeBase"`
	NeedsHistoricalContext bool `json:"needsHistoricalContext"`
	NeedsHistoricalData    bool `json:"needsHistoricalData"`
	IsSimpleTimeQuery      bool `json:"isSimpleTimeQuery"`

	TargetSymbols      []string `json:"targetSymbols,omitempty"`
	TargetIndices      []string `json:"targetIndices,omitempty"`
	EconomicIndicators []string `json:"economicIndicators,omitempty"`
	Keywords           []string `json:"keywords,omitempty"`

	ClassifierUsed bool   `json:"classifierUsed"`  // 结果是否来自外部分类器
	Error          string `json:"error,omitempty"` // 内部失败记录，仅用于观测
}

// IntentDescription 意图的中文描述
func IntentDescription(intent string) string {
	switch intent {
	case IntentMarketNews:
		return "财经新闻查询"
	case IntentStockMarket:
		return "股市行情分析"
	case IntentSpecificStock:
		return "个股信息查询"
	case IntentStockHistorical:
		return "股票历史数据查询"
	case IntentEconomicAnalysis:
		return "经济数据分析"
	case IntentInvestmentAdvice:
		return "投资建议咨询"
	case IntentTimeQuery:
		return "时间信息查询"
	case IntentGeneral:
		return "一般性问题"
	}
	return "未知意图"
}
