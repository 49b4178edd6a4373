package classifier

import "fmt"

const intentPromptTemplate = `你是一个金融领域的意图识别专家。请根据用户的查询和历史对话上下文，识别出主要意图。

可用意图列表：
- market_news: 查询财经新闻
- stock_market: 查询股市行情
- specific_stock: 查询特定股票
- stock_historical_data: 查询股票历史数据或K线图
- economic_analysis: 查询经济数据分析
- investment_advice: 查询投资建议
- time_query: 查询时间信息
- general: 一般性问题

重要提示：
1. 如果当前查询中包含代词（如"它"、"这个"、"那个"等），请根据历史对话上下文确定其具体指代的实体
2. 务必考虑历史对话中的金融实体（如股票名称、代码等），理解用户的完整意图
3. 当用户查询股票的历史数据、日K线、K线图等时，应识别为stock_historical_data意图

历史对话（如果有）：
%s

当前用户查询: %s

请以JSON格式返回识别结果，包含以下字段：
- intent: 识别出的主要意图
- confidence: 置信度（0-1之间的数字）`

const entityPromptTemplate = `你是一个金融领域的实体识别专家。请从用户的查询和历史对话上下文中提取出金融相关的实体。

重要规则：
1. 必须仔细分析历史对话上下文，特别是前一轮对话中提到的金融实体
2. 如果当前查询中包含代词（如"它"、"这个"、"那个"等），请根据历史对话上下文明确指出其具体指代的实体名称
3. 例如，如果上一轮对话提到"贵州茅台"，当前查询问"它的市值是多少？"，则应提取实体{"type": "stock_name", "value": "贵州茅台"}

实体类型包括：
- stock_name: 股票名称
- stock_code: 股票代码
- index_name: 指数名称
- time: 时间信息
- economic_indicator: 经济指标

历史对话（如果有）：
%s

当前用户查询: %s

请以JSON格式返回识别结果，包含以下字段：
- entities: 实体列表，每个实体包含type和value字段`

// buildIntentPrompt 构建意图识别提示词
func buildIntentPrompt(query, formattedHistory string) string {
	return fmt.Sprintf(intentPromptTemplate, formattedHistory, query)
}

// buildEntityPrompt 构建实体抽取提示词
func buildEntityPrompt(query, formattedHistory string) string {
	return fmt.Sprintf(entityPromptTemplate, formattedHistory, query)
}
