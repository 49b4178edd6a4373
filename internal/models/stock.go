package models

// Stock 股票实时行情
type Stock struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        int64   `json:"volume"`
	Amount        float64 `json:"amount"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	PreClose      float64 `json:"preClose"`
}

// MarketIndex 大盘指数数据
type MarketIndex struct {
	Code          string  `json:"code"`          // 指数代码，如 sh000001
	Name          string  `json:"name"`          // 指数名称，如 上证指数
	Price         float64 `json:"price"`         // 当前点位
	Change        float64 `json:"change"`        // 涨跌点数
	ChangePercent float64 `json:"changePercent"` // 涨跌幅(%)
	Volume        int64   `json:"volume"`        // 成交量(手)
	Amount        float64 `json:"amount"`        // 成交额(万元)
}

// NewsItem 财经新闻条目
type NewsItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Source  string `json:"source,omitempty"`
	PubTime string `json:"pubTime,omitempty"`
}
