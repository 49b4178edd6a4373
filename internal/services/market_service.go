package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/lincunyuan/Financial-Agent/internal/logger"
	"github.com/lincunyuan/Financial-Agent/internal/models"
)

var marketLog = logger.New("services:market")

const defaultHQBaseURL = "https://hq.sinajs.cn"

// 新浪行情接口需要 Referer 才会返回数据
const sinaReferer = "https://finance.sina.com.cn/"

// MarketService 实时行情服务，数据来自新浪财经行情接口。
// 返回体为 GBK 编码的 js 赋值语句，逐行解析。
type MarketService struct {
	client  *http.Client
	baseURL string
}

// NewMarketService 创建行情服务
func NewMarketService(baseURL string, timeout time.Duration) *MarketService {
	if baseURL == "" {
		baseURL = defaultHQBaseURL
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &MarketService{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// GetStockRealTimeData 批量获取股票实时行情。
// 代码接受内部格式（600519.SS）或新浪格式（sh600519）。
func (s *MarketService) GetStockRealTimeData(ctx context.Context, symbols ...string) ([]models.Stock, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("未提供股票代码")
	}
	body, err := s.fetch(ctx, symbols)
	if err != nil {
		return nil, err
	}
	stocks := ParseStockLines(body)
	if len(stocks) == 0 {
		return nil, fmt.Errorf("行情接口未返回有效数据")
	}
	marketLog.Info("获取实时行情成功: %d 只", len(stocks))
	return stocks, nil
}

// GetMarketIndices 批量获取大盘指数，codes 为空时返回沪深两市主要指数
func (s *MarketService) GetMarketIndices(ctx context.Context, codes ...string) ([]models.MarketIndex, error) {
	if len(codes) == 0 {
		codes = []string{"000001.SS", "399001.SZ", "399006.SZ"}
	}
	body, err := s.fetch(ctx, codes)
	if err != nil {
		return nil, err
	}
	indices := ParseIndexLines(body)
	if len(indices) == 0 {
		return nil, fmt.Errorf("指数接口未返回有效数据")
	}
	return indices, nil
}

// fetch 请求行情接口并解码 GBK 返回体
func (s *MarketService) fetch(ctx context.Context, symbols []string) (string, error) {
	sinaSymbols := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		sinaSymbols = append(sinaSymbols, SinaSymbol(symbol))
	}
	url := fmt.Sprintf("%s/list=%s", s.baseURL, strings.Join(sinaSymbols, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Referer", sinaReferer)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("请求行情接口失败: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("行情接口返回状态码 %d", resp.StatusCode)
	}

	decoded, err := io.ReadAll(transform.NewReader(resp.Body, simplifiedchinese.GBK.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("解码行情返回体失败: %w", err)
	}
	return string(decoded), nil
}

// SinaSymbol 将内部代码转为新浪行情代码。
// 600519.SS → sh600519，000001.SZ → sz000001；已是新浪格式时原样返回。
func SinaSymbol(code string) string {
	lower := strings.ToLower(strings.TrimSpace(code))
	if strings.HasPrefix(lower, "sh") || strings.HasPrefix(lower, "sz") {
		return lower
	}
	switch {
	case strings.HasSuffix(code, ".SS"):
		return "sh" + strings.TrimSuffix(code, ".SS")
	case strings.HasSuffix(code, ".SZ"):
		return "sz" + strings.TrimSuffix(code, ".SZ")
	}
	return lower
}

// ParseStockLines 解析行情返回体中的股票数据行。
// 行格式：var hq_str_sh600519="贵州茅台,开盘,昨收,现价,最高,最低,买一,卖一,成交量,成交额,...";
func ParseStockLines(body string) []models.Stock {
	var stocks []models.Stock
	for _, line := range strings.Split(body, ";") {
		symbol, fields, ok := parseHQLine(line)
		if !ok || len(fields) < 10 {
			continue
		}
		preClose := parseFloat(fields[2])
		price := parseFloat(fields[3])
		change := price - preClose
		var changePercent float64
		if preClose != 0 {
			changePercent = change / preClose * 100
		}
		stocks = append(stocks, models.Stock{
			Symbol:        symbol,
			Name:          fields[0],
			Price:         price,
			Change:        change,
			ChangePercent: changePercent,
			Open:          parseFloat(fields[1]),
			PreClose:      preClose,
			High:          parseFloat(fields[4]),
			Low:           parseFloat(fields[5]),
			Volume:        parseInt(fields[8]),
			Amount:        parseFloat(fields[9]),
		})
	}
	return stocks
}

// ParseIndexLines 解析行情返回体中的指数数据行，字段布局与股票一致
func ParseIndexLines(body string) []models.MarketIndex {
	var indices []models.MarketIndex
	for _, line := range strings.Split(body, ";") {
		symbol, fields, ok := parseHQLine(line)
		if !ok || len(fields) < 10 {
			continue
		}
		preClose := parseFloat(fields[2])
		price := parseFloat(fields[3])
		change := price - preClose
		var changePercent float64
		if preClose != 0 {
			changePercent = change / preClose * 100
		}
		indices = append(indices, models.MarketIndex{
			Code:          symbol,
			Name:          fields[0],
			Price:         price,
			Change:        change,
			ChangePercent: changePercent,
			Volume:        parseInt(fields[8]),
			Amount:        parseFloat(fields[9]),
		})
	}
	return indices
}

// parseHQLine 提取一行赋值语句中的代码与逗号分隔字段
func parseHQLine(line string) (symbol string, fields []string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil, false
	}
	eq := strings.Index(line, `="`)
	if eq < 0 {
		return "", nil, false
	}
	head := line[:eq]
	idx := strings.LastIndex(head, "_")
	if idx < 0 {
		return "", nil, false
	}
	symbol = head[idx+1:]
	payload := strings.TrimSuffix(line[eq+2:], `"`)
	if payload == "" {
		return "", nil, false
	}
	return symbol, strings.Split(payload, ","), true
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return int64(v)
}
