package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/lincunyuan/Financial-Agent/internal/logger"
	"github.com/lincunyuan/Financial-Agent/internal/models"
)

var newsLog = logger.New("services:news")

const defaultNewsURL = "https://finance.sina.com.cn/roll/"

// NewsService 财经新闻服务，抓取新浪财经滚动新闻页
type NewsService struct {
	client *http.Client
	url    string
	limit  int
}

// NewNewsService 创建新闻服务
func NewNewsService(url string, timeout time.Duration, limit int) *NewsService {
	if url == "" {
		url = defaultNewsURL
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	if limit <= 0 {
		limit = 10
	}
	return &NewsService{
		client: &http.Client{Timeout: timeout},
		url:    url,
		limit:  limit,
	}
}

// GetLatestNews 抓取最新财经新闻列表
func (s *NewsService) GetLatestNews(ctx context.Context) ([]models.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求新闻页面失败: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("新闻页面返回状态码 %d", resp.StatusCode)
	}

	var reader io.Reader = resp.Body
	// 新浪新闻页面为 GB2312 编码
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(strings.ToLower(ct), "utf-8") {
		reader = transform.NewReader(resp.Body, simplifiedchinese.GBK.NewDecoder())
	}

	items, err := ParseNewsPage(reader, s.limit)
	if err != nil {
		return nil, err
	}
	newsLog.Info("抓取财经新闻成功: %d 条", len(items))
	return items, nil
}

// ParseNewsPage 从新闻列表页提取标题与链接
func ParseNewsPage(r io.Reader, limit int) ([]models.NewsItem, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("解析新闻页面失败: %w", err)
	}

	var items []models.NewsItem
	seen := make(map[string]bool)
	doc.Find("ul.list_009 li a, .news-list li a, .listBlk li a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Text())
		href, _ := sel.Attr("href")
		if title == "" || href == "" || seen[href] {
			return true
		}
		seen[href] = true
		item := models.NewsItem{Title: title, URL: href, Source: "sina_finance"}
		if t := strings.TrimSpace(sel.Parent().Find("span").First().Text()); t != "" {
			item.PubTime = t
		}
		items = append(items, item)
		return len(items) < limit
	})
	return items, nil
}
