package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleNewsHTML = `<html><body>
<ul class="list_009">
  <li><a href="https://finance.sina.com.cn/a1.html">央行宣布降准0.5个百分点</a><span>08-22 09:30</span></li>
  <li><a href="https://finance.sina.com.cn/a2.html">沪指收涨1.2% 创年内新高</a><span>08-22 15:05</span></li>
  <li><a href="https://finance.sina.com.cn/a1.html">央行宣布降准0.5个百分点</a></li>
  <li><a href="">无链接条目</a></li>
</ul>
</body></html>`

func TestParseNewsPage(t *testing.T) {
	t.Run("提取标题与链接", func(t *testing.T) {
		items, err := ParseNewsPage(strings.NewReader(sampleNewsHTML), 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(items) != 2 {
			t.Fatalf("新闻数 = %d, 期望 2（去重且跳过无链接）", len(items))
		}
		if items[0].Title != "央行宣布降准0.5个百分点" {
			t.Errorf("标题 = %q", items[0].Title)
		}
		if items[0].URL != "https://finance.sina.com.cn/a1.html" {
			t.Errorf("链接 = %q", items[0].URL)
		}
	})

	t.Run("条数上限", func(t *testing.T) {
		items, err := ParseNewsPage(strings.NewReader(sampleNewsHTML), 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(items) != 1 {
			t.Errorf("新闻数 = %d, 期望 1", len(items))
		}
	})

	t.Run("空页面", func(t *testing.T) {
		items, err := ParseNewsPage(strings.NewReader("<html></html>"), 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(items) != 0 {
			t.Errorf("空页面新闻数 = %d", len(items))
		}
	})
}

func TestGetLatestNews(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(sampleNewsHTML))
	}))
	defer ts.Close()

	ns := NewNewsService(ts.URL, 2*time.Second, 10)
	items, err := ns.GetLatestNews(context.Background())
	if err != nil {
		t.Fatalf("抓取新闻失败: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("新闻数 = %d, 期望 2", len(items))
	}
}
