package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

const sampleHQBody = `var hq_str_sh600519="贵州茅台,1700.00,1698.00,1705.00,1710.00,1695.00,1704.99,1705.00,3500000,5950000000.00,100,1704.99,200,1704.98,300,1704.97,400,1704.96,500,1704.95,100,1705.00,200,1705.01,300,1705.02,400,1705.03,500,1705.04,2025-08-22,15:00:00,00";
var hq_str_sz000001="平安银行,10.50,10.40,10.45,10.60,10.30,10.44,10.45,80000000,836000000.00,2025-08-22,15:00:00,00";
`

func TestSinaSymbol(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"600519.SS", "sh600519"},
		{"000001.SZ", "sz000001"},
		{"sh600519", "sh600519"},
		{"SZ000001", "sz000001"},
		{"AAPL.US", "aapl.us"},
	}
	for _, tc := range cases {
		if got := SinaSymbol(tc.in); got != tc.want {
			t.Errorf("SinaSymbol(%q) = %q, 期望 %q", tc.in, got, tc.want)
		}
	}
}

func TestParseStockLines(t *testing.T) {
	stocks := ParseStockLines(sampleHQBody)
	if len(stocks) != 2 {
		t.Fatalf("解析股票数 = %d, 期望 2", len(stocks))
	}

	mt := stocks[0]
	if mt.Symbol != "sh600519" || mt.Name != "贵州茅台" {
		t.Errorf("股票标识 = %s/%s", mt.Symbol, mt.Name)
	}
	if mt.Price != 1705.00 || mt.PreClose != 1698.00 || mt.Open != 1700.00 {
		t.Errorf("价格字段 = %+v", mt)
	}
	if mt.Change != 1705.00-1698.00 {
		t.Errorf("涨跌额 = %v", mt.Change)
	}
	wantPercent := (1705.00 - 1698.00) / 1698.00 * 100
	if diff := mt.ChangePercent - wantPercent; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("涨跌幅 = %v, 期望 %v", mt.ChangePercent, wantPercent)
	}
	if mt.Volume != 3500000 {
		t.Errorf("成交量 = %d", mt.Volume)
	}

	pab := stocks[1]
	if pab.Name != "平安银行" || pab.Price != 10.45 {
		t.Errorf("第二只股票 = %+v", pab)
	}
}

func TestParseStockLinesMalformed(t *testing.T) {
	t.Run("空返回体", func(t *testing.T) {
		if stocks := ParseStockLines(""); len(stocks) != 0 {
			t.Errorf("空返回体应解析出 0 只: %d", len(stocks))
		}
	})

	t.Run("字段不足的行被跳过", func(t *testing.T) {
		body := `var hq_str_sh600519="贵州茅台,1700.00";`
		if stocks := ParseStockLines(body); len(stocks) != 0 {
			t.Errorf("不完整行应被跳过: %+v", stocks)
		}
	})

	t.Run("非赋值行被跳过", func(t *testing.T) {
		if stocks := ParseStockLines("garbage;more garbage"); len(stocks) != 0 {
			t.Errorf("垃圾内容应被跳过: %+v", stocks)
		}
	})
}

func TestParseIndexLines(t *testing.T) {
	body := `var hq_str_sh000001="上证指数,3100.00,3090.00,3120.50,3130.00,3080.00,0,0,250000000,300000000000.00,2025-08-22,15:00:00,00";`
	indices := ParseIndexLines(body)
	if len(indices) != 1 {
		t.Fatalf("解析指数数 = %d, 期望 1", len(indices))
	}
	idx := indices[0]
	if idx.Code != "sh000001" || idx.Name != "上证指数" {
		t.Errorf("指数标识 = %s/%s", idx.Code, idx.Name)
	}
	if idx.Price != 3120.50 {
		t.Errorf("点位 = %v", idx.Price)
	}
	if idx.Change <= 0 {
		t.Errorf("涨跌点数 = %v, 期望为正", idx.Change)
	}
}

func TestGetStockRealTimeData(t *testing.T) {
	// 行情接口返回 GBK 编码，服务端先按真实行为编码再返回
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery+r.URL.Path, "list=") {
			t.Errorf("缺少 list 参数: %s", r.URL.String())
		}
		encoded, err := io.ReadAll(transform.NewReader(strings.NewReader(sampleHQBody), simplifiedchinese.GBK.NewEncoder()))
		if err != nil {
			t.Fatal(err)
		}
		w.Write(encoded)
	}))
	defer ts.Close()

	ms := NewMarketService(ts.URL, 2*time.Second)

	t.Run("内部代码转新浪代码并解码", func(t *testing.T) {
		stocks, err := ms.GetStockRealTimeData(context.Background(), "600519.SS", "000001.SZ")
		if err != nil {
			t.Fatalf("获取行情失败: %v", err)
		}
		if len(stocks) != 2 {
			t.Fatalf("股票数 = %d, 期望 2", len(stocks))
		}
		if stocks[0].Name != "贵州茅台" {
			t.Errorf("GBK 解码失败: %q", stocks[0].Name)
		}
	})

	t.Run("未提供代码直接报错", func(t *testing.T) {
		if _, err := ms.GetStockRealTimeData(context.Background()); err == nil {
			t.Error("空代码列表应返回错误")
		}
	})
}
