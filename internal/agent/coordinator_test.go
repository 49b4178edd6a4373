package agent

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

	"github.com/lincunyuan/Financial-Agent/internal/intent"
	"github.com/lincunyuan/Financial-Agent/internal/models"
	"github.com/lincunyuan/Financial-Agent/internal/services"
	"github.com/lincunyuan/Financial-Agent/internal/session"
)

const sampleHQBody = `var hq_str_sh600519="贵州茅台,1700.00,1698.00,1705.00,1710.00,1695.00,1704.99,1705.00,3500000,5950000000.00,2025-08-22,15:00:00,00";`

// timeQueryClassifier 固定返回时间查询意图的分类器桩
type timeQueryClassifier struct{}

func (timeQueryClassifier) Classify(ctx context.Context, query, history string) (string, float64, error) {
	return models.IntentTimeQuery, 0.9, nil
}

func (timeQueryClassifier) ExtractEntities(ctx context.Context, query, history string) ([]models.RawEntity, error) {
	return nil, nil
}

func newTestCoordinator(t *testing.T, classifier intent.ExternalClassifier) *Coordinator {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		encoded, err := io.ReadAll(transform.NewReader(strings.NewReader(sampleHQBody), simplifiedchinese.GBK.NewEncoder()))
		if err != nil {
			t.Fatal(err)
		}
		w.Write(encoded)
	}))
	t.Cleanup(ts.Close)

	store, err := session.OpenBadger("", time.Minute)
	if err != nil {
		t.Fatalf("打开会话存储失败: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	dict := intent.NewDictionaryProvider(intent.DefaultDictionaryRules(), "")
	analyzer := intent.NewAnalyzer(dict, intent.Options{
		Combiner: intent.CombinerOptions{
			KeywordWeight:       0.6,
			PatternWeight:       0.4,
			EntityBoostStep:     0.1,
			EntityBoostCap:      0.3,
			ConfidenceThreshold: 0.3,
			EntitySensitive: map[string]bool{
				models.IntentSpecificStock:   true,
				models.IntentStockMarket:     true,
				models.IntentStockHistorical: true,
			},
		},
		Pronouns:          []string{"这个", "那个", "它", "其", "该"},
		ClassifierTimeout: time.Second,
	}, classifier)

	sessions := session.NewManager(store, 5)
	market := services.NewMarketService(ts.URL, 2*time.Second)
	news := services.NewNewsService(ts.URL, 2*time.Second, 10)
	return NewCoordinator(sessions, analyzer, market, news, "它")
}

func TestProcessQuery(t *testing.T) {
	t.Run("个股查询返回行情并回写状态", func(t *testing.T) {
		c := newTestCoordinator(t, nil)
		resp := c.ProcessQuery(context.Background(), "u1", "贵州茅台的股价是多少")

		if resp.Intent != models.IntentSpecificStock {
			t.Errorf("意图 = %s", resp.Intent)
		}
		if !strings.Contains(resp.Response, "贵州茅台") || !strings.Contains(resp.Response, "1705.00") {
			t.Errorf("回复缺少行情数据: %q", resp.Response)
		}

		// 对话历史带元数据
		history := c.History("u1")
		if len(history) != 1 {
			t.Fatalf("历史轮次 = %d", len(history))
		}
		if history[0].Metadata == nil || history[0].Metadata.Intent != models.IntentSpecificStock {
			t.Errorf("历史元数据 = %+v", history[0].Metadata)
		}

		// 为后续代词预存了默认指代关系
		bindings := c.sessions.GetAll("u1")
		if len(bindings) == 0 {
			t.Fatal("未回写默认指代关系")
		}
		if bindings[0].Pronoun != "它" || bindings[0].ReferentValue != "贵州茅台" {
			t.Errorf("默认绑定 = %+v", bindings[0])
		}
	})

	t.Run("第二轮代词被解析并改写", func(t *testing.T) {
		c := newTestCoordinator(t, nil)
		c.ProcessQuery(context.Background(), "u2", "贵州茅台的股价是多少")

		resp := c.ProcessQuery(context.Background(), "u2", "它现在多少钱")
		if !strings.Contains(resp.ResolvedQuery, "贵州茅台") {
			t.Errorf("代词未被改写: %q", resp.ResolvedQuery)
		}
		if resp.Intent != models.IntentSpecificStock {
			t.Errorf("第二轮意图 = %s", resp.Intent)
		}
	})

	t.Run("时间查询直接作答不取数", func(t *testing.T) {
		c := newTestCoordinator(t, timeQueryClassifier{})
		resp := c.ProcessQuery(context.Background(), "u3", "今天是星期几")

		if resp.Intent != models.IntentTimeQuery {
			t.Errorf("意图 = %s", resp.Intent)
		}
		if !strings.Contains(resp.Response, "星期") {
			t.Errorf("时间回答 = %q", resp.Response)
		}
		// 时间查询也要入历史
		if len(c.History("u3")) != 1 {
			t.Error("时间查询未存储历史")
		}
	})

	t.Run("无数据时返回意图提示", func(t *testing.T) {
		c := newTestCoordinator(t, nil)
		resp := c.ProcessQuery(context.Background(), "u4", "你好")

		if resp.Intent != models.IntentGeneral {
			t.Errorf("意图 = %s", resp.Intent)
		}
		if resp.Response == "" {
			t.Error("general 查询也应有回复")
		}
	})
}

func TestClearSession(t *testing.T) {
	c := newTestCoordinator(t, nil)
	c.ProcessQuery(context.Background(), "u1", "贵州茅台的股价是多少")

	if err := c.ClearSession("u1"); err != nil {
		t.Fatal(err)
	}
	if len(c.History("u1")) != 0 {
		t.Error("清空后历史应为空")
	}
}
