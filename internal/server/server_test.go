package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lincunyuan/Financial-Agent/internal/agent"
	"github.com/lincunyuan/Financial-Agent/internal/intent"
	"github.com/lincunyuan/Financial-Agent/internal/models"
	"github.com/lincunyuan/Financial-Agent/internal/services"
	"github.com/lincunyuan/Financial-Agent/internal/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

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
			EntitySensitive:     map[string]bool{models.IntentSpecificStock: true},
		},
		Pronouns: []string{"这个", "那个", "它", "其", "该"},
	}, nil)

	sessions := session.NewManager(store, 5)
	market := services.NewMarketService("http://127.0.0.1:0", time.Second)
	news := services.NewNewsService("http://127.0.0.1:0", time.Second, 10)
	coordinator := agent.NewCoordinator(sessions, analyzer, market, news, "它")
	return New(coordinator, "test")
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("状态码 = %d", rec.Code)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	s := newTestServer(t)

	t.Run("正常分析", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/analyze", `{"user_id":"u1","query":"贵州茅台的股价是多少"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("状态码 = %d, 响应 = %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Code int                   `json:"code"`
			Data models.IntentAnalysis `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Code != 0 {
			t.Errorf("业务码 = %d", resp.Code)
		}
		if resp.Data.PrimaryIntent != models.IntentSpecificStock {
			t.Errorf("意图 = %s", resp.Data.PrimaryIntent)
		}
		if len(resp.Data.Entities) == 0 {
			t.Error("实体列表为空")
		}
	})

	t.Run("缺少query参数", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/analyze", `{"user_id":"u1"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("状态码 = %d, 期望 400", rec.Code)
		}
	})
}

func TestChatEndpointValidation(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/api/chat", `{"query":"没有用户"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("状态码 = %d, 期望 400", rec.Code)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/history/u1", "")
	if rec.Code != http.StatusOK {
		t.Errorf("查询历史状态码 = %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/history/u1", "")
	if rec.Code != http.StatusOK {
		t.Errorf("清空历史状态码 = %d", rec.Code)
	}
}
