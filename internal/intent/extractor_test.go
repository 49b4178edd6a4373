package intent

import (
	"testing"

	"github.com/lincunyuan/Financial-Agent/internal/models"
)

func newTestExtractor() *Extractor {
	return NewExtractor(NewDictionary(DefaultDictionaryRules()))
}

func TestExtract(t *testing.T) {
	ex := newTestExtractor()

	t.Run("词典命中股票名称", func(t *testing.T) {
		entities := ex.Extract("贵州茅台今天怎么样")
		if len(entities) == 0 {
			t.Fatal("未提取到实体")
		}
		e := entities[0]
		if e.Type != models.EntityStock || e.Value != "600519.SS" {
			t.Errorf("实体 = %+v, 期望 stock/600519.SS", e)
		}
		if e.Source != models.SourceDictionary {
			t.Errorf("来源 = %q, 期望 dictionary", e.Source)
		}
	})

	t.Run("最长匹配优先", func(t *testing.T) {
		// 贵州茅台 应整体命中，而不是只命中 茅台
		entities := ex.Extract("贵州茅台的股价")
		if len(entities) != 1 {
			t.Fatalf("实体数 = %d, 期望 1: %+v", len(entities), entities)
		}
		if entities[0].Name != "贵州茅台" {
			t.Errorf("实体名称 = %q, 期望 贵州茅台", entities[0].Name)
		}
	})

	t.Run("六位数字识别为股票代码", func(t *testing.T) {
		entities := ex.Extract("600519最近走势如何")
		var code *models.Entity
		for i := range entities {
			if entities[i].Type == models.EntityStockCode {
				code = &entities[i]
			}
		}
		if code == nil {
			t.Fatal("未识别出股票代码实体")
		}
		if code.Value != "600519.SS" {
			t.Errorf("代码 = %q, 期望 600519.SS", code.Value)
		}
		if code.Confidence != 0.6 {
			t.Errorf("数字启发式置信度 = %v, 期望 0.6", code.Confidence)
		}
	})

	t.Run("深市前缀数字补SZ后缀", func(t *testing.T) {
		entities := ex.Extract("看看300750")
		found := false
		for _, e := range entities {
			if e.Type == models.EntityStockCode && e.Value == "300750.SZ" {
				found = true
			}
		}
		if !found {
			t.Errorf("未将 300750 规范化为 300750.SZ: %+v", entities)
		}
	})

	t.Run("非六位数字不识别", func(t *testing.T) {
		entities := ex.Extract("12345和1234567都不是代码")
		for _, e := range entities {
			if e.Type == models.EntityStockCode {
				t.Errorf("不应识别出代码实体: %+v", e)
			}
		}
	})

	t.Run("全角数字折叠后识别", func(t *testing.T) {
		entities := ex.Extract("６００５１９怎么样")
		found := false
		for _, e := range entities {
			if e.Type == models.EntityStockCode && e.Value == "600519.SS" {
				found = true
			}
		}
		if !found {
			t.Errorf("全角数字未被识别: %+v", entities)
		}
	})

	t.Run("多实体同时提取", func(t *testing.T) {
		entities := ex.Extract("比较贵州茅台和五粮液")
		names := make(map[string]bool)
		for _, e := range entities {
			names[e.Name] = true
		}
		if !names["贵州茅台"] || !names["五粮液"] {
			t.Errorf("多实体提取缺失: %+v", entities)
		}
	})
}
