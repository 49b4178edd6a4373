package intent

import (
	"testing"

	"github.com/lincunyuan/Financial-Agent/internal/models"
)

func newTestCombiner() *Combiner {
	return NewCombiner(CombinerOptions{
		KeywordWeight:       0.6,
		PatternWeight:       0.4,
		EntityBoostStep:     0.1,
		EntityBoostCap:      0.3,
		ConfidenceThreshold: 0.3,
		EntitySensitive: map[string]bool{
			models.IntentSpecificStock: true,
		},
	})
}

func TestCombine(t *testing.T) {
	c := newTestCombiner()

	t.Run("加权合并两路信号", func(t *testing.T) {
		combined := c.Combine(
			map[string]float64{models.IntentMarketNews: 0.5},
			map[string]float64{models.IntentMarketNews: 0.8},
			nil,
		)
		want := 0.5*0.6 + 0.8*0.4
		if !almostEqual(combined[models.IntentMarketNews], want) {
			t.Errorf("合并得分 = %v, 期望 %v", combined[models.IntentMarketNews], want)
		}
	})

	t.Run("只在一路出现的意图也参与合并", func(t *testing.T) {
		combined := c.Combine(
			map[string]float64{models.IntentMarketNews: 0.5},
			map[string]float64{models.IntentStockMarket: 0.4},
			nil,
		)
		if len(combined) != 2 {
			t.Errorf("合并意图数 = %d, 期望 2", len(combined))
		}
	})

	t.Run("实体加成只作用于敏感意图", func(t *testing.T) {
		entities := []models.Entity{{Type: models.EntityStock, Value: "600519.SS"}}
		combined := c.Combine(
			map[string]float64{
				models.IntentSpecificStock: 0.5,
				models.IntentMarketNews:    0.5,
			},
			nil,
			entities,
		)
		if !almostEqual(combined[models.IntentSpecificStock], 0.5*0.6+0.1) {
			t.Errorf("敏感意图得分 = %v", combined[models.IntentSpecificStock])
		}
		if !almostEqual(combined[models.IntentMarketNews], 0.5*0.6) {
			t.Errorf("非敏感意图得分 = %v", combined[models.IntentMarketNews])
		}
	})

	t.Run("实体加成封顶", func(t *testing.T) {
		entities := make([]models.Entity, 5)
		combined := c.Combine(
			map[string]float64{models.IntentSpecificStock: 0.5},
			nil,
			entities,
		)
		// 5 个实体按步长 0.1 应加 0.5，但封顶 0.3
		if !almostEqual(combined[models.IntentSpecificStock], 0.5*0.6+0.3) {
			t.Errorf("封顶后得分 = %v", combined[models.IntentSpecificStock])
		}
	})

	t.Run("得分不超过1", func(t *testing.T) {
		entities := []models.Entity{{}, {}, {}}
		combined := c.Combine(
			map[string]float64{models.IntentSpecificStock: 1.5},
			map[string]float64{models.IntentSpecificStock: 1.5},
			entities,
		)
		if combined[models.IntentSpecificStock] > 1.0 {
			t.Errorf("得分越界: %v", combined[models.IntentSpecificStock])
		}
	})
}

func TestWinner(t *testing.T) {
	c := newTestCombiner()

	t.Run("取最高分意图", func(t *testing.T) {
		intent, confidence := c.Winner(map[string]float64{
			models.IntentMarketNews:  0.6,
			models.IntentStockMarket: 0.4,
		})
		if intent != models.IntentMarketNews || !almostEqual(confidence, 0.6) {
			t.Errorf("胜出 = %s/%v", intent, confidence)
		}
	})

	t.Run("平分时按字典序稳定胜出", func(t *testing.T) {
		scores := map[string]float64{
			models.IntentStockMarket:      0.5,
			models.IntentSpecificStock:    0.5,
			models.IntentMarketNews:       0.5,
			models.IntentInvestmentAdvice: 0.5,
		}
		for i := 0; i < 50; i++ {
			intent, confidence := c.Winner(scores)
			if intent != models.IntentInvestmentAdvice || !almostEqual(confidence, 0.5) {
				t.Fatalf("第 %d 次平分胜出 = %s/%v, 期望 %s/0.5", i, intent, confidence, models.IntentInvestmentAdvice)
			}
		}
	})

	t.Run("未过阈值回落general", func(t *testing.T) {
		intent, confidence := c.Winner(map[string]float64{
			models.IntentMarketNews: 0.3,
		})
		if intent != models.IntentGeneral || confidence != 0 {
			t.Errorf("阈值回落失败: %s/%v", intent, confidence)
		}
	})

	t.Run("空得分回落general", func(t *testing.T) {
		intent, confidence := c.Winner(nil)
		if intent != models.IntentGeneral || confidence != 0 {
			t.Errorf("空得分回落失败: %s/%v", intent, confidence)
		}
	})
}
