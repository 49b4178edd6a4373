package intent

import (
	"github.com/lincunyuan/Financial-Agent/internal/models"
)

// CombinerOptions 评分合并参数，全部来自配置
type CombinerOptions struct {
	KeywordWeight       float64
	PatternWeight       float64
	EntityBoostStep     float64
	EntityBoostCap      float64
	ConfidenceThreshold float64
	EntitySensitive     map[string]bool // 参与实体加成的意图
}

// Combiner 将关键词/模式/实体三路信号合并出胜出意图
type Combiner struct {
	opts CombinerOptions
}

// NewCombiner 创建评分合并器
func NewCombiner(opts CombinerOptions) *Combiner {
	return &Combiner{opts: opts}
}

// Combine 合并两路评分。实体敏感的意图在有实体时按个数加成，封顶后整体收敛到 [0,1]。
func (c *Combiner) Combine(keywordScores, patternScores map[string]float64, entities []models.Entity) map[string]float64 {
	combined := make(map[string]float64)
	for intent := range keywordScores {
		combined[intent] = 0
	}
	for intent := range patternScores {
		combined[intent] = 0
	}

	for intent := range combined {
		score := keywordScores[intent]*c.opts.KeywordWeight + patternScores[intent]*c.opts.PatternWeight
		if len(entities) > 0 && c.opts.EntitySensitive[intent] {
			boost := float64(len(entities)) * c.opts.EntityBoostStep
			if boost > c.opts.EntityBoostCap {
				boost = c.opts.EntityBoostCap
			}
			score += boost
		}
		if score > 1.0 {
			score = 1.0
		}
		combined[intent] = score
	}
	return combined
}

// Winner 取合并得分的最大项。平分时取意图名字典序最小者，
// 结果不受 map 遍历顺序影响；最高分未过阈值时回落到 general/0。
func (c *Combiner) Winner(combined map[string]float64) (string, float64) {
	best := ""
	bestScore := 0.0
	for intent, score := range combined {
		switch {
		case score > bestScore:
			best = intent
			bestScore = score
		case score == bestScore && (best == "" || intent < best):
			best = intent
		}
	}
	if best == "" || bestScore <= c.opts.ConfidenceThreshold {
		return models.IntentGeneral, 0
	}
	return best, bestScore
}
