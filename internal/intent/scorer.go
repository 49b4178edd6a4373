package intent

import (
	"strings"
	"unicode/utf8"

	"github.com/lincunyuan/Financial-Agent/internal/logger"
)

var scoreLog = logger.New("intent:score")

// 模式匹配的基础分与复杂度加成
const (
	patternBaseScore    = 0.7
	patternComplexBonus = 0.2 // 长模式（更具体）
	patternGenericBonus = 0.1 // 含通配的泛化模式
	complexPatternLen   = 20
)

// Scorer 关键词与模式双信号评分器
type Scorer struct {
	categories []compiledCategory
}

// NewScorer 预编译类别并构建评分器
func NewScorer(categories []compiledCategory) *Scorer {
	return &Scorer{categories: categories}
}

// KeywordScores 关键词匹配评分：命中数/总数 归一化后乘以类别优先级
func (s *Scorer) KeywordScores(query string) map[string]float64 {
	scores := make(map[string]float64)
	queryLower := strings.ToLower(query)

	for _, cat := range s.categories {
		if len(cat.Keywords) == 0 {
			continue
		}
		matched := 0
		for _, keyword := range cat.Keywords {
			if strings.Contains(queryLower, strings.ToLower(keyword)) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		normalized := float64(matched) / float64(len(cat.Keywords))
		scores[cat.Name] = normalized * cat.Priority
	}
	return scores
}

// MatchedKeywords 返回查询命中的全部类别关键词（去重，保持类别顺序）
func (s *Scorer) MatchedKeywords(query string) []string {
	queryLower := strings.ToLower(query)
	seen := make(map[string]bool)
	var matched []string
	for _, cat := range s.categories {
		for _, keyword := range cat.Keywords {
			if seen[keyword] {
				continue
			}
			if strings.Contains(queryLower, strings.ToLower(keyword)) {
				seen[keyword] = true
				matched = append(matched, keyword)
			}
		}
	}
	return matched
}

// PatternScores 模式匹配评分：取该类别命中模式的最高分乘以优先级。
// 长模式比通配模式得到更高的复杂度加成。
func (s *Scorer) PatternScores(query string) map[string]float64 {
	scores := make(map[string]float64)

	for _, cat := range s.categories {
		maxScore := 0.0
		for i, re := range cat.patterns {
			if !re.MatchString(query) {
				continue
			}
			score := patternBaseScore
			raw := cat.raw[i]
			// 模式长度按字符数计，中文模式串不因 UTF-8 多字节而虚高
			if utf8.RuneCountInString(raw) > complexPatternLen {
				score += patternComplexBonus
			} else if strings.Contains(raw, ".*") {
				score += patternGenericBonus
			}
			if score > maxScore {
				maxScore = score
			}
		}
		if maxScore > 0 {
			scores[cat.Name] = maxScore * cat.Priority
		}
	}
	return scores
}
