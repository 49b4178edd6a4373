package intent

import (
	"fmt"
	"regexp"

	"golang.org/x/text/width"

	"github.com/lincunyuan/Financial-Agent/internal/models"
)

// 各来源的实体置信度
const (
	dictionaryConfidence = 0.9  // 词典命中
	numericConfidence    = 0.6  // 裸数字代码启发式
	corefConfidence      = 0.95 // 存储的指代关系
)

// 提取裸数字串，前后不能紧邻其他数字
var digitRunPattern = regexp.MustCompile(`[0-9]+`)

// Extractor 实体提取器：对查询做最长匹配词典扫描与数字代码识别。
// 不负责去重，重复抑制由调用方统一处理。
type Extractor struct {
	dict *Dictionary
}

// NewExtractor 创建实体提取器
func NewExtractor(dict *Dictionary) *Extractor {
	return &Extractor{dict: dict}
}

// Extract 提取查询中的全部实体。
// 全角字符先折叠为半角，再做词典最长匹配；另扫描六位数字代码并按
// 词典的前缀规则归一化为 stock_code 实体。
func (e *Extractor) Extract(query string) []models.Entity {
	folded := width.Narrow.String(query)
	entities := e.scanDictionary(folded)
	entities = append(entities, e.scanNumericCodes(folded)...)
	return entities
}

// scanDictionary 逐位置做最长匹配：优先尝试词表中最长的名称长度
func (e *Extractor) scanDictionary(query string) []models.Entity {
	var entities []models.Entity
	runes := []rune(query)
	maxLen := e.dict.MaxNameLen()
	if maxLen == 0 {
		return nil
	}

	for pos := 0; pos < len(runes); {
		matched := 0
		limit := maxLen
		if remaining := len(runes) - pos; remaining < limit {
			limit = remaining
		}
		for l := limit; l >= 2; l-- {
			candidate := string(runes[pos : pos+l])
			if entity, ok := e.dict.Lookup(candidate); ok {
				entities = append(entities, entity)
				matched = l
				break
			}
		}
		if matched > 0 {
			pos += matched
		} else {
			pos++
		}
	}
	return entities
}

// scanNumericCodes 识别六位数字串为股票代码，按词典前缀规则补全后缀
func (e *Extractor) scanNumericCodes(query string) []models.Entity {
	var entities []models.Entity
	for _, run := range digitRunPattern.FindAllString(query, -1) {
		if len(run) != 6 {
			continue
		}
		entities = append(entities, models.Entity{
			Type:       models.EntityStockCode,
			Value:      e.dict.NormalizeCode(run),
			Name:       fmt.Sprintf("股票%s", run),
			Confidence: numericConfidence,
			Source:     models.SourceNumeric,
		})
	}
	return entities
}
