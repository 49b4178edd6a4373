package models

// EntityType 实体类型
type EntityType string

const (
	EntityStock     EntityType = "stock"              // 股票
	EntityIndex     EntityType = "index"              // 指数
	EntityStockCode EntityType = "stock_code"         // 裸股票代码
	EntityEconomic  EntityType = "economic_indicator" // 经济指标
	EntityCompany   EntityType = "company"            // 公司
)

// 实体来源标识
const (
	SourceDictionary = "dictionary"        // 词典匹配
	SourceNumeric    = "numeric-heuristic" // 数字代码识别
	SourceCorefStore = "coreference-store" // 存储的指代关系
	SourceHistory    = "history-scan"      // 历史对话回溯
	SourceClassifier = "external-classifier"
)

// Entity 识别出的金融实体
type Entity struct {
	Type       EntityType `json:"type"`
	Value      string     `json:"value"`             // 规范化代码，如 600519.SS
	Name       string     `json:"name"`              // 展示名称，如 贵州茅台
	Confidence float64    `json:"confidence"`        // [0,1]
	Source     string     `json:"source"`            // 来源标识
	Pronoun    string     `json:"pronoun,omitempty"` // 由哪个代词解析而来（仅指代解析结果）
}

// RawEntity 外部分类器返回的原始实体
type RawEntity struct {
	Type  string `json:"type"` // stock_name/stock_code/index_name/economic_indicator/time
	Value string `json:"value"`
}

// DedupEntities 按 (type, value) 去重，保留首次出现的实体
func DedupEntities(entities []Entity) []Entity {
	if len(entities) <= 1 {
		return entities
	}
	type key struct {
		t EntityType
		v string
	}
	seen := make(map[key]struct{}, len(entities))
	result := make([]Entity, 0, len(entities))
	for _, e := range entities {
		k := key{e.Type, e.Value}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, e)
	}
	return result
}

// Referable 判断实体是否可以作为后续代词的指代对象
func (e Entity) Referable() bool {
	switch e.Type {
	case EntityStock, EntityIndex, EntityStockCode, EntityCompany:
		return true
	}
	return false
}
