package embed

import (
	_ "embed"
)

// EntityDictJSON 嵌入的内置实体词表（股票/指数/经济指标）
// 编译时从 entity_dict.json 嵌入到二进制文件中
//
//go:embed entity_dict.json
var EntityDictJSON []byte
