package models

import "time"

// CoreferenceBinding 代词与实体的指代关系，由会话层按用户追加存储。
// 同一代词允许存在多条记录，读取时由解析器按时间戳就近取胜。
type CoreferenceBinding struct {
	Pronoun        string    `json:"pronoun"`        // 代词，如 它
	ReferentType   string    `json:"referentType"`   // 内部实体类型，如 stock
	ReferentTarget string    `json:"referentTarget"` // 原始实体类型，如 stock_name
	ReferentValue  string    `json:"referentValue"`  // 指代的实体值
	Timestamp      time.Time `json:"timestamp"`
}

// TurnMetadata 单轮对话的附加信息
type TurnMetadata struct {
	Intent   string   `json:"intent,omitempty"`
	Entities []Entity `json:"entities,omitempty"`
}

// ConversationTurn 单轮对话记录
type ConversationTurn struct {
	ID        string        `json:"id"`
	Query     string        `json:"query"`
	Response  string        `json:"response"`
	Timestamp time.Time     `json:"timestamp"`
	Metadata  *TurnMetadata `json:"metadata,omitempty"`
}

// ChatResponse 一次完整问答的返回结构
type ChatResponse struct {
	UserID        string   `json:"userId"`
	Response      string   `json:"response"`
	Intent        string   `json:"intent"`
	Confidence    float64  `json:"confidence"`
	Entities      []Entity `json:"entities,omitempty"`
	ResolvedQuery string   `json:"resolvedQuery"`
	Error         string   `json:"error,omitempty"`
}
