package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lincunyuan/Financial-Agent/internal/intent"
	"github.com/lincunyuan/Financial-Agent/internal/logger"
	"github.com/lincunyuan/Financial-Agent/internal/models"
)

var _ intent.CoreferenceStore = (*Manager)(nil)

var managerLog = logger.New("session:manager")

const defaultMaxHistoryRounds = 5

// Manager 会话管理器。对话历史按轮裁剪，指代关系只追加不收敛，
// 冲突交给意图层按时间戳就近取胜。
type Manager struct {
	store     Store
	maxRounds int
}

// NewManager 创建会话管理器
func NewManager(store Store, maxRounds int) *Manager {
	if maxRounds <= 0 {
		maxRounds = defaultMaxHistoryRounds
	}
	return &Manager{store: store, maxRounds: maxRounds}
}

// StoreConversation 追加一轮对话并裁剪到最大轮数
func (m *Manager) StoreConversation(userID, query, response string, metadata *models.TurnMetadata) error {
	turns, err := m.store.Turns(userID)
	if err != nil {
		return fmt.Errorf("读取对话历史失败: %w", err)
	}
	turns = append(turns, models.ConversationTurn{
		ID:        uuid.NewString(),
		Query:     query,
		Response:  response,
		Timestamp: time.Now(),
		Metadata:  metadata,
	})
	if len(turns) > m.maxRounds {
		turns = turns[len(turns)-m.maxRounds:]
	}
	if err := m.store.SaveTurns(userID, turns); err != nil {
		return fmt.Errorf("写入对话历史失败: %w", err)
	}
	managerLog.Debug("已存储对话轮次: user=%s rounds=%d", userID, len(turns))
	return nil
}

// History 返回用户的对话历史，按时间从旧到新
func (m *Manager) History(userID string) []models.ConversationTurn {
	turns, err := m.store.Turns(userID)
	if err != nil {
		managerLog.Warn("读取对话历史失败: %v", err)
		return nil
	}
	return turns
}

// Add 追加一条指代关系，满足意图层的存储契约
func (m *Manager) Add(userID string, binding models.CoreferenceBinding) bool {
	if binding.Pronoun == "" || binding.ReferentValue == "" {
		return false
	}
	if binding.Timestamp.IsZero() {
		binding.Timestamp = time.Now()
	}
	bindings, err := m.store.Bindings(userID)
	if err != nil {
		managerLog.Warn("读取指代关系失败: %v", err)
		return false
	}
	bindings = append(bindings, binding)
	if err := m.store.SaveBindings(userID, bindings); err != nil {
		managerLog.Warn("写入指代关系失败: %v", err)
		return false
	}
	managerLog.Debug("已存储指代关系: user=%s 代词'%s'指代'%s'", userID, binding.Pronoun, binding.ReferentValue)
	return true
}

// GetAll 返回用户的全部指代关系
func (m *Manager) GetAll(userID string) []models.CoreferenceBinding {
	bindings, err := m.store.Bindings(userID)
	if err != nil {
		managerLog.Warn("读取指代关系失败: %v", err)
		return nil
	}
	return bindings
}

// Clear 清空用户的对话历史与指代关系
func (m *Manager) Clear(userID string) error {
	return m.store.Delete(userID)
}

// ContextPrompt 将对话历史拼装为可注入提示词的上下文文本
func (m *Manager) ContextPrompt(userID string) string {
	turns := m.History(userID)
	if len(turns) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("以下是之前的对话历史：\n")
	for _, turn := range turns {
		fmt.Fprintf(&sb, "用户: %s\n助手: %s\n", turn.Query, turn.Response)
	}
	return sb.String()
}
