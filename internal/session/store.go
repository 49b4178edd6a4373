// Package session 维护用户级对话历史与指代关系，底层使用 badger 持久化。
// 所有键都带滑动过期时间，读写均会刷新，闲置会话自动清理。
package session

import (
	"encoding/json"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/lincunyuan/Financial-Agent/internal/logger"
	"github.com/lincunyuan/Financial-Agent/internal/models"
)

var storeLog = logger.New("session:store")

const (
	conversationKeyPrefix = "conversation:"
	coreferenceKeyPrefix  = "coreference:"

	defaultTTL = 30 * time.Minute
)

// Store 会话持久化契约
type Store interface {
	SaveTurns(userID string, turns []models.ConversationTurn) error
	Turns(userID string) ([]models.ConversationTurn, error)
	SaveBindings(userID string, bindings []models.CoreferenceBinding) error
	Bindings(userID string) ([]models.CoreferenceBinding, error)
	Delete(userID string) error
	Close() error
}

// BadgerStore badger 实现。path 为空时使用内存模式，供测试与无盘部署。
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenBadger 打开会话存储
func OpenBadger(path string, ttl time.Duration) (*BadgerStore, error) {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	if path == "" {
		storeLog.Info("会话存储运行于内存模式")
	} else {
		storeLog.Info("会话存储已打开: %s", path)
	}
	return &BadgerStore{db: db, ttl: ttl}, nil
}

// SaveTurns 覆盖写入用户的全部对话轮次
func (s *BadgerStore) SaveTurns(userID string, turns []models.ConversationTurn) error {
	return s.setJSON(conversationKeyPrefix+userID, turns)
}

// Turns 读取用户的对话轮次，读取会刷新过期时间
func (s *BadgerStore) Turns(userID string) ([]models.ConversationTurn, error) {
	var turns []models.ConversationTurn
	if err := s.getJSON(conversationKeyPrefix+userID, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

// SaveBindings 覆盖写入用户的全部指代关系
func (s *BadgerStore) SaveBindings(userID string, bindings []models.CoreferenceBinding) error {
	return s.setJSON(coreferenceKeyPrefix+userID, bindings)
}

// Bindings 读取用户的指代关系，读取会刷新过期时间
func (s *BadgerStore) Bindings(userID string) ([]models.CoreferenceBinding, error) {
	var bindings []models.CoreferenceBinding
	if err := s.getJSON(coreferenceKeyPrefix+userID, &bindings); err != nil {
		return nil, err
	}
	return bindings, nil
}

// Delete 清除用户的对话与指代数据
func (s *BadgerStore) Delete(userID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(conversationKeyPrefix + userID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Delete([]byte(coreferenceKeyPrefix + userID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
}

// Close 关闭底层数据库
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) setJSON(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), raw).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
}

// getJSON 读取并解析键值。键存在时重写一次以刷新滑动过期时间，
// 键不存在视为空数据而不是错误。
func (s *BadgerStore) getJSON(key string, out any) error {
	var raw []byte
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		if err != nil {
			return err
		}
		entry := badger.NewEntry([]byte(key), raw).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
