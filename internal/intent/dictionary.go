package intent

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"

	"github.com/lincunyuan/Financial-Agent/internal/embed"
	"github.com/lincunyuan/Financial-Agent/internal/logger"
	"github.com/lincunyuan/Financial-Agent/internal/models"
)

var dictLog = logger.New("intent:dict")

// 已规范化的代码后缀，出现这些后缀的代码不再做补全
var knownSuffixes = []string{".SS", ".SZ", ".HK", ".US"}

// DictionaryRules 代码规范化规则
type DictionaryRules struct {
	ExchangePrefixes  []string // 需剥离的前缀，如 sh/sz
	SecondaryPrefixes []string // 深市代码前缀集合，命中追加 SecondarySuffix
	SecondarySuffix   string   // 如 .SZ
	PrimarySuffix     string   // 其余六位数字代码追加，如 .SS
}

// DefaultDictionaryRules A股默认规范化规则
func DefaultDictionaryRules() DictionaryRules {
	return DictionaryRules{
		ExchangePrefixes:  []string{"sh", "sz"},
		SecondaryPrefixes: []string{"0", "3"},
		SecondarySuffix:   ".SZ",
		PrimarySuffix:     ".SS",
	}
}

// Dictionary 实体词典：名称到规范化代码的只读映射。
// 构建完成后不再修改，重载通过 Provider 整体换入新实例。
type Dictionary struct {
	rules      DictionaryRules
	stocks     map[string]string
	indices    map[string]string
	economics  map[string]string
	maxNameLen int // 词表中最长名称的 rune 数，供提取器做最长匹配
}

type builtinTables struct {
	Stocks    map[string]string `json:"stocks"`
	Indices   map[string]string `json:"indices"`
	Economics map[string]string `json:"economics"`
}

// NewDictionary 用内置词表构建词典
func NewDictionary(rules DictionaryRules) *Dictionary {
	d := &Dictionary{
		rules:     rules,
		stocks:    make(map[string]string),
		indices:   make(map[string]string),
		economics: make(map[string]string),
	}

	var builtin builtinTables
	if err := json.Unmarshal(embed.EntityDictJSON, &builtin); err != nil {
		// 内置词表损坏也不中断调用方，词典退化为空表
		dictLog.Error("解析内置词表失败: %v", err)
	} else {
		for name, code := range builtin.Stocks {
			d.stocks[name] = code
		}
		for name, code := range builtin.Indices {
			d.indices[name] = code
		}
		for name, code := range builtin.Economics {
			d.economics[name] = code
		}
	}
	d.refreshMaxNameLen()
	return d
}

// LoadCSV 合并外部股票映射文件（display_name, raw_code）。
// 文件缺失或行格式错误只记录日志并跳过，返回成功合并的行数。
func (d *Dictionary) LoadCSV(path string) int {
	f, err := os.Open(path)
	if err != nil {
		dictLog.Warn("股票映射文件不可用: %v", err)
		return 0
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	// 跳过表头
	if _, err := reader.Read(); err != nil {
		if err != io.EOF {
			dictLog.Warn("读取股票映射表头失败: %v", err)
		}
		return 0
	}

	count := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			dictLog.Warn("跳过格式错误的映射行: %v", err)
			continue
		}
		if len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(row[0])
		code := d.NormalizeCode(strings.TrimSpace(row[1]))
		if name == "" || code == "" {
			continue
		}
		d.stocks[name] = code
		count++
	}

	d.refreshMaxNameLen()
	dictLog.Info("成功加载 %d 只股票到实体词典", count)
	return count
}

// NormalizeCode 规范化股票代码：剥离交易所前缀，按前缀规则补全后缀。
// 深市前缀（默认 0/3 开头）补 .SZ，其余六位数字代码补 .SS。
func (d *Dictionary) NormalizeCode(raw string) string {
	code := raw
	lower := strings.ToLower(code)
	for _, prefix := range d.rules.ExchangePrefixes {
		if strings.HasPrefix(lower, prefix) {
			code = code[len(prefix):]
			break
		}
	}
	if code == "" {
		return ""
	}
	for _, suffix := range knownSuffixes {
		if strings.HasSuffix(code, suffix) {
			return code
		}
	}
	if !isDigits(code) || len(code) != 6 {
		return code
	}
	for _, prefix := range d.rules.SecondaryPrefixes {
		if strings.HasPrefix(code, prefix) {
			return code + d.rules.SecondarySuffix
		}
	}
	return code + d.rules.PrimarySuffix
}

// Lookup 按名称查找实体，词典命中置信度为 0.9
func (d *Dictionary) Lookup(name string) (models.Entity, bool) {
	if code, ok := d.stocks[name]; ok {
		return models.Entity{
			Type:       models.EntityStock,
			Value:      code,
			Name:       name,
			Confidence: dictionaryConfidence,
			Source:     models.SourceDictionary,
		}, true
	}
	if code, ok := d.indices[name]; ok {
		return models.Entity{
			Type:       models.EntityIndex,
			Value:      code,
			Name:       name,
			Confidence: dictionaryConfidence,
			Source:     models.SourceDictionary,
		}, true
	}
	if code, ok := d.economics[name]; ok {
		return models.Entity{
			Type:       models.EntityEconomic,
			Value:      code,
			Name:       name,
			Confidence: dictionaryConfidence,
			Source:     models.SourceDictionary,
		}, true
	}
	return models.Entity{}, false
}

// Contains 名称是否在词典中
func (d *Dictionary) Contains(name string) bool {
	_, ok := d.Lookup(name)
	return ok
}

// StockCode 按名称查股票代码
func (d *Dictionary) StockCode(name string) (string, bool) {
	code, ok := d.stocks[name]
	return code, ok
}

// IndexCode 按名称查指数代码
func (d *Dictionary) IndexCode(name string) (string, bool) {
	code, ok := d.indices[name]
	return code, ok
}

// MaxNameLen 词表中最长名称的 rune 数
func (d *Dictionary) MaxNameLen() int {
	return d.maxNameLen
}

func (d *Dictionary) refreshMaxNameLen() {
	max := 0
	for _, table := range []map[string]string{d.stocks, d.indices, d.economics} {
		for name := range table {
			if n := utf8.RuneCountInString(name); n > max {
				max = n
			}
		}
	}
	d.maxNameLen = max
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DictionaryProvider 持有当前词典并支持原子换入。
// 读路径无锁：Current 返回的实例构建后只读。
type DictionaryProvider struct {
	rules   DictionaryRules
	csvPath string
	current atomic.Pointer[Dictionary]
	watcher *fsnotify.Watcher
}

// NewDictionaryProvider 构建词典（内置表 ∪ 外部 CSV）并持有
func NewDictionaryProvider(rules DictionaryRules, csvPath string) *DictionaryProvider {
	p := &DictionaryProvider{rules: rules, csvPath: csvPath}
	p.current.Store(p.build())
	return p
}

// Current 当前词典快照
func (p *DictionaryProvider) Current() *Dictionary {
	return p.current.Load()
}

// Reload 重新构建词典并整体换入
func (p *DictionaryProvider) Reload() {
	p.current.Store(p.build())
	dictLog.Info("实体词典已重载")
}

func (p *DictionaryProvider) build() *Dictionary {
	d := NewDictionary(p.rules)
	if p.csvPath != "" {
		d.LoadCSV(p.csvPath)
	}
	return d
}

// Watch 监听映射文件所在目录，文件变更时重载词典
func (p *DictionaryProvider) Watch() error {
	if p.csvPath == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(p.csvPath)); err != nil {
		watcher.Close()
		return err
	}
	p.watcher = watcher

	go func() {
		target := filepath.Clean(p.csvPath)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					p.Reload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				dictLog.Warn("词典文件监听错误: %v", err)
			}
		}
	}()
	return nil
}

// Close 停止文件监听
func (p *DictionaryProvider) Close() {
	if p.watcher != nil {
		p.watcher.Close()
	}
}
