package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lincunyuan/Financial-Agent/internal/logger"
	"github.com/lincunyuan/Financial-Agent/internal/models"
)

// Config 全局配置
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        logger.Config    `mapstructure:"log"`
	Session    SessionConfig    `mapstructure:"session"`
	Dictionary DictionaryConfig `mapstructure:"dictionary"`
	Intent     IntentConfig     `mapstructure:"intent"`
	AI         AIConfig         `mapstructure:"ai"`
	Market     MarketConfig     `mapstructure:"market"`
	News       NewsConfig       `mapstructure:"news"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
	Env      string `mapstructure:"env"`
}

// SessionConfig 会话层配置
type SessionConfig struct {
	StorePath        string        `mapstructure:"store_path"`         // badger 数据目录，空则使用内存模式
	MaxHistoryRounds int           `mapstructure:"max_history_rounds"` // 保留的最大对话轮数
	TTL              time.Duration `mapstructure:"ttl"`                // 会话滑动过期时间
}

// DictionaryConfig 实体词典配置
type DictionaryConfig struct {
	MappingPath       string   `mapstructure:"mapping_path"`       // 外部股票映射 CSV 路径
	Watch             bool     `mapstructure:"watch"`              // 监听文件变更并原子换入新词典
	ExchangePrefixes  []string `mapstructure:"exchange_prefixes"`  // 需剥离的交易所前缀，如 sh/sz
	SecondaryPrefixes []string `mapstructure:"secondary_prefixes"` // 深市代码前缀集合
	SecondarySuffix   string   `mapstructure:"secondary_suffix"`   // 深市后缀
	PrimarySuffix     string   `mapstructure:"primary_suffix"`     // 沪市后缀
}

// IntentConfig 意图识别调参项。阈值与加成系数来自线上经验值，按配置保留可调。
type IntentConfig struct {
	ConfidenceThreshold    float64  `mapstructure:"confidence_threshold"`     // 意图胜出的最低合并得分
	KeywordWeight          float64  `mapstructure:"keyword_weight"`           // 关键词信号权重
	PatternWeight          float64  `mapstructure:"pattern_weight"`           // 模式信号权重
	EntityBoostStep        float64  `mapstructure:"entity_boost_step"`        // 每个实体的得分加成
	EntityBoostCap         float64  `mapstructure:"entity_boost_cap"`         // 实体加成上限
	Pronouns               []string `mapstructure:"pronouns"`                 // 触发指代解析的代词集合
	DefaultPronoun         string   `mapstructure:"default_pronoun"`          // 回写默认指代关系时使用的代词
	EntitySensitiveIntents []string `mapstructure:"entity_sensitive_intents"` // 参与实体加成的意图

	// 为空时使用内置类别定义
	Categories []models.IntentCategory `mapstructure:"categories"`
}

// AIConfig 外部分类器配置
type AIConfig struct {
	Enabled bool            `mapstructure:"enabled"`
	Timeout time.Duration   `mapstructure:"timeout"`
	Model   models.AIConfig `mapstructure:",squash"`
}

type MarketConfig struct {
	HQBaseURL string        `mapstructure:"hq_base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type NewsConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Limit   int           `mapstructure:"limit"`
}

// Load 加载配置文件，缺失项使用默认值，环境变量 FA_ 前缀可覆盖
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.env", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)

	v.SetDefault("session.store_path", "")
	v.SetDefault("session.max_history_rounds", 5)
	v.SetDefault("session.ttl", "1800s")

	v.SetDefault("dictionary.mapping_path", "data/stock_mapping.csv")
	v.SetDefault("dictionary.watch", false)
	v.SetDefault("dictionary.exchange_prefixes", []string{"sh", "sz"})
	v.SetDefault("dictionary.secondary_prefixes", []string{"0", "3"})
	v.SetDefault("dictionary.secondary_suffix", ".SZ")
	v.SetDefault("dictionary.primary_suffix", ".SS")

	v.SetDefault("intent.confidence_threshold", 0.3)
	v.SetDefault("intent.keyword_weight", 0.6)
	v.SetDefault("intent.pattern_weight", 0.4)
	v.SetDefault("intent.entity_boost_step", 0.1)
	v.SetDefault("intent.entity_boost_cap", 0.3)
	v.SetDefault("intent.pronouns", []string{"这个", "那个", "它", "其", "该"})
	v.SetDefault("intent.default_pronoun", "它")
	v.SetDefault("intent.entity_sensitive_intents",
		[]string{models.IntentSpecificStock, models.IntentStockMarket, models.IntentStockHistorical})

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.model", "qwen-plus")
	v.SetDefault("ai.timeout", "10s")

	v.SetDefault("market.hq_base_url", "https://hq.sinajs.cn")
	v.SetDefault("market.timeout", "8s")
	v.SetDefault("news.url", "https://finance.sina.com.cn/roll/")
	v.SetDefault("news.timeout", "8s")
	v.SetDefault("news.limit", 10)

	// 配置文件允许缺失，全部走默认值与环境变量
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !strings.Contains(err.Error(), "no such file") {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
