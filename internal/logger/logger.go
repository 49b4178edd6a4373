package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config 日志配置
type Config struct {
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"` // console 或 json
	Development bool   `mapstructure:"development"`
}

// Init 根据配置构建 zap 并安装为全局日志后端。
// 未调用 Init 时各模块日志走 zap 的全局 no-op。
func Init(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	zc := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Development,
		Encoding:         cfg.Encoding,
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	if cfg.Encoding == "console" {
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	base, err := zc.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(base)
	return base, nil
}

// Logger 模块日志记录器
type Logger struct {
	module string
}

// New 创建指定模块的日志记录器
func New(module string) *Logger {
	return &Logger{module: module}
}

// sugar 延迟取全局 logger，保证包级 var log 在 Init 之前创建也能生效
func (l *Logger) sugar() *zap.SugaredLogger {
	return zap.S().Named(l.module)
}

// Debug 调试日志
func (l *Logger) Debug(format string, args ...any) {
	l.sugar().Debugf(format, args...)
}

// Info 信息日志
func (l *Logger) Info(format string, args ...any) {
	l.sugar().Infof(format, args...)
}

// Warn 警告日志
func (l *Logger) Warn(format string, args ...any) {
	l.sugar().Warnf(format, args...)
}

// Error 错误日志
func (l *Logger) Error(format string, args ...any) {
	l.sugar().Errorf(format, args...)
}
