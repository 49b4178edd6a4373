package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lincunyuan/Financial-Agent/internal/agent"
	"github.com/lincunyuan/Financial-Agent/internal/classifier"
	"github.com/lincunyuan/Financial-Agent/internal/config"
	"github.com/lincunyuan/Financial-Agent/internal/intent"
	"github.com/lincunyuan/Financial-Agent/internal/logger"
	"github.com/lincunyuan/Financial-Agent/internal/pkg/paths"
	"github.com/lincunyuan/Financial-Agent/internal/server"
	"github.com/lincunyuan/Financial-Agent/internal/services"
	"github.com/lincunyuan/Financial-Agent/internal/session"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	log, err := logger.Init(cfg.Log)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer log.Sync()

	mainLog := logger.New("main")

	// 会话存储。store_path 为 auto 时落在用户数据目录，为空时使用内存模式
	storePath := cfg.Session.StorePath
	if storePath == "auto" {
		storePath = paths.GetSessionDir()
	}
	store, err := session.OpenBadger(storePath, cfg.Session.TTL)
	if err != nil {
		return fmt.Errorf("打开会话存储失败: %w", err)
	}
	defer store.Close()
	sessions := session.NewManager(store, cfg.Session.MaxHistoryRounds)

	// 实体词典
	rules := intent.DictionaryRules{
		ExchangePrefixes:  cfg.Dictionary.ExchangePrefixes,
		SecondaryPrefixes: cfg.Dictionary.SecondaryPrefixes,
		SecondarySuffix:   cfg.Dictionary.SecondarySuffix,
		PrimarySuffix:     cfg.Dictionary.PrimarySuffix,
	}
	dict := intent.NewDictionaryProvider(rules, cfg.Dictionary.MappingPath)
	defer dict.Close()
	if cfg.Dictionary.Watch {
		if err := dict.Watch(); err != nil {
			mainLog.Warn("词典文件监听启动失败: %v", err)
		}
	}

	// 可选的外部分类器
	var external intent.ExternalClassifier
	if cfg.AI.Enabled {
		c, err := classifier.New(context.Background(), &cfg.AI.Model)
		if err != nil {
			mainLog.Warn("外部分类器初始化失败，仅使用本地流水线: %v", err)
		} else {
			external = c
			mainLog.Info("外部分类器已启用: %s", cfg.AI.Model.Provider)
		}
	}

	entitySensitive := make(map[string]bool, len(cfg.Intent.EntitySensitiveIntents))
	for _, name := range cfg.Intent.EntitySensitiveIntents {
		entitySensitive[name] = true
	}
	analyzer := intent.NewAnalyzer(dict, intent.Options{
		Categories: cfg.Intent.Categories,
		Combiner: intent.CombinerOptions{
			KeywordWeight:       cfg.Intent.KeywordWeight,
			PatternWeight:       cfg.Intent.PatternWeight,
			EntityBoostStep:     cfg.Intent.EntityBoostStep,
			EntityBoostCap:      cfg.Intent.EntityBoostCap,
			ConfidenceThreshold: cfg.Intent.ConfidenceThreshold,
			EntitySensitive:     entitySensitive,
		},
		Pronouns:          cfg.Intent.Pronouns,
		ClassifierTimeout: cfg.AI.Timeout,
	}, external)

	market := services.NewMarketService(cfg.Market.HQBaseURL, cfg.Market.Timeout)
	news := services.NewNewsService(cfg.News.URL, cfg.News.Timeout, cfg.News.Limit)

	coordinator := agent.NewCoordinator(sessions, analyzer, market, news, cfg.Intent.DefaultPronoun)

	srv := server.New(coordinator, cfg.Server.Env)
	httpSrv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: srv.Handler(),
	}

	// SIGINT/SIGTERM 触发优雅关闭，保证会话存储与词典监听的 Close 得以执行
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		mainLog.Info("HTTP 服务监听: %s", cfg.Server.HTTPAddr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP 服务异常退出: %w", err)
		}
	case <-ctx.Done():
		mainLog.Info("收到退出信号，开始关闭 HTTP 服务")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP 服务关闭失败: %w", err)
		}
	}
	return nil
}
