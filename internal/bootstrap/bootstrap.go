// Package bootstrap wires configuration into the concrete pipeline.
package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httpadapter "github.com/Alonso-droid/mpedge-app/internal/adapters/http"
	"github.com/Alonso-droid/mpedge-app/internal/config"
	"github.com/Alonso-droid/mpedge-app/internal/core/ports"
	"github.com/Alonso-droid/mpedge-app/internal/core/usecase"
	"github.com/Alonso-droid/mpedge-app/internal/infrastructure/detect"
	"github.com/Alonso-droid/mpedge-app/internal/infrastructure/docsource"
	"github.com/Alonso-droid/mpedge-app/internal/infrastructure/extractor/pdfminer"
	"github.com/Alonso-droid/mpedge-app/internal/infrastructure/history"
	"github.com/Alonso-droid/mpedge-app/internal/infrastructure/llm"
	"github.com/Alonso-droid/mpedge-app/internal/infrastructure/llm/huggingface"
	"github.com/Alonso-droid/mpedge-app/internal/infrastructure/llm/openrouter"
	"github.com/Alonso-droid/mpedge-app/internal/infrastructure/registry"
	"github.com/Alonso-droid/mpedge-app/internal/infrastructure/resilience"
	"github.com/Alonso-droid/mpedge-app/internal/infrastructure/retrieval"
	"github.com/Alonso-droid/mpedge-app/internal/infrastructure/segment"
	"github.com/Alonso-droid/mpedge-app/internal/infrastructure/storage/localfs"
	"github.com/Alonso-droid/mpedge-app/internal/observability/metrics"
)

const serviceName = "mpedge-api"

type App struct {
	Config  config.Config
	Service ports.QuestionService
	History ports.HistoryStore
	Metrics *metrics.HTTPServerMetrics
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	serverMetrics := metrics.NewHTTPServerMetrics(serviceName)
	timeout := time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	entries := registry.BuiltinEntries()
	if cfg.ChapterIndexPath != "" {
		loaded, err := registry.LoadIndex(cfg.ChapterIndexPath)
		if err != nil {
			return nil, fmt.Errorf("load chapter index: %w", err)
		}
		entries = loaded
	}
	chapterRegistry, err := registry.New(entries)
	if err != nil {
		return nil, fmt.Errorf("build chapter registry: %w", err)
	}

	rules := detect.BuiltinRules()
	if cfg.KeywordTablePath != "" {
		loaded, err := detect.LoadRules(cfg.KeywordTablePath)
		if err != nil {
			return nil, fmt.Errorf("load keyword table: %w", err)
		}
		rules = loaded
	}
	detector := detect.New(rules)

	fetchExecutor := resilience.NewExecutor(resilience.DefaultConfig())
	sourceOpts := []docsource.Option{docsource.WithMetrics(serverMetrics.Pipeline)}
	if cfg.TextCacheDir != "" {
		diskStore, err := localfs.New(cfg.TextCacheDir)
		if err != nil {
			return nil, fmt.Errorf("init text cache dir: %w", err)
		}
		sourceOpts = append(sourceOpts, docsource.WithDiskStore(diskStore))
	}
	source := docsource.New(pdfminer.New(), fetchExecutor, timeout, cfg.MaxDocumentChars, sourceOpts...)

	hfClient := huggingface.New(cfg.HFEndpoint, cfg.HFAPIKey, cfg.HFModel, cfg.MaxNewTokens, timeout)
	embedder := huggingface.NewEmbedder(hfClient, cfg.HFEmbedModel)
	orClient := openrouter.New(cfg.OREndpoint, cfg.ORAPIKey, cfg.ORModel, timeout)

	var primary, fallback ports.LLMProvider = hfClient, orClient
	if cfg.PrimaryProvider == openrouter.ProviderName {
		primary, fallback = orClient, hfClient
	}

	providerCfg := resilience.DefaultConfig()
	providerCfg.RetryMaxAttempts = 1
	gateway := llm.NewGateway(primary, fallback,
		resilience.NewExecutor(providerCfg), logger, serverMetrics.Pipeline)

	historyStore := history.NewStore(cfg.HistoryLimit)

	service := usecase.NewAskService(usecase.AskServiceParams{
		Registry:  chapterRegistry,
		Detector:  detector,
		Source:    source,
		Segmenter: segment.New(cfg.MinPassageChars),
		Rankers: map[string]ports.Ranker{
			retrieval.StrategyLexical:  retrieval.NewLexicalRanker(),
			retrieval.StrategySemantic: retrieval.NewSemanticRanker(embedder, serverMetrics.Pipeline),
		},
		Gateway:  gateway,
		History:  historyStore,
		Observer: serverMetrics.Pipeline,

		DefaultStrategy: cfg.RetrievalMode,
		DefaultTopK:     cfg.TopK,
		MaxContextChars: cfg.MaxContextChars,
	})

	return &App{
		Config:  cfg,
		Service: service,
		History: historyStore,
		Metrics: serverMetrics,
	}, nil
}

// Handler assembles the full middleware chain around the API router.
func (a *App) Handler() http.Handler {
	router := httpadapter.NewRouter(a.Service, a.History, a.Metrics.Handler(), httpadapter.RouterConfig{
		RateLimitRPS:     a.Config.APIRateLimitRPS,
		RateLimitBurst:   a.Config.APIRateLimitBurst,
		MaxInFlight:      a.Config.APIMaxInFlight,
		BackpressureWait: time.Duration(a.Config.APIBackpressureWait) * time.Millisecond,
	})
	return a.Metrics.Middleware(serviceName, router.Handler())
}
