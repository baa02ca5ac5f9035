package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter"
	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/niksmo/storefront/internal/adapter/kafka"
	"github.com/niksmo/storefront/internal/adapter/static"
	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/core/catalog"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type serdes struct {
	product     schema.Serde
	searchEvent schema.Serde
}

type outbound struct {
	sqldb         *storage.SQLDB
	products      *storage.ProductsRepository
	fallback      static.ProductsSource
	producer      *kafka.ProductsProducer
	recentStorage port.RecentSearchesStorage
	recentProc    *kafka.RecentSearchesProcessor
	recentView    *kafka.RecentSearchesView
	recentEmitter *kafka.SearchEventsEmitter
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	tlsConfig  *tls.Config
	serdes     serdes
	outbound   outbound
	service    service.Service
	consumer   *kafka.ProductsConsumer
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initTLS()
	app.initStorage()
	app.initSerdes()
	app.initOutboundAdapters()
	app.initCoreService()
	app.initConsumers()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initTLS() {
	const op = "App.initTLS"

	files := app.cfg.Broker.TLS
	if !files.Enabled() {
		return
	}

	tlsConfig, err := adapter.MakeTLSConfig(files.CA, files.Cert, files.Key)
	if err != nil {
		app.fallDown(op, err)
	}
	app.tlsConfig = tlsConfig
	kafka.ApplyTLS(tlsConfig)
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	fallback, err := static.NewProductsSource()
	if err != nil {
		app.fallDown(op, err)
	}
	app.outbound.fallback = fallback

	if app.cfg.SQLDB == "" {
		slog.Warn("sql_db is not set, serving the bundled catalog", "op", op)
		return
	}

	sqldb, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}
	products := storage.NewProductsRepository(sqldb)

	app.outbound.sqldb = &sqldb
	app.outbound.products = &products
}

func (app *App) initSerdes() {
	const op = "App.initSerdes"

	if !app.cfg.Broker.Enabled() {
		return
	}

	urls := app.cfg.Broker.SchemaRegistryURLs
	ctx := app.ctx

	srOpts := []sr.ClientOpt{sr.URLs(urls...)}
	if app.tlsConfig != nil {
		srOpts = append(srOpts, sr.DialTLSConfig(app.tlsConfig))
	}
	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		app.fallDown(op, err)
	}

	schemaCreater := schema.NewSchemaCreater(srClient)

	productSS := app.cfg.Broker.Topics.Products + "-value"
	productSerde, err := schema.NewSerdeProductV1(
		ctx,
		schema.SubjectOpt(productSS),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	searchEventSS := app.cfg.Broker.Topics.SearchEvents + "-value"
	searchEventSerde, err := schema.NewSerdeSearchEventV1(
		ctx,
		schema.SubjectOpt(searchEventSS),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.serdes.product = productSerde
	app.serdes.searchEvent = searchEventSerde
}

func (app *App) initOutboundAdapters() {
	const op = "App.initOutboundAdapters"

	if app.cfg.Broker.Enabled() && !app.cfg.IngestEnabled() {
		slog.Warn("sql_db is not set, product publishing is disabled", "op", op)
	}

	if app.cfg.IngestEnabled() {
		productsProducer, err := kafka.NewProductsProducer(
			kafka.ProducerClientOpt(
				app.ctx,
				app.cfg.Broker.SeedBrokers,
				app.cfg.Broker.Topics.Products,
				app.tlsConfig,
			),
			kafka.ProducerEncoderOpt(app.serdes.product),
		)
		if err != nil {
			app.fallDown(op, err)
		}
		app.outbound.producer = &productsProducer
	}

	switch app.cfg.RecentSearches.Backend {
	case config.RecentSearchesKafka:
		app.initKafkaRecentSearches()
	default:
		app.outbound.recentStorage = storage.NewMemoryRecentSearches(
			app.cfg.RecentSearches.Capacity,
		)
	}
}

func (app *App) initKafkaRecentSearches() {
	const op = "App.initKafkaRecentSearches"

	seedBrokers := app.cfg.Broker.SeedBrokers
	stream := app.cfg.Broker.Topics.SearchEvents
	group := app.cfg.Broker.Consumers.RecentSearchesGroup

	proc, err := kafka.NewRecentSearchesProc(
		seedBrokers,
		stream,
		group,
		app.serdes.searchEvent,
		app.cfg.RecentSearches.Capacity,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	view, err := kafka.NewRecentSearchesView(seedBrokers, group)
	if err != nil {
		app.fallDown(op, err)
	}

	emitter, err := kafka.NewSearchEventsEmitter(
		seedBrokers, stream, app.serdes.searchEvent,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.outbound.recentProc = proc
	app.outbound.recentView = view
	app.outbound.recentEmitter = &emitter
	app.outbound.recentStorage = kafka.NewRecentSearchesStorage(emitter, view)
}

func (app *App) initCoreService() {
	const op = "App.initCoreService"

	engine := catalog.New(
		catalog.WithLocale(app.cfg.Locale()),
		catalog.WithSaleRule(app.cfg.SaleRule()),
	)

	cfg := service.Config{
		SuggestionsLimit: app.cfg.Catalog.SuggestionsLimit,
		RelatedLimit:     app.cfg.Catalog.RelatedLimit,
		SourceAttempts:   app.cfg.Catalog.SourceAttempts,
		SourceBackoff:    app.cfg.Catalog.SourceBackoff,
	}

	opts := []service.Opt{service.FallbackOpt(app.outbound.fallback)}

	if p := app.outbound.products; p != nil {
		opts = append(opts, service.SourceOpt(*p), service.StorageOpt(*p))
	}
	if p := app.outbound.producer; p != nil {
		opts = append(opts, service.ProducerOpt(*p))
	}

	var recentProc port.RecentSearchesProcessor
	if p := app.outbound.recentProc; p != nil {
		recentProc = p
	}
	opts = append(opts,
		service.RecentSearchesOpt(app.outbound.recentStorage, recentProc),
	)

	app.service = service.New(engine, cfg, opts...)
	slog.Debug("core service is ready", "op", op)
}

func (app *App) initConsumers() {
	const op = "App.initConsumers"

	if !app.cfg.IngestEnabled() {
		return
	}

	consumer, err := kafka.NewProductsConsumer(
		kafka.ConsumerClientOpt(
			app.cfg.Broker.SeedBrokers,
			app.cfg.Broker.Topics.Products,
			app.cfg.Broker.Consumers.ProductSaverGroup,
			app.tlsConfig,
		),
		kafka.ConsumerDecoderOpt(app.serdes.product),
		kafka.ProductsConsumerSaverOpt(app.service),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.consumer = &consumer
}

func (app *App) initInboundAdapters() {
	addr := app.cfg.HTTPServerAddr
	mux := http.NewServeMux()
	httphandler.RegisterProducts(mux, app.service, app.service)
	httphandler.RegisterSearch(mux, app.service, app.service)
	httphandler.RegisterPublish(mux, app.service)

	handler := httphandler.RequestID(httphandler.AllowJSON(mux))
	app.httpServer = httphandler.NewHTTPServer(
		addr, handler, app.cfg.HTTPHandlerTimeout,
	)
}

func (app *App) Run(stopFn context.CancelFunc) {
	app.service.Run(app.ctx, stopFn)

	if v := app.outbound.recentView; v != nil {
		go v.Run(app.ctx, stopFn)
	}
	if c := app.consumer; c != nil {
		go c.Run(app.ctx)
	}
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)

	if c := app.consumer; c != nil {
		c.Close()
	}
	if p := app.outbound.producer; p != nil {
		p.Close()
	}
	if e := app.outbound.recentEmitter; e != nil {
		e.Close()
	}
	app.service.Close()
	if db := app.outbound.sqldb; db != nil {
		db.Close()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
