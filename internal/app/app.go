// Package app wires configuration into the chat agent's components.
package app

import (
	"fmt"
	"net/http"

	"github.com/bobmcallan/apichat/internal/agent"
	"github.com/bobmcallan/apichat/internal/catalog"
	"github.com/bobmcallan/apichat/internal/common"
	"github.com/bobmcallan/apichat/internal/config"
	"github.com/bobmcallan/apichat/internal/invoker"
	"github.com/bobmcallan/apichat/internal/llm"
	mcpcatalog "github.com/bobmcallan/apichat/internal/mcp"
	"github.com/bobmcallan/apichat/internal/tools"
	"github.com/bobmcallan/apichat/internal/tools/builtin"
	"github.com/mark3labs/mcp-go/server"
)

// App holds all application components and dependencies. It is fully built
// by New and not modified afterwards.
type App struct {
	Config *config.Config
	Logger *common.Logger

	catalog *catalog.Catalog
	tools   *tools.Registry
	invoker *invoker.Invoker
	router  *agent.Router
	prompt  string
}

// Option customizes New.
type Option func(*options)

type options struct {
	model      llm.ChatModel
	httpClient *http.Client
}

// WithChatModel replaces the OpenAI-compatible client.
func WithChatModel(m llm.ChatModel) Option {
	return func(o *options) { o.model = m }
}

// WithHTTPClient sets the client used for catalog API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// New initializes the application with all dependencies. A catalog that
// cannot be loaded is an error.
func New(cfg *config.Config, logger *common.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load API catalog: %w", err)
	}
	logger.Info().
		Str("path", cfg.Catalog.Path).
		Int("apis", cat.Len()).
		Msg("API catalog loaded")

	registry := tools.NewRegistry()
	if err := builtin.Register(registry); err != nil {
		return nil, fmt.Errorf("failed to register builtin tools: %w", err)
	}

	prompt, err := agent.BuildSystemPrompt(cat.Descriptors(), registry.Names())
	if err != nil {
		return nil, err
	}

	invOpts := []invoker.Option{invoker.WithTimeout(cfg.API.TimeoutDuration())}
	if o.httpClient != nil {
		invOpts = append(invOpts, invoker.WithHTTPClient(o.httpClient))
	}
	inv := invoker.New(cfg.API.BaseURL, cat, logger, invOpts...)

	model := o.model
	if model == nil {
		client, err := llm.NewOpenAIClient(llm.Config{
			BaseURL:  cfg.Model.BaseURL,
			Model:    cfg.Model.Name,
			APIKey:   cfg.Model.APIKey,
			JSONMode: cfg.Model.JSONMode,
			Timeout:  cfg.Model.TimeoutDuration(),
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create model client: %w", err)
		}
		model = client
	}

	router, err := agent.NewRouter(agent.Config{
		SystemPrompt: prompt,
		Model:        model,
		Tools:        registry,
		APIs:         inv,
		Humanizer:    agent.NewHumanizer(model, logger),
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	logger.Info().
		Str("model", cfg.Model.Name).
		Str("model_url", cfg.Model.BaseURL).
		Str("api_url", inv.BaseURL()).
		Str("tools", fmt.Sprintf("%v", registry.Names())).
		Msg("application initialization complete")

	return &App{
		Config:  cfg,
		Logger:  logger,
		catalog: cat,
		tools:   registry,
		invoker: inv,
		router:  router,
		prompt:  prompt,
	}, nil
}

// Router returns the action router used by the interactive loop.
func (a *App) Router() *agent.Router { return a.router }

// Catalog returns the loaded API catalog.
func (a *App) Catalog() *catalog.Catalog { return a.catalog }

// Invoker returns the catalog API invoker.
func (a *App) Invoker() *invoker.Invoker { return a.invoker }

// Tools returns the local tool registry.
func (a *App) Tools() *tools.Registry { return a.tools }

// SystemPrompt returns the routing prompt built at startup.
func (a *App) SystemPrompt() string { return a.prompt }

// MCPServer builds the MCP server exposing the catalog through the invoker.
func (a *App) MCPServer() *server.MCPServer {
	return mcpcatalog.NewServer(a.catalog, a.invoker, a.Logger)
}
