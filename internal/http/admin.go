package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/evolv3ai/basic-memory/internal/markdown"
	"github.com/evolv3ai/basic-memory/pkg/interfaces"
)

// AdminAPI registers the knowledge graph's REST endpoints.
type AdminAPI struct {
	basePath   string
	repoRoot   string
	entityType string

	store     interfaces.GraphStore
	index     interfaces.SearchIndex
	sync      interfaces.SyncEngine
	context   interfaces.ContextBuilder
	renderer  interfaces.MarkdownRenderer
	logger    interfaces.Logger
	now       func() time.Time
	pageSize  int
	maxPage   int
}

// Option mutates the AdminAPI configuration.
type Option func(*AdminAPI)

// New constructs an AdminAPI instance.
func New(opts ...Option) *AdminAPI {
	api := &AdminAPI{
		basePath:   "",
		entityType: "note",
		renderer:   markdown.Renderer{},
		now:        time.Now,
		pageSize:   10,
		maxPage:    100,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "").
func WithBasePath(path string) Option {
	return func(api *AdminAPI) {
		if api != nil {
			api.basePath = strings.TrimSpace(path)
		}
	}
}

// WithRepoRoot sets the directory new entity files are written under.
func WithRepoRoot(root string) Option {
	return func(api *AdminAPI) {
		if api != nil {
			api.repoRoot = root
		}
	}
}

// WithDefaultEntityType sets the entity type assigned when a create request
// omits one.
func WithDefaultEntityType(entityType string) Option {
	return func(api *AdminAPI) {
		if api != nil && strings.TrimSpace(entityType) != "" {
			api.entityType = entityType
		}
	}
}

// WithGraphStore wires the graph store.
func WithGraphStore(store interfaces.GraphStore) Option {
	return func(api *AdminAPI) {
		if api != nil {
			api.store = store
		}
	}
}

// WithSearchIndex wires the search index.
func WithSearchIndex(index interfaces.SearchIndex) Option {
	return func(api *AdminAPI) {
		if api != nil {
			api.index = index
		}
	}
}

// WithSyncEngine wires the sync engine.
func WithSyncEngine(engine interfaces.SyncEngine) Option {
	return func(api *AdminAPI) {
		if api != nil {
			api.sync = engine
		}
	}
}

// WithContextBuilder wires the context builder.
func WithContextBuilder(builder interfaces.ContextBuilder) Option {
	return func(api *AdminAPI) {
		if api != nil {
			api.context = builder
		}
	}
}

// WithLogger wires a logger used for request-scoped diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(api *AdminAPI) {
		if api != nil {
			api.logger = logger
		}
	}
}

// WithPageSize overrides the default and maximum search page sizes.
func WithPageSize(defaultSize, maxSize int) Option {
	return func(api *AdminAPI) {
		if api == nil {
			return
		}
		if defaultSize > 0 {
			api.pageSize = defaultSize
		}
		if maxSize > 0 {
			api.maxPage = maxSize
		}
	}
}

// Register attaches every route to the provided mux.
func (api *AdminAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: admin api is nil")
	}

	base := joinPath(api.basePath, "")

	api.registerEntityRoutes(mux, base)
	api.registerSearchRoutes(mux, base)
	api.registerMemoryRoutes(mux, base)
	api.registerSyncRoutes(mux, base)

	return nil
}

func (api *AdminAPI) log() interfaces.Logger {
	if api.logger != nil {
		return api.logger
	}
	return nil
}

func (api *AdminAPI) logWarn(msg string, args ...any) {
	if logger := api.log(); logger != nil {
		logger.Warn(msg, args...)
	}
}
