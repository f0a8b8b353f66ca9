package completion

import (
	"github.com/corelang/splcore/pkg/parsetree"
	"github.com/corelang/splcore/pkg/refs"
	"github.com/corelang/splcore/pkg/resolve"
	"github.com/corelang/splcore/pkg/store"
	"github.com/corelang/splcore/pkg/symbols"
	"github.com/corelang/splcore/pkg/text"
)

// Context is everything a Strategy needs to decide whether it applies
// and, if so, produce items: the cursor positioned at the request
// offset, the owning document's tables, and the workspace store used to
// resolve cross-file symbols (§4.9, §4.7's type-resolution pipeline).
// Model converts offsets to editor positions for text edits an Item may
// carry (e.g. a use-declaration insertion, §4.9); it may be nil in tests
// that never exercise that path.
type Context struct {
	Cursor   *parsetree.Cursor
	Offset   int
	Table    *symbols.Table
	RefTable *refs.Table
	Store    *store.Store
	Model    *text.Model
}

// Resolver returns the NameResolver in effect at the request offset
// (§4.5 "name_resolver_at").
func (c *Context) Resolver() *resolve.Resolver {
	if c.Table == nil {
		return resolve.New()
	}
	return c.Table.NameResolverAt(c.Offset)
}

// Strategy is one gated completion source (§4.9).
type Strategy interface {
	Name() string
	CanSuggest(ctx *Context) bool
	Suggest(ctx *Context) []Item
}

// Dispatcher runs Strategies in declaration order, the first whose
// CanSuggest matches handling the request (§4.9 "Strategies are
// consulted in declaration order").
type Dispatcher struct {
	strategies []Strategy
	maxItems   int
}

// DefaultMaxItems bounds an unbounded result list absent an explicit
// limit (§4.9 "truncated to maxItems").
const DefaultMaxItems = 200

// NewDispatcher builds the full strategy chain in the order §4.9
// specifies.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		maxItems: DefaultMaxItems,
		strategies: []Strategy{
			objectAccessCompletion{},
			scopedAccessCompletion{},
			classTypeDesignatorCompletion{},
			simpleVariableCompletion{},
			typeDeclarationCompletion{},
			classBaseClauseCompletion{},
			interfaceClauseCompletion{},
			traitUseClauseCompletion{},
			namespaceDefinitionCompletion{},
			namespaceUseClauseCompletion{},
			methodDeclarationHeaderCompletion{},
			declarationBodyCompletion{},
			nameCompletion{},
		},
	}
}

// WithMaxItems overrides the truncation limit.
func (d *Dispatcher) WithMaxItems(n int) *Dispatcher {
	d.maxItems = n
	return d
}

// Result is the RPC-surface response shape for provideCompletions
// (§6 "{ items[], isIncomplete }").
type Result struct {
	Items        []Item
	IsIncomplete bool
}

// Dispatch finds the first matching strategy and returns its (possibly
// truncated) item list.
func (d *Dispatcher) Dispatch(ctx *Context) Result {
	for _, s := range d.strategies {
		if !s.CanSuggest(ctx) {
			continue
		}
		items := s.Suggest(ctx)
		if len(items) > d.maxItems {
			return Result{Items: items[:d.maxItems], IsIncomplete: true}
		}
		return Result{Items: items}
	}
	return Result{}
}
