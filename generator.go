package schemagen

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/reoring/schemagen/i18n"
	"github.com/reoring/schemagen/internal/defs"
	"github.com/reoring/schemagen/ir"
	js "github.com/reoring/schemagen/jsonschema"
)

// Generator compiles IR graphs into JSON Schema documents. A Generator is
// single-use: it accumulates definitions across one Generate or
// GenerateDefinitions call and rejects a second one. It must not be shared
// between goroutines; separate Generators are independent.
type Generator struct {
	cfg      Config
	handlers map[ir.Type]HandlerFunc
	reg      *defs.Registry
	mode     ir.Mode
	configs  []ir.ModelConfig
	active   map[defs.Key]bool
	warnings []Warning
	used     bool
	rounds   int
	log      *slog.Logger
	tr       i18n.Translator
}

// New builds a Generator. It fails if a handler override names an unknown
// node type or if any node type is left without a handler.
func New(cfg Config) (*Generator, error) {
	return newGenerator(cfg, builtinHandlers())
}

func newGenerator(cfg Config, base map[ir.Type]HandlerFunc) (*Generator, error) {
	cfg = cfg.withDefaults()
	tr := i18n.New(cfg.Lang)
	known := make(map[ir.Type]bool, len(ir.AllTypes))
	for _, t := range ir.AllTypes {
		known[t] = true
	}
	handlers := make(map[ir.Type]HandlerFunc, len(base))
	for t, h := range base {
		handlers[t] = h
	}
	for t, h := range cfg.Handlers {
		if !known[t] {
			return nil, &UserError{Code: CodeUnknownHandlerType, Message: tr.Message(CodeUnknownHandlerType, map[string]string{"type": string(t)})}
		}
		if h != nil {
			handlers[t] = h
		}
	}
	for _, t := range ir.AllTypes {
		if handlers[t] == nil {
			return nil, &UserError{Code: CodeMissingHandler, Message: tr.Message(CodeMissingHandler, map[string]string{"type": string(t)})}
		}
	}
	return &Generator{
		cfg:      cfg,
		handlers: handlers,
		reg:      defs.NewRegistry(cfg.RefTemplate),
		mode:     ir.ModeValidation,
		active:   map[defs.Key]bool{},
		log:      cfg.Logger,
		tr:       tr,
	}, nil
}

// Mode is the effective generation mode: a mode override from the
// innermost structured node wins over the requested mode.
func (g *Generator) Mode() ir.Mode {
	if c, ok := g.classConfig(); ok && c.ModeOverride != "" {
		return c.ModeOverride
	}
	return g.mode
}

// ByAlias reports whether properties are named after aliases.
func (g *Generator) ByAlias() bool { return g.cfg.ByAlias }

func (g *Generator) key(coreRef string) defs.Key {
	return defs.Key{CoreRef: coreRef, Mode: g.Mode()}
}

// GenerateInner returns the fragment for n, running n's override hooks
// around its handler. Nodes carrying a Ref are stored as definitions and
// replaced by a "$ref"; a Ref seen again, already defined or still being
// generated, short-circuits to the same "$ref".
func (g *Generator) GenerateInner(n ir.Node) (*js.Schema, error) {
	if n == nil {
		return nil, invalidf("a missing (nil) node")
	}
	ref := ir.BaseOf(n).Ref
	var key defs.Key
	if ref != "" {
		key = g.key(ref)
		if g.reg.Defined(key) || g.active[key] {
			_, s := g.reg.GetOrCreate(key)
			return s, nil
		}
		g.active[key] = true
		defer delete(g.active, key)
	}
	s, err := g.chain(n).Generate(n)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = js.New()
	}
	if ir.IsField(n.Type()) {
		return s, nil
	}
	if ref != "" && g.reg.Defined(key) {
		// The chain already stored the definition; s is either that
		// definition or what the hooks made of its "$ref".
		d, refSchema := g.reg.GetOrCreate(key)
		if def, _ := g.reg.Definition(d); def == s {
			return refSchema, nil
		}
		return convertToAllOf(s), nil
	}
	return convertToAllOf(g.populateDefs(n, s)), nil
}

// step is one link of a node's override chain.
type step struct {
	g    *Generator
	call func(ir.Node) (*js.Schema, error)
}

func (s *step) Generate(n ir.Node) (*js.Schema, error) {
	out, err := s.call(n)
	if err == nil && out == nil {
		out = js.New()
	}
	return out, err
}

func (s *step) ResolveRef(x *js.Schema) (*js.Schema, error) { return s.g.ResolveRef(x) }

func (s *step) Mode() ir.Mode { return s.g.Mode() }

// chain links the dispatcher, then each class-level function, then each
// annotation function. Every step holds its own transformer and successor.
func (g *Generator) chain(n ir.Node) ir.Handler {
	var cur ir.Handler = &step{g: g, call: g.dispatch}
	meta := ir.BaseOf(n).Meta
	for _, fn := range meta.Functions {
		cur = g.functionStep(fn, cur)
	}
	for _, fn := range meta.AnnotationFunctions {
		cur = g.annotationStep(fn, cur)
	}
	return cur
}

func (g *Generator) dispatch(n ir.Node) (*js.Schema, error) {
	var s *js.Schema
	if g.Mode() == ir.ModeSerialization {
		if ser := ir.BaseOf(n).Serialization; ser != nil {
			var err error
			if s, err = g.serSchema(ser); err != nil {
				return nil, err
			}
		}
	}
	if s == nil {
		var err error
		if s, err = g.handlers[n.Type()](g, n); err != nil {
			return nil, err
		}
		if s == nil {
			s = js.New()
		}
	}
	if !ir.IsField(n.Type()) {
		s = convertToAllOf(g.populateDefs(n, s))
	}
	return s, nil
}

// functionStep merges what fn adds to a ref-bearing fragment into the
// referenced definition.
func (g *Generator) functionStep(fn ir.Transformer, next ir.Handler) ir.Handler {
	return &step{g: g, call: func(n ir.Node) (*js.Schema, error) {
		s, err := fn(n, next)
		if err != nil {
			return nil, err
		}
		if s == nil {
			s = js.New()
		}
		if !ir.IsField(n.Type()) {
			s = g.populateDefs(n, s)
		}
		original, err := g.ResolveRef(s)
		if err != nil {
			return nil, err
		}
		rest := s.ShallowCopy()
		if _, hadRef := rest.Pop("$ref"); hadRef && rest.Len() > 0 {
			original.Update(rest)
		}
		return original, nil
	}}
}

func (g *Generator) annotationStep(fn ir.Transformer, next ir.Handler) ir.Handler {
	return &step{g: g, call: func(n ir.Node) (*js.Schema, error) {
		s, err := fn(n, next)
		if err != nil {
			return nil, err
		}
		if s == nil {
			s = js.New()
		}
		if !ir.IsField(n.Type()) {
			s = convertToAllOf(g.populateDefs(n, s))
		}
		return s, nil
	}}
}

// populateDefs stores s as the definition of a ref-bearing node and
// returns the "$ref" in its place. A fragment that already is that "$ref"
// is not stored, so no definition points only at itself; sibling keys next
// to it are kept on the returned fragment.
func (g *Generator) populateDefs(n ir.Node, s *js.Schema) *js.Schema {
	coreRef := ir.BaseOf(n).Ref
	if coreRef == "" {
		return s
	}
	key := g.key(coreRef)
	d, refSchema := g.reg.GetOrCreate(key)
	if r, ok := s.Ref(); ok && r == g.reg.JSONRef(key) {
		if s.Len() == 1 {
			return refSchema
		}
		return s
	}
	g.reg.Define(d, s)
	return refSchema
}

// convertToAllOf moves a "$ref" with sibling keys into an allOf.
func convertToAllOf(s *js.Schema) *js.Schema {
	ref, ok := s.Ref()
	if !ok || s.Len() == 1 {
		return s
	}
	out := js.FromPairs("allOf", []any{js.Ref(ref)})
	for _, k := range s.Keys() {
		if k == "$ref" {
			continue
		}
		v, _ := s.Get(k)
		out.Set(k, v)
	}
	return out
}

// ErrRefNotFound is returned by ResolveRef for a pointer whose definition
// has not been generated yet, typically from inside a recursive node.
var ErrRefNotFound = errors.New("schemagen: no definition for reference")

// ResolveRef returns the definition s points at, or s itself when it has
// no "$ref".
func (g *Generator) ResolveRef(s *js.Schema) (*js.Schema, error) {
	ref, ok := s.Ref()
	if !ok {
		return s, nil
	}
	if d, ok := g.reg.DefsRefFor(ref); ok {
		if err := g.reg.Invalid(d); err != nil {
			return nil, err
		}
	}
	def, ok := g.reg.Resolve(ref)
	if !ok {
		return nil, fmt.Errorf("%w %s (resolving from within a recursive node?)", ErrRefNotFound, ref)
	}
	return def, nil
}

// definitionFor returns the stored definition for a pointer, surfacing a
// recorded generation failure. ok is false when nothing is stored yet.
func (g *Generator) definitionFor(ref string) (*js.Schema, bool, error) {
	d, ok := g.reg.DefsRefFor(ref)
	if !ok {
		return nil, false, nil
	}
	if err := g.reg.Invalid(d); err != nil {
		return nil, false, err
	}
	def, ok := g.reg.Definition(d)
	return def, ok, nil
}

func (g *Generator) begin(mode ir.Mode) error {
	if g.used {
		return ErrAlreadyUsed
	}
	g.used = true
	if mode == "" {
		mode = ir.ModeValidation
	}
	g.mode = mode
	return nil
}

// Generate compiles root into a complete document. A top-level "$ref" used
// only once is inlined; otherwise it is wrapped in allOf. Unreachable
// definitions are dropped, names are simplified, and keys are sorted except
// under "properties" and "default".
func (g *Generator) Generate(root ir.Node, mode ir.Mode) (*js.Schema, error) {
	if err := g.begin(mode); err != nil {
		return nil, err
	}
	s, err := g.GenerateInner(root)
	if err != nil {
		return nil, err
	}
	counts, err := g.reg.RefCounts(s)
	if err != nil {
		return nil, g.finalizeErr(err)
	}
	inlined := map[string]bool{}
	for s.IsRefOnly() {
		ref, _ := s.Ref()
		def, found := g.reg.Resolve(ref)
		if counts[ref] > 1 || !found || inlined[ref] {
			s = js.FromPairs("allOf", []any{js.Ref(ref)})
			break
		}
		inlined[ref] = true
		s = def.Clone()
		counts[ref]--
	}

	if err := g.reg.GC(s); err != nil {
		return nil, g.finalizeErr(err)
	}
	remap, err := g.remapping()
	if err != nil {
		return nil, err
	}
	s = s.Clone()
	if g.reg.Len() > 0 {
		s.Set("$defs", g.reg.Table().Clone())
	}
	s = remap.Apply(s).(*js.Schema)
	g.log.Debug("schema generated",
		slog.String("mode", string(g.mode)),
		slog.Int("definitions", g.reg.Len()),
		slog.Int("remap_rounds", g.rounds),
		slog.Int("warnings", len(g.warnings)),
	)
	return s.Sorted(), nil
}

// InputKey identifies one output of GenerateDefinitions.
type InputKey struct {
	Key  string
	Mode ir.Mode
}

// Input is one root of a batched generation.
type Input struct {
	Key    string
	Mode   ir.Mode
	Schema ir.Node
}

// GenerateDefinitions compiles several roots sharing one definitions
// table. Each output may hold "$ref"s into the returned "$defs" table,
// which is pruned to what the outputs reach and renamed like Generate.
func (g *Generator) GenerateDefinitions(inputs []Input) (map[InputKey]*js.Schema, *js.Schema, error) {
	if err := g.begin(ir.ModeValidation); err != nil {
		return nil, nil, err
	}
	keys := make([]InputKey, 0, len(inputs))
	outs := make([]*js.Schema, 0, len(inputs))
	roots := make([]any, 0, len(inputs))
	for _, in := range inputs {
		g.mode = in.Mode
		if g.mode == "" {
			g.mode = ir.ModeValidation
		}
		s, err := g.GenerateInner(in.Schema)
		if err != nil {
			return nil, nil, fmt.Errorf("input %q: %w", in.Key, err)
		}
		keys = append(keys, InputKey{Key: in.Key, Mode: g.mode})
		outs = append(outs, s)
		roots = append(roots, s)
	}
	if err := g.reg.GC(roots...); err != nil {
		return nil, nil, g.finalizeErr(err)
	}
	remap, err := g.remapping()
	if err != nil {
		return nil, nil, err
	}
	result := make(map[InputKey]*js.Schema, len(outs))
	for i, s := range outs {
		result[keys[i]] = remap.Apply(s.Clone()).(*js.Schema).Sorted()
	}
	table := remap.Apply(js.FromPairs("$defs", g.reg.Table().Clone())).(*js.Schema)
	v, _ := table.Get("$defs")
	g.log.Debug("definitions generated",
		slog.Int("inputs", len(inputs)),
		slog.Int("definitions", g.reg.Len()),
		slog.Int("remap_rounds", g.rounds),
	)
	return result, v.(*js.Schema).Sorted(), nil
}

func (g *Generator) remapping() (*defs.Remapping, error) {
	remap, rounds, err := g.reg.BuildRemapping(g.cfg.MaxRemapRounds)
	g.rounds = rounds
	if err != nil {
		var nc *defs.NotConvergedError
		if errors.As(err, &nc) {
			g.log.Error(g.tr.Message(CodeFailedToSimplify, map[string]string{"rounds": fmt.Sprint(nc.Rounds)}))
			return nil, &SimplifyError{Rounds: nc.Rounds}
		}
		return nil, err
	}
	return remap, nil
}

// finalizeErr maps registry failures onto the package's error types.
func (g *Generator) finalizeErr(err error) error {
	var dangling *defs.DanglingRefError
	if errors.As(err, &dangling) {
		g.log.Error(g.tr.Message("dangling-reference", map[string]string{"ref": dangling.Ref}))
		return &InvalidForSchemaError{Detail: fmt.Sprintf("reference %s (no definition was generated)", dangling.Ref), Err: err}
	}
	return err
}
