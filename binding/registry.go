package binding

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"markup-binder/internal/diagnostic"
)

// RootPrefix marks the alias under which root types are also registered.
const RootPrefix = "root:"

// Registry maps types and root tags to compiled descriptors.
//
// A registry only grows. Registration is not safe for concurrent use; once
// registration is complete, lookups may run concurrently.
type Registry struct {
	byType    map[reflect.Type]*Descriptor
	byRootTag map[string]*Descriptor
	defined   map[reflect.Type]Spec
	logger    *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger routes compile warnings and traces to logger.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		byType:    make(map[reflect.Type]*Descriptor),
		byRootTag: make(map[string]*Descriptor),
		defined:   make(map[reflect.Type]Spec),
		logger:    slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Define supplies an explicit spec for a type, used instead of its Bindable
// implementation. It does not compile anything; call Register afterwards.
func (r *Registry) Define(rtype reflect.Type, spec Spec) error {
	rtype = indirect(rtype)
	if rtype == nil {
		return fmt.Errorf("define: nil type")
	}

	if _, ok := r.byType[rtype]; ok {
		return &CompilationError{
			Type: IDOf(rtype),
			Diagnostics: diagnostic.Diagnostics{Errors: []diagnostic.Diagnostic{{
				Severity: diagnostic.SeverityError,
				Code:     diagnostic.CodeAlreadyRegistered,
				Message:  "spec defined after the type was compiled",
				Type:     IDOf(rtype).String(),
			}}},
		}
	}

	r.defined[rtype] = spec

	return nil
}

// Register compiles the given types and everything reachable from them.
// Already registered types are skipped. The batch is atomic: on failure no new
// descriptor is kept.
func (r *Registry) Register(types ...reflect.Type) error {
	c := newCompiler(r)

	for _, rtype := range types {
		c.request(indirect(rtype))
	}

	return c.finish()
}

// Compile registers rtype and returns its descriptor.
func (r *Registry) Compile(rtype reflect.Type) (*Descriptor, error) {
	if err := r.Register(rtype); err != nil {
		return nil, err
	}

	d, _ := r.LookupByType(rtype)

	return d, nil
}

// LookupByType returns the descriptor of rtype or of the type it points to.
func (r *Registry) LookupByType(rtype reflect.Type) (*Descriptor, bool) {
	d, ok := r.byType[indirect(rtype)]
	return d, ok
}

// LookupRootTag returns the root descriptor for tag or for its "root:" alias.
func (r *Registry) LookupRootTag(tag string) (*Descriptor, bool) {
	d, ok := r.byRootTag[tag]
	return d, ok
}

// RootTags lists the bare tags of registered root types, sorted.
func (r *Registry) RootTags() []string {
	tags := make([]string, 0, len(r.byRootTag)/2)
	for tag, d := range r.byRootTag {
		if tag == d.tag {
			tags = append(tags, tag)
		}
	}

	sort.Strings(tags)

	return tags
}

// Descriptors returns all descriptors sorted by type identity.
func (r *Registry) Descriptors() []*Descriptor {
	out := make([]*Descriptor, 0, len(r.byType))
	for _, d := range r.byType {
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].id.String() < out[j].id.String()
	})

	return out
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.byType)
}

func (r *Registry) insert(d *Descriptor) {
	r.byType[d.rtype] = d

	if d.root {
		r.byRootTag[d.tag] = d
		r.byRootTag[RootPrefix+d.tag] = d
	}
}
