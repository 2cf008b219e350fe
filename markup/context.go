package markup

import (
	"bytes"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"reflect"

	"github.com/pkg/errors"

	"markup-binder/binding"
	"markup-binder/internal/composer"
	"markup-binder/internal/parser"
	"markup-binder/options"
	"markup-binder/primitive"
	"markup-binder/token"
)

// Context is a binding context: a type registry plus the options applied to
// every document it reads or writes.
type Context struct {
	opts      options.Options
	reg       *binding.Registry
	log       *slog.Logger
	coercions primitive.CategoryEnum
}

// NewContext validates opts and registers the given types.
func NewContext(opts options.Options, types ...reflect.Type) (*Context, error) {
	options.ApplyDefaults(&opts)

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	coercions, err := opts.Categories()
	if err != nil {
		return nil, err
	}

	log := opts.Logger()

	c := &Context{
		opts:      opts,
		reg:       binding.NewRegistry(binding.WithLogger(log)),
		log:       log,
		coercions: coercions,
	}

	if err := c.Register(types...); err != nil {
		return nil, err
	}

	return c, nil
}

// Register compiles the given types and everything reachable from them.
func (c *Context) Register(types ...reflect.Type) error {
	if len(types) == 0 {
		return nil
	}

	return c.reg.Register(types...)
}

// Registry returns the underlying registry.
func (c *Context) Registry() *binding.Registry {
	return c.reg
}

// Options returns the effective options.
func (c *Context) Options() options.Options {
	return c.opts
}

// Deserialize reads one document from r and returns its root object as *T.
// label names the document in error positions.
func (c *Context) Deserialize(r io.Reader, label string) (any, error) {
	return parser.Parse(token.NewReader(r, label), c.reg, parser.Config{
		Lenient:   c.opts.Lenient,
		Coercions: c.coercions,
		Logger:    c.log,
	})
}

// DeserializeFile reads the document stored at path.
func (c *Context) DeserializeFile(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open document %s", path)
	}
	defer f.Close()

	obj, err := c.Deserialize(f, path)
	if err != nil {
		return nil, errors.Wrapf(err, "deserialize %s", path)
	}

	return obj, nil
}

// DeserializeResource reads the document name from fsys, e.g. an embed.FS.
func (c *Context) DeserializeResource(fsys fs.FS, name string) (any, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "open resource %s", name)
	}
	defer f.Close()

	obj, err := c.Deserialize(f, name)
	if err != nil {
		return nil, errors.Wrapf(err, "deserialize resource %s", name)
	}

	return obj, nil
}

// DeserializeAs reads one document whose root object must be exactly *T.
func DeserializeAs[T any](c *Context, r io.Reader, label string) (*T, error) {
	obj, err := c.Deserialize(r, label)
	if err != nil {
		return nil, err
	}

	out, ok := obj.(*T)
	if !ok {
		return nil, errors.Errorf("%s: document root is %T, want *%s", label, obj, reflect.TypeFor[T]())
	}

	return out, nil
}

// Serialize writes obj, a registered root object, as a document to w.
func (c *Context) Serialize(obj any, w io.Writer) error {
	tw := token.NewWriter(w,
		token.WithIndent(c.opts.EffectiveIndent()),
		token.WithHeader(!c.opts.OmitHeader),
	)

	if err := composer.Compose(obj, tw, c.reg, composer.Config{Logger: c.log}); err != nil {
		return err
	}

	return tw.Flush()
}

// SerializeFile writes obj to path. Nothing is written when composition fails.
func (c *Context) SerializeFile(obj any, path string) error {
	var buf bytes.Buffer

	if err := c.Serialize(obj, &buf); err != nil {
		return errors.Wrapf(err, "serialize %s", path)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "write document %s", path)
	}

	return nil
}
