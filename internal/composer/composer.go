package composer

import (
	"fmt"
	"log/slog"
	"reflect"

	"markup-binder/binding"
	"markup-binder/token"
)

// Config tunes a composition.
type Config struct {
	// Logger receives debug traces of written elements.
	Logger *slog.Logger
}

type composer struct {
	reg  *binding.Registry
	sink token.Sink
	log  *slog.Logger
}

// Compose writes obj as a document to sink. obj must be a registered root type,
// passed as *T or T.
func Compose(obj any, sink token.Sink, reg *binding.Registry, cfg Config) error {
	c := &composer{reg: reg, sink: sink, log: cfg.Logger}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}

	if isNil(obj) {
		return &binding.CompositionError{Path: "/", Msg: "nil object"}
	}

	rtype := reflect.TypeOf(obj)

	d, ok := reg.LookupByType(rtype)
	if !ok {
		return &binding.CompositionError{Path: "/", Type: rtype.String(), Msg: "type is not registered"}
	}

	if !d.IsRoot() {
		return &binding.CompositionError{Path: "/", Type: rtype.String(), Msg: "type is not a root type"}
	}

	if rtype.Kind() != reflect.Pointer {
		ptr := reflect.New(rtype)
		ptr.Elem().Set(reflect.ValueOf(obj))
		obj = ptr.Interface()
	}

	return c.object(obj, d, d.Tag(), d.Tag())
}

func (c *composer) object(obj any, d *binding.Descriptor, name, path string) error {
	attrs, err := c.attributes(obj, d, path)
	if err != nil {
		return err
	}

	c.log.Debug("compose element", "tag", name, "type", d.ID().String(), "path", path)

	if err := c.sink.Start(name, attrs); err != nil {
		return err
	}

	for _, e := range d.Elements() {
		if e.IsCollection() {
			err = c.collection(obj, d, e, path)
		} else {
			err = c.single(obj, e, path)
		}

		if err != nil {
			return err
		}
	}

	return c.sink.End(name)
}

func (c *composer) attributes(obj any, d *binding.Descriptor, path string) ([]token.Attr, error) {
	var attrs []token.Attr

	for _, a := range d.Attributes() {
		text, ok, err := a.Get(obj)
		if err != nil {
			return nil, &binding.CompositionError{Path: path + "/@" + a.Name(), Type: a.Type().String(), Msg: err.Error()}
		}

		if ok {
			attrs = append(attrs, token.Attr{Name: a.Name(), Value: text})
		}
	}

	return attrs, nil
}

func (c *composer) single(obj any, e *binding.ElementAccessor, path string) error {
	v := e.Get(obj)
	if v == nil {
		return nil
	}

	path += "/" + e.Tag()

	d, err := c.resolve(v, e, path)
	if err != nil {
		return err
	}

	return c.object(v, d, e.Tag()+":"+d.Tag(), path)
}

func (c *composer) collection(obj any, owner *binding.Descriptor, e *binding.ElementAccessor, path string) error {
	items := e.Items(obj)
	if len(items) == 0 {
		return nil
	}

	descs := make([]*binding.Descriptor, len(items))
	paths := make([]string, len(items))
	bare := true

	for i, item := range items {
		paths[i] = fmt.Sprintf("%s/%s[%d]", path, e.Tag(), i)

		if isNil(item) {
			return &binding.CompositionError{Path: paths[i], Msg: "nil item"}
		}

		d, err := c.resolve(item, e, paths[i])
		if err != nil {
			return err
		}

		descs[i] = d

		if di, ok := owner.DirectItem(d.Tag()); !ok || di.Element != e || di.Descriptor != d {
			bare = false
		}
	}

	if !bare {
		if err := c.sink.Start(e.Tag(), nil); err != nil {
			return err
		}
	}

	for i, item := range items {
		if err := c.object(item, descs[i], descs[i].Tag(), paths[i]); err != nil {
			return err
		}
	}

	if !bare {
		return c.sink.End(e.Tag())
	}

	return nil
}

// resolve finds the descriptor of a field value and checks the field admits it.
func (c *composer) resolve(v any, e *binding.ElementAccessor, path string) (*binding.Descriptor, error) {
	rtype := reflect.TypeOf(v)
	if rtype.Kind() != reflect.Pointer {
		return nil, &binding.CompositionError{Path: path, Type: rtype.String(), Msg: "field values must be pointers"}
	}

	d, ok := c.reg.LookupByType(rtype)
	if !ok {
		return nil, &binding.CompositionError{Path: path, Type: rtype.String(), Msg: "type is not registered"}
	}

	if !e.Admits(d) {
		return nil, &binding.CompositionError{
			Path: path,
			Type: rtype.String(),
			Msg:  fmt.Sprintf("type is not admissible in field %q", e.Tag()),
		}
	}

	return d, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)

	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
