// Package markup binds markup documents to typed object graphs.
//
// A Context owns a registry of compiled bindings. Types are registered once,
// then documents are read with Deserialize and written with Serialize:
//
//	ctx, err := markup.NewContext(options.Default(), reflect.TypeFor[Wrapper]())
//	if err != nil {
//		return err
//	}
//
//	w, err := markup.DeserializeAs[Wrapper](ctx, strings.NewReader(`<test factor="2.5"><item/></test>`), "inline")
//
// Registration is not safe for concurrent use. Once registration is done a
// Context may be shared by concurrent Deserialize and Serialize calls.
package markup
