// Package parser binds a markup token stream to an object graph by recursive
// descent over registered binding descriptors.
//
// Every open element gets a handle holding the value under construction and a
// callback that attaches the finished value to its parent. Collection items are
// buffered per owning element and assigned in document order when the owner
// closes, before the owner's own callback runs.
//
// Child tag forms inside an object element:
//
//	<field:type ...>   value of field, concrete type resolved in the field's table
//	<field> ... </field>   wrapper whose children resolve in the field's table
//	<type ...>         direct item appended to the collection that claims the tag
package parser
