// Package composer writes an object graph as markup, mirroring the parser.
//
// Objects are written depth-first: the start tag with attributes in declaration
// order, then every element field in declaration order. A single field is
// written as <field:type>. A collection is written as bare direct items when
// every item maps back to it through the owner's direct item table, otherwise
// inside a <field> wrapper with one <type> child per item.
package composer
