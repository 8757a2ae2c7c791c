// Package nanotpl implements a small bytecode-compiled template engine.
//
// The template language is a strict subset of Liquid/Jinja-style syntax:
// output expressions ({{ ... }}), control tags ({% if/elif/else/endif %},
// {% for x in y %}...{% else %}...{% endfor %}), dotted and bracketed path
// access, string literals, and the logical operators and/or/not.
//
// A template goes through four stages: Tokenize splits source text into a
// token stream, Parse builds an AST from that stream, Compile lowers the
// AST to a linear bytecode Program, and Render executes that program
// against a data Binding to produce a string. Tokenize, Parse, Compile and
// Render are also exposed directly for callers that want to inspect an
// intermediate stage.
package nanotpl
