// Package formvalue implements the value-side companions of the field spec
// model: deriving initial values, collapsing raw editing state into canonical
// values, and validating value trees into issue lists.
//
// Two value shapes exist. The canonical tree matches the schema exactly:
// nested maps, slices, and scalars with no bookkeeping. The raw tree is what
// the editing layer holds: unions carry a {selected, options} wrapper with one
// draft per branch, records carry a list of {key, value} entries, and datetime
// fields may carry a {date, time} staging pair. Normalize projects raw onto
// canonical; Defaults produces the raw tree a form initializes with.
package formvalue
