// Package fieldspec exposes the normalized field specification model and its
// builder. A FieldSpec is a kind-tagged tree describing one form: leaf kinds
// (string, number, boolean, date, time, datetime, enum) carry widget-ready
// constraints, composite kinds (object, array, union, record) own child
// templates. Builders reside in internal/fieldspec but return the types
// aliased here. Self-referential schemas resolve through lazy indirection:
// a field with a non-empty Ref points at its definition through Resolve()
// instead of expanding eagerly, so recursive trees stay finite.
package fieldspec
