// Package domain contains the core entities of the retention system and
// their validation rules. Domain types are persistence-agnostic: stores and
// services depend on this package, never the other way around.
package domain
