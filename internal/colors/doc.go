// Package colors validates board color input and owns the named board themes.
//
// Validate is the only way to obtain a Pair, so every color handed to the
// conversion engine has already been parsed and normalized to lowercase
// #rrggbb form.
package colors
