// Package uistate holds the observable state an interactive surface renders.
//
// Each value lives in a Cell: writers publish with Set, readers take Get or
// subscribe for changes. A Mirror groups the cells for one surface instance
// and keeps the bound text control in step with the notation cell.
package uistate
