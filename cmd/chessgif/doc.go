// Command chessgif renders chess games to animated GIFs.
//
// `chessgif render` converts PGN files, glob patterns or inline notation
// through the conversion worker; `chessgif serve` exposes the same pipeline
// over HTTP. `themes`, `history` and `config` are support commands.
package main
