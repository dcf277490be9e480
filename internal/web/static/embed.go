// Package static holds the stylesheet and page script served under /static/.
package static

import "embed"

// Files is the embedded asset tree
//
//go:embed app.css app.js
var Files embed.FS
