// Package migrations carries the ordered SQL schema files. They are
// embedded so the binary can bring its own schema up without a checkout.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
