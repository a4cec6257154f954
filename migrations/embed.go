// Package migrations embute os arquivos SQL do esquema canônico de um
// tenant para o comando de migração.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
