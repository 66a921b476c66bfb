// README: Embedded SQL schema files, applied in lexical order by infra.Migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
