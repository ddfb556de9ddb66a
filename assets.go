package assets

import "embed"

//go:embed migrations/*.sql
var MigrationsFS embed.FS

//go:embed scripts/coverage_merger.rb
var ScriptsFS embed.FS
