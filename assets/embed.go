package assets

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed sql
var FS embed.FS

// Migration is one schema file, applied once and recorded by Name.
type Migration struct {
	Name string
	SQL  string
}

// Migrations returns the *.sql files for a dialect ("sqlite", "postgres")
// in lexical order.
func Migrations(dialect string) ([]Migration, error) {
	dir := path.Join("sql", dialect)
	entries, err := fs.ReadDir(FS, dir)
	if err != nil {
		return nil, err
	}

	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			continue
		}
		b, err := fs.ReadFile(FS, path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Name: path.Join(dialect, e.Name()), SQL: string(b)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
