package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/kessan-lab/edinet-cli/internal/edinet"
	"github.com/kessan-lab/edinet-cli/internal/resolve"
	"github.com/kessan-lab/edinet-cli/internal/store"
	"github.com/kessan-lab/edinet-cli/internal/xbrl"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "", "json":
		dir := cfg.Store.OutputDir
		if dir == "" {
			dir = "output"
		}
		return store.NewJSON(dir), nil
	case "sqlite":
		path := cfg.Store.SQLitePath
		if path == "" {
			path = "edinet.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initExtractor builds the metric extractor, layering the optional
// overrides file on top of the built-in specs.
func initExtractor() (*resolve.Extractor, error) {
	specs := resolve.DefaultSpecs()
	if path := cfg.Resolver.OverridesPath; path != "" {
		merged, err := resolve.LoadOverrides(path, specs)
		if err != nil {
			return nil, err
		}
		specs = merged
	}
	return resolve.New(specs), nil
}

// loadInstance parses the XBRL instance behind path, which is either a
// downloaded EDINET archive or a bare instance document. It returns the
// parsed document and the instance entry name.
func loadInstance(path string) (*xbrl.Document, string, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		archive, err := edinet.OpenArchiveFile(path)
		if err != nil {
			return nil, "", err
		}
		name, data, err := archive.Instance()
		if err != nil {
			return nil, "", err
		}
		doc, err := xbrl.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, "", eris.Wrapf(err, "parse instance %s", name)
		}
		return doc, name, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", eris.Wrapf(err, "open instance %s", path)
	}
	defer f.Close() //nolint:errcheck

	doc, err := xbrl.Parse(f)
	if err != nil {
		return nil, "", eris.Wrapf(err, "parse instance %s", path)
	}
	return doc, filepath.Base(path), nil
}
