package edinet

import (
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// DefaultExchange is the Tokyo Stock Exchange suffix. Quote services key
// listings as {code}.{exchange}; Tokyo carries the overwhelming majority
// of listings, so the directory spreadsheet only records the regional
// exceptions (Nagoya "N", Fukuoka "F", Sapporo "S").
const DefaultExchange = "T"

// ExchangeDirectory maps securities codes to their exchange suffix. The
// spreadsheet is loaded lazily on first lookup and never reloaded; the
// directory is read-only after that and safe for concurrent use.
type ExchangeDirectory struct {
	path string

	once   sync.Once
	loaded map[string]string
	err    error
}

// NewExchangeDirectory builds a directory over a listing spreadsheet.
// An empty path yields an all-Tokyo directory.
func NewExchangeDirectory(path string) *ExchangeDirectory {
	return &ExchangeDirectory{path: path}
}

// Load forces the lazy load and reports any spreadsheet problem. Lookups
// work either way; unloadable directories answer Tokyo for everything.
func (d *ExchangeDirectory) Load() error {
	d.load()
	return d.err
}

// Suffix returns the exchange letter for a normalized securities code.
func (d *ExchangeDirectory) Suffix(code string) string {
	d.load()
	if s, ok := d.loaded[code]; ok {
		return s
	}
	return DefaultExchange
}

// QuoteURL builds the Yahoo Finance Japan quote URL for a normalized
// securities code.
func (d *ExchangeDirectory) QuoteURL(code string) string {
	return "https://finance.yahoo.co.jp/quote/" + code + "." + d.Suffix(code)
}

func (d *ExchangeDirectory) load() {
	d.once.Do(func() {
		d.loaded = map[string]string{}
		if d.path == "" {
			return
		}
		mapping, err := readExchangeSheet(d.path)
		if err != nil {
			d.err = err
			zap.L().Warn("exchange directory unavailable, defaulting to Tokyo",
				zap.String("path", d.path),
				zap.Error(err),
			)
			return
		}
		d.loaded = mapping
	})
}

// readExchangeSheet reads the first sheet of the directory spreadsheet:
// one header row, then securities code in the first column and exchange
// letter in the second.
func readExchangeSheet(path string) (map[string]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "edinet: open exchange spreadsheet")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("edinet: exchange spreadsheet has no sheets")
	}

	mapping := make(map[string]string)
	for i, row := range f.Sheets[0].Rows {
		if i == 0 || len(row.Cells) < 2 {
			continue
		}
		code := strings.TrimSpace(row.Cells[0].String())
		exch := strings.ToUpper(strings.TrimSpace(row.Cells[1].String()))
		if code == "" || exch == "" {
			continue
		}
		mapping[NormalizeSecCode(code)] = exch
	}
	return mapping, nil
}
