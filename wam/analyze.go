package wam

import (
	"context"

	"github.com/pdfwam/pdfwam/pkg/log"
)

// Analyze runs the full indicator battery against f and returns the
// resulting Report. password is used only if the underlying document is
// encrypted; f itself is expected to already be open and readable (a
// failed decryption surfaces through the Facade's own methods, not here).
func Analyze(ctx context.Context, f Facade, password string, cfg Config) (*Report, error) {
	if log.CLIEnabled() && cfg.Verbose {
		log.CLI.Println("wam: initializing")
	}

	ds, err := initialize(f, cfg)
	if err != nil {
		return nil, ErrInternal(err)
	}

	tables := newTableChecker()
	handler := newIndicatorHandler(ds, tables)

	visit := func(e *structElement) {
		handler.handle(e)
		switch e.s {
		case "H1", "H2", "H3", "H4", "H5", "H6":
			ds.headings = append(ds.headings, e)
		case "Link":
			ds.links = append(ds.links, e)
		}
	}

	if err := ds.walkStructureTree(visit); err != nil {
		return nil, ErrInternal(err)
	}
	handler.finalizeTables()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := runBattery(ds, f); err != nil {
		return nil, ErrInternal(err)
	}

	if log.CLIEnabled() && cfg.Verbose {
		log.CLI.Println("wam: done")
	}

	return buildReport(ds), nil
}
