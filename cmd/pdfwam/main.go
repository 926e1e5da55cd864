/*
Copyright 2018 The pdfcpu Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// pdfwam runs the accessibility indicator battery against one or more PDF
// files and prints a JSON report per file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pdfwam/pdfwam/pkg/log"
	"github.com/pdfwam/pdfwam/pkg/pdfcpu/model"
	"github.com/pdfwam/pdfwam/pkg/pdfcpu/reader"
	"github.com/pdfwam/pdfwam/wam"
	"golang.org/x/sync/errgroup"
)

const usage = `pdfwam checks one or more PDF files against a battery of
accessibility indicators and prints a JSON report per file.

Usage:

	pdfwam [-verbose] [-validate-images] [-ignore-1bit-images] [-password pw] [-jobs n] file.pdf...
`

func main() {
	var (
		verbose        bool
		validateImages bool
		ignore1Bit     bool
		password       string
		jobs           int
	)

	flag.BoolVar(&verbose, "verbose", false, "extensive log output")
	flag.BoolVar(&validateImages, "validate-images", false, "fall back to image-content heuristics for figures without Alt/ActualText")
	flag.BoolVar(&ignore1Bit, "ignore-1bit-images", false, "treat 1-bit images as decorative when deciding figure alt-text requirements")
	flag.StringVar(&password, "password", "", "user or owner password for encrypted input")
	flag.IntVar(&jobs, "jobs", 4, "maximum number of files analyzed concurrently")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Print(usage)
		os.Exit(1)
	}

	log.SetDefaultLoggers()
	if verbose {
		log.SetDefaultDebugLogger()
	}

	cfg := wam.Config{
		Verbose:               verbose,
		ValidateImages:        validateImages,
		IgnoreSingleBitImages: ignore1Bit,
	}

	files := flag.Args()
	reports := make([]*wam.Report, len(files))
	errs := make([]error, len(files))

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(jobs)

	for i, name := range files {
		i, name := i, name
		g.Go(func() error {
			r, err := analyzeFile(ctx, name, password, cfg)
			reports[i] = r
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	exitCode := 0
	for i, name := range files {
		if errs[i] != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, errs[i])
			exitCode = 1
			continue
		}
		b, err := json.MarshalIndent(reports[i], "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			exitCode = 1
			continue
		}
		if len(files) > 1 {
			fmt.Printf("=== %s ===\n", name)
		}
		fmt.Println(string(b))
	}

	os.Exit(exitCode)
}

func analyzeFile(ctx context.Context, name, password string, cfg wam.Config) (*wam.Report, error) {
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return nil, fmt.Errorf("pdfwam: %s needs extension \".pdf\"", name)
	}

	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password

	pdfCtx, err := reader.File(name, conf)
	if err != nil {
		return nil, wam.ErrUnreadablePDF(err)
	}

	f := wam.NewFacade(pdfCtx.XRefTable)

	return wam.Analyze(ctx, f, password, cfg)
}
