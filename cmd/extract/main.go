/*
Command extract drives the join engine end to end: it reads an
intermediate glyph-stream XML file, runs the page joiner, and writes a
single content fragment in the requested output format. It mirrors
extract.c's own `main`-adjacent driving logic (parse args, load document,
join, emit) — argument parsing itself sits outside spec.md's scope, so
this stays a thin wrapper rather than a full CLI framework.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"

	"github.com/npillmayer/extract/core/option"
	"github.com/npillmayer/extract/engine/page"
	"github.com/npillmayer/extract/input/xmlstream"
	"github.com/npillmayer/extract/output/docx"
	"github.com/npillmayer/extract/output/html"
	"github.com/npillmayer/extract/output/jsonout"
	"github.com/npillmayer/extract/trace"
)

func main() {
	in := flag.String("in", "", "intermediate glyph-stream XML file (required)")
	out := flag.String("out", "", "output file (default: stdout)")
	format := flag.String("format", "docx", "output format: docx|html|json")
	tlevel := flag.String("trace", "Info", "trace level [Debug|Info|Error]")
	autosplit := flag.Bool("autosplit", false, "force a span split on every pre-y change")
	spacing := flag.Bool("spacing", true, "insert empty paragraphs between paragraphs (docx output)")
	layout := flag.Bool("layout", true, "reconstruct tables from ruling lines")
	flag.Parse()

	setupTracing(*tlevel)

	if *in == "" {
		pterm.Error.Println("missing required -in flag")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*in, *out, *format, option.New(
		option.WithAutosplit(*autosplit),
		option.WithSpacing(*spacing),
		option.WithLayoutAnalysis(*layout),
	)); err != nil {
		trace.Core().Errorf(err.Error())
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}

func setupTracing(level string) {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
	}
	for _, area := range []string{"refine", "lines", "paragraphs", "table", "page"} {
		conf["trace.extract."+area] = level
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Fprintln(os.Stderr, "error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
}

func run(inPath, outPath, format string, opts option.Options) error {
	f, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inPath, err)
	}
	defer f.Close()

	inputs, err := xmlstream.Read(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inPath, err)
	}
	trace.Core().Infof("read %d page(s) from %s", len(inputs), inPath)

	doc := page.JoinDocument(inputs, opts)

	w := os.Stdout
	if outPath != "" {
		out, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer out.Close()
		w = out
	}

	return emit(w, doc, format, opts)
}

func emit(w *os.File, doc *page.Document, format string, opts option.Options) error {
	switch format {
	case "docx":
		e := docx.New(opts)
		e.Document(doc)
		_, err := w.WriteString(e.String())
		return err
	case "html":
		e := html.New()
		e.Document(doc)
		s, err := e.String()
		if err != nil {
			return err
		}
		_, err = w.WriteString(s)
		return err
	case "json":
		b, err := jsonout.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("unknown output format %q (want docx, html or json)", format)
	}
}
