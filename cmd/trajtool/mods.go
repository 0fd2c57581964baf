package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/reflectometry/scattio/record"
	"github.com/reflectometry/scattio/record/bolt"
	"github.com/reflectometry/scattio/record/sqlite"
	"github.com/reflectometry/scattio/sio"
	"github.com/reflectometry/scattio/tools"
	"github.com/reflectometry/scattio/traj"
)

var Mods = map[string]Mod{
	"dryrun":  &Dryrunner{},
	"csv":     &CSVWriter{},
	"table":   &TableWriter{},
	"json":    &JSONWriter{},
	"dot":     &Grapher{},
	"mermaid": &Mermaider{},
	"html":    &HTMLWriter{},
	"analyze": &Analyzer{},
	"select":  &Selector{},
	"record":  &Recorder{},
	"publish": &Publisher{},
	"expect":  &Expecter{},
}

type Mod interface {
	F(ctx context.Context, args []string, out io.Writer) error
	Doc() string
	Flags() *flag.FlagSet
}

// nopCloser lets renderers that close their output write to stdout.
type nopCloser struct {
	io.Writer
}

func (c nopCloser) Close() error {
	return nil
}

type Dryrunner struct {
	Source
	Summary bool
}

func (c *Dryrunner) Doc() string {
	return `
Evaluates the trajectory and prints its points as a table.
`
}

func (c *Dryrunner) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("dryrun", flag.ContinueOnError)
	c.flags(flags)
	flags.BoolVar(&c.Summary, "s", false, "only print a summary")
	return flags
}

func (c *Dryrunner) F(ctx context.Context, args []string, out io.Writer) error {
	_, r, err := c.Dryrun(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "trajName %s: %d points\n", r.TrajName, len(r.Points))
	if c.Summary {
		return nil
	}
	tab, err := traj.Columnate(r.Points, r.Constants)
	if err != nil {
		return err
	}
	return traj.WriteTable(out, tab)
}

type CSVWriter struct {
	Source
}

func (c *CSVWriter) Doc() string {
	return `
Evaluates the trajectory and writes its points as CSV.  Columns for
constants are dropped.
`
}

func (c *CSVWriter) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("csv", flag.ContinueOnError)
	c.flags(flags)
	return flags
}

func (c *CSVWriter) F(ctx context.Context, args []string, out io.Writer) error {
	_, r, err := c.Dryrun(ctx)
	if err != nil {
		return err
	}
	tab, err := traj.Columnate(r.Points, r.Constants)
	if err != nil {
		return err
	}
	return traj.WriteCSV(out, tab)
}

type TableWriter struct {
	Source
}

func (c *TableWriter) Doc() string {
	return `
Evaluates the trajectory and writes its points as aligned columns.
`
}

func (c *TableWriter) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("table", flag.ContinueOnError)
	c.flags(flags)
	return flags
}

func (c *TableWriter) F(ctx context.Context, args []string, out io.Writer) error {
	_, r, err := c.Dryrun(ctx)
	if err != nil {
		return err
	}
	tab, err := traj.Columnate(r.Points, r.Constants)
	if err != nil {
		return err
	}
	return traj.WriteTable(out, tab)
}

type JSONWriter struct {
	Source
	Pretty bool
}

func (c *JSONWriter) Doc() string {
	return `
Evaluates the trajectory and writes one JSON object per point.
`
}

func (c *JSONWriter) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("json", flag.ContinueOnError)
	c.flags(flags)
	flags.BoolVar(&c.Pretty, "p", false, "pretty-print")
	return flags
}

func (c *JSONWriter) F(ctx context.Context, args []string, out io.Writer) error {
	_, r, err := c.Dryrun(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	if c.Pretty {
		enc.SetIndent("", "  ")
	}
	for _, p := range r.Points {
		if err := enc.Encode(p); err != nil {
			return err
		}
	}
	return nil
}

type Grapher struct {
	Source
}

func (c *Grapher) Doc() string {
	return `
Writes a Graphviz dot rendering of the loop tree.
`
}

func (c *Grapher) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("dot", flag.ContinueOnError)
	c.flags(flags)
	return flags
}

func (c *Grapher) F(ctx context.Context, args []string, out io.Writer) error {
	t, err := c.Load()
	if err != nil {
		return err
	}
	return tools.Dot(t, nopCloser{out})
}

type Mermaider struct {
	Source
	HideSpecs bool
}

func (c *Mermaider) Doc() string {
	return `
Writes a Mermaid rendering of the loop tree.
`
}

func (c *Mermaider) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("mermaid", flag.ContinueOnError)
	c.flags(flags)
	flags.BoolVar(&c.HideSpecs, "h", false, "hide vary specs")
	return flags
}

func (c *Mermaider) F(ctx context.Context, args []string, out io.Writer) error {
	t, err := c.Load()
	if err != nil {
		return err
	}
	opts := &tools.MermaidOpts{
		ShowSpecs: !c.HideSpecs,
		LeafFill:  "#bcf2db",
	}
	return tools.Mermaid(t, nopCloser{out}, opts)
}

type HTMLWriter struct {
	Source
	CSS string
}

func (c *HTMLWriter) Doc() string {
	return `
Writes an HTML page with the description, directives, and loop tree.
`
}

func (c *HTMLWriter) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("html", flag.ContinueOnError)
	c.flags(flags)
	flags.StringVar(&c.CSS, "css", "", "stylesheet URL")
	return flags
}

func (c *HTMLWriter) F(ctx context.Context, args []string, out io.Writer) error {
	t, r, err := c.Dryrun(ctx)
	if err != nil {
		return err
	}
	var css []string
	if c.CSS != "" {
		css = []string{c.CSS}
	}
	return tools.RenderTrajectoryPage(t, &r.Run, out, css)
}

type Analyzer struct {
	Source
}

func (c *Analyzer) Doc() string {
	return `
Writes a JSON summary of the loop tree.
`
}

func (c *Analyzer) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("analyze", flag.ContinueOnError)
	c.flags(flags)
	return flags
}

func (c *Analyzer) F(ctx context.Context, args []string, out io.Writer) error {
	t, err := c.Load()
	if err != nil {
		return err
	}
	a, err := tools.Analyze(t)
	if err != nil {
		return err
	}
	js, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n", js)
	return err
}

type Selector struct {
	Source
	Path string
}

func (c *Selector) Doc() string {
	return `
Evaluates a JSONPath expression against the array of points.
`
}

func (c *Selector) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("select", flag.ContinueOnError)
	c.flags(flags)
	flags.StringVar(&c.Path, "p", "$[*].fileName", "JSONPath")
	return flags
}

func (c *Selector) F(ctx context.Context, args []string, out io.Writer) error {
	_, r, err := c.Dryrun(ctx)
	if err != nil {
		return err
	}
	xs, err := tools.Select(r.Points, c.Path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	for _, x := range xs {
		if err := enc.Encode(x); err != nil {
			return err
		}
	}
	return nil
}

type Recorder struct {
	Source
	Store  string
	Output string
	Debug  bool
}

func (c *Recorder) Doc() string {
	return `
Evaluates the trajectory and stores the points that the write policy
selects.  Stores are json (JSON lines), bolt, and sqlite.
`
}

func (c *Recorder) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("record", flag.ContinueOnError)
	c.flags(flags)
	flags.StringVar(&c.Store, "store", "json", "json, bolt, or sqlite")
	flags.StringVar(&c.Output, "o", "", "output filename (json defaults to stdout)")
	flags.BoolVar(&c.Debug, "d", false, "log storage operations")
	return flags
}

func (c *Recorder) recorder(out io.Writer) (record.Recorder, error) {
	switch c.Store {
	case "json":
		if c.Output == "" {
			return &record.JSONStore{W: out}, nil
		}
		return record.NewJSONStore(c.Output), nil
	case "bolt", "sqlite":
		if c.Output == "" {
			return nil, errors.New("need -o for " + c.Store)
		}
	default:
		return nil, fmt.Errorf("unknown store %q", c.Store)
	}
	if c.Store == "bolt" {
		s, err := bolt.NewStorage(c.Output)
		if err != nil {
			return nil, err
		}
		s.Debug = c.Debug
		return s, nil
	}
	s, err := sqlite.NewStorage(c.Output)
	if err != nil {
		return nil, err
	}
	s.Debug = c.Debug
	return s, nil
}

func (c *Recorder) F(ctx context.Context, args []string, out io.Writer) error {
	rec, err := c.recorder(out)
	if err != nil {
		return err
	}
	_, r, err := c.Dryrun(ctx)
	if err != nil {
		return err
	}
	return record.Write(ctx, rec, r)
}

type Publisher struct {
	Source
	Sink    string
	URL     string
	Flatten bool
}

func (c *Publisher) Doc() string {
	return `
Evaluates the trajectory and sends each point as it's generated.
Sinks are stdio, mqtt, and ws.  Arguments after the flags are given
to the mqtt sink, which takes mosquitto_pub-style flags.
`
}

func (c *Publisher) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("publish", flag.ContinueOnError)
	c.flags(flags)
	flags.StringVar(&c.Sink, "sink", "stdio", "stdio, mqtt, or ws")
	flags.StringVar(&c.URL, "url", "ws://localhost:8080", "WebSocket URL for the ws sink")
	flags.BoolVar(&c.Flatten, "flatten", false, "flatten object fields into dotted names")
	return flags
}

func (c *Publisher) sink(args []string, out io.Writer) (sio.Sink, error) {
	switch c.Sink {
	case "stdio":
		s := sio.NewStdio()
		s.Out = out
		return s, nil
	case "mqtt":
		if args == nil {
			args = []string{}
		}
		s, _, err := sio.NewMQTTSink(args)
		return s, err
	case "ws":
		return sio.NewWebSocketSink(c.URL), nil
	}
	return nil, fmt.Errorf("unknown sink %q", c.Sink)
}

func (c *Publisher) F(ctx context.Context, args []string, out io.Writer) error {
	s, err := c.sink(args, out)
	if err != nil {
		return err
	}
	t, err := c.Load()
	if err != nil {
		return err
	}
	opts, err := c.Options()
	if err != nil {
		return err
	}
	r, err := sio.Publish(ctx, s, t, &sio.PublishOptions{
		Options: *opts,
		Flatten: c.Flatten,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "published %d points of %s\n", r.Count, r.TrajName)
	return nil
}

type Expecter struct {
	Session string
}

func (c *Expecter) Doc() string {
	return `
Checks a dry run against the expected points in a session file.
`
}

func (c *Expecter) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("expect", flag.ContinueOnError)
	flags.StringVar(&c.Session, "s", "", "session filename")
	return flags
}

func (c *Expecter) F(ctx context.Context, args []string, out io.Writer) error {
	if c.Session == "" {
		return errors.New("need -s")
	}
	s, err := tools.ReadSession(c.Session)
	if err != nil {
		return err
	}
	r, err := s.Run(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "ok: %d points\n", len(r.Points))
	return err
}
