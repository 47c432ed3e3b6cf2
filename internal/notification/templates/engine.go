package templates

import (
	"context"
	"errors"
	"fmt"
	htmltmpl "html/template"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"sync"
	texttmpl "text/template"
)

// Config selects where scenario templates are read from. With Dir set each
// scenario is <Dir>/<id>.tmpl, otherwise the embedded copy is used. Reload
// only applies to Dir and reparses on every render.
type Config struct {
	Dir    string
	Reload bool
}

// Rendered is the materialized email of a scenario template.
type Rendered struct {
	Subject   string
	EmailHTML string
	EmailText string
}

// IHandle is a runtime-typed handle to a template scenario.
type IHandle interface {
	ID() string
	DataType() reflect.Type
}

// Handle ties a scenario id to the data type its template expects.
type Handle[T any] struct {
	id string
}

// Expect creates a typed handle for a scenario id such as "auth.magic_link".
func Expect[T any](id string) Handle[T] { return Handle[T]{id: id} }

func (h Handle[T]) ID() string { return h.id }
func (h Handle[T]) DataType() reflect.Type {
	return reflect.TypeFor[T]()
}

// Renderer is what the notification service needs from the engine.
type Renderer interface {
	RenderAny(ctx context.Context, id string, data any) (Rendered, error)
}

// Engine parses scenario templates once and renders them on demand.
type Engine struct {
	src    fs.FS
	origin string
	reload bool
	log    *slog.Logger

	mu     sync.RWMutex
	parsed map[string]*scenario
}

// scenario keeps two parses of the same file: the subject and text body go
// through text/template, the HTML body through html/template for escaping.
type scenario struct {
	text *texttmpl.Template
	html *htmltmpl.Template
}

const (
	blockSubject = "subject"
	blockText    = "email_text"
	blockHTML    = "email_html"
)

// NewEngine creates an engine over cfg.Dir, or over the embedded files when
// no directory is configured.
func NewEngine(cfg Config, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	e := &Engine{log: log, parsed: make(map[string]*scenario)}
	if cfg.Dir != "" {
		e.src, e.origin, e.reload = os.DirFS(cfg.Dir), cfg.Dir, cfg.Reload
	} else {
		sub, err := fs.Sub(EmbeddedFS, "files")
		if err != nil {
			panic(err)
		}
		e.src, e.origin = sub, "embedded"
	}
	return e
}

// Render renders h with data of the type the handle was declared with.
func Render[T any](ctx context.Context, e *Engine, h Handle[T], data T) (Rendered, error) {
	return e.RenderAny(ctx, h.ID(), data)
}

// RenderAny renders scenario id. A template without a subject block is an error.
func (e *Engine) RenderAny(_ context.Context, id string, data any) (Rendered, error) {
	sc, err := e.scenario(id)
	if err != nil {
		return Rendered{}, err
	}

	var out Rendered
	var buf strings.Builder
	for _, block := range []struct {
		name string
		dst  *string
	}{{blockSubject, &out.Subject}, {blockText, &out.EmailText}} {
		if sc.text.Lookup(block.name) == nil {
			continue
		}
		buf.Reset()
		if err := sc.text.ExecuteTemplate(&buf, block.name, data); err != nil {
			return Rendered{}, fmt.Errorf("render %s/%s: %w", id, block.name, err)
		}
		*block.dst = strings.TrimSpace(buf.String())
	}

	if sc.html.Lookup(blockHTML) != nil {
		buf.Reset()
		if err := sc.html.ExecuteTemplate(&buf, blockHTML, data); err != nil {
			return Rendered{}, fmt.Errorf("render %s/%s: %w", id, blockHTML, err)
		}
		out.EmailHTML = buf.String()
	}

	if out.Subject == "" {
		return Rendered{}, fmt.Errorf("template %q has no subject block", id)
	}
	return out, nil
}

// Check parses and renders every handle with the zero value of its data type
// so a broken template fails at startup instead of on the first email.
func (e *Engine) Check(ctx context.Context, handles ...IHandle) error {
	var errs []error
	for _, h := range handles {
		zero := reflect.New(h.DataType()).Elem().Interface()
		if _, err := e.RenderAny(ctx, h.ID(), zero); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		e.log.Info("notification templates ready", "source", e.origin, "count", len(handles))
	}
	return errors.Join(errs...)
}

func (e *Engine) scenario(id string) (*scenario, error) {
	if e.reload {
		return e.parse(id)
	}

	e.mu.RLock()
	sc, ok := e.parsed[id]
	e.mu.RUnlock()
	if ok {
		return sc, nil
	}

	sc, err := e.parse(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.parsed[id] = sc
	e.mu.Unlock()
	return sc, nil
}

func (e *Engine) parse(id string) (*scenario, error) {
	raw, err := fs.ReadFile(e.src, id+".tmpl")
	if err != nil {
		return nil, fmt.Errorf("read template %q from %s: %w", id, e.origin, err)
	}
	body := string(raw)

	text, err := texttmpl.New(id).Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse template %q: %w", id, err)
	}
	html, err := htmltmpl.New(id).Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse template %q as html: %w", id, err)
	}
	return &scenario{text: text, html: html}, nil
}
