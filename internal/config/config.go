// Package config loads clausal.cue project files.
//
// A project file is CUE unified with the embedded #Config schema. Every
// field is optional; a missing file yields the defaults.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/clausal/internal/engine"
	"github.com/roach88/clausal/internal/term"
)

// DefaultFile is the project file name looked up when none is given.
const DefaultFile = "clausal.cue"

//go:embed schema.cue
var schemaSrc string

// Config is a decoded project file.
type Config struct {
	OccursCheck bool
	// MaxDuration is nil when the file leaves the engine default in place.
	MaxDuration *time.Duration
	Unknown     string
	MaxSteps    int64
	Consult     []string
	Database    string
	Theory      string
	Parallel    int
}

// file mirrors the CUE fields.
type file struct {
	OccursCheck bool     `json:"occurs_check"`
	Unknown     string   `json:"unknown"`
	MaxDuration string   `json:"max_duration"`
	MaxSteps    int64    `json:"max_steps"`
	Consult     []string `json:"consult"`
	Database    string   `json:"database"`
	Theory      string   `json:"theory"`
	Parallel    int      `json:"parallel"`
}

// Error is an invalid project file. Pos is the CUE position when known.
type Error struct {
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// IsConfigError reports whether err is an invalid project file.
func IsConfigError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

// Default returns the configuration used without a project file.
func Default() *Config {
	cfg, err := decode(cuecontext.New(), nil, "")
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema: %v", err))
	}
	return cfg
}

// Load reads path. A missing file yields Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return decode(cuecontext.New(), data, path)
}

// Parse decodes CUE source. name is used in error positions.
func Parse(src []byte, name string) (*Config, error) {
	return decode(cuecontext.New(), src, name)
}

func decode(ctx *cue.Context, src []byte, name string) (*Config, error) {
	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	v := schema.LookupPath(cue.ParsePath("#Config"))
	if src != nil {
		user := ctx.CompileBytes(src, cue.Filename(name))
		if err := user.Err(); err != nil {
			return nil, cueError(err)
		}
		v = v.Unify(user)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(err)
	}

	var f file
	if err := v.Decode(&f); err != nil {
		return nil, cueError(err)
	}

	cfg := &Config{
		OccursCheck: f.OccursCheck,
		Unknown:     f.Unknown,
		MaxSteps:    f.MaxSteps,
		Consult:     f.Consult,
		Database:    f.Database,
		Theory:      f.Theory,
		Parallel:    f.Parallel,
	}
	if f.MaxDuration != "" {
		d, err := time.ParseDuration(f.MaxDuration)
		if err != nil {
			return nil, &Error{
				Message: fmt.Sprintf("max_duration: %v", err),
				Pos:     v.LookupPath(cue.ParsePath("max_duration")).Pos(),
			}
		}
		cfg.MaxDuration = &d
	}
	if name != "" {
		dir := filepath.Dir(name)
		for i, p := range cfg.Consult {
			if !filepath.IsAbs(p) {
				cfg.Consult[i] = filepath.Join(dir, p)
			}
		}
	}
	return cfg, nil
}

// cueError keeps the first error and its position.
func cueError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{Message: err.Error()}
	}
	first := errs[0]
	ce := &Error{Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}

// Flags returns the engine flags the configuration selects.
func (c *Config) Flags() engine.Flags {
	f := engine.DefaultFlags().Set(engine.FlagUnknown, term.Atom(c.Unknown))
	if c.OccursCheck {
		f = f.Set(engine.FlagOccursCheck, term.True)
	}
	return f
}

// EngineOptions returns solver options for the flags and quotas.
func (c *Config) EngineOptions() []engine.Option {
	opts := []engine.Option{engine.WithFlags(c.Flags())}
	if c.MaxDuration != nil {
		opts = append(opts, engine.WithMaxDuration(*c.MaxDuration))
	}
	if c.MaxSteps > 0 {
		opts = append(opts, engine.WithMaxSteps(c.MaxSteps))
	}
	return opts
}
