package docgen

import (
	"log/slog"

	"github.com/gork-labs/docfields/pkg/docmodel"
)

// Hook is called for every class of a run.
type Hook interface {
	// OnClassMembers is called once per class, after its members are loaded.
	OnClassMembers(cls *docmodel.Class)
	// OnClass is called once per class after every class has been through
	// OnClassMembers, so the whole class graph is available.
	OnClass(cls *docmodel.Class)
}

// Generator loads classes and runs hooks over them.
type Generator struct {
	loader *Loader
	hooks  []Hook
	logger *slog.Logger
}

// NewGenerator creates a generator. A nil loader reads no doc comments.
func NewGenerator(loader *Loader, logger *slog.Logger, hooks ...Hook) *Generator {
	if loader == nil {
		loader = NewLoader(nil)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{loader: loader, hooks: hooks, logger: logger}
}

// Run documents every type in reg.
func (g *Generator) Run(reg *Registry) *docmodel.Module {
	classes := g.loader.Load(reg)
	g.logger.Debug("loaded classes", "count", len(classes))
	for _, h := range g.hooks {
		for _, cls := range classes {
			h.OnClassMembers(cls)
		}
	}
	for _, h := range g.hooks {
		for _, cls := range classes {
			h.OnClass(cls)
		}
	}
	return &docmodel.Module{Classes: classes}
}
