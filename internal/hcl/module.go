package hcl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/amdgo/internal/config"
	"github.com/vk/amdgo/internal/ctxlog"
	"github.com/vk/amdgo/internal/engine"
	"github.com/vk/amdgo/internal/moduleid"
	"github.com/vk/amdgo/internal/schema"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// ModuleExtension is the source extension handled by ModuleEvaluator.
const ModuleExtension = ".hcl"

// ModuleEvaluator evaluates HCL module sources for an engine.Runtime.
type ModuleEvaluator struct {
	rt        *engine.Runtime
	converter config.Converter
	logger    *slog.Logger
}

// AttachModules registers an HCL module evaluator with rt.
func AttachModules(rt *engine.Runtime) *ModuleEvaluator {
	ev := &ModuleEvaluator{
		rt:        rt,
		converter: NewConverter(),
		logger:    ctxlog.FromContext(rt.Context()).With("component", "hcl"),
	}
	rt.RegisterEvaluator(ModuleExtension, ev)
	return ev
}

// Evaluate implements engine.Evaluator. Every define block registers one
// module; the exports expression is evaluated once all imports are usable.
func (e *ModuleEvaluator) Evaluate(ctx context.Context, unit engine.Unit, src []byte) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, unit.Locator)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL module: %w", diags)
	}

	var root schema.ModuleFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL module: %w", diags)
	}
	if len(root.Defines) == 0 {
		return fmt.Errorf("no define block in %s", unit.Locator)
	}

	for _, d := range root.Defines {
		if err := e.define(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

type binding struct {
	name string
	ty   cty.Type
}

func (e *ModuleEvaluator) define(ctx context.Context, d *schema.Define) error {
	deps := make([]string, 0, len(d.Imports))
	bindings := make([]binding, 0, len(d.Imports))
	seen := make(map[string]struct{}, len(d.Imports))

	for _, imp := range d.Imports {
		if moduleid.IsReserved(imp.ID) {
			return fmt.Errorf("import %q: '%s' cannot be imported by an HCL module", imp.Name, imp.ID)
		}
		if _, dup := seen[imp.Name]; dup {
			return fmt.Errorf("import %q declared twice", imp.Name)
		}
		seen[imp.Name] = struct{}{}

		ty, err := typeExprToCtyType(ctx, imp.Type)
		if err != nil {
			return fmt.Errorf("import %q: invalid type: %w", imp.Name, err)
		}
		deps = append(deps, imp.ID)
		bindings = append(bindings, binding{name: imp.Name, ty: ty})
	}

	exportsExpr := d.Exports
	factory := func(args ...any) (any, error) {
		vars := make(map[string]cty.Value, len(args))
		for i, arg := range args {
			b := bindings[i]
			val, err := e.converter.ToCtyValue(arg)
			if err != nil {
				return nil, fmt.Errorf("import %q: %w", b.name, err)
			}
			if b.ty != cty.DynamicPseudoType {
				if val, err = convert.Convert(val, b.ty); err != nil {
					return nil, fmt.Errorf("import %q: cannot convert to %s: %w", b.name, b.ty.FriendlyName(), err)
				}
			}
			vars[b.name] = val
		}

		evalCtx := &hcl.EvalContext{Variables: vars, Functions: moduleFunctions()}
		val, diags := exportsExpr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, diags
		}
		return e.converter.FromCtyValue(val)
	}

	e.logger.Debug("Defining HCL module.", "module", d.ID, "imports", deps)
	return e.rt.Define(d.ID, deps, factory)
}
