// Package profile loads optional HCL run profiles. A profile overrides the
// discount cards sent to each optimizer endpoint and the request timeout, so
// a test case can be rerun against a different card set without rebuilding.
//
//	timeout = "30s"
//
//	endpoint "products" {
//	  discount_cards = ["Лента", "Магнит", env.EXTRA_CARD]
//	}
//
// Expressions may read the process environment through the "env" object.
package profile

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/checkout/internal/ctxlog"
	"github.com/specialistvlad/checkout/internal/optimizer"
	"github.com/zclconf/go-cty/cty"
)

// Profile is a decoded run profile.
type Profile struct {
	// Timeout is zero when the profile does not set one.
	Timeout time.Duration
	// Cards holds only the endpoints the profile lists.
	Cards optimizer.Cards
}

// hclProfileFile is the top-level structure of a profile file for decoding.
type hclProfileFile struct {
	Timeout   *string             `hcl:"timeout,optional"`
	Endpoints []*hclEndpointBlock `hcl:"endpoint,block"`
}

type hclEndpointBlock struct {
	Name          string   `hcl:"name,label"`
	DiscountCards []string `hcl:"discount_cards"`
}

// Load parses and decodes the profile file at path.
func Load(ctx context.Context, path string) (*Profile, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding profile file.", "path", path)

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	p, err := Parse(src, path)
	if err != nil {
		return nil, err
	}

	logger.Debug("Successfully decoded profile file.", "path", path, "endpoints", len(p.Cards), "timeout", p.Timeout)
	return p, nil
}

// Parse decodes profile source. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Profile, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse profile %s: %w", filename, diags)
	}

	var parsed hclProfileFile
	diags = gohcl.DecodeBody(file.Body, evalContext(), &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode profile %s: %w", filename, diags)
	}

	p := &Profile{Cards: optimizer.Cards{}}

	if parsed.Timeout != nil {
		timeout, err := time.ParseDuration(*parsed.Timeout)
		if err != nil {
			return nil, fmt.Errorf("profile %s: invalid timeout: %w", filename, err)
		}
		if timeout < 0 {
			return nil, fmt.Errorf("profile %s: timeout must not be negative", filename)
		}
		p.Timeout = timeout
	}

	for _, ep := range parsed.Endpoints {
		if !optimizer.IsEndpoint(ep.Name) {
			return nil, fmt.Errorf("profile %s: unknown endpoint %q (known: %s)", filename, ep.Name, strings.Join(optimizer.Endpoints, ", "))
		}
		if _, dup := p.Cards[ep.Name]; dup {
			return nil, fmt.Errorf("profile %s: duplicate endpoint %q", filename, ep.Name)
		}
		cards := ep.DiscountCards
		if cards == nil {
			cards = []string{}
		}
		p.Cards[ep.Name] = cards
	}

	return p, nil
}

// Apply returns base with the profile's endpoints replaced. base is not
// modified.
func (p *Profile) Apply(base optimizer.Cards) optimizer.Cards {
	out := base.Clone()
	if p == nil {
		return out
	}
	for endpoint, cards := range p.Cards {
		out[endpoint] = append([]string{}, cards...)
	}
	return out
}

// evalContext exposes the process environment as the "env" object.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" || !utf8.ValidString(value) {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}
