package tagconfig

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/evidence-tracker/internal/domain"
)

//go:embed tags.cue
var schemaSrc string

// Parse decodes and validates tag configuration content.
// Every failure is a domain.CodeParse error.
func Parse(data []byte) (domain.TagConfig, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSrc).LookupPath(cue.ParsePath("#TagConfig"))
	if err := schema.Err(); err != nil {
		return domain.TagConfig{}, parseErr("compile tag schema", err)
	}

	expr, err := cuejson.Extract(FileName, data)
	if err != nil {
		return domain.TagConfig{}, parseErr("invalid tag configuration", err)
	}

	v := schema.Unify(ctx.BuildExpr(expr))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return domain.TagConfig{}, parseErr("invalid tag configuration", err)
	}

	var cfg domain.TagConfig
	if err := v.Decode(&cfg); err != nil {
		return domain.TagConfig{}, parseErr("decode tag configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return domain.TagConfig{}, parseErr("invalid tag configuration", err)
	}

	cfg.Normalize()
	return cfg, nil
}

// parseErr wraps the first CUE error, which carries the offending path.
func parseErr(msg string, err error) error {
	if errs := errors.Errors(err); len(errs) > 0 {
		err = fmt.Errorf("%s", errors.Details(errs[0], nil))
	}
	return domain.Wrap(domain.CodeParse, msg, err)
}
