package schema

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	bound "github.com/chanuka/bound"
	"github.com/chanuka/bound/i18n"
)

// EvalOpt adjusts evaluator behavior for a single run.
type EvalOpt struct {
	// StripUnknown drops input keys not declared by the schema. When false,
	// unknown keys are copied through untouched (DenyUnknown turns them into
	// issues instead).
	StripUnknown bool
	DenyUnknown  bool
	// FailFast stops at the first issue.
	FailFast bool
}

// Eval executes the schema against v and returns the normalized value.
// Issues is nil exactly when validation succeeded. Eval never panics on
// malformed input; discovering the input's shape is its job.
func (s *Schema) Eval(v any, opt EvalOpt) (map[string]any, bound.Issues) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, bound.Issues{bound.Root().Issue(bound.CodeInvalidType, i18n.T(bound.CodeInvalidType, nil), "expected", "object")}
	}
	return s.evalObject(s.Fields, obj, bound.Root(), opt)
}

func (s *Schema) evalObject(fields []Field, obj map[string]any, p bound.PathRef, opt EvalOpt) (map[string]any, bound.Issues) {
	out := make(map[string]any, len(obj))
	var iss bound.Issues

	declared := make(map[string]bool, len(fields))
	for _, f := range fields {
		declared[f.Name] = true
		fp := p.Field(f.Name)
		raw, present := obj[f.Name]
		if !present {
			if f.Default != nil {
				out[f.Name] = f.Default
				continue
			}
			if f.Required {
				iss = append(iss, fp.Issue(bound.CodeRequired, i18n.T(bound.CodeRequired, nil)))
				if opt.FailFast {
					return nil, iss
				}
			}
			continue
		}
		nv, fiss := s.evalValue(f, raw, fp, opt)
		if len(fiss) > 0 {
			iss = append(iss, fiss...)
			if opt.FailFast {
				return nil, iss
			}
			continue
		}
		out[f.Name] = nv
	}

	for k, v := range obj {
		if declared[k] {
			continue
		}
		if opt.StripUnknown {
			continue
		}
		if opt.DenyUnknown {
			iss = append(iss, p.Field(k).Issue(bound.CodeUnknownKey, i18n.T(bound.CodeUnknownKey, nil)))
			if opt.FailFast {
				return nil, iss
			}
			continue
		}
		out[k] = v
	}

	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (s *Schema) evalValue(f Field, raw any, p bound.PathRef, opt EvalOpt) (any, bound.Issues) {
	if raw == nil {
		if f.Nullable {
			return nil, nil
		}
		return nil, bound.Issues{p.Issue(bound.CodeInvalidType, i18n.T(bound.CodeInvalidType, nil), "expected", string(f.Type), "got", "null")}
	}

	switch f.Type {
	case TypeString:
		sv, ok := raw.(string)
		if !ok {
			return nil, typeIssue(p, f.Type, raw)
		}
		return s.applyRules(f, sv, p)

	case TypeBool:
		bv, ok := raw.(bool)
		if !ok {
			return nil, typeIssue(p, f.Type, raw)
		}
		return s.applyRules(f, bv, p)

	case TypeNumber:
		fv, ok := asFloat(raw)
		if !ok {
			return nil, typeIssue(p, f.Type, raw)
		}
		return s.applyRules(f, fv, p)

	case TypeInteger:
		fv, ok := asFloat(raw)
		if !ok || math.Trunc(fv) != fv {
			return nil, typeIssue(p, f.Type, raw)
		}
		return s.applyRules(f, int64(fv), p)

	case TypeObject:
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, typeIssue(p, f.Type, raw)
		}
		return s.evalObject(f.Fields, obj, p, opt)

	case TypeArray:
		arr, ok := raw.([]any)
		if !ok {
			return nil, typeIssue(p, f.Type, raw)
		}
		var iss bound.Issues
		for _, r := range f.Rules {
			switch r.Kind {
			case RuleMinItems:
				if len(arr) < r.Len {
					iss = append(iss, ruleIssue(p, r, bound.CodeTooShort, "minItems", r.Len, "got", len(arr)))
				}
			case RuleMaxItems:
				if len(arr) > r.Len {
					iss = append(iss, ruleIssue(p, r, bound.CodeTooLong, "maxItems", r.Len, "got", len(arr)))
				}
			}
		}
		if len(iss) > 0 && opt.FailFast {
			return nil, iss
		}
		out := make([]any, 0, len(arr))
		for i, el := range arr {
			nv, eiss := s.evalValue(*f.Elem, el, p.Index(i), opt)
			if len(eiss) > 0 {
				iss = append(iss, eiss...)
				if opt.FailFast {
					return nil, iss
				}
				continue
			}
			out = append(out, nv)
		}
		if len(iss) > 0 {
			return nil, iss
		}
		return out, nil
	}
	return nil, bound.Issues{p.Issue(bound.CodeInvalidType, fmt.Sprintf("unhandled field type %q", f.Type))}
}

// applyRules runs the tagged rule list over a scalar value and returns the
// normalized value (formats may normalize, e.g. email lowercasing).
func (s *Schema) applyRules(f Field, v any, p bound.PathRef) (any, bound.Issues) {
	var iss bound.Issues
	for _, r := range f.Rules {
		switch r.Kind {
		case RuleMinLength:
			if sv, ok := v.(string); ok && utf8.RuneCountInString(sv) < r.Len {
				iss = append(iss, ruleIssue(p, r, bound.CodeTooShort, "min", r.Len, "got", utf8.RuneCountInString(sv)))
			}
		case RuleMaxLength:
			if sv, ok := v.(string); ok && utf8.RuneCountInString(sv) > r.Len {
				iss = append(iss, ruleIssue(p, r, bound.CodeTooLong, "max", r.Len, "got", utf8.RuneCountInString(sv)))
			}
		case RulePattern:
			if sv, ok := v.(string); ok {
				if re := s.patterns[r.Pattern]; re != nil && !re.MatchString(sv) {
					iss = append(iss, ruleIssue(p, r, bound.CodePattern, "pattern", r.Pattern))
				}
			}
		case RuleMin:
			if fv, ok := numeric(v); ok && fv < r.Bound {
				iss = append(iss, ruleIssue(p, r, bound.CodeTooSmall, "min", r.Bound, "got", fv))
			}
		case RuleMax:
			if fv, ok := numeric(v); ok && fv > r.Bound {
				iss = append(iss, ruleIssue(p, r, bound.CodeTooBig, "max", r.Bound, "got", fv))
			}
		case RuleEnum:
			if sv, ok := v.(string); ok {
				found := false
				for _, e := range r.Enum {
					if sv == e {
						found = true
						break
					}
				}
				if !found {
					iss = append(iss, ruleIssue(p, r, bound.CodeInvalidEnum, "allowed", r.Enum, "got", sv))
				}
			}
		case RuleFormat:
			nv, ok := checkFormat(r.Format, v)
			if !ok {
				iss = append(iss, ruleIssue(p, r, bound.CodeInvalidFormat, "format", r.Format))
				continue
			}
			v = nv
		case RuleCustom:
			if !r.Check(v) {
				is := ruleIssue(p, r, bound.CodeCustomRule, "rule", r.Name)
				is.Rule = r.Name
				iss = append(iss, is)
			}
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return v, nil
}

// checkFormat validates v against a named format and returns the normalized
// value. Email addresses normalize to lower case; lowercasing is idempotent,
// so re-validating normalized output succeeds unchanged.
func checkFormat(format string, v any) (any, bool) {
	sv, ok := v.(string)
	if !ok {
		return nil, false
	}
	switch format {
	case FormatEmail:
		at := strings.IndexByte(sv, '@')
		if at <= 0 || at == len(sv)-1 || strings.IndexByte(sv[at+1:], '.') < 0 {
			return nil, false
		}
		return strings.ToLower(sv), true
	case FormatUUID:
		if _, err := uuid.Parse(sv); err != nil {
			return nil, false
		}
		return sv, true
	case FormatRFC3339:
		if _, err := time.Parse(time.RFC3339, sv); err != nil {
			return nil, false
		}
		return sv, true
	case FormatURL:
		u, err := url.Parse(sv)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, false
		}
		return sv, true
	}
	return nil, false
}

func typeIssue(p bound.PathRef, want Type, got any) bound.Issues {
	return bound.Issues{p.Issue(bound.CodeInvalidType, i18n.T(bound.CodeInvalidType, nil), "expected", string(want), "got", fmt.Sprintf("%T", got))}
}

func ruleIssue(p bound.PathRef, r Rule, code string, kv ...any) bound.Issue {
	msg := r.Message
	if msg == "" {
		msg = i18n.T(code, nil)
	}
	return p.Issue(code, msg, kv...)
}

// asFloat widens the numeric shapes the preprocessor and JSON decoder may
// produce into float64.
func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

func numeric(v any) (float64, bool) {
	return asFloat(v)
}
