package validation

import (
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/goliatone/go-careforms/pkg/field"
)

const patternCacheSize = 256

var patterns *lru.Cache[string, *regexp.Regexp]

func init() {
	cache, err := lru.New[string, *regexp.Regexp](patternCacheSize)
	if err != nil {
		panic(err)
	}
	patterns = cache
}

// Rules returns the effective rule list for a descriptor: required first when
// flagged, the explicit rules, then an email rule for email fields that do
// not declare one.
func Rules(d field.Descriptor) []field.Rule {
	rules := make([]field.Rule, 0, len(d.Rules)+2)
	hasRequired, hasEmail := false, false
	for _, rule := range d.Rules {
		switch rule.Kind {
		case field.RuleRequired:
			hasRequired = true
		case field.RuleEmail:
			hasEmail = true
		}
	}
	if d.Required && !hasRequired {
		rules = append(rules, field.Required())
	}
	rules = append(rules, d.Rules...)
	if d.DataType == field.DataTypeEmail && !hasEmail {
		rules = append(rules, field.Email())
	}
	return rules
}

// Validate enumerates every active failure for a value. Only required applies
// to empty values; checks run last.
func Validate(d field.Descriptor, v field.Value) []field.Failure {
	var failures []field.Failure
	for _, rule := range Rules(d) {
		if failure, ok := check(rule, v); !ok {
			failures = append(failures, failure)
		}
	}
	for _, fn := range d.Checks {
		if fn == nil {
			continue
		}
		if failure := fn(v); failure != nil {
			failures = append(failures, *failure)
		}
	}
	return failures
}

// Valid reports whether the value passes every rule and check.
func Valid(d field.Descriptor, v field.Value) bool {
	return len(Validate(d, v)) == 0
}

func check(rule field.Rule, v field.Value) (field.Failure, bool) {
	failure := field.Failure{Key: rule.Kind}
	if param := rule.Param(); param != "" && rule.Kind != field.RuleRequired && rule.Kind != field.RuleEmail {
		failure.Params = map[string]string{"value": param}
	}

	if rule.Kind == field.RuleRequired {
		return failure, !v.IsEmpty()
	}
	if v.IsEmpty() {
		return failure, true
	}

	switch rule.Kind {
	case field.RuleEmail:
		return failure, isEmail(v.String())
	case field.RulePattern:
		re, err := compile(rule.Param())
		if err != nil {
			return failure, false
		}
		return failure, re.MatchString(v.String())
	case field.RuleMin, field.RuleMax:
		limit, err := strconv.ParseFloat(rule.Param(), 64)
		if err != nil {
			return failure, true
		}
		n, ok := v.Number()
		if !ok {
			return failure, true
		}
		if rule.Kind == field.RuleMin {
			return failure, n >= limit
		}
		return failure, n <= limit
	case field.RuleMinLength, field.RuleMaxLength:
		limit, err := strconv.Atoi(rule.Param())
		if err != nil {
			return failure, true
		}
		length := utf8.RuneCountInString(v.String())
		if rule.Kind == field.RuleMinLength {
			return failure, length >= limit
		}
		return failure, length <= limit
	default:
		return failure, true
	}
}

func isEmail(s string) bool {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@")+1:], ".")
}

// compile anchors the expression and caches the result.
func compile(expr string) (*regexp.Regexp, error) {
	if re, ok := patterns.Get(expr); ok {
		return re, nil
	}
	anchored := expr
	if !strings.HasPrefix(anchored, "^") {
		anchored = "^(?:" + anchored + ")"
	}
	if !strings.HasSuffix(anchored, "$") {
		anchored += "$"
	}
	re, err := regexp.Compile(anchored)
	if err != nil {
		return nil, err
	}
	patterns.Add(expr, re)
	return re, nil
}
