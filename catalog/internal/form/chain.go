package form

import (
	"strings"
)

type Varer interface {
	Var(field interface{}, tag string) error
}

type op struct {
	sanitize func(string) string
	tag      string
	is       func(string) bool
	msg      string
}

// Chain is the ordered list of sanitizers and checks for one field.
// Only the first failing check of a value is reported.
type Chain struct {
	field    string
	optional bool
	ops      []op
}

func Field(name string) *Chain {
	return &Chain{field: name}
}

// Optional skips the chain for an empty value.
func (c *Chain) Optional() *Chain {
	c.optional = true
	return c
}

func (c *Chain) Trim() *Chain {
	c.ops = append(c.ops, op{sanitize: strings.TrimSpace})
	return c
}

func (c *Chain) Escape() *Chain {
	c.ops = append(c.ops, op{sanitize: Escape})
	return c
}

// Check applies a go-playground/validator tag, e.g. "min=1" or "alphanum".
func (c *Chain) Check(tag, msg string) *Chain {
	c.ops = append(c.ops, op{tag: tag, msg: msg})
	return c
}

func (c *Chain) Is(fn func(string) bool, msg string) *Chain {
	c.ops = append(c.ops, op{is: fn, msg: msg})
	return c
}

func (c *Chain) apply(v Varer, s *Submission, value string) string {
	if c.optional && value == "" {
		return value
	}
	for _, o := range c.ops {
		switch {
		case o.sanitize != nil:
			value = o.sanitize(value)
		case o.is != nil:
			if !o.is(value) {
				s.addError(c.field, o.msg, value)
				return value
			}
		default:
			if err := v.Var(value, o.tag); err != nil {
				s.addError(c.field, o.msg, value)
				return value
			}
		}
	}
	return value
}

// Validate runs every chain over its field and stores the sanitized values
// back into the submission.
func Validate(v Varer, chains ...*Chain) Step {
	return func(s *Submission) error {
		for _, c := range chains {
			if s.multi[c.field] {
				vals := s.values[c.field]
				for i := range vals {
					vals[i] = c.apply(v, s, vals[i])
				}
				continue
			}
			s.values[c.field] = []string{c.apply(v, s, s.values.Get(c.field))}
		}
		return nil
	}
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#x27;",
	"<", "&lt;",
	">", "&gt;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

// Escape replaces HTML-significant characters with entities.
func Escape(s string) string {
	return escaper.Replace(s)
}
