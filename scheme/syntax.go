// Copyright © 2018 The ELPS authors

package scheme

// Special form keywords.
const (
	KeywordQuote  = "quote"
	KeywordSet    = "set!"
	KeywordDefine = "define"
	KeywordIf     = "if"
	KeywordLambda = "lambda"
	KeywordBegin  = "begin"
)

// specialForms maps each keyword to its usage documentation.
var specialForms = map[string]string{
	KeywordQuote:  "(quote datum) returns datum without evaluating it.  'datum is read as (quote datum).",
	KeywordSet:    "(set! name expr) assigns the value of expr to the innermost existing binding of name.",
	KeywordDefine: "(define name expr) binds name in the current frame.  (define (name param...) body...) defines a procedure.",
	KeywordIf:     "(if predicate consequent [alternative]) evaluates consequent when predicate is #t and alternative otherwise.",
	KeywordLambda: "(lambda (param...) body...) returns a procedure closed over the current environment.",
	KeywordBegin:  "(begin expr...) evaluates each expr in order and returns the value of the last.",
}

// SpecialFormDoc returns the documentation of the special form keyword, or
// an empty string if keyword does not name a special form.
func SpecialFormDoc(keyword string) string {
	return specialForms[keyword]
}

// SpecialForms returns the keywords of all special forms.
func SpecialForms() []string {
	return []string{KeywordBegin, KeywordDefine, KeywordIf, KeywordLambda, KeywordQuote, KeywordSet}
}

// IsTaggedList returns true if exp is a non-empty list whose first element
// is the symbol tag.
func IsTaggedList(exp *Value, tag string) bool {
	if !exp.IsPair() {
		return false
	}
	head := exp.Pair.Head
	return head.Type == VSymbol && head.Str == tag
}

// nth returns the element of exp at index i, which must exist.
func nth(exp *Value, i int, form string) (*Value, error) {
	p := exp.Pair
	for ; p != nil && i > 0; i-- {
		p = p.Tail
	}
	if p == nil {
		return nil, errorf(UnrecognizedExpression, "malformed %s: %v", form, exp)
	}
	return p.Head, nil
}

// tailFrom returns the list of elements of exp starting at index i.
func tailFrom(exp *Value, i int) *Value {
	p := exp.Pair
	for ; p != nil && i > 0; i-- {
		p = p.Tail
	}
	return listFromPair(p)
}

func checkLength(exp *Value, min, max int, form string) error {
	n := exp.Pair.Len()
	if n < min || n > max {
		return errorf(UnrecognizedExpression, "malformed %s: %v", form, exp)
	}
	return nil
}

// IsQuoted returns true for pre-quoted atoms and (quote datum) forms.
func IsQuoted(exp *Value) bool {
	return exp.Type == VQuote || IsTaggedList(exp, KeywordQuote)
}

// TextOfQuotation returns the datum of a quoted expression.  A pre-quoted
// atom is its own datum.
func TextOfQuotation(exp *Value) (*Value, error) {
	if exp.Type == VQuote {
		return exp, nil
	}
	if err := checkLength(exp, 2, 2, KeywordQuote); err != nil {
		return nil, err
	}
	return exp.Pair.Tail.Head, nil
}

// IsAssignment returns true for (set! var exp) forms.
func IsAssignment(exp *Value) bool {
	return IsTaggedList(exp, KeywordSet)
}

// AssignmentVariable returns the name assigned by a set! form.
func AssignmentVariable(exp *Value) (string, error) {
	if err := checkLength(exp, 3, 3, KeywordSet); err != nil {
		return "", err
	}
	v := exp.Pair.Tail.Head
	if v.Type != VSymbol {
		return "", errorf(UnrecognizedExpression, "set!: variable is not a symbol: %v", v)
	}
	return v.Str, nil
}

// AssignmentValue returns the value expression of a set! form.
func AssignmentValue(exp *Value) (*Value, error) {
	return nth(exp, 2, KeywordSet)
}

// IsDefinition returns true for define forms.
func IsDefinition(exp *Value) bool {
	return IsTaggedList(exp, KeywordDefine)
}

// DefinitionVariable returns the name bound by a define form.  For the
// procedure form (define (name params...) body...) the name is the first
// element of the second list.
func DefinitionVariable(exp *Value) (string, error) {
	target, err := nth(exp, 1, KeywordDefine)
	if err != nil {
		return "", err
	}
	if target.IsPair() {
		target = target.Pair.Head
	}
	if target.Type != VSymbol {
		return "", errorf(UnrecognizedExpression, "define: variable is not a symbol: %v", target)
	}
	return target.Str, nil
}

// DefinitionValue returns the value expression of a define form.  For the
// procedure form the value is an equivalent lambda expression.
func DefinitionValue(exp *Value) (*Value, error) {
	target, err := nth(exp, 1, KeywordDefine)
	if err != nil {
		return nil, err
	}
	if target.IsPair() {
		params := listFromPair(target.Pair.Tail)
		body := tailFrom(exp, 2)
		if body.IsNil() {
			return nil, errorf(UnrecognizedExpression, "define: empty procedure body: %v", exp)
		}
		return MakeLambda(params, body), nil
	}
	if err := checkLength(exp, 3, 3, KeywordDefine); err != nil {
		return nil, err
	}
	return exp.Pair.Tail.Tail.Head, nil
}

// IsIf returns true for if forms.
func IsIf(exp *Value) bool {
	return IsTaggedList(exp, KeywordIf)
}

// IfPredicate returns the predicate expression of an if form.
func IfPredicate(exp *Value) (*Value, error) {
	if err := checkLength(exp, 3, 4, KeywordIf); err != nil {
		return nil, err
	}
	return exp.Pair.Tail.Head, nil
}

// IfConsequent returns the consequent expression of an if form.
func IfConsequent(exp *Value) (*Value, error) {
	if err := checkLength(exp, 3, 4, KeywordIf); err != nil {
		return nil, err
	}
	return exp.Pair.Tail.Tail.Head, nil
}

// IfAlternative returns the alternative expression of an if form or the
// unspecified value if the form has no alternative.  The unspecified value
// evaluates to itself.
func IfAlternative(exp *Value) (*Value, error) {
	if err := checkLength(exp, 3, 4, KeywordIf); err != nil {
		return nil, err
	}
	alt := exp.Pair.Tail.Tail.Tail
	if alt == nil {
		return Unspecified(), nil
	}
	return alt.Head, nil
}

// IsLambda returns true for lambda forms.
func IsLambda(exp *Value) bool {
	return IsTaggedList(exp, KeywordLambda)
}

// LambdaParameters returns the parameter list of a lambda form.
func LambdaParameters(exp *Value) (*Value, error) {
	return nth(exp, 1, KeywordLambda)
}

// LambdaBody returns the body expressions of a lambda form.
func LambdaBody(exp *Value) *Value {
	return tailFrom(exp, 2)
}

// MakeLambda returns the expression (lambda params body...).
func MakeLambda(params, body *Value) *Value {
	return listFromPair(&Pair{
		Head: Symbol(KeywordLambda),
		Tail: &Pair{Head: params, Tail: body.Pair},
	})
}

// IsBegin returns true for begin forms.
func IsBegin(exp *Value) bool {
	return IsTaggedList(exp, KeywordBegin)
}

// BeginActions returns the body expressions of a begin form.
func BeginActions(exp *Value) *Value {
	return tailFrom(exp, 1)
}

// IsApplication returns true for any non-empty list that is not a special
// form.
func IsApplication(exp *Value) bool {
	if !exp.IsPair() {
		return false
	}
	head := exp.Pair.Head
	return head.Type != VSymbol || specialForms[head.Str] == ""
}

// Operator returns the operator expression of an application.
func Operator(exp *Value) *Value {
	return exp.Pair.Head
}

// Operands returns the list of operand expressions of an application.
func Operands(exp *Value) *Value {
	return listFromPair(exp.Pair.Tail)
}
