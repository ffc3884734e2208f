// Package amount converts between human-readable decimal strings and
// integer base units (wei, satoshis, USDT units, ...).
//
// All arithmetic happens on digit strings and big.Int; a value never
// passes through a float, so "0.1" at 18 decimals is exactly
// 100000000000000000 and not a neighbour of it. Inputs that cannot be
// represented exactly are rejected, never rounded: a parse that succeeds
// is lossless.
package amount

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Code identifies why a parse was rejected. The values are stable and
// machine-readable; callers switch on them to produce per-cause messages.
type Code string

const (
	// CodeEmptyString: the input was empty, whitespace, or nothing but
	// grouping separators.
	CodeEmptyString Code = "EMPTY_STRING"

	// CodeInvalidFormat: the input does not match the accepted decimal
	// grammar (stray characters, multiple decimal points, misplaced
	// grouping separators, bare "." forms).
	CodeInvalidFormat Code = "INVALID_FORMAT"

	// CodeNegativeAmount: the input carries a minus sign. Reported
	// separately from CodeInvalidFormat so callers can say "amounts must
	// be positive" instead of "bad format".
	CodeNegativeAmount Code = "NEGATIVE_AMOUNT"

	// CodeExcessivePrecision: the input has more fractional digits than
	// the token supports. Truncating would silently move a different
	// amount than the user asked for, so it is an error.
	CodeExcessivePrecision Code = "EXCESSIVE_PRECISION"

	// CodeInvalidDecimals: the decimals argument was negative. This is a
	// caller bug, not a user-input problem.
	CodeInvalidDecimals Code = "INVALID_DECIMALS"

	// CodeScientificNotation: the input uses scientific notation, which
	// has no unambiguous exact base-unit value.
	CodeScientificNotation Code = "SCIENTIFIC_NOTATION_PRECISION"
)

// ParseError is the failure result of Parse. Code is stable; Message is
// human-readable.
type ParseError struct {
	Code    Code
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("amount: %s (%s)", e.Message, e.Code)
}

// Is reports whether target is a *ParseError with the same code, so
// errors.Is(err, &ParseError{Code: CodeEmptyString}) works.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	return ok && t.Code == e.Code
}

// CodeOf extracts the reason code from an error returned by Parse,
// unwrapping as needed. Returns "" if no ParseError is in the chain.
func CodeOf(err error) Code {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

func errf(code Code, format string, args ...any) *ParseError {
	return &ParseError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Parse converts a human-readable decimal string to base units for a
// token with the given number of decimals. "2.01" at 6 decimals is
// 2010000; "1,000.50" at 6 decimals is 1000500000.
//
// Accepted grammar: digits, optionally with "," separators between digit
// groups in the integer part, optionally followed by "." and one or more
// fractional digits. No sign, no exponent, no bare "." forms ("5." and
// ".5" are rejected). Surrounding whitespace is ignored. More fractional
// digits than decimals is an error, not a rounding.
//
// The returned value is always >= 0 and exact.
func Parse(s string, decimals int) (*big.Int, error) {
	if decimals < 0 {
		return nil, errf(CodeInvalidDecimals, "decimals must be >= 0, got %d", decimals)
	}

	s = strings.TrimSpace(s)

	// Separator-only input reads as "nothing was entered", same as empty.
	if strings.Trim(s, ",") == "" {
		return nil, errf(CodeEmptyString, "amount is empty")
	}

	// Specific rejections before the generic grammar check, so the caller
	// hears "negative" or "scientific notation" rather than "bad format".
	if strings.HasPrefix(s, "-") {
		return nil, errf(CodeNegativeAmount, "amount must not be negative: %q", s)
	}
	if strings.ContainsAny(s, "eE") {
		return nil, errf(CodeScientificNotation,
			"scientific notation is not supported, write the amount in full: %q", s)
	}

	intPart, fracPart, err := splitParts(s)
	if err != nil {
		return nil, err
	}

	if len(fracPart) > decimals {
		return nil, errf(CodeExcessivePrecision,
			"%d fractional digits exceed the token's %d decimals", len(fracPart), decimals)
	}

	// Right-pad the fraction to exactly `decimals` digits and read the
	// concatenation as one base-10 integer. Pure digit shuffling: the
	// value never touches a float.
	digits := intPart + fracPart + strings.Repeat("0", decimals-len(fracPart))

	units, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		// Unreachable after grammar validation; kept as a hard stop so a
		// grammar bug can never fabricate an amount.
		return nil, errf(CodeInvalidFormat, "not a valid amount: %q", s)
	}
	return units, nil
}

// splitParts validates the grammar and returns the integer digits with
// grouping separators removed, and the fractional digits ("" if none).
func splitParts(s string) (intPart, fracPart string, err error) {
	head := s
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		head, fracPart = s[:dot], s[dot+1:]
		if head == "" || fracPart == "" {
			// "5." and ".5" are ambiguous shorthand, rejected.
			return "", "", errf(CodeInvalidFormat, "not a valid amount: %q", s)
		}
		if !allDigits(fracPart) {
			return "", "", errf(CodeInvalidFormat, "not a valid amount: %q", s)
		}
	}

	// Integer part: digit groups separated by single commas. Leading,
	// trailing, or doubled separators are malformed.
	for _, group := range strings.Split(head, ",") {
		if group == "" || !allDigits(group) {
			return "", "", errf(CodeInvalidFormat, "not a valid amount: %q", s)
		}
	}

	return strings.ReplaceAll(head, ",", ""), fracPart, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Format converts base units back to the canonical human-readable string:
// minimal form, no grouping separators, no trailing fraction zeros, a
// single "0" integer digit for values below one. Format(Parse(s, d), d)
// re-parses to the same base units for every valid s.
//
// units must be >= 0; a nil value formats as zero. Negative input is a
// caller bug and the output for it is unspecified.
func Format(units *big.Int, decimals int) string {
	if units == nil {
		return "0"
	}

	digits := units.String()
	if decimals == 0 {
		return digits
	}

	// Left-pad so there is always at least one integer digit.
	if len(digits) < decimals+1 {
		digits = strings.Repeat("0", decimals+1-len(digits)) + digits
	}

	split := len(digits) - decimals
	intPart, fracPart := digits[:split], digits[split:]

	fracPart = strings.TrimRight(fracPart, "0")
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}
