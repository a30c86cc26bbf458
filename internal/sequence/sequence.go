// Package sequence formats and parses document numbers such as CB-014.
//
// Numbers are scoped per (company, year, kind). Allocation itself lives in
// repositories.SequenceRepository; this package only knows the format.
package sequence

import (
	"fmt"
	"regexp"
	"strconv"
)

// Kind is a numbered document type
type Kind string

const (
	KindCustomerBill Kind = "customer_bill"
	KindFarmerBill   Kind = "farmer_bill"
	KindSouda        Kind = "souda"
	KindReceipt      Kind = "receipt"
	KindPayment      Kind = "payment"
)

// Kinds lists every numbered document type
var Kinds = []Kind{KindCustomerBill, KindFarmerBill, KindSouda, KindReceipt, KindPayment}

// DefaultPrefixes are used when configuration does not override them
var DefaultPrefixes = Prefixes{
	KindCustomerBill: "CB",
	KindFarmerBill:   "FB",
	KindSouda:        "S",
	KindReceipt:      "R",
	KindPayment:      "P",
}

// MinDigits is the zero-padding width of the numeric suffix
const MinDigits = 3

var (
	prefixPattern = regexp.MustCompile(`^[A-Z]{1,3}$`)
	numberPattern = regexp.MustCompile(`^([A-Z]{1,3})-(\d+)$`)
)

// ParseKind validates a kind coming from a URL or flag
func ParseKind(value string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == value {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown document kind %q", value)
}

// ValidatePrefix checks that prefix is one to three upper-case letters
func ValidatePrefix(prefix string) error {
	if !prefixPattern.MatchString(prefix) {
		return fmt.Errorf("invalid document prefix %q: must be 1-3 upper-case letters", prefix)
	}
	return nil
}

// Format renders n under prefix, e.g. Format("S", 1) == "S-001"
func Format(prefix string, n int64) string {
	return fmt.Sprintf("%s-%0*d", prefix, MinDigits, n)
}

// Parse extracts the numeric suffix of number if it carries prefix.
// ok is false when number does not follow the PREFIX-digits pattern.
func Parse(prefix, number string) (n int64, ok bool) {
	m := numberPattern.FindStringSubmatch(number)
	if m == nil || m[1] != prefix {
		return 0, false
	}
	n, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextAfter returns the number that follows last, starting at 1 when last is
// empty or malformed
func NextAfter(prefix, last string) int64 {
	n, ok := Parse(prefix, last)
	if !ok {
		return 1
	}
	return n + 1
}

// Prefixes maps each kind to its document prefix
type Prefixes map[Kind]string

// For returns the prefix for kind, falling back to the default
func (p Prefixes) For(kind Kind) string {
	if prefix, ok := p[kind]; ok && prefix != "" {
		return prefix
	}
	return DefaultPrefixes[kind]
}

// Validate checks every configured prefix. Prefixes must also be distinct:
// receipts and payments share the cash book's voucher_no uniqueness, and a
// number such as V-001 must name one document only.
func (p Prefixes) Validate() error {
	owner := make(map[string]Kind, len(Kinds))
	for _, kind := range Kinds {
		prefix := p.For(kind)
		if err := ValidatePrefix(prefix); err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
		if other, taken := owner[prefix]; taken {
			return fmt.Errorf("%s: prefix %q already used by %s", kind, prefix, other)
		}
		owner[prefix] = kind
	}
	return nil
}

// Merge overlays non-empty overrides on the defaults
func Merge(overrides map[string]string) Prefixes {
	merged := Prefixes{}
	for kind, prefix := range DefaultPrefixes {
		merged[kind] = prefix
	}
	for key, prefix := range overrides {
		if prefix != "" {
			merged[Kind(key)] = prefix
		}
	}
	return merged
}
