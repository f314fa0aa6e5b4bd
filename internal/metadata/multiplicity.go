package metadata

// Multiplicity describes how many entities participate in an association end,
// using the CSDL attribute values.
type Multiplicity string

const (
	MultiplicityOne       Multiplicity = "1"
	MultiplicityMany      Multiplicity = "*"
	MultiplicityZeroOrOne Multiplicity = "0..1"
)

// ValidMultiplicity reports whether m is one of the three CSDL values.
func ValidMultiplicity(m Multiplicity) bool {
	switch m {
	case MultiplicityOne, MultiplicityMany, MultiplicityZeroOrOne:
		return true
	}
	return false
}
