package resolve

// Fuzz records and paths.  Resolve and then verify that every
// location is real and writable.

import (
	"math/rand"
	"testing"
)

// Fuzz has parameters used to generate random records.
type Fuzz struct {
	MapWidth    int
	ArrayWidth  int
	Alphabet    string
	StringWidth int
	MaxNumber   float64

	Nils    float64
	Strings float64
	Bools   float64
	Numbers float64
	Arrays  float64
	Maps    float64

	// generated counts the number of values generated.
	generated int64
}

// NewFuzz returns a reasonable, general-purpose Fuzz.
//
// The alphabet is tiny on purpose: path segments drawn from it then
// actually hit keys in the generated records.
func NewFuzz() *Fuzz {
	return &Fuzz{
		MapWidth:    4,
		ArrayWidth:  4,
		Alphabet:    "abc",
		StringWidth: 2,
		MaxNumber:   10,

		Nils:    1,
		Strings: 2,
		Bools:   1,
		Numbers: 2,
		Arrays:  3,
		Maps:    4,
	}
}

// Gen generates a random record fragment.
func (f *Fuzz) Gen(r *rand.Rand, d int) interface{} {
	f.generated++

	m := f.Strings + f.Bools + f.Numbers + f.Nils

	if 0 < d {
		m += f.Arrays + f.Maps
	}

	t := r.Float64() * m
	if t < f.Strings {
		return f.genString(r)
	} else if t < f.Strings+f.Bools {
		return 0 == r.Intn(2)
	} else if t < f.Strings+f.Bools+f.Numbers {
		return float64(r.Intn(int(f.MaxNumber)))
	} else if t < f.Strings+f.Bools+f.Numbers+f.Nils {
		return nil
	} else if t < f.Strings+f.Bools+f.Numbers+f.Nils+f.Arrays {
		return f.genArray(r, d-1)
	} else {
		return f.genMap(r, d-1)
	}
}

func (f *Fuzz) genString(r *rand.Rand) string {
	n := r.Intn(f.StringWidth) + 1
	s := make([]byte, n)
	for i := range s {
		s[i] = f.Alphabet[r.Intn(len(f.Alphabet))]
	}
	return string(s)
}

func (f *Fuzz) genArray(r *rand.Rand, d int) interface{} {
	xs := make([]interface{}, r.Intn(f.ArrayWidth))
	for i := range xs {
		xs[i] = f.Gen(r, d)
	}
	return xs
}

func (f *Fuzz) genMap(r *rand.Rand, d int) interface{} {
	n := r.Intn(f.MapWidth)
	m := make(map[string]interface{}, n)
	for i := 0; i < n; i++ {
		m[f.genString(r)] = f.Gen(r, d)
	}
	return m
}

func (f *Fuzz) genPath(r *rand.Rand) Path {
	n := r.Intn(3) + 1
	p := make(Path, n)
	for i := range p {
		p[i] = f.genString(r)
	}
	return p
}

// TestResolveFuzz resolves a bunch of random paths against a bunch of
// random records.
//
// Verifies that every returned location is present in its container,
// that resolution is repeatable, and that writing through a location
// doesn't change the set of addressed locations.
func TestResolveFuzz(t *testing.T) {
	var (
		docs        = 2000
		pathsPerDoc = 50

		d = 4
		r = rand.New(rand.NewSource(42))
		f = NewFuzz()

		attempted = 0
		resolved  = 0
	)

	for i := 0; i < docs; i++ {
		doc := f.Gen(r, d)
		for j := 0; j < pathsPerDoc; j++ {
			path := f.genPath(r)
			locs, err := Resolve(doc, path)
			if err != nil {
				t.Fatal(err)
			}
			attempted++
			if 0 == len(locs) {
				continue
			}
			resolved++

			for _, loc := range locs {
				if _, have := loc.Container[loc.Key]; !have {
					t.Fatalf("location key %q not in container", loc.Key)
				}
			}

			again, err := Resolve(doc, path)
			if err != nil {
				t.Fatal(err)
			}
			if len(again) != len(locs) {
				t.Fatalf("unstable resolution: %d then %d", len(locs), len(again))
			}

			for _, loc := range locs {
				loc.Set(loc.Get())
			}
			after, err := Resolve(doc, path)
			if err != nil {
				t.Fatal(err)
			}
			if len(after) != len(locs) {
				t.Fatalf("write changed resolution: %d then %d", len(locs), len(after))
			}
		}
	}

	if resolved == 0 {
		t.Fatalf("fuzz too weak: nothing resolved in %d attempts", attempted)
	}
}
