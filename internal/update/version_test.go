package update

import (
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Version
		wantErr bool
	}{
		{
			name:  "four components",
			input: "8.2.0.7535",
			want:  Version{Major: 8, Minor: 2, Build: 0, Revision: 7535},
		},
		{
			name:  "surrounding whitespace",
			input: "  1.2.3.4\n",
			want:  Version{Major: 1, Minor: 2, Build: 3, Revision: 4},
		},
		{
			name:  "zero version",
			input: "0.0.0.0",
			want:  Version{},
		},
		{
			name:  "leading zeros",
			input: "01.002.3.04",
			want:  Version{Major: 1, Minor: 2, Build: 3, Revision: 4},
		},
		{name: "empty string", input: "", wantErr: true},
		{name: "three components", input: "1.2.3", wantErr: true},
		{name: "five components", input: "1.2.3.4.5", wantErr: true},
		{name: "negative component", input: "1.-2.3.4", wantErr: true},
		{name: "v prefix", input: "v1.2.3.4", wantErr: true},
		{name: "letters", input: "1.2.3.beta", wantErr: true},
		{name: "empty component", input: "1..3.4", wantErr: true},
		{name: "overflow", input: "1.2.3.99999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVersion(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseVersion(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVersion(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseVersion(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestVersionString(t *testing.T) {
	v := Version{Major: 9, Minor: 1, Build: 0, Revision: 7988}
	if got := v.String(); got != "9.1.0.7988" {
		t.Errorf("String() = %q, want %q", got, "9.1.0.7988")
	}
}

func TestVersionCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0.0", "1.0.0.0", 0},
		{"1.0.0.0", "2.0.0.0", -1},
		{"2.0.0.0", "1.9.9.9", 1},
		{"1.2.0.0", "1.10.0.0", -1},
		{"1.0.5.0", "1.0.4.9", 1},
		{"1.0.0.1", "1.0.0.2", -1},
		{"1.0.0.10", "1.0.0.9", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			a, _ := ParseVersion(tt.a)
			b, _ := ParseVersion(tt.b)
			if got := a.Compare(b); got != tt.want {
				t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func sampleVersions() []Version {
	var out []Version
	for _, s := range []string{
		"0.0.0.0", "0.0.0.1", "0.0.1.0", "0.1.0.0", "1.0.0.0",
		"1.2.3.4", "1.2.3.5", "1.2.4.0", "1.10.0.0", "8.2.0.7535", "9.0.0.0",
	} {
		v, err := ParseVersion(s)
		if err != nil {
			panic(err)
		}
		out = append(out, v)
	}
	return out
}

func TestVersionOrderIsStrictTotal(t *testing.T) {
	versions := sampleVersions()
	for _, a := range versions {
		for _, b := range versions {
			n := 0
			if a.LessThan(b) {
				n++
			}
			if a.Equal(b) {
				n++
			}
			if a.GreaterThan(b) {
				n++
			}
			if n != 1 {
				t.Errorf("%s vs %s: exactly one of <, ==, > should hold, got %d", a, b, n)
			}
			if a.Compare(b) != -b.Compare(a) {
				t.Errorf("Compare(%s, %s) is not antisymmetric", a, b)
			}
			for _, c := range versions {
				if a.LessThan(b) && b.LessThan(c) && !a.LessThan(c) {
					t.Errorf("ordering not transitive: %s < %s < %s", a, b, c)
				}
			}
		}
	}
}

func TestRunningVersion(t *testing.T) {
	tests := []struct {
		raw    string
		wantOK bool
	}{
		{"", false},
		{"dev", false},
		{"development", false},
		{"1.2.3", false},
		{"1.2.3.4", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, ok := RunningVersion(tt.raw)
			if ok != tt.wantOK {
				t.Errorf("RunningVersion(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
		})
	}
}
