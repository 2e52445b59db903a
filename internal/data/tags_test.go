package data

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Computer Science", "computer-science"},
		{"Economics", "economics"},
		{"C++ & Go!", "c-go"},
		{"  leading and trailing  ", "leading-and-trailing"},
		{"Multiple---separators___here", "multiple-separators-here"},
		{"ALLCAPS", "allcaps"},
		{"1984", "1984"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Slugify(tt.name); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSlugifyIsDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := Slugify("Computer Science"); got != "computer-science" {
			t.Fatalf("slug changed between calls: %q", got)
		}
	}
}

func TestResolveSlug(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		taken []string
		want  string
	}{
		{"no collision", "computer-science", nil, "computer-science"},
		{"first collision", "computer-science", []string{"computer-science"}, "computer-science-2"},
		{"second collision", "computer-science", []string{"computer-science", "computer-science-2"}, "computer-science-3"},
		{"freed suffix is reused", "computer-science", []string{"computer-science", "computer-science-3"}, "computer-science-2"},
		// The store excludes the tag's own slug from the taken set on an
		// update, so renaming a tag to its current name keeps its slug even
		// when sibling suffixes exist.
		{"own slug excluded on rename", "computer-science", []string{"computer-science-2"}, "computer-science"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taken := make(map[string]bool, len(tt.taken))
			for _, slug := range tt.taken {
				taken[slug] = true
			}
			if got := resolveSlug(tt.base, taken); got != tt.want {
				t.Errorf("resolveSlug(%q, %v) = %q, want %q", tt.base, tt.taken, got, tt.want)
			}
		})
	}
}
