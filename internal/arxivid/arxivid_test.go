package arxivid

import "testing"

func TestRegistryID(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"arXiv:2511.01234":  "10.48550/arXiv.2511.01234",
		"2511.01234":        "10.48550/2511.01234",
		"quant-ph/0101001":  "10.48550/quant-ph/0101001",
		"arXiv:2511.01234:": "10.48550/arXiv.2511.01234.",
	}
	for in, want := range cases {
		if got := RegistryID(in); got != want {
			t.Fatalf("RegistryID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAbsURL(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"arXiv:2511.01234": "https://arxiv.org/abs/2511.01234",
		"2511.01234":       "https://arxiv.org/abs/2511.01234",
		"":                 "https://arxiv.org/abs/",
	}
	for in, want := range cases {
		if got := AbsURL(in); got != want {
			t.Fatalf("AbsURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanonical(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"arXiv:2511.01234":                  "arXiv:2511.01234",
		" arxiv:2511.01234v2 ":              "arXiv:2511.01234",
		"http://arxiv.org/abs/2511.01234v1": "arXiv:2511.01234",
		"/abs/2511.01234":                   "arXiv:2511.01234",
		"quant-ph/0101001v3":                "arXiv:quant-ph/0101001",
		"   ":                               "",
	}
	for in, want := range cases {
		if got := Canonical(in); got != want {
			t.Fatalf("Canonical(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanDOI(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"10.1103/PhysRevA.111.012345":                 "10.1103/PhysRevA.111.012345",
		"https://doi.org/10.1103/PhysRevA.111.012345": "10.1103/PhysRevA.111.012345",
		"DOI:10.1038/s41586-025-00001-x.":             "10.1038/s41586-025-00001-x",
		"not a doi":                                   "",
		"":                                            "",
	}
	for in, want := range cases {
		if got := CleanDOI(in); got != want {
			t.Fatalf("CleanDOI(%q) = %q, want %q", in, got, want)
		}
	}
}
