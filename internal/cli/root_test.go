package cli

import "testing"

func TestSplitOwnerRepo(t *testing.T) {
	tests := []struct {
		arg     string
		owner   string
		repo    string
		wantErr bool
	}{
		{arg: "bob/widgets", owner: "bob", repo: "widgets"},
		{arg: "org/deep/name", owner: "org", repo: "deep/name"},
		{arg: "nodelimiter", wantErr: true},
		{arg: "/widgets", wantErr: true},
		{arg: "bob/", wantErr: true},
		{arg: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			owner, repo, err := splitOwnerRepo(tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("splitOwnerRepo(%q) expected error", tt.arg)
				}
				return
			}
			if err != nil {
				t.Fatalf("splitOwnerRepo(%q): %v", tt.arg, err)
			}
			if owner != tt.owner || repo != tt.repo {
				t.Errorf("splitOwnerRepo(%q) = %s/%s, want %s/%s", tt.arg, owner, repo, tt.owner, tt.repo)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		arg     string
		want    int64
		wantErr bool
	}{
		{arg: "5", want: 5},
		{arg: "1234", want: 1234},
		{arg: "0", wantErr: true},
		{arg: "-3", wantErr: true},
		{arg: "abc", wantErr: true},
		{arg: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseNumber(tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseNumber(%q) expected error", tt.arg)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseNumber(%q): %v", tt.arg, err)
			}
			if got != tt.want {
				t.Errorf("parseNumber(%q) = %d, want %d", tt.arg, got, tt.want)
			}
		})
	}
}
