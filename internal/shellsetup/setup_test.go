package shellsetup

import "testing"

func TestNormalizeShellName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"bash", "bash"},
		{"/bin/zsh", "zsh"},
		{"/usr/local/bin/fish", "fish"},
		{`"C:\Program Files\Git\bin\bash.exe"`, "bash"},
		{"'zsh'", "zsh"},
		{"  /bin/sh  ", "sh"},
		{"PowerShell.EXE", "powershell"},
	}
	for _, tc := range cases {
		if got := normalizeShellName(tc.in); got != tc.want {
			t.Fatalf("normalizeShellName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
