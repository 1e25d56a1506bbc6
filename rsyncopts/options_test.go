// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncopts

import "testing"

func TestArgvEndToEnd(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"-avxH", "--delete"}); err != nil {
		t.Fatal(err)
	}

	want := map[string]bool{
		"recursive": true, "owner": true, "group": true, "perms": true,
		"times": true, "devices": true, "specials": true, "links": true,
		"verbose": true, "one_file_system": true, "hard_links": true,
		"delete": true,
	}
	for field, expect := range want {
		if got := o.GetBool(field); got != expect {
			t.Errorf("%s: got %v, want %v", field, got, expect)
		}
	}

	defaults := map[string]bool{
		"motd": true, "implied_dirs": true, "human_readable": true, "inc_recursive": true,
	}
	for field, expect := range defaults {
		if got := o.GetBool(field); got != expect {
			t.Errorf("default %s: got %v, want %v", field, got, expect)
		}
	}
}

func TestPositionalArguments(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"-a", "src/", "dest/"}); err != nil {
		t.Fatal(err)
	}
	if o.Source != "src/" || o.Dest != "dest/" {
		t.Fatalf("got source=%q dest=%q", o.Source, o.Dest)
	}
}

func TestTooManyPositionalsFails(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"a", "b", "c"}); err == nil {
		t.Fatal("expected error for 3 positional arguments")
	}
}

func TestUnknownLongOptionFails(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"--not-a-real-option"}); err == nil {
		t.Fatal("expected error for unknown option")
	}
}

func TestUnknownShortOptionFails(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"-Q"}); err == nil {
		t.Fatal("expected error for unknown short option")
	}
}

func TestNegationForm(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"-a", "--no-times"}); err != nil {
		t.Fatal(err)
	}
	if o.GetBool("times") {
		t.Fatal("expected times=false after --no-times")
	}
	// archive still forces the rest on.
	if !o.GetBool("perms") {
		t.Fatal("expected perms still true")
	}
}

func TestArchiveDoesNotOverrideExplicitNoRecursive(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"--no-recursive", "-a"}); err != nil {
		t.Fatal(err)
	}
	if o.GetBool("recursive") {
		t.Fatal("expected recursive to remain false: archive must not override an explicit --no-recursive")
	}
}

func TestLongOptionWithValue(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"--checksum-choice=md5"}); err != nil {
		t.Fatal(err)
	}
	if o.GetString("checksum_choice") != "md5" {
		t.Fatalf("got %q", o.GetString("checksum_choice"))
	}
}

func TestLongOptionValueFromNextArg(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"--port", "1234"}); err != nil {
		t.Fatal(err)
	}
	if o.GetInt("port") != 1234 {
		t.Fatalf("got %d", o.GetInt("port"))
	}
}

func TestStrayPositionalBeforeOptionFails(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"srcfile", "-r"}); err == nil {
		t.Fatal("expected error: a stray non-option before an option is fatal")
	}
}

func TestLongOptionMissingValueFails(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"--port", "--verbose"}); err == nil {
		t.Fatal("expected error: --port followed by another option, not a value")
	}
}

func TestDoubleDashEndsOptions(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"-a", "--", "-weird-name", "dest"}); err != nil {
		t.Fatal(err)
	}
	if o.Source != "-weird-name" || o.Dest != "dest" {
		t.Fatalf("got source=%q dest=%q", o.Source, o.Dest)
	}
}

func TestIncrementer(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"-vvv"}); err != nil {
		t.Fatal(err)
	}
	if o.GetInt("verbose") != 3 {
		t.Fatalf("got verbose=%d, want 3", o.GetInt("verbose"))
	}
}

func TestArchiveForcesExpectedFlags(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"--archive"}); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"recursive", "links", "perms", "times", "group", "owner", "devices", "specials"} {
		if !o.GetBool(f) {
			t.Errorf("--archive should set %s", f)
		}
	}
}

func TestCombinedDToggle(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"-D"}); err != nil {
		t.Fatal(err)
	}
	if !o.GetBool("devices") || !o.GetBool("specials") {
		t.Fatal("-D should set both devices and specials")
	}
}

func TestNoDClearsDevicesAndSpecials(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"--archive", "--no-D"}); err != nil {
		t.Fatal(err)
	}
	if o.GetBool("devices") || o.GetBool("specials") {
		t.Fatal("expected devices and specials false after --archive --no-D")
	}
}

func TestFilterFTwice(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"-F", "-F"}); err != nil {
		t.Fatal(err)
	}
	want := []string{": /.rsync-filter", "- .rsync-filter"}
	if len(o.Filters) != len(want) {
		t.Fatalf("got filters %v, want %v", o.Filters, want)
	}
	for i := range want {
		if o.Filters[i] != want[i] {
			t.Errorf("filters[%d] = %q, want %q", i, o.Filters[i], want[i])
		}
	}
}

func TestPartialTruthyForcesProgress(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"--partial"}); err != nil {
		t.Fatal(err)
	}
	if !o.GetBool("partial") || !o.GetBool("progress") {
		t.Fatal("--partial should force progress=true")
	}
}

func TestAppendSemanticsClientVsServer(t *testing.T) {
	client := New()
	if err := Apply(client, []string{"--append", "--append"}); err != nil {
		t.Fatal(err)
	}
	if client.GetInt("append") != 1 {
		t.Fatalf("client --append --append should stay 1, got %d", client.GetInt("append"))
	}

	server := New()
	server.ServerSession = true
	if err := Apply(server, []string{"--append", "--append"}); err != nil {
		t.Fatal(err)
	}
	if server.GetInt("append") != 2 {
		t.Fatalf("server --append --append should count to 2, got %d", server.GetInt("append"))
	}
}

func TestLinkDestAppendsBasisDir(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"--link-dest=/backup"}); err != nil {
		t.Fatal(err)
	}
	if len(o.BasisDirs) != 1 || o.BasisDirs[0] != "/backup" {
		t.Fatalf("got %v", o.BasisDirs)
	}
	if !o.GetBool("link_dest") {
		t.Fatal("expected link_dest flag set")
	}
}

func TestChownSetsUsermapAndGroupmap(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"--chown=alice:wheel"}); err != nil {
		t.Fatal(err)
	}
	if o.GetString("usermap") != "*:alice" {
		t.Fatalf("usermap = %q", o.GetString("usermap"))
	}
	if o.GetString("groupmap") != "*:wheel" {
		t.Fatalf("groupmap = %q", o.GetString("groupmap"))
	}
}

func TestUsermapRejectsSecondAssignment(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"--usermap=a:b"}); err != nil {
		t.Fatal(err)
	}
	if err := Apply(o, []string{"--usermap=c:d"}); err == nil {
		t.Fatal("expected error on second --usermap")
	}
}

func TestRemoteOptionRequiresLeadingDash(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"--remote-option=bogus"}); err == nil {
		t.Fatal("expected error: remote-option value must start with '-'")
	}
}

func TestRemoteOptionAppendsWithReservedSlot(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"--remote-option=-v", "--remote-option=-x"}); err != nil {
		t.Fatal(err)
	}
	want := []string{"", "-v", "-x"}
	if len(o.RemoteOptions) != len(want) {
		t.Fatalf("got %v, want %v", o.RemoteOptions, want)
	}
	for i := range want {
		if o.RemoteOptions[i] != want[i] {
			t.Errorf("RemoteOptions[%d] = %q, want %q", i, o.RemoteOptions[i], want[i])
		}
	}
}

func TestMakeCoherentNoneForcesWholeFile(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"--checksum-choice=none"}); err != nil {
		t.Fatal(err)
	}
	if !o.GetBool("whole_file") {
		t.Fatal("checksum_choice=none should force whole_file=true")
	}
}

func TestMakeCoherentInvalidChecksumChoice(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"--checksum-choice=bogus"}); err == nil {
		t.Fatal("expected error for invalid checksum_choice")
	}
}

func TestSizeOptionTable(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"10", 10},
		{"10b", 10},
		{"10kb", 10000},
		{"10mb", 10000000},
		{"2gb", 2000000000},
		{"2.13gb", 2130000000},
		{"2K", 2048},
		{"2M", 2097152},
		{"2G", 2147483648},
		{"2GiB", 2147483648},
	}
	for _, c := range cases {
		got, err := ParseSize(c.in, 'b')
		if err != nil {
			t.Errorf("ParseSize(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseSize(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestSizeOptionPlusMinusOneAdjustment(t *testing.T) {
	got, err := ParseSize("10kb+1", 'b')
	if err != nil {
		t.Fatal(err)
	}
	if got != 10001 {
		t.Fatalf("got %d, want 10001", got)
	}

	got, err = ParseSize("10kb-1", 'b')
	if err != nil {
		t.Fatal(err)
	}
	if got != 9999 {
		t.Fatalf("got %d, want 9999", got)
	}
}

func TestBwlimitDefaultsToK(t *testing.T) {
	o := New()
	if err := Apply(o, []string{"--bwlimit=2"}); err != nil {
		t.Fatal(err)
	}
	if o.GetInt("bwlimit") != 2048 {
		t.Fatalf("got %d, want 2048 (default suffix K)", o.GetInt("bwlimit"))
	}
}

// TestEveryOptionApplies exercises spec.md §8's "option property": every
// table entry accepts a representative value without error.
func TestEveryOptionApplies(t *testing.T) {
	for _, spec := range table {
		o := New()
		var argv []string
		name := "--" + spec.Field
		switch spec.Kind {
		case KindString:
			val := "x"
			switch spec.Field {
			case "remote_option":
				val = "-v"
			case "checksum_choice":
				val = "md5"
			}
			argv = []string{name + "=" + val}
		case KindInt:
			argv = []string{name + "=1"}
		case KindSize:
			argv = []string{name + "=10"}
		default:
			argv = []string{name}
		}
		if err := Apply(o, argv); err != nil {
			t.Errorf("applying %v: %v", argv, err)
		}
	}
}
