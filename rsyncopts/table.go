// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncopts

func flag(field string, short byte, negatable bool, aliases ...string) Spec {
	return Spec{Field: field, Short: short, Negatable: negatable, Kind: KindFlag, Aliases: aliases}
}

func incr(field string, short byte, aliases ...string) Spec {
	return Spec{Field: field, Short: short, Kind: KindIncr, Aliases: aliases}
}

func str(field string, short byte, aliases ...string) Spec {
	return Spec{Field: field, Short: short, Kind: KindString, Aliases: aliases}
}

func integer(field string, short byte, aliases ...string) Spec {
	return Spec{Field: field, Short: short, Kind: KindInt, Aliases: aliases}
}

func size(field string, short byte, defaultSuffix byte, aliases ...string) Spec {
	return Spec{Field: field, Short: short, Kind: KindSize, SizeDefaultSuffix: defaultSuffix, Aliases: aliases}
}

func manual(field string, short byte, negatable bool, kind Kind, setter ManualSetter, aliases ...string) Spec {
	return Spec{Field: field, Short: short, Negatable: negatable, Kind: kind, Manual: setter, Aliases: aliases}
}

// withNegate attaches a ManualNegate override to a Spec built by manual(),
// for the rare manual entry whose negation touches different state than
// its setter.
func withNegate(s Spec, negate ManualSetter) Spec {
	s.ManualNegate = negate
	return s
}

// table is the declarative option grammar: the reference tool's ~150
// long/short options, their aliases, negations, value kinds, and the
// handful of manual overrides whose semantics a generic setter cannot
// express. Every entry here is one row of spec.md §4.2's option table;
// the field name is also the key used by Options' Get*/Set* accessors.
var table = []Spec{
	// Archive and the flags it implies.
	manual("archive", 'a', false, KindFlag, setArchive),
	flag("recursive", 'r', true),
	flag("relative", 'R', true),
	flag("implied_dirs", 0, true),
	flag("backup", 'b', true),
	str("backup_dir", 0),
	str("suffix", 0),
	flag("update", 'u', false),
	flag("inplace", 0, false),
	manual("append", 0, false, KindFlag, setAppend),
	flag("append_verify", 0, false),
	flag("dirs", 'd', true),
	flag("links", 'l', true),
	flag("copy_links", 'L', false),
	flag("copy_unsafe_links", 0, false),
	flag("safe_links", 0, false),
	flag("copy_dirlinks", 'k', false),
	flag("keep_dirlinks", 'K', false),
	flag("hard_links", 'H', false),
	flag("perms", 'p', true),
	flag("executability", 'E', false),
	manual("acls", 'A', false, KindFlag, setAcls),
	flag("xattrs", 'X', true),
	str("chmod", 0),
	flag("owner", 'o', true),
	flag("group", 'g', true),
	flag("devices", 0, true),
	flag("specials", 0, true),
	withNegate(manual("D", 'D', true, KindFlag, setD), unsetD),
	flag("times", 't', true),
	flag("omit_dir_times", 'O', false),
	flag("omit_link_times", 'J', false),
	flag("super", 0, true),
	flag("fake_super", 0, false),
	flag("sparse", 'S', false),
	flag("preallocate", 0, false),
	flag("dry_run", 'n', false),
	flag("whole_file", 'W', true),
	str("checksum_choice", 0, "cc"),
	flag("one_file_system", 'x', true),
	integer("block_size", 'B'),
	str("rsh", 'e'),
	str("rsync_path", 0),
	flag("existing", 0, false, "ignore-non-existing"),
	flag("ignore_existing", 0, false),
	flag("remove_source_files", 0, false),
	flag("delete", 0, false),
	flag("delete_before", 0, false),
	flag("delete_during", 0, false, "del"),
	flag("delete_delay", 0, false),
	flag("delete_after", 0, false),
	flag("delete_excluded", 0, false),
	flag("ignore_missing_args", 0, false),
	flag("delete_missing_args", 0, false),
	flag("ignore_errors", 0, false),
	flag("force", 0, false),
	integer("max_delete", 0),
	size("max_size", 0, 'b'),
	size("min_size", 0, 'b'),
	manual("partial", 0, false, KindFlag, setPartial),
	str("partial_dir", 0),
	flag("delay_updates", 0, false),
	flag("prune_empty_dirs", 'm', false),
	flag("numeric_ids", 0, true),
	manual("usermap", 0, false, KindString, setUsermap),
	manual("groupmap", 0, false, KindString, setGroupmap),
	manual("chown", 0, false, KindString, setChown),
	integer("timeout", 0),
	integer("contimeout", 0),
	flag("ignore_times", 'I', false),
	flag("size_only", 0, false),
	integer("modify_window", '@'),
	str("temp_dir", 'T'),
	flag("fuzzy", 'y', false),
	manual("compare_dest", 0, false, KindString, setCompareDest),
	manual("copy_dest", 0, false, KindString, setCopyDest),
	manual("link_dest", 0, false, KindString, setLinkDest),
	flag("compress", 'z', false),
	integer("compress_level", 0),
	str("skip_compress", 0),
	flag("cvs_exclude", 'C', false),
	manual("filter", 'f', false, KindString, setFilter),
	manual("exclude", 0, false, KindString, setExclude),
	manual("exclude_from", 0, false, KindString, setExcludeFrom),
	manual("include", 0, false, KindString, setInclude),
	manual("include_from", 0, false, KindString, setIncludeFrom),
	str("files_from", 0),
	flag("from0", '0', false),
	flag("protect_args", 's', true),
	str("address", 0),
	integer("port", 0),
	str("sockopts", 0),
	flag("blocking_io", 0, true),
	flag("stats", 0, false),
	flag("progress", 0, false),
	flag("human_readable", 'h', true),
	incr("itemize_changes", 'i'),
	str("out_format", 0),
	str("log_file", 0),
	str("log_file_format", 0),
	str("password_file", 0),
	flag("list_only", 0, false),
	size("bwlimit", 0, 'K'),
	str("outbuf", 0),
	manual("write_batch", 0, false, KindString, setWriteBatch),
	manual("only_write_batch", 0, false, KindString, setOnlyWriteBatch),
	manual("read_batch", 0, false, KindString, setReadBatch),
	integer("protocol", 0),
	str("iconv", 0),
	integer("checksum_seed", 0),
	flag("no_detach", 0, false),
	flag("daemon", 0, false),
	str("config", 0),
	flag("motd", 0, true),
	str("dparam", 0, "M"),
	str("early_input", 0),
	manual("remote_option", 0, false, KindString, setRemoteOption, "remote-options"),
	incr("verbose", 'v'),
	flag("quiet", 'q', false),
	flag("checksum", 'c', false),
	flag("version", 0, false),
	flag("help", 0, false),
	flag("8_bit_output", '8', false),
	flag("no_motd", 0, false),
	flag("old_args", 0, false),
	flag("secluded_args", 0, false),
	flag("atimes", 'U', false),
	flag("crtimes", 'N', false),
	flag("open_noatime", 0, false),
	flag("copy_devices", 0, false),
	flag("write_devices", 0, false),
	flag("mkpath", 0, false),
	flag("stop_after", 0, false),
	flag("stop_at", 0, false),
	flag("trust_sender", 0, false),
	flag("server", 0, false),
	flag("sender", 0, false),
	manual("f_merge", 'F', false, KindFlag, setF),
}

var byField map[string]*Spec
var byLongName map[string]*Spec
var byShort map[byte]*Spec

func init() {
	byField = make(map[string]*Spec, len(table))
	byLongName = make(map[string]*Spec, len(table)*2)
	byShort = make(map[byte]*Spec, len(table))

	for i := range table {
		spec := &table[i]
		byField[spec.Field] = spec
		byLongName[normalizeName(spec.Field)] = spec
		for _, alias := range spec.Aliases {
			byLongName[normalizeName(alias)] = spec
		}
		if spec.Short != 0 {
			byShort[spec.Short] = spec
		}
	}
}

// normalizeName folds hyphens to underscores so "--one-file-system" and
// "--one_file_system" resolve identically, per spec.md §4.2.
func normalizeName(name string) string {
	b := []byte(name)
	for i, c := range b {
		if c == '-' {
			b[i] = '_'
		}
	}
	return string(b)
}
