// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncopts

import (
	"fmt"
	"strings"
)

// setArchive implements -a/--archive: forces recursive (only if it has
// not already been explicitly turned off by an earlier --no-recursive),
// links, perms, times, group, owner, devices and specials on.
func setArchive(o *Options, _ string) error {
	if _, explicit := o.strs["__recursive_explicit"]; !explicit {
		o.values["recursive"] = 1
	}
	o.values["links"] = 1
	o.values["perms"] = 1
	o.values["times"] = 1
	o.values["group"] = 1
	o.values["owner"] = 1
	o.values["devices"] = 1
	o.values["specials"] = 1
	return nil
}

// setD implements -D/--no-D, the combined devices+specials toggle.
func setD(o *Options, _ string) error {
	o.values["devices"] = 1
	o.values["specials"] = 1
	return nil
}

// unsetD implements --no-D's negation: clearing "devices" and "specials"
// directly, since neither is named "D" and the generic negation path
// would zero an unused field instead.
func unsetD(o *Options, _ string) error {
	o.values["devices"] = 0
	o.values["specials"] = 0
	return nil
}

// setAppend implements --append's role-dependent semantics: servers
// count appends (supporting --append --append-verify layering), clients
// only ever need the flag set.
func setAppend(o *Options, _ string) error {
	if o.ServerSession {
		o.values["append"]++
	} else {
		o.values["append"] = 1
	}
	return nil
}

// setAcls implements --acls, which also forces --perms.
func setAcls(o *Options, _ string) error {
	o.values["acls"] = 1
	o.values["perms"] = 1
	return nil
}

// setPartial implements --partial=X: a truthy X also turns on progress.
func setPartial(o *Options, value string) error {
	v := int64(1)
	if value != "" {
		if value == "0" || value == "false" || value == "no" {
			v = 0
		}
	}
	o.values["partial"] = v
	if v != 0 {
		o.values["progress"] = 1
	}
	return nil
}

// setUsermap and setGroupmap reject a second assignment; see DESIGN.md's
// resolution of spec.md §9 open question (a).
func setUsermap(o *Options, value string) error {
	if o.usermapSet {
		return fmt.Errorf("rsyncopts: --usermap may only be given once")
	}
	o.usermapSet = true
	o.strs["usermap"] = value
	return nil
}

func setGroupmap(o *Options, value string) error {
	if o.groupmapSet {
		return fmt.Errorf("rsyncopts: --groupmap may only be given once")
	}
	o.groupmapSet = true
	o.strs["groupmap"] = value
	return nil
}

// setChown implements --chown=u[:g], translating to usermap/groupmap
// entries the same way the reference chown helper does.
func setChown(o *Options, value string) error {
	user, group, hasGroup := strings.Cut(value, ":")
	if user != "" {
		if err := setUsermap(o, "*:"+user); err != nil {
			return err
		}
	}
	if hasGroup && group != "" {
		if err := setGroupmap(o, "*:"+group); err != nil {
			return err
		}
	}
	return nil
}

func appendBasisDir(o *Options, dir string, modeFlag string) error {
	o.BasisDirs = append(o.BasisDirs, dir)
	o.values[modeFlag] = 1
	return nil
}

func setCompareDest(o *Options, value string) error { return appendBasisDir(o, value, "compare_dest") }
func setCopyDest(o *Options, value string) error    { return appendBasisDir(o, value, "copy_dest") }
func setLinkDest(o *Options, value string) error    { return appendBasisDir(o, value, "link_dest") }

// normalizeFilterRule ensures a rule carries an explicit "+ "/"- " sign or
// a "merge," prefix, per spec.md §4.2's filter normalization rule.
func normalizeFilterRule(rule string) string {
	if rule == "" {
		return rule
	}
	if strings.HasPrefix(rule, "+ ") || strings.HasPrefix(rule, "- ") ||
		strings.HasPrefix(rule, "merge,") || strings.HasPrefix(rule, ": ") ||
		strings.HasPrefix(rule, ". ") {
		return rule
	}
	return "+ " + rule
}

func setFilter(o *Options, value string) error {
	o.Filters = append(o.Filters, value)
	return nil
}

func setExclude(o *Options, value string) error {
	o.Filters = append(o.Filters, "- "+value)
	return nil
}

func setInclude(o *Options, value string) error {
	o.Filters = append(o.Filters, "+ "+value)
	return nil
}

// setExcludeFrom and setIncludeFrom append a merge-directive filter rule
// naming the file rather than opening it: on-disk file reading is an
// external collaborator's job (spec.md §1's scope list), not the option
// processor's.
func setExcludeFrom(o *Options, value string) error {
	o.Filters = append(o.Filters, ".- "+value)
	return nil
}

func setIncludeFrom(o *Options, value string) error {
	o.Filters = append(o.Filters, ".+ "+value)
	return nil
}

// setF implements -F: first use adds a merge rule for .rsync-filter files,
// a second use additionally excludes the filter file itself from transfer.
func setF(o *Options, _ string) error {
	o.filterF++
	switch o.filterF {
	case 1:
		o.Filters = append(o.Filters, ": /.rsync-filter")
	case 2:
		o.Filters = append(o.Filters, "- .rsync-filter")
	}
	return nil
}

// setRemoteOption implements --remote-option=X (open question (b)):
// append to RemoteOptions, seeding a reserved leading empty slot
// (argv[0], conventionally unused by the remote side) on first use. X
// must begin with "-".
func setRemoteOption(o *Options, value string) error {
	if !strings.HasPrefix(value, "-") {
		return fmt.Errorf("rsyncopts: --remote-option value %q must begin with '-'", value)
	}
	if len(o.RemoteOptions) == 0 {
		o.RemoteOptions = append(o.RemoteOptions, "")
	}
	o.RemoteOptions = append(o.RemoteOptions, value)
	return nil
}

func setWriteBatch(o *Options, value string) error {
	o.strs["batch_name"] = value
	o.values["write_batch"] = 1
	return nil
}

func setOnlyWriteBatch(o *Options, value string) error {
	o.strs["batch_name"] = value
	o.values["write_batch"] = -1
	return nil
}

func setReadBatch(o *Options, value string) error {
	o.strs["batch_name"] = value
	o.values["read_batch"] = 1
	return nil
}
