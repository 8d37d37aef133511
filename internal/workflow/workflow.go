// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Description structure, the root container for one
// deserialized workflow bundle.
//
// Why have a Description?
//
// Loading a bundle and constructing a runnable workflow are separate
// subsystems. The Description is the hand-off point between them: it holds
// everything the constructor needs (unit names, resolved properties, unit
// order) while staying completely independent of the scratch directory the
// bundle was extracted into, which is deleted before the Description is
// returned to the caller.
package workflow

import (
	"fmt"
	"sort"
	"strings"
)

// Unit describes one node of the workflow graph: its name plus the table of
// properties needed to construct it. The loader never mutates a Unit after
// appending it to a Description.
type Unit struct {
	Name       string
	Properties PropertyTable
}

// Description describes a complete workflow: workflow-level properties and
// the units in their original source order.
type Description struct {
	Properties PropertyTable
	Units      []Unit
}

// NewDescription creates and returns an initialized, empty Description.
func NewDescription() *Description {
	return &Description{
		Properties: PropertyTable{},
	}
}

// Structure renders the workflow layout as human-readable text: the
// workflow-level properties followed by every unit with its properties.
// Property names are sorted for stable output; units keep their load order.
func (d *Description) Structure() string {
	var b strings.Builder
	b.WriteString("Workflow properties:\n")
	writeTable(&b, d.Properties)
	for _, unit := range d.Units {
		fmt.Fprintf(&b, "Unit: %s\n", unit.Name)
		writeTable(&b, unit.Properties)
	}
	return b.String()
}

func writeTable(b *strings.Builder, table PropertyTable) {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(b, "  %s = %s\n", name, table[name].Summary())
	}
}
