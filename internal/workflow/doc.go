// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package workflow provides the in-memory representation of a deserialized
// workflow bundle. Its core purpose is to give the rest of the application a
// strongly-typed model of a workflow description, decoupled from the YAML
// text it was parsed from and from the archive it was shipped in.
//
// # Core Concepts
//
// The model is built around a few key structures:
//
//   - Description: The root container for one loaded workflow. It aggregates
//     the workflow-level properties and the ordered list of units.
//
//   - Unit: One node of the workflow graph. A unit has a name and a table of
//     properties; a later subsystem uses both to construct the executable
//     counterpart of the unit.
//
//   - PropertyValue: A closed set of value shapes a property can take. The
//     loader only ever produces two of them: plain strings for inline
//     scalars, and float arrays for properties that referenced an external
//     binary payload.
//
// Unit order is significant. It reflects the order units appeared in the
// source description, which downstream graph reconstruction relies on.
package workflow
