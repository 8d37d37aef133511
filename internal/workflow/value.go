// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the closed set of property value shapes. The original
// serialization format allows a property to be either an inline scalar or a
// reference to a binary payload, so the model needs exactly two concrete
// shapes: string and float array. A sealed interface keeps that set closed
// at compile time instead of forcing callers through type-unsafe casts.
package workflow

import "fmt"

// PropertyValue is the value of a single workflow or unit property. It is a
// sealed interface: the only implementations are StringValue and
// FloatArrayValue, so a type switch over those two cases is exhaustive.
type PropertyValue interface {
	// isPropertyValue restricts implementations to this package.
	isPropertyValue()

	// Summary returns a short human-readable rendering of the value. Large
	// float arrays are summarized by element count rather than dumped.
	Summary() string
}

// StringValue is a property that was an inline scalar in the description.
type StringValue string

func (StringValue) isPropertyValue() {}

// Summary returns the scalar quoted.
func (v StringValue) Summary() string {
	return fmt.Sprintf("%q", string(v))
}

// FloatArrayValue is a property that referenced an external binary payload,
// decoded into IEEE-754 single-precision elements.
type FloatArrayValue []float32

func (FloatArrayValue) isPropertyValue() {}

// Summary reports only the element count; payloads routinely hold millions
// of weights and are not printable.
func (v FloatArrayValue) Summary() string {
	return fmt.Sprintf("float32[%d]", len(v))
}

// PropertyTable maps a property name to its value. Names are unique within
// one table; iteration order carries no meaning.
type PropertyTable map[string]PropertyValue
