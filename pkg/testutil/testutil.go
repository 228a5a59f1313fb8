// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package testutil contains helpers shared by this module's tests.
package testutil

import (
	"reflect"
	"strings"
	"testing"
	"testing/quick"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
)

var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// AssertEqualText compares two multi-line strings and, on mismatch, fails the
// test with a unified diff instead of testify's one-line mismatch dump.
func AssertEqualText(t *testing.T, exp, act string) bool {
	t.Helper()
	if exp == act {
		return true
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(exp),
		B:        difflib.SplitLines(act),
		FromFile: "Expected",
		ToFile:   "Actual",
		Context:  2,
	})
	t.Errorf("Not equal:\n%s", diff)
	return false
}

// AssertEqual is assert.Equal, but renders mismatches as a unified diff of
// spew dumps, which reads much better for nested structs.
func AssertEqual(t *testing.T, exp, act interface{}) bool {
	t.Helper()
	if reflect.DeepEqual(exp, act) {
		return true
	}
	return AssertEqualText(t,
		strings.TrimSuffix(spewConfig.Sdump(exp), "\n")+"\n",
		strings.TrimSuffix(spewConfig.Sdump(act), "\n")+"\n")
}

// QuickCheck is testing/quick.Check plus a list of static inputs that the
// property must also hold for.
func QuickCheck(t *testing.T, property interface{}, cfg quick.Config, static ...[]interface{}) {
	t.Helper()
	assert.NoError(t, quick.Check(property, &cfg))

	propertyVal := reflect.ValueOf(property)
	for i, inputs := range static {
		if len(inputs) != propertyVal.Type().NumIn() {
			t.Errorf("static#%d has %d args, but the property takes %d args",
				i, len(inputs), propertyVal.Type().NumIn())
			continue
		}
		args := make([]reflect.Value, len(inputs))
		for j := range args {
			args[j] = reflect.ValueOf(inputs[j])
		}
		if !propertyVal.Call(args)[0].Bool() {
			t.Errorf("static#%d failed on input %v", i, inputs)
		}
	}
}
