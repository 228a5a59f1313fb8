// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package rpm

// Vercmp compares two version strings with librpm's rpmvercmp algorithm
// (alternating alphabetic/numeric segments, "~" sorting before anything,
// numeric segments beating alphabetic ones).  It returns <0, 0, or >0.
//
// The translation tables in this package only make sense with respect to this
// ordering, so the tests use it to prove their sort properties.
func Vercmp(a, b string) int {
	ia, ib := 0, 0
	for {
		for ia < len(a) && !isVersionByte(a[ia]) {
			ia++
		}
		for ib < len(b) && !isVersionByte(b[ib]) {
			ib++
		}

		// "~" sorts before everything, the empty string included
		aTilde := ia < len(a) && a[ia] == '~'
		bTilde := ib < len(b) && b[ib] == '~'
		switch {
		case aTilde && bTilde:
			ia++
			ib++
			continue
		case aTilde:
			return -1
		case bTilde:
			return 1
		}

		if ia >= len(a) || ib >= len(b) {
			break
		}

		if isDigit(a[ia]) || isDigit(b[ib]) {
			// a numeric segment beats an alphabetic one
			if !isDigit(a[ia]) {
				return -1
			}
			if !isDigit(b[ib]) {
				return 1
			}
			segA, segB := "", ""
			for ia < len(a) && isDigit(a[ia]) {
				segA += string(a[ia])
				ia++
			}
			for ib < len(b) && isDigit(b[ib]) {
				segB += string(b[ib])
				ib++
			}
			if d := cmpNumeric(segA, segB); d != 0 {
				return d
			}
		} else {
			startA, startB := ia, ib
			for ia < len(a) && isAlpha(a[ia]) {
				ia++
			}
			for ib < len(b) && isAlpha(b[ib]) {
				ib++
			}
			segA, segB := a[startA:ia], b[startB:ib]
			switch {
			case segA < segB:
				return -1
			case segA > segB:
				return 1
			}
		}
	}

	// equal so far: whichever has segments left is newer
	switch {
	case ia >= len(a) && ib >= len(b):
		return 0
	case ia < len(a):
		return 1
	default:
		return -1
	}
}

func cmpNumeric(a, b string) int {
	for len(a) > 1 && a[0] == '0' {
		a = a[1:]
	}
	for len(b) > 1 && b[0] == '0' {
		b = b[1:]
	}
	if d := len(a) - len(b); d != 0 {
		return d
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }
func isAlpha(c byte) bool { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
func isVersionByte(c byte) bool {
	return isDigit(c) || isAlpha(c) || c == '~'
}
