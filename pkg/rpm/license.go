// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package rpm

// Fedora does not use SPDX identifiers in License: tags; this table maps the
// SPDX identifiers that show up in Python packaging to Fedora's tokens.  More
// pairs can be taken from appstream-glib's asb-package-rpm.c.
var licenseSPDX2Fedora = map[string]string{
	"Apache-1.1":   "ASL 1.1",
	"Apache-2.0":   "ASL 2.0",
	"BSD-3-Clause": "BSD",
	"GPL-1.0+":     "GPL+",
	"GPL-2.0":      "GPLv2",
	"GPL-2.0+":     "GPLv2+",
	"GPL-3.0":      "GPLv3",
	"GPL-3.0+":     "GPLv3+",
	"LGPL-2.1":     "LGPLv2.1",
	"LGPL-2.1+":    "LGPLv2+",
	"LGPL-2.0":     "LGPLv2 with exceptions",
	"LGPL-2.0+":    "LGPLv2+ with exceptions",
	"LGPL-3.0":     "LGPLv3",
	"LGPL-3.0+":    "LGPLv3+",
	"MIT":          "MIT with advertising",
	"MPL-1.0":      "MPLv1.0",
	"MPL-1.1":      "MPLv1.1",
	"MPL-2.0":      "MPLv2.0",
	"OFL-1.1":      "OFL",
	"Python-2.0":   "Python",
}

// LicenseError indicates an SPDX identifier that has no translation for the
// requested style.
type LicenseError struct {
	Style Style
	ID    string
}

func (e *LicenseError) Error() string {
	return "no " + string(e.Style) + " license token for SPDX identifier \"" + e.ID + "\""
}

// LicenseSPDX translates an SPDX license identifier in to the License: tag
// token for the given style.  SUSE (and every non-Fedora style) uses SPDX
// identifiers as-is; Fedora uses its own tokens and unknown identifiers are
// an error there.
func LicenseSPDX(style Style, id string) (string, error) {
	if style != StyleFedora {
		return id, nil
	}
	token, ok := licenseSPDX2Fedora[id]
	if !ok {
		return "", &LicenseError{Style: style, ID: id}
	}
	return token, nil
}
